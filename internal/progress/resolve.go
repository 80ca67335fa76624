package progress

import (
	"flicks/internal/domain"
)

// IsCompleted reports whether playback counts as finished: within threshold
// seconds of the end. Equality at the boundary counts as completed.
func IsCompleted(position, duration, threshold int) bool {
	return duration-position <= threshold
}

// ResumeTarget is where the player should start. Season/Episode are zero for
// movies.
type ResumeTarget struct {
	Season   int `json:"season,omitempty"`
	Episode  int `json:"episode,omitempty"`
	Position int `json:"position"`
}

// ResolveResumeTarget computes the resume decision from an already-fetched
// checkpoint and series structure. It performs no I/O.
//
// Series: a completed episode advances to the next episode of the season,
// then to episode 1 of the next season, and stays put at the end of the
// series. An unfinished episode resumes at its recorded position.
// Movies (structure == nil): resume at the recorded position, or restart
// from zero when completed.
func ResolveResumeTarget(p *domain.WatchProgress, structure *domain.SeriesStructure, threshold int) ResumeTarget {
	if p == nil {
		return ResumeTarget{}
	}

	if structure == nil || !p.IsSeries() {
		if IsCompleted(p.LastPosition, p.Duration, threshold) {
			return ResumeTarget{Position: 0}
		}
		return ResumeTarget{Position: p.LastPosition}
	}

	season, episode := p.CurrentSeason, p.CurrentEpisode
	position := p.LastPosition
	if pos, ok := p.EpisodeProgress[domain.EpisodeKey(season, episode)]; ok {
		position = pos
	}

	if !IsCompleted(position, p.Duration, threshold) {
		return ResumeTarget{Season: season, Episode: episode, Position: position}
	}

	if next, ok := nextEpisode(structure, season, episode); ok {
		return ResumeTarget{Season: next.Season, Episode: next.Episode, Position: 0}
	}

	// End of the series: stay on the last recorded episode.
	return ResumeTarget{Season: season, Episode: episode, Position: position}
}

type episodeRef struct {
	Season  int
	Episode int
}

func nextEpisode(structure *domain.SeriesStructure, season, episode int) (episodeRef, bool) {
	for i, layout := range structure.Seasons {
		if layout.Season != season {
			continue
		}
		if episode < layout.EpisodeCount {
			return episodeRef{Season: season, Episode: episode + 1}, true
		}
		// First later season that actually has episodes.
		for _, later := range structure.Seasons[i+1:] {
			if later.EpisodeCount > 0 {
				return episodeRef{Season: later.Season, Episode: 1}, true
			}
		}
		return episodeRef{}, false
	}
	return episodeRef{}, false
}
