package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EpisodeKey formats the per-episode progress map key, e.g. s01e03.
func EpisodeKey(season, episode int) string {
	return fmt.Sprintf("s%02de%02d", season, episode)
}

// EpisodeProgressMap maps EpisodeKey -> position in seconds. Stored as jsonb.
type EpisodeProgressMap map[string]int

func (m EpisodeProgressMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(EpisodeProgressMap{})
	}
	return json.Marshal(m)
}

func (m *EpisodeProgressMap) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &m)
}

// WatchProgress is the playback checkpoint for one (profile, content) pair.
// Series keep the whole per-episode history in EpisodeProgress while
// LastPosition/CurrentSeason/CurrentEpisode track the most recent playback.
// RecordedAt is the client event time; a checkpoint is only overwritten by a
// later-recorded one, so a delayed periodic save cannot clobber a newer seek.
type WatchProgress struct {
	ProfileID       uuid.UUID          `json:"profile_id" db:"profile_id"`
	ContentID       uuid.UUID          `json:"content_id" db:"content_id"`
	LastPosition    int                `json:"last_position" db:"last_position"`
	Duration        int                `json:"duration" db:"duration"`
	CurrentSeason   int                `json:"current_season" db:"current_season"`
	CurrentEpisode  int                `json:"current_episode" db:"current_episode"`
	EpisodeProgress EpisodeProgressMap `json:"episode_progress" db:"episode_progress"`
	RecordedAt      time.Time          `json:"recorded_at" db:"recorded_at"`
	UpdatedAt       time.Time          `json:"updated_at" db:"updated_at"`
}

// IsSeries reports whether the checkpoint carries episode context.
func (p *WatchProgress) IsSeries() bool {
	return p.CurrentSeason > 0 && p.CurrentEpisode > 0
}
