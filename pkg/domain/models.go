package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents an account holder. Viewing happens through profiles; the
// account owns the subscription and the device sessions.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Profile is a viewing identity under an account. Watch progress and the
// watchlist are keyed by profile, not by account.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	AvatarID  int       `json:"avatar_id" db:"avatar_id"`
	IsKids    bool      `json:"is_kids" db:"is_kids"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MaxProfilesPerAccount bounds how many profiles one account may create.
const MaxProfilesPerAccount = 5

// VideoQuality is a playback rendition tier.
type VideoQuality string

const (
	QualitySD  VideoQuality = "sd"
	QualityHD  VideoQuality = "hd"
	QualityUHD VideoQuality = "uhd"
)

// PlanTier identifies a subscription plan.
type PlanTier string

const (
	PlanBasic   PlanTier = "basic"
	PlanPremium PlanTier = "premium"
	PlanUltra   PlanTier = "ultra"
)

// SubscriptionPlan determines the device limit and permitted qualities for
// an account. Read-only input to admission control and playback.
type SubscriptionPlan struct {
	Tier         PlanTier        `json:"tier" db:"tier"`
	Name         string          `json:"name" db:"name"`
	DeviceLimit  int             `json:"device_limit" db:"device_limit"`
	MaxQuality   VideoQuality    `json:"max_quality" db:"max_quality"`
	MonthlyPrice decimal.Decimal `json:"monthly_price" db:"monthly_price"`
}

// Qualities returns the renditions permitted by the plan, lowest first.
func (p *SubscriptionPlan) Qualities() []VideoQuality {
	switch p.MaxQuality {
	case QualityUHD:
		return []VideoQuality{QualitySD, QualityHD, QualityUHD}
	case QualityHD:
		return []VideoQuality{QualitySD, QualityHD}
	default:
		return []VideoQuality{QualitySD}
	}
}

// SubscriptionStatus is the lifecycle state of an account subscription.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionExpired  SubscriptionStatus = "expired"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Subscription binds an account to a plan.
type Subscription struct {
	ID        uuid.UUID          `json:"id" db:"id"`
	UserID    uuid.UUID          `json:"user_id" db:"user_id"`
	Tier      PlanTier           `json:"tier" db:"tier"`
	Status    SubscriptionStatus `json:"status" db:"status"`
	RenewsAt  *time.Time         `json:"renews_at,omitempty" db:"renews_at"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" db:"updated_at"`
}

// ContentType distinguishes movies from episodic series.
type ContentType string

const (
	ContentMovie  ContentType = "movie"
	ContentSeries ContentType = "series"
)

// Content is a catalog entry. MetadataID keys the external metadata API;
// detail objects (overview, artwork, cast) are fetched from there, not stored.
type Content struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	MetadataID  int64       `json:"metadata_id" db:"metadata_id"`
	Type        ContentType `json:"type" db:"content_type"`
	Title       string      `json:"title" db:"title"`
	StreamPath  string      `json:"stream_path" db:"stream_path"`
	DurationSec int         `json:"duration_sec" db:"duration_sec"`
	// CompletionThresholdSec overrides the type default when > 0.
	CompletionThresholdSec int       `json:"completion_threshold_sec,omitempty" db:"completion_threshold_sec"`
	IsKidsSafe             bool      `json:"is_kids_safe" db:"is_kids_safe"`
	Popularity             float64   `json:"popularity" db:"popularity"`
	CreatedAt              time.Time `json:"created_at" db:"created_at"`
}

// Episode is one playable unit of a series.
type Episode struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ContentID   uuid.UUID `json:"content_id" db:"content_id"`
	Season      int       `json:"season" db:"season"`
	Episode     int       `json:"episode" db:"episode"`
	Title       string    `json:"title" db:"title"`
	StreamPath  string    `json:"stream_path" db:"stream_path"`
	DurationSec int       `json:"duration_sec" db:"duration_sec"`
}

// SeriesStructure lists how many episodes each season has, in season order.
// It is the only series shape the resume resolver needs.
type SeriesStructure struct {
	ContentID uuid.UUID      `json:"content_id"`
	Seasons   []SeasonLayout `json:"seasons"`
}

// SeasonLayout is one season's episode count.
type SeasonLayout struct {
	Season       int `json:"season" db:"season"`
	EpisodeCount int `json:"episode_count" db:"episode_count"`
}

// WatchlistItem is one "My List" entry for a profile.
type WatchlistItem struct {
	ProfileID uuid.UUID `json:"profile_id" db:"profile_id"`
	ContentID uuid.UUID `json:"content_id" db:"content_id"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`
}
