// Package domain re-exports core domain types so internal code can import
// them without reaching into pkg directly.
package domain

import pkg "flicks/pkg/domain"

// Accounts and profiles.
type User = pkg.User
type Profile = pkg.Profile

// Subscriptions.
type SubscriptionPlan = pkg.SubscriptionPlan
type Subscription = pkg.Subscription
type SubscriptionStatus = pkg.SubscriptionStatus
type PlanTier = pkg.PlanTier
type VideoQuality = pkg.VideoQuality

// Device sessions.
type DeviceSession = pkg.DeviceSession
type DeviceType = pkg.DeviceType

// Catalog.
type Content = pkg.Content
type ContentType = pkg.ContentType
type Episode = pkg.Episode
type SeriesStructure = pkg.SeriesStructure
type SeasonLayout = pkg.SeasonLayout
type WatchlistItem = pkg.WatchlistItem

// Progress.
type WatchProgress = pkg.WatchProgress
type EpisodeProgressMap = pkg.EpisodeProgressMap

const MaxProfilesPerAccount = pkg.MaxProfilesPerAccount

// Re-exported plan tiers.
const (
	PlanBasic   = pkg.PlanBasic
	PlanPremium = pkg.PlanPremium
	PlanUltra   = pkg.PlanUltra
)

// Re-exported qualities.
const (
	QualitySD  = pkg.QualitySD
	QualityHD  = pkg.QualityHD
	QualityUHD = pkg.QualityUHD
)

// Re-exported subscription statuses.
const (
	SubscriptionActive   = pkg.SubscriptionActive
	SubscriptionExpired  = pkg.SubscriptionExpired
	SubscriptionCanceled = pkg.SubscriptionCanceled
)

// Re-exported content types.
const (
	ContentMovie  = pkg.ContentMovie
	ContentSeries = pkg.ContentSeries
)

// Re-exported device types.
const (
	DeviceComputer = pkg.DeviceComputer
	DeviceMobile   = pkg.DeviceMobile
	DeviceTablet   = pkg.DeviceTablet
	DeviceTV       = pkg.DeviceTV
)

// EpisodeKey formats the per-episode progress map key, e.g. s01e03.
var EpisodeKey = pkg.EpisodeKey
