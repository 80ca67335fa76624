// Seeding tool: subscription plans, a demo account, and a small catalog.
// Usage (env overrides):
//
//	SEED_EMAIL=demo@example.com SEED_PASSWORD=Password123
//
// Reads DATABASE_URL and other core config via flicks/pkg/config
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"flicks/internal/repository/postgres"
	"flicks/pkg/config"
	"flicks/pkg/domain"
	"flicks/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("seed")

	cfg := config.Load()
	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer db.Close()

	ctx := context.Background()
	userRepo := postgres.NewUserRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	subRepo := postgres.NewSubscriptionRepository(db)
	contentRepo := postgres.NewContentRepository(db)

	seedPlans(ctx, subRepo, log)

	email := getenv("SEED_EMAIL", "demo@example.com")
	password := getenv("SEED_PASSWORD", "Password123")
	userID := ensureUser(ctx, userRepo, log, email, password, "Demo")
	ensureProfile(ctx, profileRepo, log, userID, "Demo", false)
	ensureProfile(ctx, profileRepo, log, userID, "Kids", true)
	ensureSubscription(ctx, subRepo, log, userID, domain.PlanPremium)

	seedCatalog(ctx, contentRepo, log)

	fmt.Println("OK: plans, demo account, and catalog seeded")
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func seedPlans(ctx context.Context, repo *postgres.SubscriptionRepository, log logger.Logger) {
	plans := []*domain.SubscriptionPlan{
		{Tier: domain.PlanBasic, Name: "Basic", DeviceLimit: 1, MaxQuality: domain.QualitySD, MonthlyPrice: decimal.NewFromFloat(7.99)},
		{Tier: domain.PlanPremium, Name: "Premium", DeviceLimit: 2, MaxQuality: domain.QualityHD, MonthlyPrice: decimal.NewFromFloat(12.99)},
		{Tier: domain.PlanUltra, Name: "Ultra", DeviceLimit: 4, MaxQuality: domain.QualityUHD, MonthlyPrice: decimal.NewFromFloat(18.99)},
	}
	for _, p := range plans {
		if err := repo.UpsertPlan(ctx, p); err != nil {
			log.Fatal("Failed to seed plan", map[string]interface{}{"tier": string(p.Tier), "error": err.Error()})
		}
	}
}

func ensureUser(ctx context.Context, repo *postgres.UserRepository, log logger.Logger, email, password, displayName string) uuid.UUID {
	if existing, err := repo.FindByEmail(ctx, email); err == nil {
		return existing.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password", map[string]interface{}{"error": err.Error()})
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, user); err != nil {
		log.Fatal("Failed to create user", map[string]interface{}{"error": err.Error()})
	}
	log.Info("Seeded user", map[string]interface{}{"email": email})
	return user.ID
}

func ensureProfile(ctx context.Context, repo *postgres.ProfileRepository, log logger.Logger, userID uuid.UUID, name string, kids bool) {
	existing, err := repo.ListByUser(ctx, userID)
	if err != nil {
		log.Fatal("Failed to list profiles", map[string]interface{}{"error": err.Error()})
	}
	for _, p := range existing {
		if p.Name == name {
			return
		}
	}

	now := time.Now().UTC()
	profile := &domain.Profile{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		IsKids:    kids,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, profile); err != nil {
		log.Fatal("Failed to create profile", map[string]interface{}{"error": err.Error()})
	}
}

func ensureSubscription(ctx context.Context, repo *postgres.SubscriptionRepository, log logger.Logger, userID uuid.UUID, tier domain.PlanTier) {
	now := time.Now().UTC()
	renews := now.AddDate(0, 1, 0)
	sub := &domain.Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		Tier:      tier,
		Status:    domain.SubscriptionActive,
		RenewsAt:  &renews,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Upsert(ctx, sub); err != nil {
		log.Fatal("Failed to seed subscription", map[string]interface{}{"error": err.Error()})
	}
}

func seedCatalog(ctx context.Context, repo *postgres.ContentRepository, log logger.Logger) {
	now := time.Now().UTC()

	movie := &domain.Content{
		ID:          uuid.New(),
		MetadataID:  27205,
		Type:        domain.ContentMovie,
		Title:       "Inception",
		StreamPath:  "movies/inception/master.m3u8",
		DurationSec: 8880,
		Popularity:  83.5,
		CreatedAt:   now,
	}
	if err := repo.Create(ctx, movie); err != nil {
		log.Info("Skipping movie seed", map[string]interface{}{"error": err.Error()})
		return
	}

	kids := &domain.Content{
		ID:          uuid.New(),
		MetadataID:  862,
		Type:        domain.ContentMovie,
		Title:       "Toy Story",
		StreamPath:  "movies/toy-story/master.m3u8",
		DurationSec: 4860,
		IsKidsSafe:  true,
		Popularity:  71.2,
		CreatedAt:   now,
	}
	if err := repo.Create(ctx, kids); err != nil {
		log.Fatal("Failed to seed content", map[string]interface{}{"error": err.Error()})
	}

	series := &domain.Content{
		ID:         uuid.New(),
		MetadataID: 1396,
		Type:       domain.ContentSeries,
		Title:      "Breaking Bad",
		Popularity: 95.1,
		CreatedAt:  now,
	}
	if err := repo.Create(ctx, series); err != nil {
		log.Fatal("Failed to seed content", map[string]interface{}{"error": err.Error()})
	}

	for season := 1; season <= 2; season++ {
		for episode := 1; episode <= 7; episode++ {
			ep := &domain.Episode{
				ID:          uuid.New(),
				ContentID:   series.ID,
				Season:      season,
				Episode:     episode,
				Title:       fmt.Sprintf("Episode %d", episode),
				StreamPath:  fmt.Sprintf("series/breaking-bad/s%02de%02d/master.m3u8", season, episode),
				DurationSec: 2820,
			}
			if err := repo.CreateEpisode(ctx, ep); err != nil {
				log.Fatal("Failed to seed episode", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}
