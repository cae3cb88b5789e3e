package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/bynikesh/findmyai-sub001/internal/enrichment"
	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/repository"
	"github.com/bynikesh/findmyai-sub001/internal/util"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedPassword = "password123"

// Seeder handles database seeding operations
type Seeder struct {
	db   *gorm.DB
	repo *repository.ToolRepository
	now  time.Time
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	// Seed returns an error only for invalid sources
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db, repo: repository.NewToolRepository(db), now: time.Now().UTC()}
}

// SeedDev fills a development database with users, a categorised catalog,
// a month of view and click events, and reviews
func (s *Seeder) SeedDev(ctx context.Context) error {
	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(ctx, 25)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating categories...")
	if err := s.seedCategories(ctx); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	logger.Log.Info("Creating tools...")
	tools, err := s.seedTools(ctx, 80)
	if err != nil {
		return fmt.Errorf("failed to seed tools: %w", err)
	}

	logger.Log.Info("Creating view and click events...")
	if err := s.seedEvents(ctx, tools, 4000); err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	logger.Log.Info("Creating reviews...")
	if err := s.seedReviews(ctx, users, tools, 300); err != nil {
		return fmt.Errorf("failed to seed reviews: %w", err)
	}
	return nil
}

// SeedTest creates fixed users and a handful of tools for end-to-end tests.
// Every account uses the password "password123"; alice is an admin.
func (s *Seeder) SeedTest(ctx context.Context) error {
	accounts := []struct {
		name  string
		email string
		admin bool
	}{
		{"Alice Smith", "alice@example.com", true},
		{"Bob Johnson", "bob@example.com", false},
		{"Charlie Brown", "charlie@example.com", false},
	}

	var users []models.User
	for _, u := range accounts {
		user, err := s.createUser(ctx, u.name, u.email, u.admin)
		if err != nil {
			return fmt.Errorf("failed to create test user %s: %w", u.email, err)
		}
		users = append(users, *user)
	}

	if err := s.seedCategories(ctx); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	fixtures := []struct {
		name     string
		category string
		pricing  string
	}{
		{"Test Writer", "Writing", models.PricingFreemium},
		{"Test Painter", "Image Generation", models.PricingPaid},
		{"Test Coder", "Coding", models.PricingFree},
		{"Test Voice", "Audio & Voice", models.PricingFreeTrial},
		{"Test Researcher", "Research", models.PricingOpenSource},
	}
	var tools []models.Tool
	for _, f := range fixtures {
		exists, err := s.repo.ToolExists(ctx, "", "", f.name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		tool := &models.Tool{
			Name:             f.name,
			Slug:             util.Slugify(f.name),
			Description:      f.name + " is a fixture tool used by end-to-end tests.",
			ShortDescription: f.name + " fixture",
			WebsiteURL:       "https://" + util.Slugify(f.name) + ".example.com",
			LogoURL:          models.PlaceholderLogo,
			CoverURL:         models.PlaceholderCover,
			Pricing:          []string{f.pricing},
			Verified:         true,
		}
		if err := s.repo.CreateTool(ctx, tool, []string{f.category}, []string{"test"}); err != nil {
			return fmt.Errorf("failed to create test tool %s: %w", f.name, err)
		}
		tools = append(tools, *tool)
	}

	if len(tools) > 0 {
		if err := s.seedEvents(ctx, tools, 50); err != nil {
			return err
		}
		if err := s.seedReviews(ctx, users, tools, 5); err != nil {
			return err
		}
	}
	return nil
}

// Clean removes all catalog and user data (use with caution!)
func (s *Seeder) Clean(ctx context.Context) error {
	// reverse order of dependencies
	tables := []string{
		"tool_views", "tool_clicks", "reviews", "tool_categories", "tool_tags",
		"tools", "tags", "categories", "import_runs", "users",
	}
	db := s.db.WithContext(ctx)
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) createUser(ctx context.Context, name, email string, admin bool) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	lastActive := gofakeit.DateRange(s.now.AddDate(0, 0, -30), s.now)
	user = models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashed),
		IsAdmin:      admin,
		LastActiveAt: &lastActive,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Seeder) seedUsers(ctx context.Context, count int) ([]models.User, error) {
	var seeded int64
	s.db.WithContext(ctx).Model(&models.User{}).Where("email LIKE ?", "%@example.com").Count(&seeded)
	if seeded >= int64(count) {
		var users []models.User
		if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
			return nil, err
		}
		logger.Log.Info("Found existing users, skipping creation", zap.Int("total_users", len(users)))
		return users, nil
	}

	admin, err := s.createUser(ctx, "Admin", "admin@example.com", true)
	if err != nil {
		return nil, err
	}
	users := []models.User{*admin}
	for i := 1; i < count; i++ {
		email := strings.ToLower(fmt.Sprintf("%s.%d@example.com", gofakeit.Username(), i))
		user, err := s.createUser(ctx, gofakeit.Name(), email, false)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, *user)
	}

	logger.Log.Info("Created seed users", zap.Int("count", len(users)))
	return users, nil
}

// featuredCategories are highlighted on the home page
var featuredCategories = map[string]bool{
	"Writing":          true,
	"Image Generation": true,
	"Coding":           true,
	"Chatbots":         true,
}

func (s *Seeder) seedCategories(ctx context.Context) error {
	for _, name := range enrichment.AllowedCategories {
		if _, err := s.repo.GetCategoryBySlug(ctx, util.Slugify(name)); err == nil {
			continue
		}
		category := &models.Category{
			Name:        name,
			Slug:        util.Slugify(name),
			Description: fmt.Sprintf("AI tools for %s.", strings.ToLower(name)),
			Featured:    featuredCategories[name],
		}
		if err := s.repo.CreateCategory(ctx, category); err != nil {
			return fmt.Errorf("failed to create category %s: %w", name, err)
		}
	}
	return nil
}

var (
	toolSuffixes = []string{"AI", "GPT", "Studio", "Pilot", "Labs", "Forge", "Mind", "Flow"}
	tagPool      = []string{"llm", "api", "chrome-extension", "no-code", "open-source", "mobile", "enterprise", "realtime", "multilingual", "privacy"}
	platformPool = []string{"Web", "iOS", "Android", "macOS", "Windows", "Linux", "API"}
	modelPool    = []string{"GPT-4o", "Claude", "Gemini", "Llama 3", "Mistral", "Stable Diffusion"}
)

func (s *Seeder) seedTools(ctx context.Context, count int) ([]models.Tool, error) {
	categories := enrichment.AllowedCategories[:len(enrichment.AllowedCategories)-1]

	var tools []models.Tool
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("%s %s", gofakeit.Word(), toolSuffixes[rand.Intn(len(toolSuffixes))])
		name = strings.ToUpper(name[:1]) + name[1:]

		exists, err := s.repo.ToolExists(ctx, "", "", name)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		pricing := models.PricingOptions[rand.Intn(len(models.PricingOptions))]
		tool := &models.Tool{
			Name:             name,
			Description:      gofakeit.HipsterSentence() + " " + gofakeit.HipsterSentence(),
			ShortDescription: gofakeit.HipsterSentence(),
			WebsiteURL:       "https://" + util.Slugify(name) + ".example.com",
			LogoURL:          fmt.Sprintf("https://api.dicebear.com/7.x/shapes/png?seed=%s", util.Slugify(name)),
			CoverURL:         models.PlaceholderCover,
			Pricing:          []string{pricing},
			Features:         pickN([]string{"Summaries", "Templates", "Team workspaces", "Export", "Integrations", "Custom models", "Analytics"}, 3),
			Platforms:        pickN(platformPool, 2),
			Models:           pickN(modelPool, 1),
			Pros:             []string{gofakeit.HipsterSentence()},
			Cons:             []string{gofakeit.HipsterSentence()},
			UseCases:         pickN([]string{"Content marketing", "Customer support", "Prototyping", "Research notes", "Social media"}, 2),
			IdealFor:         gofakeit.HipsterSentence(),
			HasFreeTrial:     pricing == models.PricingFreeTrial || rand.Float32() < 0.3,
			IsOpenSource:     pricing == models.PricingOpenSource,
			HasAPI:           rand.Float32() < 0.5,
			// a few stay in the review queue
			Verified:  rand.Float32() < 0.9,
			CreatedAt: gofakeit.DateRange(s.now.AddDate(0, 0, -60), s.now),
		}
		cats := pickN(categories, 1+rand.Intn(2))
		if err := s.repo.CreateTool(ctx, tool, cats, pickN(tagPool, 1+rand.Intn(3))); err != nil {
			return nil, fmt.Errorf("failed to create tool %s: %w", name, err)
		}
		tools = append(tools, *tool)
	}

	logger.Log.Info("Created seed tools", zap.Int("count", len(tools)))
	return tools, nil
}

// seedEvents spreads views over the last 30 days with a skew towards a few
// popular tools and recent days, so the trending calculator has something to find
func (s *Seeder) seedEvents(ctx context.Context, tools []models.Tool, views int) error {
	if len(tools) == 0 {
		return nil
	}

	viewRows := make([]models.ToolView, 0, views)
	clickRows := make([]models.ToolClick, 0, views/5)
	for i := 0; i < views; i++ {
		// squaring biases towards the front of the slice
		idx := int(float64(len(tools)) * rand.Float64() * rand.Float64())
		tool := tools[idx]

		daysAgo := int(30 * rand.Float64() * rand.Float64())
		at := s.now.AddDate(0, 0, -daysAgo).Add(-time.Duration(rand.Intn(86400)) * time.Second)
		if at.Before(tool.CreatedAt) {
			at = tool.CreatedAt
		}

		viewRows = append(viewRows, models.ToolView{
			ToolID:    tool.ID,
			ViewedAt:  at,
			IPAddress: gofakeit.IPv4Address(),
			UserAgent: gofakeit.UserAgent(),
		})
		if rand.Float32() < 0.2 {
			clickRows = append(clickRows, models.ToolClick{ToolID: tool.ID, ClickedAt: at.Add(time.Minute)})
		}
	}

	db := s.db.WithContext(ctx)
	if err := db.CreateInBatches(viewRows, 500).Error; err != nil {
		return fmt.Errorf("failed to create views: %w", err)
	}
	if len(clickRows) > 0 {
		if err := db.CreateInBatches(clickRows, 500).Error; err != nil {
			return fmt.Errorf("failed to create clicks: %w", err)
		}
	}

	logger.Log.Info("Created seed events", zap.Int("views", len(viewRows)), zap.Int("clicks", len(clickRows)))
	return nil
}

func (s *Seeder) seedReviews(ctx context.Context, users []models.User, tools []models.Tool, count int) error {
	if len(users) == 0 || len(tools) == 0 {
		return nil
	}

	created := 0
	seen := make(map[string]bool)
	for attempt := 0; attempt < count*3 && created < count; attempt++ {
		user := users[rand.Intn(len(users))]
		tool := tools[rand.Intn(len(tools))]
		key := user.ID + "/" + tool.ID
		if seen[key] {
			continue
		}
		seen[key] = true

		review := &models.Review{
			ToolID: tool.ID,
			UserID: user.ID,
			// mostly positive, like real catalogs
			Rating: 3 + rand.Intn(3) - boolToInt(rand.Float32() < 0.15)*2,
			Title:  gofakeit.HipsterSentence(),
			Body:   gofakeit.HipsterSentence() + " " + gofakeit.HipsterSentence(),
		}
		if err := s.repo.CreateReview(ctx, review); err != nil {
			logger.Log.Warn("Failed to create seed review", logger.WithToolID(tool.ID), zap.Error(err))
			continue
		}
		created++
	}

	logger.Log.Info("Created seed reviews", zap.Int("count", created))
	return nil
}

func pickN(pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, 0, n)
	for _, i := range rand.Perm(len(pool))[:n] {
		out = append(out, pool[i])
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
