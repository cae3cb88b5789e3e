package seed

import (
	"context"
	"testing"

	"github.com/bynikesh/findmyai-sub001/internal/database"
	"github.com/bynikesh/findmyai-sub001/internal/enrichment"
	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SeederTestSuite struct {
	suite.Suite
	db     *gorm.DB
	seeder *Seeder
	ctx    context.Context
}

func TestSeederSuite(t *testing.T) {
	suite.Run(t, new(SeederTestSuite))
}

func (s *SeederTestSuite) SetupTest() {
	db, err := database.OpenSQLite(":memory:")
	s.Require().NoError(err)
	s.Require().NoError(database.MigrateDB(db))
	s.db = db
	s.seeder = NewSeeder(db)
	s.ctx = context.Background()
}

func (s *SeederTestSuite) count(model interface{}) int64 {
	var n int64
	s.Require().NoError(s.db.Model(model).Count(&n).Error)
	return n
}

func (s *SeederTestSuite) TestSeedTestIsRepeatable() {
	s.Require().NoError(s.seeder.SeedTest(s.ctx))

	var alice models.User
	s.Require().NoError(s.db.Where("email = ?", "alice@example.com").First(&alice).Error)
	s.True(alice.IsAdmin)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(alice.PasswordHash), []byte(seedPassword)))

	s.Equal(int64(3), s.count(&models.User{}))
	s.Equal(int64(5), s.count(&models.Tool{}))
	s.Equal(int64(len(enrichment.AllowedCategories)), s.count(&models.Category{}))
	s.Equal(int64(50), s.count(&models.ToolView{}))

	s.Require().NoError(s.seeder.SeedTest(s.ctx))
	s.Equal(int64(3), s.count(&models.User{}))
	s.Equal(int64(5), s.count(&models.Tool{}))
	s.Equal(int64(50), s.count(&models.ToolView{}))
}

func (s *SeederTestSuite) TestSeedDev() {
	s.Require().NoError(s.seeder.SeedDev(s.ctx))

	s.Equal(int64(25), s.count(&models.User{}))
	s.Positive(s.count(&models.Tool{}))
	s.Equal(int64(4000), s.count(&models.ToolView{}))
	s.Positive(s.count(&models.Review{}))

	var featured int64
	s.Require().NoError(s.db.Model(&models.Category{}).Where("featured = ?", true).Count(&featured).Error)
	s.Equal(int64(len(featuredCategories)), featured)

	// review aggregates are maintained on insert
	var rated models.Tool
	s.Require().NoError(s.db.Where("review_count > 0").First(&rated).Error)
	s.GreaterOrEqual(rated.AverageRating, 1.0)
	s.LessOrEqual(rated.AverageRating, 5.0)
}

func (s *SeederTestSuite) TestClean() {
	s.Require().NoError(s.seeder.SeedTest(s.ctx))
	s.Require().NoError(s.seeder.Clean(s.ctx))

	s.Zero(s.count(&models.Tool{}))
	s.Zero(s.count(&models.ToolView{}))
	s.Zero(s.count(&models.Category{}))
	s.Equal(int64(0), s.count(&models.User{}))
}
