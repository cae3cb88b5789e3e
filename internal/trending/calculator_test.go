package trending

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/database"
	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CalculatorSuite struct {
	suite.Suite
	repo *repository.ToolRepository
	now  time.Time
	calc *Calculator
}

func TestCalculatorSuite(t *testing.T) {
	suite.Run(t, new(CalculatorSuite))
}

func (s *CalculatorSuite) SetupTest() {
	db, err := database.OpenSQLite(":memory:")
	s.Require().NoError(err)
	s.Require().NoError(database.MigrateDB(db))

	s.repo = repository.NewToolRepository(db)
	s.now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	s.calc = NewCalculator(s.repo)
	s.calc.now = func() time.Time { return s.now }
}

func (s *CalculatorSuite) createTool(name string, age time.Duration) *models.Tool {
	tool := &models.Tool{Name: name, CreatedAt: s.now.Add(-age)}
	s.Require().NoError(s.repo.CreateTool(context.Background(), tool, nil, nil))
	return tool
}

func (s *CalculatorSuite) addViews(toolID string, n int, ago time.Duration) {
	for i := 0; i < n; i++ {
		s.Require().NoError(s.repo.RecordView(context.Background(), &models.ToolView{
			ToolID:   toolID,
			ViewedAt: s.now.Add(-ago),
		}))
	}
}

func (s *CalculatorSuite) TestRunScoresEveryTool() {
	ctx := context.Background()

	fresh := s.createTool("Fresh", 3*24*time.Hour)
	s.addViews(fresh.ID, 5, 2*time.Hour)
	s.addViews(fresh.ID, 5, 3*24*time.Hour)

	steady := s.createTool("Steady", 10*24*time.Hour)
	s.addViews(steady.ID, 1, time.Hour)
	s.addViews(steady.ID, 13, 4*24*time.Hour)
	// outside both windows
	s.addViews(steady.ID, 40, 8*24*time.Hour)

	quiet := s.createTool("Quiet", 10*24*time.Hour)

	summary, err := s.calc.Run(ctx)
	s.Require().NoError(err)
	s.Equal(3, summary.Processed)
	s.Equal(2, summary.Trending)
	s.Zero(summary.Failed)
	s.Empty(summary.FailedIDs)

	got, err := s.repo.GetToolByID(ctx, fresh.ID)
	s.Require().NoError(err)
	s.InDelta(58.5, got.TrendingScore, 1e-9)
	s.True(got.IsTrending)

	got, err = s.repo.GetToolByID(ctx, steady.ID)
	s.Require().NoError(err)
	s.InDelta(10.1, got.TrendingScore, 1e-9)
	s.True(got.IsTrending)

	got, err = s.repo.GetToolByID(ctx, quiet.ID)
	s.Require().NoError(err)
	s.Zero(got.TrendingScore)
	s.False(got.IsTrending)
}

func (s *CalculatorSuite) TestRunIsIdempotent() {
	ctx := context.Background()
	tool := s.createTool("Repeat", 20*24*time.Hour)
	s.addViews(tool.ID, 20, time.Hour)

	_, err := s.calc.Run(ctx)
	s.Require().NoError(err)
	first, err := s.repo.GetToolByID(ctx, tool.ID)
	s.Require().NoError(err)

	_, err = s.calc.Run(ctx)
	s.Require().NoError(err)
	second, err := s.repo.GetToolByID(ctx, tool.ID)
	s.Require().NoError(err)

	s.Equal(first.TrendingScore, second.TrendingScore)
	s.Equal(first.IsTrending, second.IsTrending)
	s.InDelta(20.0, second.TrendingScore, 1e-9)
}

func (s *CalculatorSuite) TestRunClearsFlagWhenViewsAge() {
	ctx := context.Background()
	tool := s.createTool("Fading", 30*24*time.Hour)
	s.Require().NoError(s.repo.UpdateTrending(ctx, tool.ID, 99, true))

	_, err := s.calc.Run(ctx)
	s.Require().NoError(err)

	got, err := s.repo.GetToolByID(ctx, tool.ID)
	s.Require().NoError(err)
	s.False(got.IsTrending)
	s.Zero(got.TrendingScore)
}

func (s *CalculatorSuite) TestRunWithNoTools() {
	summary, err := s.calc.Run(context.Background())
	s.Require().NoError(err)
	s.Zero(summary.Processed)
	s.Zero(summary.Trending)
}

func (s *CalculatorSuite) TestOnCompleteReceivesSummary() {
	s.createTool("Hooked", time.Hour)

	var got *Summary
	s.calc.OnComplete = func(ctx context.Context, summary *Summary) { got = summary }

	_, err := s.calc.Run(context.Background())
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(1, got.Processed)
}

// flakyStore fails the update for selected ids
type flakyStore struct {
	rows     []repository.ScoringRow
	failIDs  map[string]bool
	listErr  error
	updated  map[string]float64
	canceler context.CancelFunc
}

func (f *flakyStore) ListForScoring(ctx context.Context) ([]repository.ScoringRow, error) {
	return f.rows, f.listErr
}

func (f *flakyStore) CountViewsSince(ctx context.Context, toolID string, since time.Time) (int64, error) {
	return 20, nil
}

func (f *flakyStore) UpdateTrending(ctx context.Context, id string, score float64, isTrending bool) error {
	if f.failIDs[id] {
		return errors.New("write failed")
	}
	if f.updated == nil {
		f.updated = map[string]float64{}
	}
	f.updated[id] = score
	if f.canceler != nil {
		f.canceler()
	}
	return nil
}

func TestRunIsolatesFailures(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	store := &flakyStore{
		rows: []repository.ScoringRow{
			{ID: "a", CreatedAt: now.AddDate(0, -1, 0)},
			{ID: "b", CreatedAt: now.AddDate(0, -1, 0)},
			{ID: "c", CreatedAt: now.AddDate(0, -1, 0)},
		},
		failIDs: map[string]bool{"b": true},
	}
	calc := NewCalculator(store)
	calc.now = func() time.Time { return now }

	summary, err := calc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Trending)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, []string{"b"}, summary.FailedIDs)
	assert.Contains(t, store.updated, "a")
	assert.Contains(t, store.updated, "c")
}

func TestRunFailsWhenListingFails(t *testing.T) {
	calc := NewCalculator(&flakyStore{listErr: errors.New("db down")})

	summary, err := calc.Run(context.Background())
	assert.Error(t, err)
	assert.Nil(t, summary)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &flakyStore{
		rows:     []repository.ScoringRow{{ID: "a"}, {ID: "b"}},
		canceler: cancel,
	}
	summary, err := NewCalculator(store).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Processed)
}

func TestSchedulerRunsImmediately(t *testing.T) {
	ran := make(chan struct{}, 1)
	calc := NewCalculator(&flakyStore{})
	calc.OnComplete = func(ctx context.Context, s *Summary) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}

	sched := NewScheduler(calc, time.Hour)
	sched.Start()
	defer sched.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not run on start")
	}
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	sched := NewScheduler(NewCalculator(&flakyStore{}), time.Hour)

	stopped := make(chan struct{})
	go func() {
		sched.Stop()
		sched.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a scheduler that never started")
	}

	// a stopped scheduler does not start again
	sched.Start()
	sched.Stop()
}
