package collection

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fieldpay/cashcollector-backend/internal/domain"
	"github.com/fieldpay/cashcollector-backend/internal/lock"
)

// MockCollectorRepository is a mock implementation of CollectorRepository for testing
type MockCollectorRepository struct {
	mock.Mock
}

func (m *MockCollectorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Collector, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collector), args.Error(1)
}

// MockTaskRepository is a mock implementation of TaskRepository for testing
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) NextPending(ctx context.Context, collectorID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, collectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) ListCollected(ctx context.Context, collectorID uuid.UUID) ([]*domain.Task, error) {
	args := m.Called(ctx, collectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) ListOutstanding(ctx context.Context, collectorID uuid.UUID) ([]*domain.Task, error) {
	args := m.Called(ctx, collectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) FreezeAnchorDate(ctx context.Context, afterTaskID int64, amount decimal.Decimal) (*time.Time, error) {
	args := m.Called(ctx, afterTaskID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository for testing
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) SaveCollection(ctx context.Context, collector *domain.Collector, task *domain.Task) error {
	args := m.Called(ctx, collector, task)
	return args.Error(0)
}

func (m *MockLedgerRepository) SaveSettlement(ctx context.Context, collector *domain.Collector, tasks []*domain.Task) error {
	args := m.Called(ctx, collector, tasks)
	return args.Error(0)
}

var (
	threshold   = decimal.NewFromInt(5000)
	gracePeriod = 48 * time.Hour
	baseTime    = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
)

func newTestService(collectorRepo *MockCollectorRepository, taskRepo *MockTaskRepository, ledger *MockLedgerRepository) *Service {
	svc := NewService(collectorRepo, taskRepo, ledger, lock.NewKeyed(), threshold, gracePeriod)
	svc.Now = func() time.Time { return baseTime }
	return svc
}

func newCollector() *domain.Collector {
	return &domain.Collector{
		ID:        uuid.New(),
		Username:  "cash_collector",
		Collected: decimal.Zero,
	}
}

func newPendingTask(id int64, assignedTo uuid.UUID, amount int64) *domain.Task {
	return &domain.Task{
		ID:              id,
		AssignedTo:      assignedTo,
		Name:            "route",
		DueDate:         baseTime,
		Amount:          decimal.NewFromInt(amount),
		RemainingAmount: decimal.NewFromInt(amount),
	}
}

func TestCollect_MarksTaskAndAdvancesBalance(t *testing.T) {
	ctx := context.Background()
	collectorRepo := new(MockCollectorRepository)
	taskRepo := new(MockTaskRepository)
	ledger := new(MockLedgerRepository)
	svc := newTestService(collectorRepo, taskRepo, ledger)

	collector := newCollector()
	task := newPendingTask(1, collector.ID, 1000)

	collectorRepo.On("GetByID", ctx, collector.ID).Return(collector, nil)
	taskRepo.On("NextPending", ctx, collector.ID).Return(task, nil)
	ledger.On("SaveCollection", ctx, collector, task).Return(nil)

	got, err := svc.Collect(ctx, collector.ID, nil)

	require.NoError(t, err)
	assert.True(t, got.IsCollected)
	require.NotNil(t, got.CollectedAt)
	assert.Equal(t, baseTime, *got.CollectedAt)
	assert.True(t, collector.Collected.Equal(decimal.NewFromInt(1000)))
	assert.Nil(t, collector.ReachedLimitAt, "one task of 1000 must not latch the freeze timestamp")
	ledger.AssertExpectations(t)
}

func TestCollect_LatchesAtThresholdAndHolds(t *testing.T) {
	// Nine tasks of 1000 against a threshold of 5000: the fifth collection
	// latches the freeze timestamp and further collections never move it
	ctx := context.Background()
	collectorRepo := new(MockCollectorRepository)
	taskRepo := new(MockTaskRepository)
	ledger := new(MockLedgerRepository)
	svc := newTestService(collectorRepo, taskRepo, ledger)

	collector := newCollector()
	collectorRepo.On("GetByID", ctx, collector.ID).Return(collector, nil)
	ledger.On("SaveCollection", ctx, collector, mock.Anything).Return(nil)

	var collectTimes []time.Time
	for i := int64(1); i <= 9; i++ {
		task := newPendingTask(i, collector.ID, 1000)
		taskRepo.On("NextPending", ctx, collector.ID).Return(task, nil).Once()
		collectTimes = append(collectTimes, baseTime.Add(time.Duration(i)*time.Hour))
	}

	for i := 0; i < 4; i++ {
		_, err := svc.Collect(ctx, collector.ID, &collectTimes[i])
		require.NoError(t, err)
	}
	assert.True(t, collector.Collected.Equal(decimal.NewFromInt(4000)))
	assert.Nil(t, collector.ReachedLimitAt)

	// Fifth collection crosses the threshold
	_, err := svc.Collect(ctx, collector.ID, &collectTimes[4])
	require.NoError(t, err)
	assert.True(t, collector.Collected.Equal(decimal.NewFromInt(5000)))
	require.NotNil(t, collector.ReachedLimitAt)
	assert.Equal(t, collectTimes[4], *collector.ReachedLimitAt)

	// The latch is one-shot: a sixth collection advances the balance only
	_, err = svc.Collect(ctx, collector.ID, &collectTimes[5])
	require.NoError(t, err)
	assert.True(t, collector.Collected.Equal(decimal.NewFromInt(6000)))
	assert.Equal(t, collectTimes[4], *collector.ReachedLimitAt)
}

func TestCollect_FrozenCollectorRejected(t *testing.T) {
	ctx := context.Background()
	collectorRepo := new(MockCollectorRepository)
	taskRepo := new(MockTaskRepository)
	ledger := new(MockLedgerRepository)
	svc := newTestService(collectorRepo, taskRepo, ledger)

	collector := newCollector()
	latchedAt := baseTime.Add(-gracePeriod)
	collector.ReachedLimitAt = &latchedAt
	collector.Collected = decimal.NewFromInt(5000)
	task := newPendingTask(6, collector.ID, 1000)

	collectorRepo.On("GetByID", ctx, collector.ID).Return(collector, nil)
	taskRepo.On("NextPending", ctx, collector.ID).Return(task, nil)

	_, err := svc.Collect(ctx, collector.ID, nil)

	assert.ErrorIs(t, err, domain.ErrFrozen)
	assert.False(t, task.IsCollected, "rejected collection must not mutate the task")
	assert.True(t, collector.Collected.Equal(decimal.NewFromInt(5000)))
	ledger.AssertNotCalled(t, "SaveCollection", mock.Anything, mock.Anything, mock.Anything)
}

func TestCollect_NoPendingTask(t *testing.T) {
	ctx := context.Background()
	collectorRepo := new(MockCollectorRepository)
	taskRepo := new(MockTaskRepository)
	ledger := new(MockLedgerRepository)
	svc := newTestService(collectorRepo, taskRepo, ledger)

	collector := newCollector()
	collectorRepo.On("GetByID", ctx, collector.ID).Return(collector, nil)
	taskRepo.On("NextPending", ctx, collector.ID).Return(nil, domain.ErrNoAssignedTask)

	_, err := svc.Collect(ctx, collector.ID, nil)

	assert.ErrorIs(t, err, domain.ErrNoAssignedTask)
	ledger.AssertNotCalled(t, "SaveCollection", mock.Anything, mock.Anything, mock.Anything)
}

func TestFrozen_StatusTracksGracePeriod(t *testing.T) {
	ctx := context.Background()
	collectorRepo := new(MockCollectorRepository)
	taskRepo := new(MockTaskRepository)
	ledger := new(MockLedgerRepository)
	svc := newTestService(collectorRepo, taskRepo, ledger)

	collector := newCollector()
	latchedAt := baseTime
	collector.ReachedLimitAt = &latchedAt
	collectorRepo.On("GetByID", ctx, collector.ID).Return(collector, nil)

	// Immediately after latching: not frozen
	frozen, err := svc.Frozen(ctx, collector.ID)
	require.NoError(t, err)
	assert.False(t, frozen)

	// Once the grace period has elapsed: frozen
	svc.Now = func() time.Time { return baseTime.Add(gracePeriod) }
	frozen, err = svc.Frozen(ctx, collector.ID)
	require.NoError(t, err)
	assert.True(t, frozen)
}

func TestFrozen_UnknownCollector(t *testing.T) {
	ctx := context.Background()
	collectorRepo := new(MockCollectorRepository)
	taskRepo := new(MockTaskRepository)
	ledger := new(MockLedgerRepository)
	svc := newTestService(collectorRepo, taskRepo, ledger)

	id := uuid.New()
	collectorRepo.On("GetByID", ctx, id).Return(nil, domain.ErrCollectorNotFound)

	_, err := svc.Frozen(ctx, id)
	assert.ErrorIs(t, err, domain.ErrCollectorNotFound)
}
