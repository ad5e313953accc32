package reservation

import (
	"context"
	"sync"
	"testing"
	"time"

	"machrent/internal/domain"
	"machrent/internal/modules/availability"
	"machrent/internal/modules/pricing"
	"machrent/internal/modules/rating"
	"machrent/internal/pkg/lock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	if r != nil && args.Error(0) == nil {
		r.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Update(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) ListByRenter(ctx context.Context, renterID int64, from, to *time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, renterID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListByResource(ctx context.Context, resourceID int64, from, to *time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, resourceID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

type MockResourceReader struct {
	mock.Mock
}

func (m *MockResourceReader) GetByID(ctx context.Context, id int64) (*domain.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resource), args.Error(1)
}

type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) IsAvailable(ctx context.Context, resourceID int64, start, end time.Time, excludeID *int64) (bool, error) {
	args := m.Called(ctx, resourceID, start, end, excludeID)
	return args.Bool(0), args.Error(1)
}

type MockRater struct {
	mock.Mock
}

func (m *MockRater) Apply(ctx context.Context, resourceID int64, rating int) (float64, int, error) {
	args := m.Called(ctx, resourceID, rating)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) ReservationCreated(ctx context.Context, ownerID int64, r *domain.Reservation) {
	m.Called(ctx, ownerID, r)
}

func (m *MockSender) ReservationCancelled(ctx context.Context, renterID int64, r *domain.Reservation, reason string) {
	m.Called(ctx, renterID, r, reason)
}

func (m *MockSender) ReviewPosted(ctx context.Context, ownerID int64, r *domain.Reservation, rating int) {
	m.Called(ctx, ownerID, r, rating)
}

type fixture struct {
	reservations *MockReservationRepository
	resources    *MockResourceReader
	checker      *MockChecker
	rater        *MockRater
	notifs       *MockSender
	svc          *Service
}

func newFixture() *fixture {
	f := &fixture{
		reservations: new(MockReservationRepository),
		resources:    new(MockResourceReader),
		checker:      new(MockChecker),
		rater:        new(MockRater),
		notifs:       new(MockSender),
	}
	f.svc = NewService(
		f.reservations, f.resources, f.checker,
		pricing.NewCalculator(), f.rater, f.notifs,
		lock.NewKeyed(),
	)
	return f
}

func future(h int) time.Time {
	return time.Now().Add(time.Duration(h) * time.Hour).Truncate(time.Second)
}

func TestCreate_Success(t *testing.T) {
	f := newFixture()

	res := &domain.Resource{ID: 1, OwnerID: 10, PricePerDay: decimal.NewFromInt(100)}
	f.resources.On("GetByID", mock.Anything, int64(1)).Return(res, nil)
	f.checker.On("IsAvailable", mock.Anything, int64(1), mock.Anything, mock.Anything, (*int64)(nil)).Return(true, nil)
	f.reservations.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifs.On("ReservationCreated", mock.Anything, int64(10), mock.Anything).Return()

	r, err := f.svc.Create(context.Background(), CreateReservationRequest{
		ResourceID:  1,
		RenterID:    5,
		StartTime:   future(24),
		EndTime:     future(96),
		ServiceType: "daily",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(999), r.ID)
	assert.Equal(t, domain.ReservationConfirmed, r.Status)
	assert.True(t, r.TotalPrice.Equal(decimal.NewFromInt(300)), "3 days at 100, got %s", r.TotalPrice)
	f.notifs.AssertExpectations(t)
}

func TestCreate_RejectsInvalidWindow(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), CreateReservationRequest{
		ResourceID: 1, RenterID: 5,
		StartTime: future(48), EndTime: future(48),
		ServiceType: "daily",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Create(context.Background(), CreateReservationRequest{
		ResourceID: 1, RenterID: 5,
		StartTime: time.Now().Add(-time.Hour), EndTime: future(24),
		ServiceType: "daily",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreate_RejectsUnknownServiceType(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), CreateReservationRequest{
		ResourceID: 1, RenterID: 5,
		StartTime: future(24), EndTime: future(48),
		ServiceType: "barter",
	})
	assert.ErrorIs(t, err, ErrValidation)
	f.checker.AssertNotCalled(t, "IsAvailable", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_ResourceMissing(t *testing.T) {
	f := newFixture()

	f.resources.On("GetByID", mock.Anything, int64(1)).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.Create(context.Background(), CreateReservationRequest{
		ResourceID: 1, RenterID: 5,
		StartTime: future(24), EndTime: future(48),
		ServiceType: "daily",
	})
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestCreate_Conflict(t *testing.T) {
	f := newFixture()

	f.resources.On("GetByID", mock.Anything, int64(1)).Return(&domain.Resource{ID: 1}, nil)
	f.checker.On("IsAvailable", mock.Anything, int64(1), mock.Anything, mock.Anything, (*int64)(nil)).Return(false, nil)

	_, err := f.svc.Create(context.Background(), CreateReservationRequest{
		ResourceID: 1, RenterID: 5,
		StartTime: future(24), EndTime: future(48),
		ServiceType: "daily",
	})
	assert.ErrorIs(t, err, ErrConflict)
	f.reservations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLifecycle_HappyPath(t *testing.T) {
	f := newFixture()

	r := &domain.Reservation{ID: 1, ResourceID: 3, Status: domain.ReservationConfirmed}
	f.reservations.On("GetByID", mock.Anything, int64(1)).Return(r, nil)
	f.reservations.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.rater.On("Apply", mock.Anything, int64(3), 4).Return(4.0, 1, nil)
	f.resources.On("GetByID", mock.Anything, int64(3)).Return(&domain.Resource{ID: 3, OwnerID: 9}, nil)
	f.notifs.On("ReviewPosted", mock.Anything, int64(9), mock.Anything, 4).Return()

	checkedIn, err := f.svc.CheckIn(context.Background(), 1, []string{"before.jpg"})
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationInProgress, checkedIn.Status)
	require.NotNil(t, checkedIn.CheckIn)
	assert.Equal(t, []string{"before.jpg"}, checkedIn.CheckIn.PhotoURLs)

	checkedOut, err := f.svc.CheckOut(context.Background(), 1, []string{"after.jpg"})
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCompleted, checkedOut.Status)
	require.NotNil(t, checkedOut.CheckOut)

	reviewed, err := f.svc.AddReview(context.Background(), 1, 4, "solid machine")
	require.NoError(t, err)
	require.NotNil(t, reviewed.Review)
	assert.Equal(t, 4, reviewed.Review.Rating)
	f.rater.AssertExpectations(t)
}

func TestCheckIn_RequiresConfirmed(t *testing.T) {
	for _, status := range []domain.ReservationStatus{
		domain.ReservationPending,
		domain.ReservationInProgress,
		domain.ReservationCompleted,
		domain.ReservationCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			f.reservations.On("GetByID", mock.Anything, int64(1)).
				Return(&domain.Reservation{ID: 1, Status: status}, nil)

			_, err := f.svc.CheckIn(context.Background(), 1, nil)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			f.reservations.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckOut_RequiresInProgress(t *testing.T) {
	f := newFixture()
	f.reservations.On("GetByID", mock.Anything, int64(1)).
		Return(&domain.Reservation{ID: 1, Status: domain.ReservationConfirmed}, nil)

	_, err := f.svc.CheckOut(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	f.reservations.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCancel_Matrix(t *testing.T) {
	tests := []struct {
		status domain.ReservationStatus
		ok     bool
	}{
		{domain.ReservationPending, true},
		{domain.ReservationConfirmed, true},
		{domain.ReservationInProgress, false},
		{domain.ReservationCompleted, false},
		{domain.ReservationCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			f := newFixture()
			f.reservations.On("GetByID", mock.Anything, int64(1)).
				Return(&domain.Reservation{ID: 1, RenterID: 5, Status: tt.status}, nil)
			if tt.ok {
				f.reservations.On("Update", mock.Anything, mock.Anything).Return(nil)
				f.notifs.On("ReservationCancelled", mock.Anything, int64(5), mock.Anything, "weather").Return()
			}

			r, err := f.svc.Cancel(context.Background(), 1, "weather")
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, domain.ReservationCancelled, r.Status)
				assert.NotNil(t, r.CancelledAt)
				assert.Equal(t, "weather", r.CancellationReason)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestAddReview_ValidatesRating(t *testing.T) {
	f := newFixture()

	for _, v := range []int{0, 6, -3} {
		_, err := f.svc.AddReview(context.Background(), 1, v, "")
		assert.ErrorIs(t, err, ErrValidation)
	}
	f.reservations.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAddReview_OnlyOnce(t *testing.T) {
	f := newFixture()
	f.reservations.On("GetByID", mock.Anything, int64(1)).
		Return(&domain.Reservation{ID: 1, ResourceID: 3, Status: domain.ReservationCompleted,
			Review: &domain.Review{Rating: 5}}, nil)

	_, err := f.svc.AddReview(context.Background(), 1, 4, "")
	assert.ErrorIs(t, err, ErrReviewExists)
	f.rater.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
}

// Reviews attach regardless of status; completion is deliberately not
// required, renters may leave early feedback.
func TestAddReview_AllowedBeforeCompletion(t *testing.T) {
	f := newFixture()
	f.reservations.On("GetByID", mock.Anything, int64(1)).
		Return(&domain.Reservation{ID: 1, ResourceID: 3, Status: domain.ReservationConfirmed}, nil)
	f.reservations.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.rater.On("Apply", mock.Anything, int64(3), 5).Return(5.0, 1, nil)
	f.resources.On("GetByID", mock.Anything, int64(3)).Return(&domain.Resource{ID: 3, OwnerID: 9}, nil)
	f.notifs.On("ReviewPosted", mock.Anything, int64(9), mock.Anything, 5).Return()

	r, err := f.svc.AddReview(context.Background(), 1, 5, "early feedback")
	require.NoError(t, err)
	assert.NotNil(t, r.Review)
}

// memRepo backs the race test: a checker over the same data as the
// store, so the window between check and insert is real.
type memRepo struct {
	mu   sync.Mutex
	rows []domain.Reservation
	next int64
}

func (m *memRepo) Create(ctx context.Context, r *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	r.ID = m.next
	m.rows = append(m.rows, *r)
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memRepo) Update(ctx context.Context, r *domain.Reservation) error { return nil }

func (m *memRepo) ListByRenter(ctx context.Context, renterID int64, from, to *time.Time) ([]domain.Reservation, error) {
	return nil, nil
}

func (m *memRepo) ListByResource(ctx context.Context, resourceID int64, from, to *time.Time) ([]domain.Reservation, error) {
	return nil, nil
}

func (m *memRepo) CountOverlapping(ctx context.Context, resourceID int64, start, end time.Time, excludeID *int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cnt int64
	for _, r := range m.rows {
		if r.ResourceID != resourceID || !r.Status.Blocks() {
			continue
		}
		if excludeID != nil && r.ID == *excludeID {
			continue
		}
		if !r.StartTime.After(end) && !r.EndTime.Before(start) {
			cnt++
		}
	}
	return cnt, nil
}

func (m *memRepo) BlockingWindows(ctx context.Context, resourceID int64) ([]domain.Reservation, error) {
	return nil, nil
}

type noBlackouts struct{}

func (noBlackouts) Blackouts(ctx context.Context, resourceID int64) ([]domain.BlackoutRange, error) {
	return nil, nil
}

type memResources struct{}

func (memResources) GetByID(ctx context.Context, id int64) (*domain.Resource, error) {
	return &domain.Resource{ID: id, PricePerDay: decimal.NewFromInt(100)}, nil
}

func TestCreate_ConcurrentSameWindowExactlyOneWins(t *testing.T) {
	repo := &memRepo{}
	locks := lock.NewKeyed()
	checker := availability.NewService(repo, noBlackouts{})
	svc := NewService(repo, memResources{}, checker, pricing.NewCalculator(),
		rating.NewService(nil, locks), nil, locks)

	start := future(24)
	end := future(72)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), CreateReservationRequest{
				ResourceID:  1,
				RenterID:    int64(i + 1),
				StartTime:   start,
				EndTime:     end,
				ServiceType: "daily",
			})
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case err == ErrConflict:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, conflicts)
	assert.Len(t, repo.rows, 1)
}

// Boundary-touching windows conflict: a reservation ending exactly
// when another starts is rejected.
func TestCreate_BoundaryTouchConflicts(t *testing.T) {
	repo := &memRepo{}
	locks := lock.NewKeyed()
	checker := availability.NewService(repo, noBlackouts{})
	svc := NewService(repo, memResources{}, checker, pricing.NewCalculator(),
		rating.NewService(nil, locks), nil, locks)

	ctx := context.Background()
	first, err := svc.Create(ctx, CreateReservationRequest{
		ResourceID: 1, RenterID: 1,
		StartTime: future(24), EndTime: future(48),
		ServiceType: "daily",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateReservationRequest{
		ResourceID: 1, RenterID: 2,
		StartTime: first.EndTime, EndTime: future(96),
		ServiceType: "daily",
	})
	assert.ErrorIs(t, err, ErrConflict)

	// A different resource is unaffected.
	_, err = svc.Create(ctx, CreateReservationRequest{
		ResourceID: 2, RenterID: 2,
		StartTime: first.EndTime, EndTime: future(96),
		ServiceType: "daily",
	})
	assert.NoError(t, err)
}
