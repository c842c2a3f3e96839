package tests

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"campusride/internal/domain"
	"campusride/internal/redis"
	"campusride/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// txMu serializes Transact so concurrent callers observe the same
	// one-at-a-time semantics a row lock gives the real repository.
	txMu sync.Mutex

	// Counters for verification
	CreateCallCount        int32
	DeleteCallCount        int32
	DecrementSeatCallCount int32
	AddPassengerCallCount  int32

	// Error injection
	CreateError        error
	GetAllError        error
	DecrementSeatError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

// CountRides returns the number of stored rides.
func (m *MockRideRepository) CountRides() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rides)
}

func copyRide(ride *domain.Ride) *domain.Ride {
	c := *ride
	c.PendingRiders = append([]string(nil), ride.PendingRiders...)
	c.Riders = append([]string(nil), ride.Riders...)
	c.Passengers = append([]domain.Passenger(nil), ride.Passengers...)
	return &c
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = copyRide(ride)
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	return copyRide(ride), nil
}

func (m *MockRideRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error) {
	return m.GetByID(ctx, id)
}

func (m *MockRideRepository) GetAll(ctx context.Context, filter repository.RideFilter) ([]*domain.Ride, error) {
	if m.GetAllError != nil {
		return nil, m.GetAllError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.Ride
	for _, ride := range m.rides {
		if !filter.ActiveFrom.IsZero() {
			if ride.Date.Before(filter.ActiveFrom) || ride.AvailableSeats <= 0 {
				continue
			}
		}
		if filter.Source != "" && !strings.Contains(strings.ToLower(ride.Source), strings.ToLower(filter.Source)) {
			continue
		}
		if filter.Destination != "" && !strings.Contains(strings.ToLower(ride.Destination), strings.ToLower(filter.Destination)) {
			continue
		}
		result = append(result, copyRide(ride))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockRideRepository) GetByDriverID(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.Ride
	for _, ride := range m.rides {
		if ride.CreatedBy == driverID {
			result = append(result, copyRide(ride))
		}
	}
	return result, nil
}

func (m *MockRideRepository) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rides, id)
	return nil
}

func (m *MockRideRepository) AddPendingRider(ctx context.Context, rideID, riderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	ride.PendingRiders = append(ride.PendingRiders, riderID)
	return nil
}

func (m *MockRideRepository) RemovePendingRider(ctx context.Context, rideID, riderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := ride.PendingRiders[:0]
	for _, id := range ride.PendingRiders {
		if id != riderID {
			kept = append(kept, id)
		}
	}
	ride.PendingRiders = kept
	return nil
}

func (m *MockRideRepository) AddRider(ctx context.Context, rideID, riderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	ride.Riders = append(ride.Riders, riderID)
	return nil
}

func (m *MockRideRepository) DecrementSeat(ctx context.Context, rideID string) (bool, error) {
	atomic.AddInt32(&m.DecrementSeatCallCount, 1)
	if m.DecrementSeatError != nil {
		return false, m.DecrementSeatError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if ride.AvailableSeats <= 0 {
		return false, nil
	}
	ride.AvailableSeats--
	return true, nil
}

func (m *MockRideRepository) AddPassenger(ctx context.Context, rideID string, p domain.Passenger) error {
	atomic.AddInt32(&m.AddPassengerCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	ride.Passengers = append(ride.Passengers, p)
	return nil
}

func (m *MockRideRepository) UpdatePassengerStatus(ctx context.Context, rideID, riderID string, status domain.PassengerStatus, pickedUpAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	for i := range ride.Passengers {
		if ride.Passengers[i].RiderID == riderID {
			ride.Passengers[i].Status = status
			if !pickedUpAt.IsZero() {
				ride.Passengers[i].PickedUpAt = pickedUpAt
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MockRideRepository) Transact(ctx context.Context, fn func(repository.RideRepository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			copy := *u
			result[id] = &copy
		}
	}
	return result, nil
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.User
	for _, u := range m.users {
		copy := *u
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION REPOSITORY
// ──────────────────────────────────────────────

// MockNotificationRepository is a mock implementation of
// NotificationRepository that records everything sent through it.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*domain.Notification

	// Error injection
	CreateError error
}

// NewMockNotificationRepository creates a new mock notification repository.
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *n
	m.notifications = append(m.notifications, &copy)
	return nil
}

func (m *MockNotificationRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			copy := *n
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

// Sent returns all recorded notifications.
func (m *MockNotificationRepository) Sent() []*domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.Notification(nil), m.notifications...)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]bool),
	}
}

func (m *MockLockStore) AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[rideID] {
		return false, nil
	}
	m.locks[rideID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseRideLock(ctx context.Context, rideID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, rideID)
	return nil
}

// IsLocked reports whether a ride lock is currently held.
func (m *MockLockStore) IsLocked(rideID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locks[rideID]
}

// ──────────────────────────────────────────────
// MOCK STATS CACHE
// ──────────────────────────────────────────────

// MockStatsCache is a mock implementation of the driver stats cache.
type MockStatsCache struct {
	mu    sync.RWMutex
	stats map[string]*redis.CachedDriverStats

	// Counters for verification
	GetCallCount        int32
	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockStatsCache creates a new mock stats cache.
func NewMockStatsCache() *MockStatsCache {
	return &MockStatsCache{
		stats: make(map[string]*redis.CachedDriverStats),
	}
}

func (m *MockStatsCache) GetDriverStats(ctx context.Context, driverID string) (*redis.CachedDriverStats, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats, ok := m.stats[driverID]
	if !ok {
		return nil, nil // Cache miss
	}
	copy := *stats
	return &copy, nil
}

func (m *MockStatsCache) SetDriverStats(ctx context.Context, driverID string, stats *redis.CachedDriverStats) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *stats
	m.stats[driverID] = &copy
	return nil
}

func (m *MockStatsCache) InvalidateDriverStats(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stats, driverID)
	return nil
}

// Interface assertions.
var (
	_ repository.RideRepository         = (*MockRideRepository)(nil)
	_ repository.UserRepository         = (*MockUserRepository)(nil)
	_ repository.NotificationRepository = (*MockNotificationRepository)(nil)
	_ redis.LockStoreInterface          = (*MockLockStore)(nil)
	_ redis.StatsCacheInterface         = (*MockStatsCache)(nil)
)
