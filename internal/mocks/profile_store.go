package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/store"
)

var _ store.ProfileStore = (*MockProfileStore)(nil)

// MockProfileStore implements store.ProfileStore in memory.
type MockProfileStore struct {
	// Function fields for customizable behavior
	CreateFn func(ctx context.Context, userID string, profile *domain.Profile) error
	GetFn    func(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateFn func(ctx context.Context, userID string, update domain.ProfileUpdate) error
	DeleteFn func(ctx context.Context, userID string) error

	// Now stamps CreatedAt on new records.
	Now func() time.Time

	mu       sync.Mutex
	profiles map[string]domain.Profile
}

// NewMockProfileStore creates an empty store.
func NewMockProfileStore() *MockProfileStore {
	return &MockProfileStore{
		Now:      time.Now,
		profiles: make(map[string]domain.Profile),
	}
}

// Create implements store.ProfileStore.
func (m *MockProfileStore) Create(ctx context.Context, userID string, profile *domain.Profile) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, userID, profile)
	}

	record := *profile
	if m.Now != nil {
		record.CreatedAt = m.Now()
	} else {
		record.CreatedAt = time.Now()
	}

	m.mu.Lock()
	m.profiles[userID] = record
	m.mu.Unlock()
	return nil
}

// Get implements store.ProfileStore.
func (m *MockProfileStore) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.profiles[userID]
	if !ok {
		return nil, store.ProfileError("get", domain.ErrProfileNotFound)
	}
	return &record, nil
}

// Update implements store.ProfileStore.
func (m *MockProfileStore) Update(ctx context.Context, userID string, update domain.ProfileUpdate) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, userID, update)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.profiles[userID]
	if !ok {
		return store.ProfileError("update", domain.ErrProfileNotFound)
	}
	m.profiles[userID] = update.Apply(record)
	return nil
}

// Delete implements store.ProfileStore.
func (m *MockProfileStore) Delete(ctx context.Context, userID string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID)
	}

	m.mu.Lock()
	delete(m.profiles, userID)
	m.mu.Unlock()
	return nil
}

// Put stores record as-is, bypassing CreatedAt assignment.
func (m *MockProfileStore) Put(userID string, record domain.Profile) {
	m.mu.Lock()
	m.profiles[userID] = record
	m.mu.Unlock()
}

// Len returns the number of stored records.
func (m *MockProfileStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.profiles)
}
