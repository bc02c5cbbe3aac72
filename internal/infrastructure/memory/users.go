package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/go-user-registration/internal/domain"
)

// UserStore keeps registered email addresses in an in-process slice.
// Nothing survives a restart.
type UserStore struct {
	mu    sync.RWMutex
	users []string
}

func NewUserStore() *UserStore {
	return &UserStore{users: []string{}}
}

func (s *UserStore) AddUser(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, email)
	return nil
}

func (s *UserStore) HasUser(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.users, email), nil
}

func (s *UserStore) DeleteUser(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.users, email)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", email, domain.ErrUserNotFound)
	}
	s.users = slices.Delete(s.users, i, i+1)
	return nil
}

// Users returns a snapshot; callers may modify it freely.
func (s *UserStore) Users(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users), nil
}

func (s *UserStore) NumberOfUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *UserStore) IsReadWriteSupported() bool { return true }

func (s *UserStore) DatabaseName() string { return "SimpleDatabase" }

func (s *UserStore) DropDatabase(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = []string{}
	return nil
}
