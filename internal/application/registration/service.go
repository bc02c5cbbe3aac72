package registration

import (
	"context"
	"fmt"

	"github.com/go-user-registration/internal/domain"
)

// UserStore holds the identities (email addresses) of registered users.
// AddUser never rejects duplicates; uniqueness is enforced by Service.
type UserStore interface {
	AddUser(ctx context.Context, email string) error
	HasUser(ctx context.Context, email string) (bool, error)
	// DeleteUser removes one entry equal to email, or returns domain.ErrUserNotFound.
	DeleteUser(ctx context.Context, email string) error
	// Users returns a copy of the entries in insertion order.
	Users(ctx context.Context) ([]string, error)
	NumberOfUsers(ctx context.Context) (int, error)
	IsReadWriteSupported() bool
	DatabaseName() string
	// DropDatabase removes every entry.
	DropDatabase(ctx context.Context) error
}

// EmailSender delivers registration confirmations. A false result is an
// ordinary delivery failure; an error is anything else and is not handled by Service.
type EmailSender interface {
	SendRegistrationEmail(ctx context.Context, msg domain.RegistrationEmail) (bool, error)
}

type Service interface {
	Register(ctx context.Context, email string) error
	DeleteUser(ctx context.Context, email string) error
	DeleteUsers(ctx context.Context, emails []string) error
	Users(ctx context.Context) ([]string, error)
	NumberOfUsers(ctx context.Context) (int, error)
	DatabaseName() string
}

type service struct {
	store  UserStore
	sender EmailSender
}

func NewService(store UserStore, sender EmailSender) Service {
	return &service{store: store, sender: sender}
}

// Register checks for an existing user, sends the confirmation and only then
// persists the user. The store never holds a user who was not notified.
func (s *service) Register(ctx context.Context, email string) error {
	exists, err := s.store.HasUser(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("register %s: %w", email, domain.ErrUserAlreadyRegistered)
	}
	sent, err := s.sender.SendRegistrationEmail(ctx, domain.NewRegistrationEmail(email))
	if err != nil {
		return err
	}
	if !sent {
		return fmt.Errorf("register %s: %w", email, domain.ErrEmailDeliveryFailed)
	}
	return s.store.AddUser(ctx, email)
}

func (s *service) DeleteUser(ctx context.Context, email string) error {
	return s.store.DeleteUser(ctx, email)
}

// DeleteUsers deletes in order and stops at the first failure.
// Deletions that already happened are kept.
func (s *service) DeleteUsers(ctx context.Context, emails []string) error {
	for _, email := range emails {
		if err := s.store.DeleteUser(ctx, email); err != nil {
			return fmt.Errorf("delete users: %s: %w", email, err)
		}
	}
	return nil
}

func (s *service) Users(ctx context.Context) ([]string, error) {
	return s.store.Users(ctx)
}

func (s *service) NumberOfUsers(ctx context.Context) (int, error) {
	return s.store.NumberOfUsers(ctx)
}

func (s *service) DatabaseName() string {
	return s.store.DatabaseName()
}
