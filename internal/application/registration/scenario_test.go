package registration_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-user-registration/internal/application/registration"
	"github.com/go-user-registration/internal/domain"
	"github.com/go-user-registration/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSender records every message and answers with a fixed result.
type stubSender struct {
	ok   bool
	sent []domain.RegistrationEmail
}

func (s *stubSender) SendRegistrationEmail(_ context.Context, msg domain.RegistrationEmail) (bool, error) {
	s.sent = append(s.sent, msg)
	return s.ok, nil
}

func users(t *testing.T, store *memory.UserStore) []string {
	t.Helper()
	u, err := store.Users(context.Background())
	require.NoError(t, err)
	return u
}

func TestScenario_RegisterAndDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	sender := &stubSender{ok: true}
	svc := registration.NewService(store, sender)

	require.NoError(t, svc.Register(ctx, "u1@x.com"))
	assert.Equal(t, []string{"u1@x.com"}, users(t, store))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "u1@x.com", sender.sent[0].DestinationEmailAddress)

	err := svc.Register(ctx, "u1@x.com")
	assert.True(t, errors.Is(err, domain.ErrUserAlreadyRegistered))
	assert.Equal(t, []string{"u1@x.com"}, users(t, store))
	assert.Len(t, sender.sent, 1)

	require.NoError(t, svc.DeleteUser(ctx, "u1@x.com"))
	assert.Empty(t, users(t, store))

	err = svc.DeleteUser(ctx, "u1@x.com")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}

func TestScenario_FailedDeliveryDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	svc := registration.NewService(store, &stubSender{ok: false})

	err := svc.Register(ctx, "u1@x.com")

	assert.True(t, errors.Is(err, domain.ErrEmailDeliveryFailed))
	n, err := store.NumberOfUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScenario_DeleteUsers(t *testing.T) {
	tests := []struct {
		name      string
		batch     []string
		wantErr   error
		wantUsers []string
	}{
		{
			name:      "all present",
			batch:     []string{"a", "b", "c"},
			wantUsers: []string{"d"},
		},
		{
			name:      "missing entry stops the batch",
			batch:     []string{"a", "missing", "c"},
			wantErr:   domain.ErrUserNotFound,
			wantUsers: []string{"b", "c", "d"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.NewUserStore()
			svc := registration.NewService(store, &stubSender{ok: true})
			for _, e := range []string{"a", "b", "c", "d"} {
				require.NoError(t, svc.Register(ctx, e))
			}

			err := svc.DeleteUsers(ctx, tt.batch)

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantUsers, users(t, store))
		})
	}
}
