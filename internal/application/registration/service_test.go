package registration

import (
	"context"
	"errors"
	"testing"

	"github.com/go-user-registration/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) AddUser(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockUserStore) HasUser(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
func (m *mockUserStore) DeleteUser(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockUserStore) Users(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]string)
	return users, args.Error(1)
}
func (m *mockUserStore) NumberOfUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *mockUserStore) IsReadWriteSupported() bool {
	return m.Called().Bool(0)
}
func (m *mockUserStore) DatabaseName() string {
	return m.Called().String(0)
}
func (m *mockUserStore) DropDatabase(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockEmailSender struct{ mock.Mock }

func (m *mockEmailSender) SendRegistrationEmail(ctx context.Context, msg domain.RegistrationEmail) (bool, error) {
	args := m.Called(ctx, msg)
	return args.Bool(0), args.Error(1)
}

// --- helpers ---

const testEmail = "foo@example.com"

func addressedTo(email string) interface{} {
	return mock.MatchedBy(func(msg domain.RegistrationEmail) bool {
		return msg.DestinationEmailAddress == email && msg.MessageID != ""
	})
}

// --- Register tests ---

func TestRegister_AddsNewUser(t *testing.T) {
	us := &mockUserStore{}
	es := &mockEmailSender{}
	us.On("HasUser", mock.Anything, testEmail).Return(false, nil)
	es.On("SendRegistrationEmail", mock.Anything, addressedTo(testEmail)).Return(true, nil)
	us.On("AddUser", mock.Anything, testEmail).Return(nil)

	err := NewService(us, es).Register(context.Background(), testEmail)

	require.NoError(t, err)
	us.AssertExpectations(t)
	es.AssertExpectations(t)
	us.AssertNumberOfCalls(t, "AddUser", 1)
}

func TestRegister_AlreadyRegistered(t *testing.T) {
	us := &mockUserStore{}
	es := &mockEmailSender{}
	us.On("HasUser", mock.Anything, testEmail).Return(true, nil)

	err := NewService(us, es).Register(context.Background(), testEmail)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUserAlreadyRegistered))
	es.AssertNotCalled(t, "SendRegistrationEmail", mock.Anything, mock.Anything)
	us.AssertNotCalled(t, "AddUser", mock.Anything, mock.Anything)
}

func TestRegister_EmailDeliveryFailed(t *testing.T) {
	us := &mockUserStore{}
	es := &mockEmailSender{}
	us.On("HasUser", mock.Anything, testEmail).Return(false, nil)
	es.On("SendRegistrationEmail", mock.Anything, addressedTo(testEmail)).Return(false, nil)

	err := NewService(us, es).Register(context.Background(), testEmail)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmailDeliveryFailed))
	us.AssertNotCalled(t, "AddUser", mock.Anything, mock.Anything)
}

func TestRegister_SenderErrorPropagates(t *testing.T) {
	us := &mockUserStore{}
	es := &mockEmailSender{}
	sendErr := errors.New("connection refused")
	us.On("HasUser", mock.Anything, testEmail).Return(false, nil)
	es.On("SendRegistrationEmail", mock.Anything, mock.Anything).Return(false, sendErr)

	err := NewService(us, es).Register(context.Background(), testEmail)

	assert.Equal(t, sendErr, err)
	us.AssertNotCalled(t, "AddUser", mock.Anything, mock.Anything)
}

func TestRegister_StoreLookupErrorPropagates(t *testing.T) {
	us := &mockUserStore{}
	es := &mockEmailSender{}
	storeErr := errors.New("redis: connection pool timeout")
	us.On("HasUser", mock.Anything, testEmail).Return(false, storeErr)

	err := NewService(us, es).Register(context.Background(), testEmail)

	assert.Equal(t, storeErr, err)
	es.AssertNotCalled(t, "SendRegistrationEmail", mock.Anything, mock.Anything)
}

// --- DeleteUser tests ---

func TestDeleteUser_NotFound(t *testing.T) {
	us := &mockUserStore{}
	us.On("DeleteUser", mock.Anything, testEmail).Return(domain.ErrUserNotFound)

	err := NewService(us, &mockEmailSender{}).DeleteUser(context.Background(), testEmail)

	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}

func TestDeleteUser_Delegates(t *testing.T) {
	us := &mockUserStore{}
	us.On("DeleteUser", mock.Anything, testEmail).Return(nil)

	err := NewService(us, &mockEmailSender{}).DeleteUser(context.Background(), testEmail)

	require.NoError(t, err)
	us.AssertExpectations(t)
}

// --- DeleteUsers tests ---

func TestDeleteUsers_Empty_NeverDropsDatabase(t *testing.T) {
	us := &mockUserStore{}

	err := NewService(us, &mockEmailSender{}).DeleteUsers(context.Background(), nil)

	require.NoError(t, err)
	us.AssertNotCalled(t, "DropDatabase", mock.Anything)
	us.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestDeleteUsers_DeletesEach(t *testing.T) {
	us := &mockUserStore{}
	us.On("DeleteUser", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	err := NewService(us, &mockEmailSender{}).DeleteUsers(context.Background(), []string{"foo", "bar"})

	require.NoError(t, err)
	us.AssertNumberOfCalls(t, "DeleteUser", 2)
	us.AssertCalled(t, "DeleteUser", mock.Anything, "foo")
	us.AssertCalled(t, "DeleteUser", mock.Anything, "bar")
	us.AssertNotCalled(t, "DropDatabase", mock.Anything)
}

func TestDeleteUsers_StopsAtFirstFailure(t *testing.T) {
	us := &mockUserStore{}
	us.On("DeleteUser", mock.Anything, "a").Return(nil)
	us.On("DeleteUser", mock.Anything, "missing").Return(domain.ErrUserNotFound)

	err := NewService(us, &mockEmailSender{}).DeleteUsers(context.Background(), []string{"a", "missing", "c"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
	assert.Contains(t, err.Error(), "missing")
	us.AssertNumberOfCalls(t, "DeleteUser", 2)
	us.AssertNotCalled(t, "DeleteUser", mock.Anything, "c")
}

// --- read-through tests ---

func TestUsers_ReadsThroughStore(t *testing.T) {
	us := &mockUserStore{}
	us.On("Users", mock.Anything).Return([]string{"a", "b"}, nil)
	us.On("NumberOfUsers", mock.Anything).Return(2, nil)
	us.On("DatabaseName").Return("SimpleDatabase")

	svc := NewService(us, &mockEmailSender{})
	users, err := svc.Users(context.Background())
	require.NoError(t, err)
	n, err := svc.NumberOfUsers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, users)
	assert.Equal(t, 2, n)
	assert.Equal(t, "SimpleDatabase", svc.DatabaseName())
}
