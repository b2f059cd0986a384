package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/workabroad/application-portal/internal/lib/jwt"
	"github.com/workabroad/application-portal/internal/lib/password"
	"github.com/workabroad/application-portal/internal/models"
	"github.com/workabroad/application-portal/internal/storage/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockWelcomeSender struct {
	mock.Mock
}

func (m *MockWelcomeSender) SendWelcome(email, fullName string) error {
	return m.Called(email, fullName).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newMaker() jwt.Maker {
	return jwt.NewJWTMaker("test-secret", time.Hour)
}

func TestRegister(t *testing.T) {
	req := models.DummyRegister{
		FullName: "Alice Doe",
		Email:    "alice@e.x",
		Password: "secret-password",
	}

	t.Run("registers with hashed password and user role", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Email == "alice@e.x" &&
				u.Role == models.RoleUser &&
				u.PasswordHash != "secret-password" &&
				password.CompareHash(u.PasswordHash, "secret-password") == nil
		})).Return("uid-1", nil).Once()
		sender := new(MockWelcomeSender)
		sender.On("SendWelcome", "alice@e.x", "Alice Doe").Return(nil).Once()

		s := NewAuthService(users, newMaker(), sender, newNoopLogger())
		uid, err := s.Register(context.Background(), req)
		assert.NoError(t, err)
		assert.Equal(t, "uid-1", uid)
		users.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	t.Run("taken email", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("RegisterUser", mock.Anything, mock.Anything).
			Return("", fmt.Errorf("storage.RegisterUser: %w", repository.ErrConflict)).Once()
		sender := new(MockWelcomeSender)

		s := NewAuthService(users, newMaker(), sender, newNoopLogger())
		_, err := s.Register(context.Background(), req)
		assert.ErrorIs(t, err, ErrEmailTaken)
		sender.AssertNotCalled(t, "SendWelcome", mock.Anything, mock.Anything)
	})

	t.Run("welcome email failure does not fail registration", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("RegisterUser", mock.Anything, mock.Anything).Return("uid-1", nil).Once()
		sender := new(MockWelcomeSender)
		sender.On("SendWelcome", "alice@e.x", "Alice Doe").Return(errors.New("smtp down")).Once()

		s := NewAuthService(users, newMaker(), sender, newNoopLogger())
		uid, err := s.Register(context.Background(), req)
		assert.NoError(t, err)
		assert.Equal(t, "uid-1", uid)
	})
}

func TestLogin(t *testing.T) {
	hash, err := password.GetHash("secret-password")
	assert.NoError(t, err)
	user := &models.User{
		UID:          "uid-1",
		Email:        "alice@e.x",
		PasswordHash: hash,
		Role:         models.RoleUser,
	}

	t.Run("valid credentials return a parseable token", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByEmail", mock.Anything, "alice@e.x").Return(user, nil).Once()

		s := NewAuthService(users, newMaker(), new(MockWelcomeSender), newNoopLogger())
		token, role, err := s.Login(context.Background(), models.DummyLogin{
			Email:    "alice@e.x",
			Password: "secret-password",
		})
		assert.NoError(t, err)
		assert.Equal(t, models.RoleUser, role)

		parsed, err := s.ValidateToken(context.Background(), token)
		assert.NoError(t, err)
		assert.Equal(t, "uid-1", parsed.UID)
		assert.Equal(t, "alice@e.x", parsed.Email)
		assert.Equal(t, models.RoleUser, parsed.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByEmail", mock.Anything, "alice@e.x").Return(user, nil).Once()

		s := NewAuthService(users, newMaker(), new(MockWelcomeSender), newNoopLogger())
		_, _, err := s.Login(context.Background(), models.DummyLogin{
			Email:    "alice@e.x",
			Password: "wrong-password",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email is indistinguishable from a wrong password", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByEmail", mock.Anything, "nobody@e.x").
			Return(nil, fmt.Errorf("storage.GetUserByEmail: %w", repository.ErrNotFound)).Once()

		s := NewAuthService(users, newMaker(), new(MockWelcomeSender), newNoopLogger())
		_, _, err := s.Login(context.Background(), models.DummyLogin{
			Email:    "nobody@e.x",
			Password: "secret-password",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestValidateToken_Garbage(t *testing.T) {
	s := NewAuthService(new(MockUserRepository), newMaker(), new(MockWelcomeSender), newNoopLogger())
	_, err := s.ValidateToken(context.Background(), "not-a-token")
	assert.Error(t, err)
}
