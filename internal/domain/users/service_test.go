package users

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/garimpo/backend/pkg/auth"
)

// MockRepository is a mock implementation of Repository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func testSigner(t *testing.T) *auth.Signer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubBytes,
	})

	signer, err := auth.NewSigner(privPEM, pubPEM, "test")
	require.NoError(t, err)
	return signer
}

func TestService_Register(t *testing.T) {
	validCmd := func() RegisterCommand {
		return RegisterCommand{
			Username: "maria",
			Email:    "maria@test.local",
			Password: "correct-horse",
			FullName: "Maria Silva",
		}
	}

	tests := []struct {
		name      string
		mutate    func(*RegisterCommand)
		setupMock func(*MockRepository)
		wantErr   error
	}{
		{
			name:   "successfully registers",
			mutate: func(cmd *RegisterCommand) {},
			setupMock: func(repo *MockRepository) {
				repo.On("GetUserByUsername", mock.Anything, "maria").Return(nil, nil)
				repo.On("GetUserByEmail", mock.Anything, "maria@test.local").Return(nil, nil)
				repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*users.User")).Return(nil)
			},
		},
		{
			name:      "fails without username",
			mutate:    func(cmd *RegisterCommand) { cmd.Username = "" },
			setupMock: func(repo *MockRepository) {},
			wantErr:   ErrInvalidInput,
		},
		{
			name:      "fails with short password",
			mutate:    func(cmd *RegisterCommand) { cmd.Password = "short" },
			setupMock: func(repo *MockRepository) {},
			wantErr:   ErrInvalidInput,
		},
		{
			name:      "fails with malformed email",
			mutate:    func(cmd *RegisterCommand) { cmd.Email = "not-an-email" },
			setupMock: func(repo *MockRepository) {},
			wantErr:   ErrInvalidInput,
		},
		{
			name:   "fails when username taken",
			mutate: func(cmd *RegisterCommand) {},
			setupMock: func(repo *MockRepository) {
				repo.On("GetUserByUsername", mock.Anything, "maria").Return(&User{ID: uuid.New()}, nil)
			},
			wantErr: ErrUserAlreadyExists,
		},
		{
			name:   "fails when email taken",
			mutate: func(cmd *RegisterCommand) {},
			setupMock: func(repo *MockRepository) {
				repo.On("GetUserByUsername", mock.Anything, "maria").Return(nil, nil)
				repo.On("GetUserByEmail", mock.Anything, "maria@test.local").Return(&User{ID: uuid.New()}, nil)
			},
			wantErr: ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)

			service := NewService(repo, testSigner(t))
			cmd := validCmd()
			tt.mutate(&cmd)

			user, err := service.Register(context.Background(), cmd)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, user.ID)
				// Stored hash must verify against the original password.
				ok, verifyErr := auth.VerifyPassword(user.PasswordHash, cmd.Password)
				assert.NoError(t, verifyErr)
				assert.True(t, ok)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)

	account := &User{
		ID:           uuid.New(),
		Username:     "maria",
		Email:        "maria@test.local",
		PasswordHash: hash,
	}

	t.Run("issues token on valid credentials", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByUsername", mock.Anything, "maria").Return(account, nil)

		signer := testSigner(t)
		service := NewService(repo, signer)

		user, token, expiry, err := service.Login(context.Background(), "maria", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, account.ID, user.ID)
		assert.False(t, expiry.IsZero())

		claims, err := signer.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "maria", claims.Username)

		subject, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, account.ID, subject)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByUsername", mock.Anything, "maria").Return(account, nil)

		service := NewService(repo, testSigner(t))
		_, _, _, err := service.Login(context.Background(), "maria", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects unknown username", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, nil)

		service := NewService(repo, testSigner(t))
		_, _, _, err := service.Login(context.Background(), "ghost", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_GetProfile(t *testing.T) {
	t.Run("returns account", func(t *testing.T) {
		account := &User{ID: uuid.New(), Username: "maria"}
		repo := new(MockRepository)
		repo.On("GetUserByID", mock.Anything, account.ID).Return(account, nil)

		service := NewService(repo, testSigner(t))
		user, err := service.GetProfile(context.Background(), account.ID)
		require.NoError(t, err)
		assert.Equal(t, "maria", user.Username)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New()
		repo := new(MockRepository)
		repo.On("GetUserByID", mock.Anything, id).Return(nil, nil)

		service := NewService(repo, testSigner(t))
		_, err := service.GetProfile(context.Background(), id)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
