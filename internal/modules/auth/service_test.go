package auth

import (
	"context"
	"testing"

	"courtbook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 42
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type fakeIssuer struct{}

func (fakeIssuer) GenerateToken(userID int64, role string) (string, error) {
	return "token", nil
}

func TestRegister_DefaultsToPlayer(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, gorm.ErrRecordNotFound)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(users, fakeIssuer{})
	res, err := svc.Register(context.Background(), RegisterRequest{
		Email: "A@b.com", Password: "secret-password", Name: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RolePlayer, res.User.Role)
	assert.Equal(t, "a@b.com", res.User.Email)
	assert.Equal(t, "token", res.Token)
}

func TestRegister_AdminRoleRejected(t *testing.T) {
	svc := NewService(new(MockUserRepository), fakeIssuer{})
	_, err := svc.Register(context.Background(), RegisterRequest{
		Email: "a@b.com", Password: "secret-password", Name: "Mallory", Role: "admin",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegister_EmailTaken(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{ID: 1}, nil)

	svc := NewService(users, fakeIssuer{})
	_, err := svc.Register(context.Background(), RegisterRequest{
		Email: "a@b.com", Password: "secret-password", Name: "Alice",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		ID: 1, Email: "a@b.com", PasswordHash: string(hash), Role: domain.RolePlayer,
	}, nil)

	svc := NewService(users, fakeIssuer{})

	res, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "secret-password"})
	require.NoError(t, err)
	assert.Equal(t, "token", res.Token)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
