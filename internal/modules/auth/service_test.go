package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"foodgram/internal/domain"
)

// Mock User Repository implementing the interface
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *mockUserRepo) SubscribedSet(ctx context.Context, userID int64, authorIDs []int64) (map[int64]bool, error) {
	args := m.Called(ctx, userID, authorIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]bool), args.Error(1)
}

// Mock JWT service
type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) GenerateToken(userID int64) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func TestService_Register_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	userRepo.On("ExistsByEmail", mock.Anything, "test@example.com").Return(false, nil)
	userRepo.On("ExistsByUsername", mock.Anything, "testuser").Return(false, nil)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	service := NewService(userRepo, jwtSvc)

	user, err := service.Register(context.Background(), RegisterRequest{
		Username:  "testuser",
		Email:     "Test@Example.com",
		FirstName: "Тест",
		LastName:  "Тестов",
		Password:  "securepass123",
	})

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "testuser", user.Username)
	// email нормализуется в нижний регистр
	assert.Equal(t, "test@example.com", user.Email)
	assert.NotEqual(t, "securepass123", user.PasswordHash)

	userRepo.AssertExpectations(t)
}

func TestService_Register_EmailExists(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	userRepo.On("ExistsByEmail", mock.Anything, "exists@example.com").Return(true, nil)

	service := NewService(userRepo, jwtSvc)

	_, err := service.Register(context.Background(), RegisterRequest{
		Username: "newuser",
		Email:    "exists@example.com",
		Password: "securepass123",
	})

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestService_Register_UsernameExists(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	userRepo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	userRepo.On("ExistsByUsername", mock.Anything, "taken").Return(true, nil)

	service := NewService(userRepo, jwtSvc)

	_, err := service.Register(context.Background(), RegisterRequest{
		Username: "taken",
		Email:    "new@example.com",
		Password: "securepass123",
	})

	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
}

func TestService_Register_InvalidUsername(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	service := NewService(userRepo, jwtSvc)

	for _, bad := range []string{"has space", "знак!", "%percent%"} {
		_, err := service.Register(context.Background(), RegisterRequest{
			Username: bad,
			Email:    "u@example.com",
			Password: "securepass123",
		})
		assert.ErrorIs(t, err, ErrInvalidUsername, "username %q", bad)
	}

	// Репозиторий не должен вызываться вовсе.
	userRepo.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
}

func TestService_Login_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	existingUser := &domain.User{
		ID:           10,
		Username:     "cook",
		Email:        "user@example.com",
		PasswordHash: string(hashed),
	}

	userRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(existingUser, nil)
	jwtSvc.On("GenerateToken", int64(10)).Return("login-token", nil)

	service := NewService(userRepo, jwtSvc)

	user, token, err := service.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(10), user.ID)
	assert.Equal(t, "login-token", token)
}

func TestService_Login_WrongPassword(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	userRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(&domain.User{
		ID:           10,
		Email:        "user@example.com",
		PasswordHash: string(hashed),
	}, nil)

	service := NewService(userRepo, jwtSvc)

	_, _, err := service.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "wrong-password",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	userRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	service := NewService(userRepo, jwtSvc)

	_, _, err := service.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	// Не выдаём, существует ли такой email.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_SetPassword(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("oldpass123"), bcrypt.DefaultCost)
	userRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{
		ID:           7,
		PasswordHash: string(hashed),
	}, nil)
	userRepo.On("UpdatePassword", mock.Anything, int64(7), mock.Anything).Return(nil)

	service := NewService(userRepo, jwtSvc)

	err := service.SetPassword(context.Background(), 7, SetPasswordRequest{
		CurrentPassword: "oldpass123",
		NewPassword:     "newpass456",
	})

	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestService_SetPassword_WrongCurrent(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("oldpass123"), bcrypt.DefaultCost)
	userRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{
		ID:           7,
		PasswordHash: string(hashed),
	}, nil)

	service := NewService(userRepo, jwtSvc)

	err := service.SetPassword(context.Background(), 7, SetPasswordRequest{
		CurrentPassword: "not-the-password",
		NewPassword:     "newpass456",
	})

	assert.ErrorIs(t, err, ErrWrongPassword)
	userRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_SetPassword_SameAsOld(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("oldpass123"), bcrypt.DefaultCost)
	userRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{
		ID:           7,
		PasswordHash: string(hashed),
	}, nil)

	service := NewService(userRepo, jwtSvc)

	err := service.SetPassword(context.Background(), 7, SetPasswordRequest{
		CurrentPassword: "oldpass123",
		NewPassword:     "oldpass123",
	})

	assert.ErrorIs(t, err, ErrSamePassword)
}

func TestService_ListUsers_AnonymousNeverSubscribed(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	users := []domain.User{
		{ID: 1, Username: "a", Email: "a@example.com"},
		{ID: 2, Username: "b", Email: "b@example.com"},
	}
	userRepo.On("List", mock.Anything, 6, 0).Return(users, int64(2), nil)
	userRepo.On("SubscribedSet", mock.Anything, int64(0), []int64{1, 2}).
		Return(map[int64]bool{}, nil)

	service := NewService(userRepo, jwtSvc)

	out, total, err := service.ListUsers(context.Background(), 0, 6, 0)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, u := range out {
		assert.False(t, u.IsSubscribed)
	}
}

func TestService_GetUser_Subscribed(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	userRepo.On("GetByID", mock.Anything, int64(2)).Return(&domain.User{
		ID: 2, Username: "author", Email: "author@example.com",
	}, nil)
	userRepo.On("SubscribedSet", mock.Anything, int64(1), []int64{2}).
		Return(map[int64]bool{2: true}, nil)

	service := NewService(userRepo, jwtSvc)

	resp, err := service.GetUser(context.Background(), 1, 2)

	assert.NoError(t, err)
	assert.True(t, resp.IsSubscribed)
}
