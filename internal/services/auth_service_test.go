package services_test

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"elpunto/internal/models"
	"elpunto/internal/repositories"
	"elpunto/internal/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.Logger = zerolog.New(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func notFound(what string) error {
	return fmt.Errorf("user %s: %w", what, repositories.ErrNotFound)
}

func validRegistration() services.RegistrationForm {
	return services.RegistrationForm{
		Username:  "testuser",
		Email:     "test@example.com",
		Password:  "password123",
		Password2: "password123",
	}
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockNotifier := new(MockNotifier)
	authService := services.NewAuthService(mockRepo, mockNotifier)
	form := validRegistration()

	mockRepo.On("GetByUsername", form.Username).Return(nil, notFound(form.Username)).Once()
	mockRepo.On("GetByEmail", form.Email).Return(nil, notFound(form.Email)).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()
	mockNotifier.On("Notify", "user.registered", mock.Anything).Return(nil).Once()

	user, err := authService.Register(form)
	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
	assert.False(t, user.IsAdmin)
	assert.Equal(t, models.DefaultAvatar, user.Avatar)
	assert.Equal(t, models.DefaultBio, user.Bio)
	assert.NotEqual(t, form.Password, user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)))
	mockRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

func TestAuthService_RegisterDuplicates(t *testing.T) {
	form := validRegistration()

	t.Run("username taken", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, nil)
		mockRepo.On("GetByUsername", form.Username).Return(&models.User{ID: "1"}, nil).Once()

		_, err := authService.Register(form)
		assert.True(t, errors.Is(err, services.ErrDuplicateIdentity))
		mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("email taken", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, nil)
		mockRepo.On("GetByUsername", form.Username).Return(nil, notFound(form.Username)).Once()
		mockRepo.On("GetByEmail", form.Email).Return(&models.User{ID: "1"}, nil).Once()

		_, err := authService.Register(form)
		assert.True(t, errors.Is(err, services.ErrDuplicateIdentity))
		mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("lost race at insert", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, nil)
		mockRepo.On("GetByUsername", form.Username).Return(nil, notFound(form.Username)).Once()
		mockRepo.On("GetByEmail", form.Email).Return(nil, notFound(form.Email)).Once()
		mockRepo.On("Create", mock.AnythingOfType("*models.User")).
			Return(fmt.Errorf("failed to create user: %w", repositories.ErrDuplicate)).Once()

		_, err := authService.Register(form)
		assert.True(t, errors.Is(err, services.ErrDuplicateIdentity))
		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_RegisterValidation(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil)

	form := services.RegistrationForm{Username: "ab", Email: "not-an-email", Password: "123", Password2: "456"}
	_, err := authService.Register(form)

	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
	assert.Equal(t, "Las contraseñas no coinciden.", verr.Fields["password2"])
	mockRepo.AssertNotCalled(t, "GetByUsername", mock.Anything)
}

func TestAuthService_RegisterPasswordTooLongForBcrypt(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil)
	form := validRegistration()
	form.Password = strings.Repeat("x", 100)
	form.Password2 = form.Password

	mockRepo.On("GetByUsername", form.Username).Return(nil, notFound(form.Username)).Once()
	mockRepo.On("GetByEmail", form.Email).Return(nil, notFound(form.Email)).Once()

	_, err := authService.Register(form)
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "password")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_Authenticate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:           "user-123",
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: string(hashedPassword),
	}

	// Test successful login
	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Once()
	got, err := authService.Authenticate("testuser", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Once()
	_, err = authService.Authenticate("testuser", "wrongpassword")
	assert.Equal(t, services.ErrInvalidCredentials, err)

	// Test invalid credentials (user not found)
	mockRepo.On("GetByUsername", "nonexistentuser").Return(nil, notFound("nonexistentuser")).Once()
	_, err = authService.Authenticate("nonexistentuser", "password123")
	assert.Equal(t, services.ErrInvalidCredentials, err) // Same error as a wrong password
	mockRepo.AssertExpectations(t)
}

func TestAuthService_AuthenticateStoreFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil)
	mockRepo.On("GetByUsername", "testuser").Return(nil, errors.New("disk I/O error")).Once()

	_, err := authService.Authenticate("testuser", "password123")
	assert.True(t, errors.Is(err, services.ErrPersistence))
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	t.Run("creates missing admin", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, nil)
		mockRepo.On("GetByUsername", "BFOX").Return(nil, notFound("BFOX")).Once()
		mockRepo.On("Create", mock.MatchedBy(func(u *models.User) bool {
			return u.Username == "BFOX" && u.IsAdmin && u.PasswordHash != "admin123"
		})).Return(nil).Once()

		user, err := authService.EnsureAdmin("BFOX", "b.fox@elpuntogaming.local", "admin123")
		require.NoError(t, err)
		assert.True(t, user.IsAdmin)
		mockRepo.AssertExpectations(t)
	})

	t.Run("promotes existing user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, nil)
		existing := &models.User{ID: "u1", Username: "BFOX", PasswordHash: "keep"}
		mockRepo.On("GetByUsername", "BFOX").Return(existing, nil).Once()
		mockRepo.On("Update", existing).Return(nil).Once()

		user, err := authService.EnsureAdmin("BFOX", "b.fox@elpuntogaming.local", "admin123")
		require.NoError(t, err)
		assert.True(t, user.IsAdmin)
		assert.Equal(t, "keep", user.PasswordHash)
		mockRepo.AssertExpectations(t)
	})

	t.Run("already admin", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, nil)
		mockRepo.On("GetByUsername", "BFOX").Return(&models.User{ID: "u1", Username: "BFOX", IsAdmin: true}, nil).Once()

		_, err := authService.EnsureAdmin("BFOX", "b.fox@elpuntogaming.local", "admin123")
		require.NoError(t, err)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything)
	})
}
