package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"elpunto/internal/models"
	"elpunto/internal/repositories"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// RegistrationForm is the input of Register.
type RegistrationForm struct {
	Username  string `json:"username" form:"username" validate:"required,min=3,max=80"`
	Email     string `json:"email" form:"email" validate:"required,email,max=120"`
	Password  string `json:"password" form:"password" validate:"required,min=6,max=128"`
	Password2 string `json:"password2" form:"password2" validate:"required,eqfield=Password"`
}

// AuthService is the credential store: it registers identities and checks
// their passwords.
type AuthService struct {
	userRepo repositories.UserRepository
	cost     int
	notifier Notifier
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, notifier Notifier) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cost:     bcrypt.DefaultCost,
		notifier: notifier,
	}
}

// Register validates the form, hashes the password and stores a new
// non-admin user. Username and email must both be unused; a collision that
// slips past the pre-check is still reported as ErrDuplicateIdentity.
func (s *AuthService) Register(form RegistrationForm) (*models.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)
	if verr := validateStruct(form); verr != nil {
		return nil, verr
	}

	if err := s.ensureUnused(form.Username, form.Email); err != nil {
		return nil, err
	}

	hash, err := s.hash(form.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
		Avatar:       models.DefaultAvatar,
		Bio:          models.DefaultBio,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("username %q or email already registered: %w", user.Username, ErrDuplicateIdentity)
		}
		return nil, persistenceError("register user", err)
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	notify(s.notifier, "user.registered", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, nil
}

func (s *AuthService) ensureUnused(username, email string) error {
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return fmt.Errorf("username %q already taken: %w", username, ErrDuplicateIdentity)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return persistenceError("check username", err)
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return fmt.Errorf("email %q already registered: %w", email, ErrDuplicateIdentity)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return persistenceError("check email", err)
	}
	return nil
}

func (s *AuthService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fieldError("password", "La contraseña es demasiado larga.")
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// Authenticate returns the user whose password matches. Unknown usernames
// still pay for a bcrypt comparison so both failures look alike.
func (s *AuthService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, persistenceError("load user", err)
		}
		dummyHashOnce.Do(func() {
			dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
		})
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Error().Err(err).Str("user_id", user.ID).Msg("stored password hash is unusable")
		}
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin makes sure an admin account named username exists. An
// existing user of that name is promoted; its password is left untouched.
func (s *AuthService) EnsureAdmin(username, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err == nil {
		if user.IsAdmin {
			return user, nil
		}
		user.IsAdmin = true
		if err := s.userRepo.Update(user); err != nil {
			return nil, persistenceError("promote admin", err)
		}
		log.Info().Str("username", username).Msg("existing user promoted to admin")
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, persistenceError("load admin", err)
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	user = &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
		Avatar:       models.DefaultAvatar,
		Bio:          models.DefaultBio,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("admin email %q already registered: %w", email, ErrDuplicateIdentity)
		}
		return nil, persistenceError("create admin", err)
	}
	log.Info().Str("username", username).Msg("admin account created")
	return user, nil
}
