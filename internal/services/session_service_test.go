package services_test

import (
	"testing"
	"time"

	"elpunto/internal/auth"
	"elpunto/internal/database"
	"elpunto/internal/models"
	"elpunto/internal/repositories"
	"elpunto/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test_secret_key"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, "file:"+uuid.New().String()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type sessionFixture struct {
	svc   *services.SessionService
	users *repositories.GORMUserRepository
	clock *time.Time
	user  *models.User
}

func newSessionFixture(t *testing.T) sessionFixture {
	t.Helper()
	db := newTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	clock := time.Now()
	svc := services.NewSessionService(repositories.NewGORMSessionRepository(db), users, services.SessionConfig{
		Secret:      testSecret,
		SessionTTL:  24 * time.Hour,
		RememberTTL: 30 * 24 * time.Hour,
		Now:         func() time.Time { return clock },
	})

	user := &models.User{Username: "pepe", Email: "pepe@example.com", PasswordHash: "x", Avatar: models.DefaultAvatar}
	require.NoError(t, users.Create(user))
	return sessionFixture{svc: svc, users: users, clock: &clock, user: user}
}

func TestSessionService_StartAndResolve(t *testing.T) {
	f := newSessionFixture(t)

	token, err := f.svc.StartSession(f.user, false)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)
	assert.False(t, token.Persistent)
	assert.WithinDuration(t, f.clock.Add(24*time.Hour), token.ExpiresAt, time.Second)

	p := f.svc.CurrentIdentity(token.Value)
	assert.Equal(t, auth.Principal{UserID: f.user.ID, Username: "pepe"}, p)
}

func TestSessionService_RememberIsLongLived(t *testing.T) {
	f := newSessionFixture(t)

	token, err := f.svc.StartSession(f.user, true)
	require.NoError(t, err)
	assert.True(t, token.Persistent)
	assert.WithinDuration(t, f.clock.Add(30*24*time.Hour), token.ExpiresAt, time.Second)

	*f.clock = f.clock.Add(48 * time.Hour)
	assert.True(t, f.svc.CurrentIdentity(token.Value).Authenticated())
}

func TestSessionService_ExpiredSessionIsAnonymous(t *testing.T) {
	f := newSessionFixture(t)

	token, err := f.svc.StartSession(f.user, false)
	require.NoError(t, err)

	*f.clock = f.clock.Add(25 * time.Hour)
	assert.Equal(t, auth.Anonymous, f.svc.CurrentIdentity(token.Value))
}

func TestSessionService_InvalidTokensAreAnonymous(t *testing.T) {
	f := newSessionFixture(t)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Id:        uuid.New().String(),
		Subject:   f.user.ID,
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	wrongKey, err := forged.SignedString([]byte("another_secret"))
	require.NoError(t, err)
	unknownSession, err := forged.SignedString([]byte(testSecret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":           "",
		"garbage":         "invalid.token.string",
		"wrong key":       wrongKey,
		"unknown session": unknownSession,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, auth.Anonymous, f.svc.CurrentIdentity(token))
		})
	}
}

func TestSessionService_EndSessionIsIdempotent(t *testing.T) {
	f := newSessionFixture(t)

	token, err := f.svc.StartSession(f.user, false)
	require.NoError(t, err)

	require.NoError(t, f.svc.EndSession(token.Value))
	assert.Equal(t, auth.Anonymous, f.svc.CurrentIdentity(token.Value))

	assert.NoError(t, f.svc.EndSession(token.Value))
	assert.NoError(t, f.svc.EndSession("invalid.token.string"))
	assert.NoError(t, f.svc.EndSession(""))
}

func TestSessionService_ReflectsAdminFlagFromStore(t *testing.T) {
	f := newSessionFixture(t)

	token, err := f.svc.StartSession(f.user, false)
	require.NoError(t, err)
	assert.False(t, f.svc.CurrentIdentity(token.Value).IsAdmin)

	f.user.IsAdmin = true
	require.NoError(t, f.users.Update(f.user))
	assert.True(t, f.svc.CurrentIdentity(token.Value).IsAdmin)
}
