package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/mockprep-backend/internal/config"
	"github.com/stemsi/mockprep-backend/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}
}

func TestLogin_DefaultUser(t *testing.T) {
	auth := NewAuthService(testConfig())

	res, err := auth.Login(model.LoginRequest{Role: "user"})
	require.NoError(t, err)
	assert.Equal(t, model.User{ID: DefaultUserID, Username: "student_user", Role: model.RoleUser}, res.User)

	claims, err := auth.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User, claims.User())
}

func TestLogin_AdminDefaultUsername(t *testing.T) {
	res, err := NewAuthService(testConfig()).Login(model.LoginRequest{Role: "admin"})

	require.NoError(t, err)
	assert.Equal(t, "admin_user", res.User.Username)
	assert.Equal(t, model.RoleAdmin, res.User.Role)
	assert.NotEqual(t, DefaultUserID, res.User.ID, "admin attempts stay out of the default student's history")
	assert.Equal(t, UserIDFor("admin_user"), res.User.ID)
}

func TestLogin_UsernameDerivesStableID(t *testing.T) {
	auth := NewAuthService(testConfig())

	a, err := auth.Login(model.LoginRequest{Role: "user", Username: "Asha"})
	require.NoError(t, err)
	b, err := auth.Login(model.LoginRequest{Role: "user", Username: "asha"})
	require.NoError(t, err)
	c, err := auth.Login(model.LoginRequest{Role: "user", Username: "ravi"})
	require.NoError(t, err)

	assert.Equal(t, a.User.ID, b.User.ID)
	assert.NotEqual(t, a.User.ID, c.User.ID)
	assert.NotEqual(t, DefaultUserID, a.User.ID)
	assert.Equal(t, a.User.ID, UserIDFor("  ASHA "))
	assert.Equal(t, DefaultUserID, UserIDFor(""))
	assert.Equal(t, DefaultUserID, UserIDFor("Student_User"))
}

func TestLogin_UnknownRole(t *testing.T) {
	_, err := NewAuthService(testConfig()).Login(model.LoginRequest{Role: "root"})

	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	res, err := NewAuthService(testConfig()).Login(model.LoginRequest{Role: "user"})
	require.NoError(t, err)

	other := NewAuthService(&config.Config{JWTSecret: "other", JWTExpiry: time.Hour})
	_, err = other.ValidateToken(res.Token)

	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := testConfig()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		UserID: "u1",
		Role:   model.RoleUser,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	_, err = NewAuthService(cfg).ValidateToken(signed)

	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
