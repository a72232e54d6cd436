package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stemsi/mockprep-backend/internal/config"
	"github.com/stemsi/mockprep-backend/internal/model"
)

// Common auth errors.
var (
	ErrInvalidRole = errors.New("role must be user or admin")
	ErrForbidden   = errors.New("resource belongs to another user")
)

// DefaultUserID is the identity of the default student login.
const DefaultUserID = "u1"

var defaultUsernames = map[model.Role]string{
	model.RoleUser:  "student_user",
	model.RoleAdmin: "admin_user",
}

// usernameSpace namespaces derived user ids so a username always maps to the
// same progress history.
var usernameSpace = uuid.MustParse("6f1f7b52-3a0e-4c59-8f43-0f5a0c2d9e11")

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string     `json:"user_id"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

// User returns the principal carried by the claims.
func (c *Claims) User() model.User {
	return model.User{ID: c.UserID, Username: c.Username, Role: c.Role}
}

// LoginResult is returned by Login.
type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// AuthService issues and validates role tokens. There is no credential check.
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// UserIDFor returns the stable user id of a login name. An empty name and the
// default student name map to DefaultUserID.
func UserIDFor(username string) string {
	name := strings.ToLower(strings.TrimSpace(username))
	if name == "" || name == defaultUsernames[model.RoleUser] {
		return DefaultUserID
	}
	return uuid.NewSHA1(usernameSpace, []byte(name)).String()
}

// Login signs a token for the selected role.
func (s *AuthService) Login(req model.LoginRequest) (*LoginResult, error) {
	role := model.Role(req.Role)
	def, ok := defaultUsernames[role]
	if !ok {
		return nil, ErrInvalidRole
	}

	user := model.User{Username: def, Role: role}
	if name := strings.TrimSpace(req.Username); name != "" {
		user.Username = name
	}
	user.ID = UserIDFor(user.Username)

	now := time.Now()
	expiresAt := now.Add(s.cfg.JWTExpiry)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &LoginResult{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
