package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/recyclehub/internal/auth"
	"github.com/erazemk/recyclehub/internal/model"
	"github.com/erazemk/recyclehub/internal/store"
)

// AccountService registers users, issues login tokens and revokes them on
// logout.
type AccountService struct {
	users     store.AccountStore
	jwtSecret string
	cost      int
	now       func() time.Time
}

// NewAccountService builds the service signing tokens with jwtSecret.
func NewAccountService(users store.AccountStore, jwtSecret string) *AccountService {
	return &AccountService{users: users, jwtSecret: jwtSecret, cost: bcrypt.DefaultCost, now: time.Now}
}

// Registration is the input to Register.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates an account. An empty role defaults to user.
func (s *AccountService) Register(ctx context.Context, reg Registration) (*model.User, error) {
	name := strings.TrimSpace(reg.Name)
	email := normalizeEmail(reg.Email)
	role := strings.TrimSpace(reg.Role)
	if role == "" {
		role = model.RoleUser
	}

	switch {
	case name == "":
		return nil, required("name")
	case email == "":
		return nil, required("email")
	case !strings.Contains(email, "@"):
		return nil, &ValidationError{Field: "email", Message: "email is not valid"}
	case !model.ValidRole(role):
		return nil, &ValidationError{Field: "role", Message: "role must be user or vendor"}
	}
	if err := model.ValidatePassword(reg.Password); err != nil {
		return nil, &ValidationError{Field: "password", Message: err.Error()}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ConflictError{Message: "email already registered"}
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// Login checks credentials and returns a signed token with the user.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, &ValidationError{Message: "email and password required"}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login failed", "email", email)
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(s.jwtSecret, user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("generating token: %w", err)
	}
	return token, user, nil
}

// Authenticate validates a token and rejects revoked ones.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ValidateToken(s.jwtSecret, token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := s.users.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("checking token revocation: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Logout revokes the token the claims were read from until it would have
// expired anyway.
func (s *AccountService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	expires := s.now().Add(auth.TokenExpiry)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if err := s.users.RevokeToken(ctx, claims.ID, expires); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
