package identity

import (
	"auction-site/internal/auctionerrors"
	model "auction-site/internal/models"
	"auction-site/internal/validation"
	"auction-site/utils"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the part of the entity store identity needs
type UserStore interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUser(ctx context.Context, userID string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
}

// Claims carried by access tokens
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Config holds token and hashing settings
type Config struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

// IdentityService registers users and issues the bearer tokens that stand in
// for a login session
type IdentityService struct {
	store  UserStore
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// NewIdentityService creates an IdentityService. Zero TTL and cost fall back to
// a day and bcrypt's default cost.
func NewIdentityService(store UserStore, cfg Config) *IdentityService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &IdentityService{
		store:  store,
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		cost:   cost,
		now:    time.Now,
	}
}

// Register validates the form, hashes the password and stores the user
func (s *IdentityService) Register(ctx context.Context, in validation.RegistrationInput) (model.User, error) {
	in, err := validation.ValidateRegistration(in)
	if err != nil {
		return model.User{}, fmt.Errorf("identity: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("identity: hash password: %w", err)
	}

	user := model.User{
		ID:           utils.GenerateID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("identity: %w", err)
	}

	utils.Info("User registered", map[string]any{"user_id": user.ID, "username": user.Username})
	return user, nil
}

// Login checks the credentials and returns the user with a fresh token.
// Unknown usernames and wrong passwords are reported the same way.
func (s *IdentityService) Login(ctx context.Context, username, password string) (model.User, string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrUserNotFound) {
			return model.User{}, "", fmt.Errorf("identity: %w", auctionerrors.ErrInvalidCredentials)
		}
		return model.User{}, "", fmt.Errorf("identity: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		utils.Warn("Login failed", map[string]any{"username": username})
		return model.User{}, "", fmt.Errorf("identity: %w", auctionerrors.ErrInvalidCredentials)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return model.User{}, "", err
	}
	return user, token, nil
}

// IssueToken signs an HS256 token for the user
func (s *IdentityService) IssueToken(user model.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("identity: sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns its claims
func (s *IdentityService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("identity: %w", auctionerrors.ErrUnauthorized)
	}
	return claims, nil
}

// Authenticate resolves a token to the stored user it was issued for
func (s *IdentityService) Authenticate(ctx context.Context, tokenString string) (model.User, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return model.User{}, err
	}
	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrUserNotFound) {
			return model.User{}, fmt.Errorf("identity: %w", auctionerrors.ErrUnauthorized)
		}
		return model.User{}, fmt.Errorf("identity: %w", err)
	}
	return user, nil
}
