package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MdAmzadAli/skillArena/internal/model"
	"github.com/MdAmzadAli/skillArena/internal/store"
	"github.com/MdAmzadAli/skillArena/pkg/hash"
)

const sessionTTL = 7 * 24 * time.Hour

// ErrInvalidCredentials is returned on a bad username/password pair. One
// error for both cases so login failures don't reveal which usernames exist.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserService handles registration, login, and session token minting.
type UserService struct {
	store  store.Store
	secret []byte
}

func NewUserService(st store.Store, sessionSecret string) *UserService {
	return &UserService{store: st, secret: []byte(sessionSecret)}
}

// Register creates an account and returns it with a session token.
func (s *UserService) Register(ctx context.Context, username, password string) (*model.AuthResponse, error) {
	hashed, err := hash.Password(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{Username: username, PasswordHash: hashed}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return s.authResponse(user)
}

// Login verifies credentials and returns the user with a session token.
func (s *UserService) Login(ctx context.Context, username, password string) (*model.AuthResponse, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !hash.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.authResponse(user)
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) authResponse(user *model.User) (*model.AuthResponse, error) {
	token, err := s.mintToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{User: user.ToResponse(), Token: token}, nil
}

// mintToken signs an HS256 session token for the user.
func (s *UserService) mintToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
