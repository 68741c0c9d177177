package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-users/app/entity"
	"github.com/vibast-solutions/ms-go-users/app/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Auth implements the authentication flow on top of a UserStore. It only
// uses the store's public operations: AddUser, FindUserBy, UpdateUser.
type Auth struct {
	store *repository.UserStore
}

func NewAuth(store *repository.UserStore) *Auth {
	return &Auth{store: store}
}

// RegisterUser hashes the password and stores a new user. Registering an
// email that already exists fails with ErrUserExists.
func (a *Auth) RegisterUser(ctx context.Context, email, password string) (*entity.User, error) {
	_, err := a.store.FindUserBy(ctx, repository.ByEmail(email))
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, email)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return a.store.AddUser(ctx, email, string(hash))
}

// ValidLogin reports whether the email exists and the password matches
// its stored hash.
func (a *Auth) ValidLogin(ctx context.Context, email, password string) bool {
	user, err := a.store.FindUserBy(ctx, repository.ByEmail(email))
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) == nil
}

// CreateSession stores a fresh session token on the user and returns it.
func (a *Auth) CreateSession(ctx context.Context, email string) (string, error) {
	user, err := a.store.FindUserBy(ctx, repository.ByEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	token := uuid.New().String()
	if err := a.store.UpdateUser(ctx, user.ID, repository.SetSessionToken(token)); err != nil {
		return "", err
	}
	return token, nil
}

// UserFromSession resolves a session token to its user.
func (a *Auth) UserFromSession(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := a.store.FindUserBy(ctx, repository.BySessionToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// DestroySession clears the user's session token.
func (a *Auth) DestroySession(ctx context.Context, userID int64) error {
	err := a.store.UpdateUser(ctx, userID, repository.ClearSessionToken())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// ResetPasswordToken stores a fresh reset token on the user and returns it.
func (a *Auth) ResetPasswordToken(ctx context.Context, email string) (string, error) {
	user, err := a.store.FindUserBy(ctx, repository.ByEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrUserNotFound, email)
		}
		return "", err
	}

	token := uuid.New().String()
	if err := a.store.UpdateUser(ctx, user.ID, repository.SetResetToken(token)); err != nil {
		return "", err
	}
	return token, nil
}

// UpdatePassword replaces the password of the user holding the reset
// token and consumes the token.
func (a *Auth) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return ErrInvalidToken
	}
	user, err := a.store.FindUserBy(ctx, repository.ByResetToken(resetToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return a.store.UpdateUser(ctx, user.ID,
		repository.SetHashedPassword(string(hash)),
		repository.ClearResetToken(),
	)
}
