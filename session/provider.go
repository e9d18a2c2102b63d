// Package session authenticates users and carries their identity for the
// lifetime of the process.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dmchat/domain"
	"dmchat/errors"
	"dmchat/repositories"
)

// Provider verifies credentials against the user store and exposes the
// signed-in identity through a validated session token.
type Provider struct {
	log      *slog.Logger
	users    repositories.IUserRepository
	duration time.Duration

	mu    sync.RWMutex
	token string
}

func NewProvider(log *slog.Logger, users repositories.IUserRepository, duration time.Duration) *Provider {
	return &Provider{log: log, users: users, duration: duration}
}

// SignIn checks the password against the stored hash and keeps a fresh
// session token on success.
func (p *Provider) SignIn(_ context.Context, username, password string) error {
	user, err := p.users.GetUserByUsername(username)
	if err != nil {
		return errors.ErrInvalidCredentials
	}

	ok, err := ComparePassword(password, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrInvalidCredentials
	}

	token, err := IssueToken(user.UID, user.Username, p.duration)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.token = token
	p.mu.Unlock()

	p.log.Info("user signed in", "uid", user.UID, "username", user.Username)
	return nil
}

// SignOut drops the current session token.
func (p *Provider) SignOut() {
	p.mu.Lock()
	p.token = ""
	p.mu.Unlock()
}

// Current returns the identity encoded in the session token, validating its
// signature and expiration on every call.
func (p *Provider) Current(_ context.Context) (domain.Identity, error) {
	p.mu.RLock()
	token := p.token
	p.mu.RUnlock()

	if token == "" {
		return domain.Identity{}, errors.ErrNotSignedIn
	}

	claims, err := ParseToken(token)
	if err != nil {
		return domain.Identity{}, errors.ErrNotSignedIn
	}

	return domain.Identity{UID: claims.UserID, Username: claims.Username}, nil
}
