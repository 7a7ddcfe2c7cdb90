package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingUsername = errors.New("username is required")
	ErrMissingEmail    = errors.New("email is required")
	ErrMissingPassword = errors.New("password is required")
	ErrUsernameTaken   = errors.New("username is already taken")
	ErrUnknownUsername = errors.New("username not found")
)

// IdentityProvider is the slice of Provider the flows need.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string) (Credential, error)
	SignIn(ctx context.Context, email, password string) (Credential, error)
}

// Directory is the profile collection: username lookups and the post-auth
// profile upsert. Backed by store.Store in production.
type Directory interface {
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailByUsername(ctx context.Context, username string) (string, error)
	UpsertUser(ctx context.Context, uid, email, username string) error
}

// Flow runs the register/login sequences the app performs around the
// identity provider, and records the outcome in the session.
type Flow struct {
	Provider  IdentityProvider
	Directory Directory
	Session   *Session
}

// Register validates inputs, checks username availability, creates the
// account and upserts the profile.
//
// The availability check is read-then-write with nothing atomic underneath:
// two registrations racing on the same username can both pass the check.
// At most one wins any later lookup (Limit(1)); the schema accepts this.
func (f *Flow) Register(ctx context.Context, username, email, password string) (Credential, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return Credential{}, ErrMissingUsername
	}
	if email == "" {
		return Credential{}, ErrMissingEmail
	}
	if password == "" {
		return Credential{}, ErrMissingPassword
	}

	taken, err := f.Directory.UsernameTaken(ctx, username)
	if err != nil {
		return Credential{}, fmt.Errorf("auth: checking username: %w", err)
	}
	if taken {
		return Credential{}, ErrUsernameTaken
	}

	cred, err := f.Provider.CreateAccount(ctx, email, password)
	if err != nil {
		return Credential{}, err
	}
	if cred.Email != "" {
		if err := f.Directory.UpsertUser(ctx, cred.UID, cred.Email, username); err != nil {
			return Credential{}, fmt.Errorf("auth: upserting profile: %w", err)
		}
	}
	f.Session.set(&cred)
	return cred, nil
}

// Login resolves the username to its sign-in email, authenticates, and
// refreshes the profile document.
func (f *Flow) Login(ctx context.Context, username, password string) (Credential, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Credential{}, ErrMissingUsername
	}
	if password == "" {
		return Credential{}, ErrMissingPassword
	}

	email, err := f.Directory.EmailByUsername(ctx, username)
	if err != nil {
		return Credential{}, fmt.Errorf("auth: resolving username: %w", err)
	}
	if email == "" {
		return Credential{}, ErrUnknownUsername
	}

	cred, err := f.Provider.SignIn(ctx, email, password)
	if err != nil {
		return Credential{}, err
	}
	if cred.Email != "" {
		if err := f.Directory.UpsertUser(ctx, cred.UID, cred.Email, username); err != nil {
			return Credential{}, fmt.Errorf("auth: upserting profile: %w", err)
		}
	}
	f.Session.set(&cred)
	return cred, nil
}
