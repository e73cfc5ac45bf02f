// Package backend declares the command boundary between the vault client and
// the service that owns durable vault state, encryption and the second factor.
package backend

import (
	"context"
	"errors"

	"github.com/atinyakov/xenon/internal/models"
)

var (
	// ErrUnauthorized is returned when the master password does not unlock the vault.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when an entry id does not exist.
	ErrNotFound = errors.New("entry not found")
	// ErrEmptyPassword is returned when a new master password is empty.
	ErrEmptyPassword = errors.New("empty password")
)

// Vault defines the entry and master password commands. Every call is a round
// trip; masterpw is the session's master password used as the authorization
// parameter.
type Vault interface {
	// Add creates an entry and returns its id.
	Add(ctx context.Context, e models.Entry, masterpw string) (string, error)
	// Delete removes the entry with the given id.
	Delete(ctx context.Context, id string, masterpw string) error
	// Edit replaces the fields of the entry with the given id.
	Edit(ctx context.Context, id string, e models.Entry, masterpw string) error
	// GetAll returns every entry in backend order.
	GetAll(ctx context.Context, masterpw string) (models.Rows, error)
	// GetOnly returns the entries whose field ft matches filter.
	GetOnly(ctx context.Context, filter string, ft models.FilterField, masterpw string) (models.Rows, error)
	// GetRow returns a single entry.
	GetRow(ctx context.Context, id string, masterpw string) (models.Entry, error)
	// ChangeMasterPassword re-keys the vault from oldpw to newpw in one operation.
	ChangeMasterPassword(ctx context.Context, oldpw, newpw string) error
	// Print records a diagnostic message.
	Print(ctx context.Context, msg string) error
}

// Auth defines the account commands used before the vault is unlocked.
type Auth interface {
	// Login reports whether password and the second-factor code are valid.
	Login(ctx context.Context, password, code string) (bool, error)
	// Register creates the account. Success is false if one already exists.
	Register(ctx context.Context, password string) (models.Registration, error)
}

// Backend is the full command boundary.
type Backend interface {
	Vault
	Auth
}
