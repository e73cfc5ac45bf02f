// Package memory provides an in-memory implementation of the vault command
// boundary. Entries live for the lifetime of the process only and are kept in
// plaintext; it exists for local development and tests.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/xenon/internal/backend"
	"github.com/atinyakov/xenon/internal/models"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	secretSize = 20
	qrSize     = 256
)

// Store is a single-account vault held in memory.
type Store struct {
	mu      sync.RWMutex
	entries []models.Entry
	hash    []byte
	secret  []byte

	log   *zap.Logger
	now   func() time.Time
	rand  io.Reader
	cost  int
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by Print and for command tracing.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock sets the time source used for second-factor checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRandom sets the source of second-factor secrets.
func WithRandom(r io.Reader) Option {
	return func(s *Store) { s.rand = r }
}

// WithCost sets the bcrypt cost of the master password hash.
func WithCost(cost int) Option {
	return func(s *Store) { s.cost = cost }
}

// New returns an empty Store with no account.
func New(opts ...Option) *Store {
	s := &Store{
		log:   zap.NewNop(),
		now:   time.Now,
		rand:  rand.Reader,
		cost:  bcrypt.DefaultCost,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ backend.Backend = (*Store)(nil)

// authorize must be called with s.mu held.
func (s *Store) authorize(masterpw string) error {
	if s.hash == nil {
		return backend.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(masterpw)); err != nil {
		return backend.ErrUnauthorized
	}
	return nil
}

// index must be called with s.mu held.
func (s *Store) index(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Add appends e and returns the id assigned to it.
func (s *Store) Add(ctx context.Context, e models.Entry, masterpw string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(masterpw); err != nil {
		return "", err
	}
	e.ID = s.newID()
	s.entries = append(s.entries, e)
	s.log.Debug("entry added", zap.String("id", e.ID))
	return e.ID, nil
}

// Delete removes the entry; later entries keep their relative order.
func (s *Store) Delete(ctx context.Context, id string, masterpw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(masterpw); err != nil {
		return err
	}
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, backend.ErrNotFound)
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.log.Debug("entry deleted", zap.String("id", id))
	return nil
}

// Edit replaces the entry's fields in place.
func (s *Store) Edit(ctx context.Context, id string, e models.Entry, masterpw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(masterpw); err != nil {
		return err
	}
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("edit %s: %w", id, backend.ErrNotFound)
	}
	e.ID = id
	s.entries[i] = e
	s.log.Debug("entry edited", zap.String("id", id))
	return nil
}

// GetAll returns every entry in insertion order.
func (s *Store) GetAll(ctx context.Context, masterpw string) (models.Rows, error) {
	return s.collect(masterpw, func(models.Entry) bool { return true })
}

// GetOnly returns the entries whose field ft contains filter.
func (s *Store) GetOnly(ctx context.Context, filter string, ft models.FilterField, masterpw string) (models.Rows, error) {
	if _, err := models.ParseFilterField(string(ft)); err != nil {
		return models.Rows{}, err
	}
	return s.collect(masterpw, func(e models.Entry) bool {
		return strings.Contains(ft.Of(e), filter)
	})
}

func (s *Store) collect(masterpw string, keep func(models.Entry) bool) (models.Rows, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := models.Rows{
		IDs:       []string{},
		Websites:  []string{},
		Usernames: []string{},
		Passwords: []string{},
		Notes:     []string{},
	}
	if err := s.authorize(masterpw); err != nil {
		return rows, err
	}
	for _, e := range s.entries {
		if keep(e) {
			rows.Append(e)
		}
	}
	return rows, nil
}

// GetRow returns the entry with the given id.
func (s *Store) GetRow(ctx context.Context, id string, masterpw string) (models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.authorize(masterpw); err != nil {
		return models.Entry{}, err
	}
	i := s.index(id)
	if i < 0 {
		return models.Entry{}, fmt.Errorf("get row %s: %w", id, backend.ErrNotFound)
	}
	return s.entries[i], nil
}

// ChangeMasterPassword swaps the master password hash after verifying oldpw.
// Entries are untouched; the swap happens under the store lock so no command
// observes a half-rotated vault.
func (s *Store) ChangeMasterPassword(ctx context.Context, oldpw, newpw string) error {
	if newpw == "" {
		return backend.ErrEmptyPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.authorize(oldpw); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newpw), s.cost)
	if err != nil {
		return fmt.Errorf("hash master password: %w", err)
	}
	s.hash = hash
	s.log.Info("master password changed", zap.Int("entries", len(s.entries)))
	return nil
}

// Print logs a diagnostic message from the client.
func (s *Store) Print(ctx context.Context, msg string) error {
	s.log.Info(msg)
	return nil
}

// Login checks the master password and the current TOTP code.
func (s *Store) Login(ctx context.Context, password, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.authorize(password) != nil {
		return false, nil
	}
	return verifyCode(s.secret, code, s.now()), nil
}

// Register creates the account and returns the enrolment QR code for its
// second-factor secret. It reports Success=false when the account exists.
func (s *Store) Register(ctx context.Context, password string) (models.Registration, error) {
	if password == "" {
		return models.Registration{}, backend.ErrEmptyPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hash != nil {
		return models.Registration{Success: false}, nil
	}

	secret := make([]byte, secretSize)
	if _, err := io.ReadFull(s.rand, secret); err != nil {
		return models.Registration{}, fmt.Errorf("generate secret: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.Registration{}, fmt.Errorf("hash master password: %w", err)
	}
	png, err := qrcode.Encode(ProvisionURI(secret), qrcode.Medium, qrSize)
	if err != nil {
		return models.Registration{}, fmt.Errorf("encode qr code: %w", err)
	}

	s.hash = hash
	s.secret = secret
	s.log.Info("account registered")
	return models.Registration{
		Success: true,
		QRCode:  base64.StdEncoding.EncodeToString(png),
	}, nil
}
