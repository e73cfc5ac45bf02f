// Package auth implements the authentication screen: login with a second
// factor, registration with QR enrolment and the one-way hand-off to the
// vault screen.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/atinyakov/xenon/internal/backend"
	"github.com/atinyakov/xenon/internal/client/session"
	"github.com/atinyakov/xenon/internal/client/ui"
	"go.uber.org/zap"
)

// Messages shown in the message label.
const (
	// MsgLoginOK follows an accepted login.
	MsgLoginOK = "Login successful."
	// MsgLoginFailed follows a rejected password or code.
	MsgLoginFailed = "Login failed."
	// MsgScanQR follows a registration, next to the enrolment QR code.
	MsgScanQR = "Scan the QR code with your authenticator app."
	// MsgAccountExists follows a registration refused by the backend.
	MsgAccountExists = "Cannot register - account already exists."
)

var (
	// ErrBusy is returned while a login or registration is in flight.
	ErrBusy = errors.New("authentication already in progress")
	// ErrLocked is returned by Done before a login or registration succeeded.
	ErrLocked = errors.New("session is locked")
	// ErrUnlocked is returned by Login and Register once one of them succeeded.
	ErrUnlocked = errors.New("session is already unlocked")
)

// State is the position in the authentication flow.
type State int

const (
	// Anonymous is the initial state, and the state after a rejected attempt.
	Anonymous State = iota
	// Authenticating means a login request is in flight.
	Authenticating
	// Registering means a registration request is in flight.
	Registering
	// AwaitingScan follows a registration until the user moves on.
	AwaitingScan
	// Unlocked follows a successful login.
	Unlocked
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Registering:
		return "registering"
	case AwaitingScan:
		return "awaiting-scan"
	case Unlocked:
		return "unlocked"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Bindings are the auth screen regions. Operations that need a missing
// region do nothing.
type Bindings struct {
	Password ui.Input
	Code     ui.Input
	Message  ui.Label
	QRCode   ui.Image
	QRPanel  ui.Region

	LoginButton    ui.Region
	RegisterButton ui.Region
	DoneButton     ui.Region

	AuthScreen  ui.Region
	VaultScreen ui.Region
}

// Controller drives the auth screen.
type Controller struct {
	backend backend.Auth
	session *session.Credential
	log     *zap.Logger
	b       Bindings
	onEnter func(context.Context) error

	mu      sync.Mutex
	state   State
	entered bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithOnEnter runs fn when the user proceeds to the vault screen.
func WithOnEnter(fn func(context.Context) error) Option {
	return func(c *Controller) { c.onEnter = fn }
}

// New returns a Controller in the Anonymous state. The done affordance and
// the QR image start hidden.
func New(b Bindings, be backend.Auth, cred *session.Credential, opts ...Option) *Controller {
	c := &Controller{
		backend: be,
		session: cred,
		log:     zap.NewNop(),
		b:       b,
	}
	for _, opt := range opts {
		opt(c)
	}
	setVisible(c.b.DoneButton, false)
	setVisible(c.b.QRPanel, false)
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Entered reports whether the vault screen has been entered.
func (c *Controller) Entered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entered
}

// begin moves an Anonymous controller to s. Only Anonymous accepts a new
// attempt; a succeeded flow is left for Done.
func (c *Controller) begin(s State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Authenticating, Registering:
		return ErrBusy
	case AwaitingScan, Unlocked:
		return ErrUnlocked
	}
	c.state = s
	return nil
}

func (c *Controller) finish(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Login checks the password and second-factor code. On success the session
// credential is set and the done affordance replaces login and register.
func (c *Controller) Login(ctx context.Context) error {
	if c.b.Password == nil || c.b.Code == nil || c.b.Message == nil {
		return nil
	}
	if err := c.begin(Authenticating); err != nil {
		return err
	}

	pw := c.b.Password.Value()
	ok, err := c.backend.Login(ctx, pw, c.b.Code.Value())
	if err != nil {
		c.finish(Anonymous)
		return fmt.Errorf("login: %w", err)
	}
	if !ok {
		c.log.Info("login rejected")
		c.b.Message.SetText(MsgLoginFailed)
		c.finish(Anonymous)
		return nil
	}

	c.session.Set(pw)
	c.b.Message.SetText(MsgLoginOK)
	c.swapButtons()
	c.finish(Unlocked)
	c.log.Info("login succeeded")
	return nil
}

// Register creates the account and shows its enrolment QR code. The chosen
// password becomes the session credential.
func (c *Controller) Register(ctx context.Context) error {
	if c.b.Password == nil || c.b.Message == nil {
		return nil
	}
	if err := c.begin(Registering); err != nil {
		return err
	}

	pw := c.b.Password.Value()
	reg, err := c.backend.Register(ctx, pw)
	if err != nil {
		c.finish(Anonymous)
		return fmt.Errorf("register: %w", err)
	}
	if !reg.Success {
		c.b.Message.SetText(MsgAccountExists)
		c.finish(Anonymous)
		return nil
	}

	png, err := base64.StdEncoding.DecodeString(reg.QRCode)
	if err != nil {
		// account is already created at this point
		c.log.Warn("invalid enrolment image", zap.Error(err))
		png = nil
	}
	if c.b.QRCode != nil && png != nil {
		c.b.QRCode.SetImage(png)
		setVisible(c.b.QRPanel, true)
	}

	c.session.Set(pw)
	c.b.Message.SetText(MsgScanQR)
	c.swapButtons()
	c.finish(AwaitingScan)
	c.log.Info("account registered")
	return nil
}

func (c *Controller) swapButtons() {
	setVisible(c.b.LoginButton, false)
	setVisible(c.b.RegisterButton, false)
	setVisible(c.b.DoneButton, true)
}

// Done leaves the auth screen for the vault screen and runs the OnEnter hook.
// It cannot be undone; calling it again does nothing.
func (c *Controller) Done(ctx context.Context) error {
	c.mu.Lock()
	if c.entered {
		c.mu.Unlock()
		return nil
	}
	if c.state != Unlocked && c.state != AwaitingScan {
		c.mu.Unlock()
		return ErrLocked
	}
	c.state = Unlocked
	c.entered = true
	c.mu.Unlock()

	setVisible(c.b.AuthScreen, false)
	setVisible(c.b.VaultScreen, true)

	if c.onEnter == nil {
		return nil
	}
	if err := c.onEnter(ctx); err != nil {
		return fmt.Errorf("enter vault: %w", err)
	}
	return nil
}

func setVisible(r ui.Region, v bool) {
	if r != nil {
		r.SetVisible(v)
	}
}
