// Package vault implements the vault screen controller: listing, searching,
// adding, editing and deleting entries, password generation and master
// password rotation. Every mutation is followed by a fresh read from the
// backend; the controller never keeps optimistic entry state.
package vault

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/atinyakov/xenon/internal/backend"
	"github.com/atinyakov/xenon/internal/client/generator"
	"github.com/atinyakov/xenon/internal/client/session"
	"github.com/atinyakov/xenon/internal/client/strength"
	"github.com/atinyakov/xenon/internal/client/ui"
	"github.com/atinyakov/xenon/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrIndexOutOfRange is returned for a row index not present in the last render.
	ErrIndexOutOfRange = errors.New("row index out of range")
	// ErrStaleRow is returned by a row action bound by an earlier render.
	ErrStaleRow = errors.New("row belongs to an outdated table")
	// ErrEditorOpen is returned when opening an entry while another is being edited.
	ErrEditorOpen = errors.New("an entry is already being edited")
	// ErrNoEdit is returned when committing without an open editor.
	ErrNoEdit = errors.New("no entry is being edited")
)

// Form is a set of entry inputs.
type Form struct {
	Website  ui.Input
	Username ui.Input
	Password ui.Input
	Notes    ui.Input
}

func (f Form) bound() bool {
	return f.Website != nil && f.Username != nil && f.Password != nil && f.Notes != nil
}

func (f Form) entry() models.Entry {
	return models.Entry{
		Website:  f.Website.Value(),
		Username: f.Username.Value(),
		Password: f.Password.Value(),
		Notes:    f.Notes.Value(),
	}
}

func (f Form) fill(e models.Entry) {
	f.Website.SetValue(e.Website)
	f.Username.SetValue(e.Username)
	f.Password.SetValue(e.Password)
	f.Notes.SetValue(e.Notes)
}

func (f Form) clear() {
	for _, in := range []ui.Input{f.Website, f.Username, f.Password, f.Notes} {
		if in != nil {
			in.SetValue("")
		}
	}
}

// GeneratorControls are the password generator's inputs.
type GeneratorControls struct {
	Length    ui.Input
	Lowercase ui.Toggle
	Uppercase ui.Toggle
	Numbers   ui.Toggle
	Symbols   ui.Toggle
}

// Bindings are the screen regions the controller drives. Any of them may be
// nil; operations that need a missing region do nothing.
type Bindings struct {
	NewMasterPassword ui.Input
	Search            ui.Input
	Add               Form
	Edit              Form
	AddPanel          ui.Region
	EditPanel         ui.Region
	Table             ui.Table
	// EmptyState is shown while the table has no rows.
	EmptyState ui.Region
	Status     ui.Label
	Generator  GeneratorControls
}

// Controller drives the vault screen.
type Controller struct {
	backend  backend.Vault
	session  *session.Credential
	scorer   strength.Scorer
	generate func(generator.Params) (string, error)
	log      *zap.Logger
	b        Bindings

	// mutate admits one mutation (and its resynchronizing read) at a time.
	mutate sync.Mutex

	mu       sync.Mutex
	issued   uint64
	rendered uint64
	rows     models.Rows
	cursor   int
	cursorID string
}

// Option configures a Controller.
type Option func(*Controller)

// WithScorer replaces the default zxcvbn scorer.
func WithScorer(s strength.Scorer) Option {
	return func(c *Controller) { c.scorer = s }
}

// WithGenerator replaces the password generator.
func WithGenerator(fn func(generator.Params) (string, error)) Option {
	return func(c *Controller) { c.generate = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// New returns a Controller bound to b. cred is shared with the auth flow.
func New(b Bindings, be backend.Vault, cred *session.Credential, opts ...Option) *Controller {
	c := &Controller{
		backend:  be,
		session:  cred,
		scorer:   strength.Zxcvbn{},
		generate: generator.Generate,
		log:      zap.NewNop(),
		b:        b,
		cursor:   -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	setVisible(c.b.AddPanel, true)
	setVisible(c.b.EditPanel, false)
	return c
}

func (c *Controller) credential() string {
	if c.session == nil {
		return ""
	}
	return c.session.Get()
}

// EditCursor returns the index of the row being edited, or -1.
func (c *Controller) EditCursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// Rows returns the rows of the last completed render.
func (c *Controller) Rows() models.Rows {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

// LoadAll replaces the table with every entry. It does nothing while the
// session is locked. On error the table is left as it was.
func (c *Controller) LoadAll(ctx context.Context) error {
	pw := c.credential()
	if pw == "" {
		return nil
	}
	gen := c.nextGeneration()
	rows, err := c.backend.GetAll(ctx, pw)
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}
	return c.render(ctx, gen, rows)
}

// LoadFiltered replaces the table with the entries whose field matches query.
func (c *Controller) LoadFiltered(ctx context.Context, query string, field models.FilterField) error {
	ft, err := models.ParseFilterField(string(field))
	if err != nil {
		return err
	}
	pw := c.credential()
	if pw == "" {
		return nil
	}
	gen := c.nextGeneration()
	rows, err := c.backend.GetOnly(ctx, query, ft, pw)
	if err != nil {
		return fmt.Errorf("search entries: %w", err)
	}
	return c.render(ctx, gen, rows)
}

// Search runs LoadFiltered with the search input's value.
func (c *Controller) Search(ctx context.Context, field models.FilterField) error {
	if c.b.Search == nil {
		return nil
	}
	return c.LoadFiltered(ctx, c.b.Search.Value(), field)
}

// ResetSearch reloads every entry, then clears the search input.
func (c *Controller) ResetSearch(ctx context.Context) error {
	if err := c.LoadAll(ctx); err != nil {
		return err
	}
	if c.b.Search != nil {
		c.b.Search.SetValue("")
	}
	return nil
}

// AddEntry creates e and reloads the table.
func (c *Controller) AddEntry(ctx context.Context, e models.Entry) error {
	_, err := c.add(ctx, e)
	return err
}

// SubmitAdd creates an entry from the add form. The form is cleared once the
// backend has stored the entry; a rejected create keeps the user's input.
func (c *Controller) SubmitAdd(ctx context.Context) error {
	f := c.b.Add
	if !f.bound() || c.session == nil {
		return nil
	}
	saved, err := c.add(ctx, f.entry())
	if saved {
		f.clear()
	}
	return err
}

func (c *Controller) add(ctx context.Context, e models.Entry) (bool, error) {
	pw := c.credential()
	if pw == "" {
		return false, nil
	}

	c.mutate.Lock()
	defer c.mutate.Unlock()

	id, err := c.backend.Add(ctx, e, pw)
	if err != nil {
		c.fail("Could not add entry", err)
		return false, fmt.Errorf("add entry: %w", err)
	}
	c.log.Debug("entry added", zap.String("id", id))
	c.setStatus("")
	return true, c.LoadAll(ctx)
}

// DeleteEntry deletes the entry shown at index in the current table.
func (c *Controller) DeleteEntry(ctx context.Context, index int) error {
	c.mu.Lock()
	gen := c.rendered
	c.mu.Unlock()
	return c.deleteAt(ctx, gen, index)
}

func (c *Controller) deleteAt(ctx context.Context, gen uint64, index int) error {
	pw := c.credential()
	if pw == "" {
		return nil
	}
	id, err := c.resolve(gen, index)
	if err != nil {
		return err
	}

	c.mutate.Lock()
	defer c.mutate.Unlock()

	if err := c.backend.Delete(ctx, id, pw); err != nil {
		c.fail("Could not delete entry", err)
		return fmt.Errorf("delete entry: %w", err)
	}
	c.setStatus("")

	c.mu.Lock()
	editing := c.cursorID == id
	c.mu.Unlock()
	if editing {
		c.CloseEditor()
	}
	return c.LoadAll(ctx)
}

// OpenEditor loads the entry shown at index into the edit form and swaps the
// add panel for the edit panel.
func (c *Controller) OpenEditor(ctx context.Context, index int) error {
	c.mu.Lock()
	gen := c.rendered
	c.mu.Unlock()
	return c.openAt(ctx, gen, index)
}

func (c *Controller) openAt(ctx context.Context, gen uint64, index int) error {
	pw := c.credential()
	if pw == "" || !c.b.Edit.bound() {
		return nil
	}
	if c.EditCursor() != -1 {
		return ErrEditorOpen
	}
	id, err := c.resolve(gen, index)
	if err != nil {
		return err
	}

	e, err := c.backend.GetRow(ctx, id, pw)
	if err != nil {
		return fmt.Errorf("load entry: %w", err)
	}

	c.mu.Lock()
	if c.cursor != -1 {
		c.mu.Unlock()
		return ErrEditorOpen
	}
	c.cursor, c.cursorID = index, id
	if c.rendered != gen && c.recursor() {
		c.mu.Unlock()
		return fmt.Errorf("load entry: %w", backend.ErrNotFound)
	}
	c.mu.Unlock()

	c.b.Edit.fill(e)
	setVisible(c.b.EditPanel, true)
	setVisible(c.b.AddPanel, false)
	return nil
}

// CommitEdit saves the edit form over the entry being edited, reloads the
// table and closes the editor. If the backend rejects the update the editor
// stays open with the user's input.
func (c *Controller) CommitEdit(ctx context.Context) error {
	f := c.b.Edit
	pw := c.credential()
	if !f.bound() || pw == "" {
		c.CloseEditor()
		f.clear()
		return nil
	}

	c.mu.Lock()
	id := c.cursorID
	c.mu.Unlock()
	if id == "" {
		return ErrNoEdit
	}

	c.mutate.Lock()
	defer c.mutate.Unlock()

	if err := c.backend.Edit(ctx, id, f.entry(), pw); err != nil {
		c.fail("Could not save changes", err)
		return fmt.Errorf("edit entry: %w", err)
	}
	c.setStatus("")

	err := c.LoadAll(ctx)
	c.CloseEditor()
	f.clear()
	return err
}

// CloseEditor hides the edit panel, shows the add panel and resets the cursor.
func (c *Controller) CloseEditor() {
	c.mu.Lock()
	c.cursor, c.cursorID = -1, ""
	c.mu.Unlock()

	setVisible(c.b.EditPanel, false)
	setVisible(c.b.AddPanel, true)
}

// GeneratePassword fills target with a password built from the generator
// controls.
func (c *Controller) GeneratePassword(ctx context.Context, target ui.Input) error {
	if target == nil {
		return nil
	}
	p, err := c.params()
	if err != nil {
		return err
	}

	c.print(ctx, "Generating password...")
	pw, err := c.generate(p)
	if err != nil {
		return fmt.Errorf("generate password: %w", err)
	}
	c.print(ctx, "Password generated")

	target.SetValue(strings.NewReplacer("<", "", ">", "").Replace(pw))
	return nil
}

func (c *Controller) params() (generator.Params, error) {
	g := c.b.Generator
	p := generator.Params{
		Lowercase: checked(g.Lowercase),
		Uppercase: checked(g.Uppercase),
		Numbers:   checked(g.Numbers),
		Symbols:   checked(g.Symbols),
		Exclude:   generator.DefaultExclude,
	}
	if g.Length == nil {
		return p, generator.ErrInvalidLength
	}
	n, err := strconv.Atoi(strings.TrimSpace(g.Length.Value()))
	if err != nil || n < 1 {
		return p, fmt.Errorf("%w: %q", generator.ErrInvalidLength, g.Length.Value())
	}
	p.Length = n
	return p, nil
}

func (c *Controller) print(ctx context.Context, msg string) {
	if err := c.backend.Print(ctx, msg); err != nil {
		c.log.Debug("print failed", zap.Error(err))
	}
}

// RotateMasterPassword changes the master password to the value of the new
// password input. The backend re-keys the vault in one command; on success the
// session adopts the new password and the table is reloaded with it.
func (c *Controller) RotateMasterPassword(ctx context.Context) error {
	in := c.b.NewMasterPassword
	old := c.credential()
	if in == nil || old == "" {
		return nil
	}
	next := in.Value()
	if next == "" {
		c.fail("Could not change master password", backend.ErrEmptyPassword)
		return backend.ErrEmptyPassword
	}

	c.mutate.Lock()
	defer c.mutate.Unlock()

	if err := c.backend.ChangeMasterPassword(ctx, old, next); err != nil {
		c.fail("Could not change master password", err)
		return fmt.Errorf("change master password: %w", err)
	}
	c.session.Set(next)
	in.SetValue("")
	c.setStatus("Master password changed.")
	c.log.Info("master password rotated")
	return c.LoadAll(ctx)
}

func (c *Controller) nextGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	return c.issued
}

// resolve maps a row index of render gen to the entry id behind it.
func (c *Controller) resolve(gen uint64, index int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.rendered {
		return "", ErrStaleRow
	}
	if index < 0 || index >= c.rows.Len() {
		return "", fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return c.rows.IDs[index], nil
}

func (c *Controller) setStatus(msg string) {
	if c.b.Status != nil {
		c.b.Status.SetText(msg)
	}
}

func (c *Controller) fail(msg string, err error) {
	c.log.Warn(msg, zap.Error(err))
	c.setStatus(msg + ": " + err.Error())
}

func setVisible(r ui.Region, v bool) {
	if r != nil {
		r.SetVisible(v)
	}
}

func checked(t ui.Toggle) bool {
	return t != nil && t.Checked()
}
