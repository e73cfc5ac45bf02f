// Package ui defines the screen regions the controllers are bound to and
// in-memory implementations of them. A front end renders from the in-memory
// regions; controllers never see how.
package ui

import (
	"context"
	"sync"

	"github.com/atinyakov/xenon/internal/models"
)

// Input is a text control.
type Input interface {
	Value() string
	SetValue(string)
}

// Toggle is a checkbox.
type Toggle interface {
	Checked() bool
}

// Region is anything that can be shown or hidden.
type Region interface {
	Visible() bool
	SetVisible(bool)
}

// Label displays a message.
type Label interface {
	SetText(string)
}

// Image displays a picture.
type Image interface {
	SetImage(png []byte)
}

// Table displays the entry rows. Replace swaps the whole body at once.
type Table interface {
	Replace(rows []Row)
}

// Row is one rendered entry with its per-row actions.
type Row struct {
	Entry    models.Entry
	Strength models.Annotation
	// Edit opens this row in the editor.
	Edit func(ctx context.Context) error
	// Delete removes this row's entry.
	Delete func(ctx context.Context) error
}

// Field is an in-memory Input, Toggle and Region.
type Field struct {
	mu      sync.RWMutex
	value   string
	checked bool
	hidden  bool
}

// NewField returns a visible field holding value.
func NewField(value string) *Field {
	return &Field{value: value}
}

func (f *Field) Value() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

func (f *Field) SetValue(v string) {
	f.mu.Lock()
	f.value = v
	f.mu.Unlock()
}

func (f *Field) Checked() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.checked
}

// SetChecked sets the toggle state.
func (f *Field) SetChecked(v bool) {
	f.mu.Lock()
	f.checked = v
	f.mu.Unlock()
}

func (f *Field) Visible() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return !f.hidden
}

func (f *Field) SetVisible(v bool) {
	f.mu.Lock()
	f.hidden = !v
	f.mu.Unlock()
}

// Panel is an in-memory Region.
type Panel struct {
	mu      sync.RWMutex
	visible bool
}

// NewPanel returns a panel with the given initial visibility.
func NewPanel(visible bool) *Panel {
	return &Panel{visible: visible}
}

func (p *Panel) Visible() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.visible
}

func (p *Panel) SetVisible(v bool) {
	p.mu.Lock()
	p.visible = v
	p.mu.Unlock()
}

// Text is an in-memory Label.
type Text struct {
	mu   sync.RWMutex
	text string
}

func (t *Text) SetText(s string) {
	t.mu.Lock()
	t.text = s
	t.mu.Unlock()
}

// String returns the current text.
func (t *Text) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.text
}

// Picture is an in-memory Image and Region.
type Picture struct {
	Panel
	mu  sync.RWMutex
	png []byte
}

func (p *Picture) SetImage(png []byte) {
	p.mu.Lock()
	p.png = png
	p.mu.Unlock()
}

// PNG returns the current image bytes.
func (p *Picture) PNG() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.png
}

// Grid is an in-memory Table.
type Grid struct {
	mu   sync.RWMutex
	rows []Row
}

func (g *Grid) Replace(rows []Row) {
	g.mu.Lock()
	g.rows = rows
	g.mu.Unlock()
}

// Rows returns the rendered rows.
func (g *Grid) Rows() []Row {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rows
}

// Empty reports whether the table has no rows.
func (g *Grid) Empty() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rows) == 0
}
