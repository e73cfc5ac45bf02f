// Package models defines the core data structures shared by the vault client,
// the command boundary and the reference backend.
package models

import (
	"errors"
	"fmt"
)

// ErrMisalignedRows is returned when the co-indexed sequences of a Rows value
// have different lengths.
var ErrMisalignedRows = errors.New("rows: sequences are not co-indexed")

// ErrUnknownFilterField is returned for a search field other than website or username.
var ErrUnknownFilterField = errors.New("unknown filter field")

// Entry is a single credential stored in the vault.
type Entry struct {
	// ID is the stable identifier assigned by the backend at creation.
	ID string `json:"id,omitempty"`
	// Website is the site or service the credential belongs to.
	Website string `json:"website"`
	// Username is the login name for the site.
	Username string `json:"username"`
	// Password is the stored secret.
	Password string `json:"password"`
	// Notes holds free-form user notes.
	Notes string `json:"notes"`
}

// Rows is the result of a vault read: co-indexed sequences where index i of
// every slice describes the same entry.
type Rows struct {
	IDs       []string `json:"ids"`
	Websites  []string `json:"websites"`
	Usernames []string `json:"usernames"`
	Passwords []string `json:"passwords"`
	Notes     []string `json:"notes"`
}

// Len returns the number of entries.
func (r Rows) Len() int {
	return len(r.Websites)
}

// Validate checks that all sequences have the same length.
func (r Rows) Validate() error {
	n := len(r.Websites)
	if len(r.IDs) != n || len(r.Usernames) != n || len(r.Passwords) != n || len(r.Notes) != n {
		return fmt.Errorf("%w: ids=%d websites=%d usernames=%d passwords=%d notes=%d",
			ErrMisalignedRows, len(r.IDs), n, len(r.Usernames), len(r.Passwords), len(r.Notes))
	}
	return nil
}

// At returns the entry at index i. The caller must ensure i is in range.
func (r Rows) At(i int) Entry {
	return Entry{
		ID:       r.IDs[i],
		Website:  r.Websites[i],
		Username: r.Usernames[i],
		Password: r.Passwords[i],
		Notes:    r.Notes[i],
	}
}

// Append adds e at the end of every sequence.
func (r *Rows) Append(e Entry) {
	r.IDs = append(r.IDs, e.ID)
	r.Websites = append(r.Websites, e.Website)
	r.Usernames = append(r.Usernames, e.Username)
	r.Passwords = append(r.Passwords, e.Password)
	r.Notes = append(r.Notes, e.Notes)
}

// FilterField names the entry field a filtered read matches against.
type FilterField string

const (
	// FilterWebsite matches against Entry.Website.
	FilterWebsite FilterField = "website"
	// FilterUsername matches against Entry.Username.
	FilterUsername FilterField = "username"
)

// ParseFilterField validates s as a FilterField.
func ParseFilterField(s string) (FilterField, error) {
	switch f := FilterField(s); f {
	case FilterWebsite, FilterUsername:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilterField, s)
	}
}

// Of returns the value of the field f in e.
func (f FilterField) Of(e Entry) string {
	if f == FilterUsername {
		return e.Username
	}
	return e.Website
}

// Annotation is the derived strength metadata shown next to a password.
type Annotation struct {
	// Score is the strength score, 0 (weakest) to 4.
	Score int
	// Background is the cell background colour.
	Background string
	// Foreground is the cell text colour.
	Foreground string
	// CrackTime is the human-readable crack time estimate.
	CrackTime string
	// Hint is the scorer's warning, or its first suggestion when there is no warning.
	Hint string
}

// Registration is the backend's answer to a registration request.
type Registration struct {
	// Success is false when an account already exists.
	Success bool `json:"success"`
	// QRCode is the base64-encoded PNG of the second-factor enrolment code.
	QRCode string `json:"qrcode"`
}
