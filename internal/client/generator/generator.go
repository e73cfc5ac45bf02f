// Package generator produces random passwords from character-class flags.
package generator

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numbers   = "0123456789"
	symbols   = "!@#$%^&*()+_-=}{[]|:;\"/?.><,`~'"

	// DefaultExclude lists characters that are never generated.
	DefaultExclude = "\"<>"
)

var (
	// ErrInvalidLength is returned for a length below one.
	ErrInvalidLength = errors.New("password length must be positive")
	// ErrNoClasses is returned when no character class is enabled.
	ErrNoClasses = errors.New("at least one character class must be enabled")
)

// Params describes one generation request.
type Params struct {
	Length    int
	Lowercase bool
	Uppercase bool
	Numbers   bool
	Symbols   bool
	// Exclude lists characters removed from every class.
	Exclude string
}

func (p Params) classes() []string {
	var out []string
	add := func(enabled bool, set string) {
		if !enabled {
			return
		}
		set = strings.Map(func(r rune) rune {
			if strings.ContainsRune(p.Exclude, r) {
				return -1
			}
			return r
		}, set)
		if set != "" {
			out = append(out, set)
		}
	}
	add(p.Lowercase, lowercase)
	add(p.Uppercase, uppercase)
	add(p.Numbers, numbers)
	add(p.Symbols, symbols)
	return out
}

// Generate returns a password of exactly p.Length characters drawn from the
// enabled classes. When the length allows, every enabled class is represented.
func Generate(p Params) (string, error) {
	if p.Length < 1 {
		return "", ErrInvalidLength
	}
	classes := p.classes()
	if len(classes) == 0 {
		return "", ErrNoClasses
	}
	pool := strings.Join(classes, "")

	out := make([]byte, 0, p.Length)
	if p.Length >= len(classes) {
		for _, c := range classes {
			b, err := pick(c)
			if err != nil {
				return "", err
			}
			out = append(out, b)
		}
	}
	for len(out) < p.Length {
		b, err := pick(pool)
		if err != nil {
			return "", err
		}
		out = append(out, b)
	}
	if err := shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

func pick(set string) (byte, error) {
	n, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[n], nil
}

func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return int(v.Int64()), nil
}
