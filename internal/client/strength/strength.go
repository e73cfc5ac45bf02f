// Package strength scores passwords and maps scores to the colours and labels
// shown next to each row.
package strength

import (
	"context"
	"runtime"
	"strings"

	"github.com/atinyakov/xenon/internal/models"
	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/sync/errgroup"
)

// Result is the raw output of a Scorer.
type Result struct {
	// Score is 0 (weakest) to 4.
	Score       int
	CrackTime   string
	Warning     string
	Suggestions []string
}

// Scorer rates a password. Implementations must be pure.
type Scorer interface {
	Score(password string) Result
}

const (
	fallbackBackground = "#000000ff"
	fallbackForeground = "#ffffff"
)

var backgrounds = [...]string{"#800000", "#ff0000", "#ff8000", "#ffff00", "#00ff00"}

var foregrounds = [...]string{"#ffffff", "#000000", "#000000", "#000000", "#000000"}

// Colors returns the background and text colour for score.
func Colors(score int) (background, foreground string) {
	if score < 0 || score >= len(backgrounds) {
		return fallbackBackground, fallbackForeground
	}
	return backgrounds[score], foregrounds[score]
}

// Annotate scores password and derives its display annotation.
func Annotate(s Scorer, password string) models.Annotation {
	r := s.Score(password)
	bg, fg := Colors(r.Score)

	hint := r.Warning
	if hint == "" && len(r.Suggestions) > 0 {
		hint = r.Suggestions[0]
	}
	return models.Annotation{
		Score:      r.Score,
		Background: bg,
		Foreground: fg,
		CrackTime:  r.CrackTime,
		Hint:       hint,
	}
}

// AnnotateAll annotates every password concurrently; out[i] belongs to passwords[i].
func AnnotateAll(ctx context.Context, s Scorer, passwords []string) ([]models.Annotation, error) {
	out := make([]models.Annotation, len(passwords))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, pw := range passwords {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = Annotate(s, pw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Zxcvbn scores passwords with the zxcvbn estimator.
type Zxcvbn struct {
	// UserInputs are extra words treated as guessable, such as the username.
	UserInputs []string
}

func (z Zxcvbn) Score(password string) Result {
	if password == "" {
		return Result{Score: 0, CrackTime: "instant", Warning: "Password is empty."}
	}
	m := zxcvbn.PasswordStrength(password, z.UserInputs)

	r := Result{Score: m.Score, CrackTime: m.CrackTimeDisplay}
	if m.Score > 2 {
		return r
	}

	// The longest match dominates the guess estimate, so it drives the feedback.
	var pattern, dictionary string
	longest := -1
	for _, mt := range m.MatchSequence {
		if n := mt.J - mt.I; n > longest {
			longest = n
			pattern, dictionary = mt.Pattern, mt.DictionaryName
		}
	}
	r.Warning = warning(pattern, dictionary, len(m.MatchSequence) == 1)
	r.Suggestions = []string{
		"Add another word or two. Uncommon words are better.",
		"Use a few words, avoid common phrases.",
	}
	return r
}

func warning(pattern, dictionary string, sole bool) string {
	switch pattern {
	case "dictionary":
		switch {
		case dictionary == "passwords":
			return "This is similar to a commonly used password."
		case strings.HasSuffix(dictionary, "names"):
			return "Common names and surnames are easy to guess."
		case sole:
			return "A word by itself is easy to guess."
		}
	case "spatial":
		return "Straight rows of keys are easy to guess."
	case "repeat":
		return `Repeats like "aaa" are easy to guess.`
	case "sequence":
		return "Sequences like abc or 6543 are easy to guess."
	case "date":
		return "Dates are often easy to guess."
	}
	return ""
}
