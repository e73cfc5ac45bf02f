package strength

import (
	"context"
	"fmt"
	"testing"

	"github.com/atinyakov/xenon/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scorerFunc adapts a function to Scorer.
type scorerFunc func(string) Result

func (f scorerFunc) Score(pw string) Result { return f(pw) }

func lengthScorer(pw string) Result {
	return Result{Score: len(pw) % 6, CrackTime: fmt.Sprintf("%d days", len(pw))}
}

func TestColors(t *testing.T) {
	tests := []struct {
		score  int
		bg, fg string
	}{
		{0, "#800000", "#ffffff"},
		{1, "#ff0000", "#000000"},
		{2, "#ff8000", "#000000"},
		{3, "#ffff00", "#000000"},
		{4, "#00ff00", "#000000"},
		{5, "#000000ff", "#ffffff"},
		{-1, "#000000ff", "#ffffff"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.score), func(t *testing.T) {
			bg, fg := Colors(tt.score)
			assert.Equal(t, tt.bg, bg)
			assert.Equal(t, tt.fg, fg)
		})
	}
}

func TestAnnotate_Hint(t *testing.T) {
	withWarning := scorerFunc(func(string) Result {
		return Result{Score: 1, CrackTime: "3 minutes", Warning: "w", Suggestions: []string{"s1", "s2"}}
	})
	onlySuggestions := scorerFunc(func(string) Result {
		return Result{Score: 2, Suggestions: []string{"s1", "s2"}}
	})
	nothing := scorerFunc(func(string) Result { return Result{Score: 4} })

	a := Annotate(withWarning, "x")
	assert.Equal(t, models.Annotation{Score: 1, Background: "#ff0000", Foreground: "#000000", CrackTime: "3 minutes", Hint: "w"}, a)
	assert.Equal(t, "s1", Annotate(onlySuggestions, "x").Hint)
	assert.Empty(t, Annotate(nothing, "x").Hint)
}

func TestAnnotateAll_PreservesOrder(t *testing.T) {
	passwords := make([]string, 50)
	for i := range passwords {
		passwords[i] = fmt.Sprintf("%0*d", i+1, 0)
	}

	got, err := AnnotateAll(context.Background(), scorerFunc(lengthScorer), passwords)
	require.NoError(t, err)
	require.Len(t, got, len(passwords))
	for i, a := range got {
		assert.Equal(t, fmt.Sprintf("%d days", i+1), a.CrackTime)
		assert.Equal(t, (i+1)%6, a.Score)
	}
}

func TestAnnotateAll_MatchesSequential(t *testing.T) {
	passwords := []string{"password", "Tr0ub4dor&3", "correct horse battery staple", "", "qwerty"}
	got, err := AnnotateAll(context.Background(), Zxcvbn{}, passwords)
	require.NoError(t, err)
	for i, pw := range passwords {
		assert.Equal(t, Annotate(Zxcvbn{}, pw), got[i], pw)
	}
}

func TestAnnotateAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AnnotateAll(ctx, scorerFunc(lengthScorer), []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestZxcvbn_Deterministic(t *testing.T) {
	for _, pw := range []string{"password", "Tr0ub4dor&3", "zQ7!vL2#pX9@", "aaaaaaaa"} {
		first := Annotate(Zxcvbn{}, pw)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, Annotate(Zxcvbn{}, pw), pw)
		}
		assert.GreaterOrEqual(t, first.Score, 0)
		assert.LessOrEqual(t, first.Score, 4)
		assert.NotEmpty(t, first.CrackTime, pw)
	}
}

func TestZxcvbn_WeakPassword(t *testing.T) {
	r := Zxcvbn{}.Score("password")
	assert.LessOrEqual(t, r.Score, 1)
	assert.NotEmpty(t, r.Suggestions)
	assert.NotEmpty(t, Annotate(Zxcvbn{}, "password").Hint)

	empty := Zxcvbn{}.Score("")
	assert.Equal(t, 0, empty.Score)
	assert.NotEmpty(t, empty.Warning)
}
