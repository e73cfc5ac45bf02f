package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_NeverExcluded(t *testing.T) {
	p := Params{Length: 64, Lowercase: true, Uppercase: true, Numbers: true, Symbols: true, Exclude: DefaultExclude}
	for i := 0; i < 200; i++ {
		pw, err := Generate(p)
		require.NoError(t, err)
		assert.Len(t, pw, 64)
		assert.False(t, strings.ContainsAny(pw, `<>"`), "generated %q", pw)
	}
}

func TestGenerate_Classes(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		allowed string
	}{
		{"lower", Params{Length: 20, Lowercase: true}, lowercase},
		{"upper", Params{Length: 20, Uppercase: true}, uppercase},
		{"numbers", Params{Length: 20, Numbers: true}, numbers},
		{"lower+numbers", Params{Length: 20, Lowercase: true, Numbers: true}, lowercase + numbers},
		{"symbols without excluded", Params{Length: 30, Symbols: true, Exclude: DefaultExclude}, "!@#$%^&*()+_-=}{[]|:;/?.,`~'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pw, err := Generate(tt.params)
			require.NoError(t, err)
			assert.Len(t, pw, tt.params.Length)
			for _, r := range pw {
				assert.True(t, strings.ContainsRune(tt.allowed, r), "unexpected %q in %q", r, pw)
			}
		})
	}
}

func TestGenerate_EveryClassPresent(t *testing.T) {
	p := Params{Length: 4, Lowercase: true, Uppercase: true, Numbers: true, Symbols: true, Exclude: DefaultExclude}
	for i := 0; i < 50; i++ {
		pw, err := Generate(p)
		require.NoError(t, err)
		assert.True(t, strings.ContainsAny(pw, lowercase), pw)
		assert.True(t, strings.ContainsAny(pw, uppercase), pw)
		assert.True(t, strings.ContainsAny(pw, numbers), pw)
		assert.True(t, strings.ContainsAny(pw, symbols), pw)
	}
}

func TestGenerate_ShortLength(t *testing.T) {
	pw, err := Generate(Params{Length: 2, Lowercase: true, Uppercase: true, Numbers: true})
	require.NoError(t, err)
	assert.Len(t, pw, 2)
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate(Params{Length: 0, Lowercase: true})
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, err = Generate(Params{Length: 10})
	assert.ErrorIs(t, err, ErrNoClasses)

	_, err = Generate(Params{Length: 10, Numbers: true, Exclude: numbers})
	assert.ErrorIs(t, err, ErrNoClasses)
}
