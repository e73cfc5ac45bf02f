package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRows_AppendAt(t *testing.T) {
	var r Rows
	r.Append(Entry{ID: "1", Website: "a.com", Username: "alice", Password: "p1", Notes: "n1"})
	r.Append(Entry{ID: "2", Website: "b.com", Username: "bob", Password: "p2"})

	require.NoError(t, r.Validate())
	require.Equal(t, 2, r.Len())
	assert.Equal(t, Entry{ID: "2", Website: "b.com", Username: "bob", Password: "p2"}, r.At(1))
	assert.Equal(t, "alice", r.At(0).Username)
}

func TestRows_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rows    Rows
		wantErr bool
	}{
		{name: "empty", rows: Rows{}},
		{
			name: "aligned",
			rows: Rows{IDs: []string{"1"}, Websites: []string{"w"}, Usernames: []string{"u"}, Passwords: []string{"p"}, Notes: []string{""}},
		},
		{
			name:    "short passwords",
			rows:    Rows{IDs: []string{"1"}, Websites: []string{"w"}, Usernames: []string{"u"}, Notes: []string{""}},
			wantErr: true,
		},
		{
			name:    "missing ids",
			rows:    Rows{Websites: []string{"w"}, Usernames: []string{"u"}, Passwords: []string{"p"}, Notes: []string{""}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rows.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrMisalignedRows), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseFilterField(t *testing.T) {
	f, err := ParseFilterField("website")
	require.NoError(t, err)
	assert.Equal(t, FilterWebsite, f)

	f, err = ParseFilterField("username")
	require.NoError(t, err)
	assert.Equal(t, FilterUsername, f)

	_, err = ParseFilterField("notes")
	assert.ErrorIs(t, err, ErrUnknownFilterField)
}

func TestFilterField_Of(t *testing.T) {
	e := Entry{Website: "example.com", Username: "alice"}
	assert.Equal(t, "example.com", FilterWebsite.Of(e))
	assert.Equal(t, "alice", FilterUsername.Of(e))
}
