package ui

import (
	"testing"

	"github.com/atinyakov/xenon/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestField(t *testing.T) {
	f := NewField("a")
	assert.Equal(t, "a", f.Value())
	assert.True(t, f.Visible())
	assert.False(t, f.Checked())

	f.SetValue("b")
	f.SetChecked(true)
	f.SetVisible(false)
	assert.Equal(t, "b", f.Value())
	assert.True(t, f.Checked())
	assert.False(t, f.Visible())
}

func TestPanelAndPicture(t *testing.T) {
	p := NewPanel(false)
	assert.False(t, p.Visible())
	p.SetVisible(true)
	assert.True(t, p.Visible())

	var pic Picture
	assert.False(t, pic.Visible())
	pic.SetImage([]byte{1, 2})
	pic.SetVisible(true)
	assert.Equal(t, []byte{1, 2}, pic.PNG())
	assert.True(t, pic.Visible())
}

func TestGrid_Replace(t *testing.T) {
	var g Grid
	assert.True(t, g.Empty())

	g.Replace([]Row{{Entry: models.Entry{Website: "a"}}, {Entry: models.Entry{Website: "b"}}})
	assert.False(t, g.Empty())

	g.Replace([]Row{{Entry: models.Entry{Website: "c"}}})
	rows := g.Rows()
	if assert.Len(t, rows, 1) {
		assert.Equal(t, "c", rows[0].Entry.Website)
	}

	g.Replace(nil)
	assert.True(t, g.Empty())
}
