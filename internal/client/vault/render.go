package vault

import (
	"context"
	"fmt"

	"github.com/atinyakov/xenon/internal/client/strength"
	"github.com/atinyakov/xenon/internal/client/ui"
	"github.com/atinyakov/xenon/internal/models"
	"go.uber.org/zap"
)

// render replaces the table with rows read under generation gen. A result
// older than the one already on screen is dropped.
func (c *Controller) render(ctx context.Context, gen uint64, rows models.Rows) error {
	if err := rows.Validate(); err != nil {
		return err
	}
	annotations, err := strength.AnnotateAll(ctx, c.scorer, rows.Passwords)
	if err != nil {
		return fmt.Errorf("annotate passwords: %w", err)
	}

	c.mu.Lock()
	if gen <= c.rendered {
		c.mu.Unlock()
		c.log.Debug("dropping stale read", zap.Uint64("generation", gen), zap.Uint64("rendered", c.rendered))
		return nil
	}

	out := make([]ui.Row, rows.Len())
	for i := range out {
		out[i] = ui.Row{
			Entry:    rows.At(i),
			Strength: annotations[i],
			Edit: func(ctx context.Context) error {
				return c.openAt(ctx, gen, i)
			},
			Delete: func(ctx context.Context) error {
				return c.deleteAt(ctx, gen, i)
			},
		}
	}

	if c.b.Table != nil {
		c.b.Table.Replace(out)
	}
	setVisible(c.b.EmptyState, len(out) == 0)
	c.rows = rows
	c.rendered = gen
	closed := c.recursor()
	c.mu.Unlock()

	if closed {
		setVisible(c.b.EditPanel, false)
		setVisible(c.b.AddPanel, true)
	}
	c.log.Debug("table rendered", zap.Int("rows", len(out)), zap.Uint64("generation", gen))
	return nil
}

// recursor points the Edit Cursor at the edited entry's position in the new
// rows. When the entry is no longer shown the editor is closed and recursor
// reports true. Callers hold c.mu.
func (c *Controller) recursor() bool {
	if c.cursorID == "" {
		return false
	}
	for i, id := range c.rows.IDs {
		if id == c.cursorID {
			c.cursor = i
			return false
		}
	}
	c.log.Debug("edited entry left the table", zap.String("id", c.cursorID))
	c.cursor, c.cursorID = -1, ""
	return true
}
