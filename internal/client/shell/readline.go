package shell

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
)

// Readline adapts a readline instance to Prompter.
type Readline struct {
	RL *readline.Instance
}

func (r Readline) ReadPassword(prompt string) (string, error) {
	b, err := r.RL.ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Run reads and executes lines until exit, EOF or ctx is done. Ctrl-C does
// not leave the shell.
func (s *Shell) Run(ctx context.Context, rl *readline.Instance) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rl.SetPrompt(s.Prompt())

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(s.out, "Use 'exit' to leave the shell.")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		err = s.Exec(ctx, line)
		if errors.Is(err, ErrExit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(s.out, "Error:", err)
		}
	}
}
