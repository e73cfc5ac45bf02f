// Package main starts the Xenon vault shell against a command server.
package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/xenon/internal/client/shell"
	"github.com/atinyakov/xenon/internal/client/transport"
	"github.com/atinyakov/xenon/internal/config"
	"github.com/atinyakov/xenon/internal/logger"
	"github.com/chzyer/readline"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

func main() {
	opts, err := config.ParseClient(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Xenon %s (built %s)\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))

	log := logger.New()
	if err := log.Init(opts.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = log.Log.Sync() }()

	if err := run(opts, log.Log); err != nil {
		log.Log.Error("shell stopped", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(opts *config.Client, log *zap.Logger) error {
	clientOpts := []transport.Option{transport.WithLogger(log.Named("transport"))}
	if opts.CA != "" || opts.Cert != "" {
		hc, err := transport.NewHTTPClient(opts.CA, opts.Cert, opts.Key)
		if err != nil {
			return err
		}
		clientOpts = append(clientOpts, transport.WithHTTPClient(hc))
	}
	be := transport.New(opts.URL, clientOpts...)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "xenon (locked)> ",
		HistoryFile:     opts.History,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	sh := shell.New(be, rl.Stdout(),
		shell.WithPrompter(shell.Readline{RL: rl}),
		shell.WithQRPath(opts.QRPath),
		shell.WithLogger(log),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(rl.Stdout(), "Type 'help' for a list of commands.")
	return sh.Run(ctx, rl)
}
