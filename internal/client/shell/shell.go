// Package shell is the terminal front end: it binds both controllers to an
// in-memory Screen and turns each command line into the button press or
// input edit it stands for.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/atinyakov/xenon/internal/backend"
	"github.com/atinyakov/xenon/internal/client/auth"
	"github.com/atinyakov/xenon/internal/client/session"
	"github.com/atinyakov/xenon/internal/client/ui"
	"github.com/atinyakov/xenon/internal/client/vault"
	"github.com/atinyakov/xenon/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrExit is returned by Exec for the exit command.
	ErrExit = errors.New("exit requested")
	// ErrUsage is returned for a malformed command.
	ErrUsage = errors.New("usage")
	// ErrUnknownCommand is returned for a command that does not exist in the current mode.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrNoPrompter is returned when a hidden value is needed but no prompter is set.
	ErrNoPrompter = errors.New("no interactive prompt available")
)

// Prompter reads a value without echoing it.
type Prompter interface {
	ReadPassword(prompt string) (string, error)
}

// Shell executes command lines against the auth and vault controllers.
type Shell struct {
	screen   *Screen
	auth     *auth.Controller
	vault    *vault.Controller
	out      io.Writer
	prompter Prompter
	qrPath   string
	log      *zap.Logger
}

// Option configures a Shell.
type Option func(*Shell)

// WithPrompter sets the hidden input reader used for passwords.
func WithPrompter(p Prompter) Option {
	return func(s *Shell) { s.prompter = p }
}

// WithQRPath sets where the enrolment QR code is written.
func WithQRPath(path string) Option {
	return func(s *Shell) { s.qrPath = path }
}

// WithLogger sets the logger passed to both controllers.
func WithLogger(l *zap.Logger) Option {
	return func(s *Shell) { s.log = l }
}

// New wires a fresh Screen, session and both controllers to be.
func New(be backend.Backend, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		screen: NewScreen(),
		out:    out,
		qrPath: "xenon-qr.png",
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	cred := &session.Credential{}
	s.vault = vault.New(s.screen.VaultBindings(), be, cred, vault.WithLogger(s.log.Named("vault")))
	s.auth = auth.New(s.screen.AuthBindings(), be, cred,
		auth.WithLogger(s.log.Named("auth")),
		auth.WithOnEnter(s.vault.LoadAll),
	)
	return s
}

// Screen returns the regions the shell prints from.
func (s *Shell) Screen() *Screen {
	return s.screen
}

// Prompt returns the prompt for the current mode.
func (s *Shell) Prompt() string {
	if !s.auth.Entered() {
		return "xenon (locked)> "
	}
	if s.vault.EditCursor() != -1 {
		return fmt.Sprintf("xenon [editing %d]> ", s.vault.EditCursor()+1)
	}
	return "xenon> "
}

type handler func(s *Shell, ctx context.Context, args []string) error

type command struct {
	run   handler
	usage string
}

var authCommands = map[string]command{
	"password": {(*Shell).cmdPassword, "password [value]   set the master password (prompted when omitted)"},
	"code":     {(*Shell).cmdCode, "code <digits>      set the authenticator code"},
	"login":    {(*Shell).cmdLogin, "login              log in with password and code"},
	"register": {(*Shell).cmdRegister, "register           create the account and write its QR code"},
	"done":     {(*Shell).cmdDone, "done               open the vault"},
}

var vaultCommands = map[string]command{
	"list":   {(*Shell).cmdList, "list                            show every entry"},
	"search": {(*Shell).cmdSearch, "search website|username <query> show matching entries"},
	"reset":  {(*Shell).cmdReset, "reset                           clear the search"},
	"set":    {(*Shell).cmdSet, "set <field> [value]             set add.*, edit.*, search, newpw or length"},
	"toggle": {(*Shell).cmdToggle, "toggle lower|upper|numbers|symbols  flip a generator class"},
	"add":    {(*Shell).cmdAdd, "add                             save the add form as a new entry"},
	"edit":   {(*Shell).cmdEdit, "edit <row>                      open a row in the editor"},
	"save":   {(*Shell).cmdSave, "save                            save the editor"},
	"cancel": {(*Shell).cmdCancel, "cancel                          close the editor"},
	"delete": {(*Shell).cmdDelete, "delete <row>                    delete a row"},
	"gen":    {(*Shell).cmdGen, "gen add|edit                    generate a password into a form"},
	"rotate": {(*Shell).cmdRotate, "rotate                          change the master password to newpw"},
	"show":   {(*Shell).cmdShow, "show                            print forms, generator and status"},
}

// Exec runs one command line. It returns ErrExit for the exit command.
func (s *Shell) Exec(ctx context.Context, line string) error {
	args := ParseArgs(line)
	if len(args) == 0 {
		return nil
	}
	name, args := args[0], args[1:]

	switch name {
	case "help":
		s.help()
		return nil
	case "exit", "quit":
		return ErrExit
	}

	commands := authCommands
	if s.auth.Entered() {
		commands = vaultCommands
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %s (type 'help')", ErrUnknownCommand, name)
	}
	return cmd.run(s, ctx, args)
}

func (s *Shell) help() {
	commands := authCommands
	if s.auth.Entered() {
		commands = vaultCommands
	}
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Fprintln(s.out, "Available commands:")
	for _, n := range names {
		fmt.Fprintf(s.out, "  %s\n", commands[n].usage)
	}
	fmt.Fprintln(s.out, "  help\n  exit")
}

func (s *Shell) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

// hidden returns args joined, or prompts for a value when args is empty.
func (s *Shell) hidden(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if s.prompter == nil {
		return "", ErrNoPrompter
	}
	return s.prompter.ReadPassword(prompt)
}

func (s *Shell) cmdPassword(_ context.Context, args []string) error {
	pw, err := s.hidden(args, "Master password: ")
	if err != nil {
		return err
	}
	s.screen.Password.SetValue(pw)
	return nil
}

func (s *Shell) cmdCode(_ context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: code <digits>", ErrUsage)
	}
	s.screen.Code.SetValue(args[0])
	return nil
}

func (s *Shell) cmdLogin(ctx context.Context, _ []string) error {
	if err := s.auth.Login(ctx); err != nil {
		return err
	}
	s.printf("%s\n", s.screen.Message.String())
	if s.screen.DoneButton.Visible() {
		s.printf("Type 'done' to open the vault.\n")
	}
	return nil
}

func (s *Shell) cmdRegister(ctx context.Context, _ []string) error {
	if err := s.auth.Register(ctx); err != nil {
		return err
	}
	if s.screen.QR.Visible() {
		if err := os.WriteFile(s.qrPath, s.screen.QR.PNG(), 0o600); err != nil {
			return fmt.Errorf("write QR code: %w", err)
		}
		s.printf("QR code written to %s\n", s.qrPath)
	}
	s.printf("%s\n", s.screen.Message.String())
	if s.screen.DoneButton.Visible() {
		s.printf("Type 'done' to open the vault.\n")
	}
	return nil
}

func (s *Shell) cmdDone(ctx context.Context, _ []string) error {
	if err := s.auth.Done(ctx); err != nil {
		return err
	}
	s.printTable()
	return nil
}

func (s *Shell) cmdList(ctx context.Context, _ []string) error {
	if err := s.vault.LoadAll(ctx); err != nil {
		return err
	}
	s.printTable()
	return nil
}

func (s *Shell) cmdSearch(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: search website|username <query>", ErrUsage)
	}
	field, err := models.ParseFilterField(args[0])
	if err != nil {
		return err
	}
	s.screen.Search.SetValue(strings.Join(args[1:], " "))
	if err := s.vault.Search(ctx, field); err != nil {
		return err
	}
	s.printTable()
	return nil
}

func (s *Shell) cmdReset(ctx context.Context, _ []string) error {
	if err := s.vault.ResetSearch(ctx); err != nil {
		return err
	}
	s.printTable()
	return nil
}

// input resolves a settable field name.
func (s *Shell) input(name string) (*ui.Field, bool) {
	forms := map[string]FormFields{"add": s.screen.Add, "edit": s.screen.Edit}
	if form, field, ok := strings.Cut(name, "."); ok {
		f, found := forms[form]
		if !found {
			return nil, false
		}
		switch field {
		case "website":
			return f.Website, true
		case "username":
			return f.Username, true
		case "password":
			return f.Password, true
		case "notes":
			return f.Notes, true
		}
		return nil, false
	}
	switch name {
	case "search":
		return s.screen.Search, true
	case "newpw":
		return s.screen.NewMasterPassword, true
	case "length":
		return s.screen.Length, true
	}
	return nil, false
}

func (s *Shell) cmdSet(_ context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: set <field> [value]", ErrUsage)
	}
	in, ok := s.input(args[0])
	if !ok {
		return fmt.Errorf("%w: unknown field %q", ErrUsage, args[0])
	}
	value := strings.Join(args[1:], " ")
	if len(args) == 1 && (strings.HasSuffix(args[0], ".password") || args[0] == "newpw") {
		v, err := s.hidden(nil, args[0]+": ")
		if err != nil {
			return err
		}
		value = v
	}
	in.SetValue(value)
	return nil
}

func (s *Shell) cmdToggle(_ context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: toggle lower|upper|numbers|symbols", ErrUsage)
	}
	toggles := map[string]*ui.Field{
		"lower":   s.screen.Lower,
		"upper":   s.screen.Upper,
		"numbers": s.screen.Numbers,
		"symbols": s.screen.Symbols,
	}
	t, ok := toggles[args[0]]
	if !ok {
		return fmt.Errorf("%w: toggle lower|upper|numbers|symbols", ErrUsage)
	}
	t.SetChecked(!t.Checked())
	s.printf("%s: %s\n", args[0], onOff(t.Checked()))
	return nil
}

func (s *Shell) cmdAdd(ctx context.Context, _ []string) error {
	if err := s.vault.SubmitAdd(ctx); err != nil {
		return err
	}
	s.printTable()
	return nil
}

// row parses a 1-based row number into the rendered row.
func (s *Shell) row(args []string) (ui.Row, error) {
	if len(args) != 1 {
		return ui.Row{}, fmt.Errorf("%w: <row>", ErrUsage)
	}
	n, err := strconv.Atoi(args[0])
	rows := s.screen.Table.Rows()
	if err != nil || n < 1 || n > len(rows) {
		return ui.Row{}, fmt.Errorf("%w: %s", vault.ErrIndexOutOfRange, args[0])
	}
	return rows[n-1], nil
}

func (s *Shell) cmdEdit(ctx context.Context, args []string) error {
	r, err := s.row(args)
	if err != nil {
		return err
	}
	if err := r.Edit(ctx); err != nil {
		return err
	}
	s.printForm("Editing", s.screen.Edit)
	return nil
}

func (s *Shell) cmdSave(ctx context.Context, _ []string) error {
	if err := s.vault.CommitEdit(ctx); err != nil {
		return err
	}
	s.printTable()
	return nil
}

func (s *Shell) cmdCancel(_ context.Context, _ []string) error {
	s.vault.CloseEditor()
	return nil
}

func (s *Shell) cmdDelete(ctx context.Context, args []string) error {
	r, err := s.row(args)
	if err != nil {
		return err
	}
	if err := r.Delete(ctx); err != nil {
		return err
	}
	s.printTable()
	return nil
}

func (s *Shell) cmdGen(ctx context.Context, args []string) error {
	if len(args) != 1 || (args[0] != "add" && args[0] != "edit") {
		return fmt.Errorf("%w: gen add|edit", ErrUsage)
	}
	target := s.screen.Add.Password
	if args[0] == "edit" {
		target = s.screen.Edit.Password
	}
	if err := s.vault.GeneratePassword(ctx, target); err != nil {
		return err
	}
	s.printf("%s.password = %s\n", args[0], target.Value())
	return nil
}

func (s *Shell) cmdRotate(ctx context.Context, _ []string) error {
	if s.screen.NewMasterPassword.Value() == "" && s.prompter != nil {
		v, err := s.prompter.ReadPassword("New master password: ")
		if err != nil {
			return err
		}
		s.screen.NewMasterPassword.SetValue(v)
	}
	if err := s.vault.RotateMasterPassword(ctx); err != nil {
		return err
	}
	s.printf("%s\n", s.screen.Status.String())
	return nil
}

func (s *Shell) cmdShow(_ context.Context, _ []string) error {
	if s.screen.EditPanel.Visible() {
		s.printForm("Editing", s.screen.Edit)
	} else {
		s.printForm("New entry", s.screen.Add)
	}
	s.printf("Generator: length %s, lower %s, upper %s, numbers %s, symbols %s\n",
		s.screen.Length.Value(),
		onOff(s.screen.Lower.Checked()),
		onOff(s.screen.Upper.Checked()),
		onOff(s.screen.Numbers.Checked()),
		onOff(s.screen.Symbols.Checked()),
	)
	if q := s.screen.Search.Value(); q != "" {
		s.printf("Search: %s\n", q)
	}
	if st := s.screen.Status.String(); st != "" {
		s.printf("Status: %s\n", st)
	}
	return nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// ParseArgs splits a command line on spaces. Double quotes group words and
// are removed.
func ParseArgs(input string) []string {
	var args []string
	var cur strings.Builder
	inQuotes, quoted := false, false

	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			quoted = true
		case (r == ' ' || r == '\t') && !inQuotes:
			if cur.Len() > 0 || quoted {
				args = append(args, cur.String())
				cur.Reset()
			}
			quoted = false
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 || quoted {
		args = append(args, cur.String())
	}
	return args
}
