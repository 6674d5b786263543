// Package shell is an interactive terminal front end for the user admin
// client.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"useradmin/apperrors"
	"useradmin/pkg/logger"
	"useradmin/services/users"
)

const helpText = `Commands:
  tab <name>     switch tab (list, create, update, details, docs)
  list           open the users list (refetches)
  refresh        reload the users list
  create         add a user
  select <id>    pick the user to update
  update         update the selected user
  edit <id>      select a user and open the update tab
  delete <id>    delete a user (asks for confirmation)
  show <id>      show user details
  docs           show the API reference
  dismiss        clear the current notification
  help           show this help
  quit           exit`

type Config struct {
	In     io.Reader
	Out    io.Writer
	Prompt string
	Logger *logger.Logger

	// Admin options; View and Confirmer are filled in by the shell
	Admin users.Options
}

type Shell struct {
	in     *bufio.Scanner
	out    io.Writer
	prompt string
	view   *TerminalView
	admin  *users.Admin
	log    *logger.Logger
}

func New(cfg Config) *Shell {
	if cfg.Prompt == "" {
		cfg.Prompt = "useradmin> "
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetDefault()
	}

	s := &Shell{
		in:     bufio.NewScanner(cfg.In),
		out:    cfg.Out,
		prompt: cfg.Prompt,
		view:   NewTerminalView(cfg.Out),
		log:    cfg.Logger.Component("shell"),
	}

	opts := cfg.Admin
	opts.View = s.view
	opts.Confirmer = users.ConfirmFunc(s.confirm)
	if opts.Logger == nil {
		opts.Logger = cfg.Logger
	}
	s.admin = users.NewAdmin(opts)
	return s
}

func (s *Shell) Admin() *users.Admin {
	return s.admin
}

// Run starts the client and reads commands until quit, EOF or ctx is done
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintf(s.out, "User Management shell. API: %s\n", s.admin.BaseURL())
	fmt.Fprintln(s.out, "Type `help` for commands.")
	s.admin.Start(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, ok := s.readLine(s.prompt)
		if !ok {
			return s.in.Err()
		}
		if line == "" {
			continue
		}

		if quit := s.dispatch(ctx, line); quit {
			return nil
		}
	}
}

func (s *Shell) readLine(prompt string) (string, bool) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Shell) confirm(prompt string) bool {
	answer, ok := s.readLine(prompt + " [y/N] ")
	if !ok {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

// dispatch runs one command line and reports whether the shell should exit.
// Failures have already been shown as notifications by the client.
func (s *Shell) dispatch(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(s.out, helpText)
	case "tab":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "usage: tab <name>")
			return false
		}
		err = s.admin.SwitchTab(ctx, args[0])
	case "list":
		err = s.admin.SwitchTab(ctx, string(users.TabList))
	case "refresh":
		err = s.admin.Refresh(ctx)
	case "docs":
		err = s.admin.SwitchTab(ctx, string(users.TabDocs))
	case "create":
		err = s.create(ctx)
	case "update":
		err = s.update(ctx)
	case "select", "edit", "delete", "show":
		id, ok := s.parseID(cmd, args)
		if !ok {
			return false
		}
		switch cmd {
		case "select":
			err = s.admin.SelectForUpdate(id)
		case "edit":
			err = s.admin.EditUser(ctx, id)
		case "delete":
			err = s.admin.DeleteUser(ctx, id)
			if apperrors.HasCode(err, apperrors.ErrCodeCancelled) {
				fmt.Fprintln(s.out, "Delete cancelled")
				err = nil
			}
		case "show":
			if err = s.admin.SwitchTab(ctx, string(users.TabDetails)); err == nil {
				err = s.admin.ShowDetails(ctx, id)
			}
		}
	case "dismiss":
		s.admin.Notifier().DismissCurrent()
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type `help` for commands.\n", cmd)
	}

	if err != nil {
		s.log.WithError(err).WithField("command", cmd).Debug("command failed")
	}
	return false
}

func (s *Shell) parseID(cmd string, args []string) (int64, bool) {
	if len(args) != 1 {
		fmt.Fprintf(s.out, "usage: %s <id>\n", cmd)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(s.out, "Invalid user ID %q\n", args[0])
		return 0, false
	}
	return id, true
}

// readForm prompts for every form field. hint is shown next to each prompt.
func (s *Shell) readForm(hint string) (users.UserForm, bool) {
	var form users.UserForm
	fields := []struct {
		label string
		dst   *string
	}{
		{"Username", &form.Username},
		{"Email", &form.Email},
		{"Password", &form.Password},
		{"Full Name", &form.FullName},
		{"Role (" + roleChoices() + ")", &form.Role},
	}

	for _, f := range fields {
		v, ok := s.readLine(f.label + hint + ": ")
		if !ok {
			return form, false
		}
		*f.dst = v
	}
	return form, true
}

func roleChoices() string {
	names := make([]string, len(users.Roles))
	for i, r := range users.Roles {
		names[i] = string(r)
	}
	return strings.Join(names, "/")
}

func (s *Shell) create(ctx context.Context) error {
	if err := s.admin.SwitchTab(ctx, string(users.TabCreate)); err != nil {
		return err
	}
	form, ok := s.readForm("")
	if !ok {
		return nil
	}
	_, err := s.admin.SubmitCreate(ctx, form)
	return err
}

func (s *Shell) update(ctx context.Context) error {
	if s.admin.Selected() == 0 {
		// Let the client report the missing selection
		_, err := s.admin.SubmitUpdate(ctx, users.UserForm{})
		return err
	}
	form, ok := s.readForm(" (blank keeps)")
	if !ok {
		return nil
	}
	_, err := s.admin.SubmitUpdate(ctx, form)
	return err
}
