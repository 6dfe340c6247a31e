// Package cli is the terminal front end of the portal. It renders the
// router's single active view and turns typed commands into portal actions.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"wellmatch/internal/app"
)

// noticer is anything holding a dismissible inline message.
type noticer interface {
	Notice() app.Notice
	Dismiss()
}

// Shell reads commands from in and writes views to out.
type Shell struct {
	portal  *app.Portal
	in      *bufio.Scanner
	out     io.Writer
	log     *zap.Logger
	tempDir string

	// last is the component that handled the previous command; its notice
	// is the one shown and dismissed.
	last  noticer
	shown app.Notice
}

// Option configures a Shell.
type Option func(*Shell)

// WithTempDir sets where cropped photo previews are written.
func WithTempDir(dir string) Option {
	return func(s *Shell) { s.tempDir = dir }
}

// New creates a shell over portal.
func New(portal *app.Portal, in io.Reader, out io.Writer, log *zap.Logger, opts ...Option) *Shell {
	s := &Shell{
		portal:  portal,
		in:      bufio.NewScanner(in),
		out:     out,
		log:     log.Named("cli"),
		tempDir: os.TempDir(),
		last:    portal.Router,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run restores the session, then executes commands until quit, end of
// input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	s.render(app.ViewLoading)
	if _, err := s.portal.Router.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	s.enter(ctx)

	for {
		fmt.Fprintf(s.out, "%s> ", s.portal.Router.View())
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}

		before := s.portal.Router.View()
		if quit := s.exec(ctx, line); quit {
			return nil
		}
		if s.portal.Router.View() != before {
			s.enter(ctx)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// enter loads the data of the view just entered and renders it.
func (s *Shell) enter(ctx context.Context) {
	p := s.portal
	switch p.Router.View() {
	case app.ViewProfessional:
		_ = p.Profile.Load(ctx)
		_ = p.Reviews.Load(ctx)
		_ = p.Questionnaires.Load(ctx)
		s.last = p.Profile
	case app.ViewAdmin:
		_ = p.Moderation.LoadStats(ctx)
		s.last = p.Moderation
	default:
		s.last = p.Router
	}
	// A load can end the session.
	s.render(p.Router.View())
}

func (s *Shell) exec(ctx context.Context, line string) (quit bool) {
	name, args := splitCommand(line)
	view := s.portal.Router.View()

	switch name {
	case "quit", "exit":
		return true
	case "help":
		s.help(view)
		return false
	case "dismiss":
		s.last.Dismiss()
		return false
	}

	cmd, ok := lookup(view, name)
	if !ok {
		fmt.Fprintf(s.out, "unknown command %q in %s view, try help\n", name, view)
		return false
	}
	target, err := cmd.run(ctx, s, args)
	if target != nil {
		s.last = target
	}
	s.report(err)
	return false
}

// report prints the handling component's notice, or err when the
// component did not turn it into one.
func (s *Shell) report(err error) {
	var u usageError
	if errors.As(err, &u) {
		fmt.Fprintf(s.out, "usage: %s\n", string(u))
		return
	}
	// A notice is printed once unless the action failed again.
	if n := s.last.Notice(); !n.Empty() {
		if err != nil || n != s.shown {
			s.printNotice(n)
		}
		return
	}
	if err != nil {
		s.printNotice(app.Notice{Kind: app.NoticeError, Text: s.portal.Messages.ForError(err, app.MsgGeneric)})
	}
}

func (s *Shell) printNotice(n app.Notice) {
	s.shown = n
	mark := "!"
	if n.Kind == app.NoticeSuccess {
		mark = "ok"
	}
	fmt.Fprintf(s.out, "[%s] %s\n", mark, n.Text)
}

// splitCommand separates the command word, keeping a two word name for the
// commands that have subcommands.
func splitCommand(line string) (name, args string) {
	name, args, _ = strings.Cut(line, " ")
	args = strings.TrimSpace(args)
	switch name {
	case "location", "age", "template", "question", "settings", "goto":
		sub, rest, _ := strings.Cut(args, " ")
		if sub != "" {
			return name + " " + sub, strings.TrimSpace(rest)
		}
	}
	return name, args
}
