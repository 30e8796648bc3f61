// Command chat runs the shop assistant in a terminal against the same
// services as the HTTP server.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/spec-kit/farm-shop/internal/chat"
	"github.com/spec-kit/farm-shop/internal/chatstore"
	"github.com/spec-kit/farm-shop/internal/config"
	"github.com/spec-kit/farm-shop/internal/container"
	"github.com/spec-kit/farm-shop/internal/observability"
)

var version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "farm-chat",
		Usage:   "talk to the Fresh Valley assistant",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "session",
				Usage: "chat session id; an existing session is resumed",
				Value: "terminal",
			},
			&cli.DurationFlag{
				Name:  "backend-timeout",
				Usage: "bound on each account backend call (overrides CHAT_BACKEND_TIMEOUT_SECONDS)",
			},
			&cli.DurationFlag{
				Name:  "navigation-delay",
				Usage: "pause before a navigation is reported (overrides CHAT_NAVIGATION_DELAY_MS)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable colored output",
			},
		},
		Action: runChat,
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func runChat(c *cli.Context) error {
	if c.Bool("no-color") {
		color.NoColor = true
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Logger.Output = cfg.Logger.OutputOr("stderr")
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	deps, err := container.New(c.Context, *cfg, logger)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}
	defer deps.Close()

	opts := deps.ControllerOptions()
	if c.IsSet("backend-timeout") {
		opts.BackendTimeout = c.Duration("backend-timeout")
	}
	if c.IsSet("navigation-delay") {
		opts.NavigationDelay = c.Duration("navigation-delay")
		if opts.NavigationDelay == 0 {
			opts.NavigationDelay = -1
		}
	}

	session := &terminalSession{
		id:    c.String("session"),
		store: deps.ChatStore,
		opts:  opts,
	}
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		session.readSecret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(color.Output)
			return string(b), err
		}
	}
	return session.run(c.Context, os.Stdin, color.Output)
}

// terminalSession is a read-eval-print loop over one chat session.
type terminalSession struct {
	id    string
	store chatstore.Store
	opts  chat.Options
	// readSecret reads a password line without echo. Nil reads it like
	// any other line.
	readSecret func() (string, error)
}

func (s *terminalSession) run(ctx context.Context, in io.Reader, out io.Writer) error {
	state, err := s.store.Load(ctx, s.id)
	if errors.Is(err, chatstore.ErrSessionNotFound) {
		state = chat.NewState()
	} else if err != nil {
		return fmt.Errorf("load session %s: %w", s.id, err)
	}

	printer := newPrinter(out)
	opts := s.opts
	opts.State = state
	opts.Sessions = chatstore.Sessions(s.store, s.id)
	opts.Sink = printer
	ctrl := chat.NewController(ctx, opts)

	ctrl.Greeting()
	if err := s.save(ctx, ctrl); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		printer.prompt()
		var line string
		secret := ctrl.ExpectsSecret()
		if secret && s.readSecret != nil {
			password, err := s.readSecret()
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			line = password
		} else {
			if !scanner.Scan() {
				break
			}
			line = scanner.Text()
		}
		if !secret {
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "exit", "quit":
				return nil
			case "":
				continue
			}
		}

		reply := ctrl.HandleUtterance(ctx, line)
		if nav := reply.Navigation; nav != nil {
			printer.navigation(*nav)
		}
		if err := s.save(ctx, ctrl); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (s *terminalSession) save(ctx context.Context, ctrl *chat.Controller) error {
	if err := s.store.Save(ctx, s.id, ctrl.State()); err != nil {
		return fmt.Errorf("save session %s: %w", s.id, err)
	}
	return nil
}

// printer is the chat.MessageSink of the terminal. The typed line is
// already on screen, so user echoes are not repeated.
type printer struct {
	out    io.Writer
	bot    *color.Color
	you    *color.Color
	notice *color.Color
}

func newPrinter(out io.Writer) *printer {
	return &printer{
		out:    out,
		bot:    color.New(color.FgGreen),
		you:    color.New(color.FgCyan),
		notice: color.New(color.FgYellow),
	}
}

func (p *printer) Post(role chat.Role, text string) {
	if role != chat.RoleBot {
		return
	}
	p.bot.Fprint(p.out, "bot> ")
	fmt.Fprintln(p.out, text)
}

func (p *printer) prompt() {
	p.you.Fprint(p.out, "you> ")
}

func (p *printer) navigation(nav chat.Navigation) {
	p.notice.Fprintf(p.out, "[navigate to %s after %s]\n", nav.Path, nav.Delay)
}
