package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	defaultBackendTimeout   = 10 * time.Second
	defaultNavigationDelay  = time.Second
	defaultMaxLoginAttempts = 3
)

// Options configures a Controller.
type Options struct {
	// State is the conversation to resume. A fresh idle state is used when nil.
	State    *State
	Accounts AccountService
	// Sessions persists the logged-in customer. Optional.
	Sessions SessionStore
	// Sink receives every message in display order. Optional.
	Sink   MessageSink
	Logger *zap.Logger

	BackendTimeout   time.Duration
	NavigationDelay  time.Duration
	MaxLoginAttempts int
}

// Controller turns user utterances into state transitions, backend calls
// and bot messages. It is not safe for concurrent use: callers must hand it
// one utterance at a time.
type Controller struct {
	state    *State
	accounts AccountService
	sessions SessionStore
	sink     MessageSink
	logger   *zap.Logger

	backendTimeout   time.Duration
	navigationDelay  time.Duration
	maxLoginAttempts int
}

// NewController builds a controller and hydrates the logged-in customer from
// the session store when the state does not carry one yet.
func NewController(ctx context.Context, opts Options) *Controller {
	c := &Controller{
		state:            opts.State,
		accounts:         opts.Accounts,
		sessions:         opts.Sessions,
		sink:             opts.Sink,
		logger:           opts.Logger,
		backendTimeout:   opts.BackendTimeout,
		navigationDelay:  opts.NavigationDelay,
		maxLoginAttempts: opts.MaxLoginAttempts,
	}
	if c.state == nil {
		c.state = NewState()
	}
	if c.state.Phase == nil {
		c.state.Phase = Idle{}
	}
	if c.sink == nil {
		c.sink = discardSink{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.backendTimeout <= 0 {
		c.backendTimeout = defaultBackendTimeout
	}
	if c.navigationDelay < 0 {
		c.navigationDelay = 0
	} else if c.navigationDelay == 0 {
		c.navigationDelay = defaultNavigationDelay
	}
	if c.maxLoginAttempts <= 0 {
		c.maxLoginAttempts = defaultMaxLoginAttempts
	}

	if c.state.User == nil && c.sessions != nil {
		user, err := c.sessions.LoadUser(ctx)
		if err != nil {
			c.logger.Warn("load session user", zap.Error(err))
		} else if user != nil {
			c.state.User = user
		}
	}
	return c
}

// ExpectsSecret reports whether the next utterance is a password, which
// hosts should read without echo.
func (c *Controller) ExpectsSecret() bool {
	return secretInput(c.state.Phase)
}

// State returns a snapshot of the conversation state.
func (c *Controller) State() State {
	snapshot := *c.state
	if c.state.User != nil {
		user := *c.state.User
		snapshot.User = &user
	}
	return snapshot
}

// Greeting opens the conversation.
func (c *Controller) Greeting() Reply {
	t := &turn{}
	if c.state.IsAuthenticated() {
		t.sayf(msgWelcomeBack, c.state.User.Username)
	} else {
		t.say(msgWelcome)
	}
	c.flush(t)
	return t.reply
}

// HandleUtterance processes one user utterance to completion. It never
// fails: backend errors become bot messages and a safe phase.
func (c *Controller) HandleUtterance(ctx context.Context, text string) Reply {
	from := c.state.Phase
	t := &turn{}

	echo := text
	if secretInput(from) {
		echo = strings.Repeat("•", utf8.RuneCountInString(text))
	}
	c.post(RoleUser, echo)

	func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("utterance handling panicked", zap.Any("panic", r), zap.String("phase", string(from.Kind())))
				c.state.enter(Idle{})
				t.reply = Reply{}
				t.say(msgTransportFailure)
			}
		}()
		c.dispatch(ctx, t, text)
	}()

	c.flush(t)
	if to := c.state.Phase; to.Kind() != from.Kind() {
		c.logger.Debug("phase transition",
			zap.String("from", string(from.Kind())),
			zap.String("to", string(to.Kind())))
	}
	return t.reply
}

func (c *Controller) flush(t *turn) {
	for _, m := range t.reply.Messages {
		c.post(m.Role, m.Text)
	}
}

// post hands one message to the sink. A panicking sink loses the message,
// not the turn.
func (c *Controller) post(role Role, text string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("message sink panicked", zap.Any("panic", r), zap.String("role", string(role)))
		}
	}()
	c.sink.Post(role, text)
}

func (c *Controller) dispatch(ctx context.Context, t *turn, raw string) {
	trimmed := strings.TrimSpace(raw)
	command := normalize(raw)

	phase := c.state.Phase
	if Awaiting(phase) && !secretInput(phase) && c.interrupt(t, command) {
		return
	}

	switch p := phase.(type) {
	case LoginUsername:
		c.onLoginUsername(t, trimmed)
	case LoginPassword:
		c.onLoginPassword(ctx, t, p, raw)
	case RegisterUsername:
		c.onRegisterUsername(t, trimmed)
	case RegisterPassword:
		c.onRegisterPassword(t, p, raw)
	case RegisterConfirm:
		c.onRegisterConfirm(t, p, raw)
	case RegisterEmail:
		c.onRegisterEmail(t, p, trimmed)
	case RegisterPhone:
		c.onRegisterPhone(t, p, trimmed)
	case RegisterAddress:
		c.onRegisterAddress(ctx, t, p, trimmed)
	case ForgotPasswordPhone:
		c.onForgotPasswordPhone(ctx, t, trimmed)
	case AwaitingOTP:
		c.onOTP(ctx, t, p, trimmed)
	case AwaitingNewPassword:
		c.onNewPassword(t, p, raw)
	case AwaitingPasswordConfirm:
		c.onPasswordConfirm(ctx, t, p, raw)
	case ProductsConfirmation:
		c.onProductsConfirmation(t, command)
	default:
		c.state.enter(Idle{})
		c.route(ctx, t, command)
	}
}

// interrupt lets an exact flow command abandon the active flow.
func (c *Controller) interrupt(t *turn, command string) bool {
	switch command {
	case "cancel":
		c.state.enter(Idle{})
		t.say(msgCancelled)
	case "login":
		c.state.enter(Idle{})
		c.startLogin(t)
	case "register":
		c.state.enter(Idle{})
		c.startRegister(t)
	case "forgot password":
		c.state.enter(Idle{})
		c.startForgotPassword(t)
	default:
		return false
	}
	return true
}

func (c *Controller) navigate(t *turn, path string) {
	t.reply.Navigation = &Navigation{Path: path, Delay: c.navigationDelay}
}

// authenticate records a successful login and persists the session
// afterwards.
func (c *Controller) authenticate(ctx context.Context, user SessionUser) {
	c.state.User = &user
	c.state.LoginAttempts = 0
	c.state.enter(Idle{})

	if c.sessions == nil {
		return
	}
	if err := c.sessions.SaveUser(ctx, user); err != nil {
		c.logger.Warn("save session user", zap.String("username", user.Username), zap.Error(err))
	}
}

func (c *Controller) deauthenticate(ctx context.Context) {
	c.state.User = nil
	c.state.LoginAttempts = 0
	c.state.enter(Idle{})

	if c.sessions == nil {
		return
	}
	if err := c.sessions.ClearUser(ctx); err != nil {
		c.logger.Warn("clear session user", zap.Error(err))
	}
}

// callBackend runs fn under the backend timeout. A call that outlives the
// timeout is abandoned and reported as a transport failure.
func callBackend[T any](ctx context.Context, c *Controller, op string, fn func(context.Context, AccountService) (T, error)) (T, error) {
	var zero T
	if c.accounts == nil {
		return zero, fmt.Errorf("%s: account service not configured", op)
	}

	ctx, cancel := context.WithTimeout(ctx, c.backendTimeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%s: panic: %v", op, r)}
			}
		}()
		v, err := fn(ctx, c.accounts)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			c.logger.Warn("account backend call failed",
				zap.String("op", op),
				zap.Bool("rejected", IsRejection(r.err)),
				zap.Error(r.err))
		}
		return r.value, r.err
	case <-ctx.Done():
		err := fmt.Errorf("%s: %w", op, ctx.Err())
		c.logger.Warn("account backend call timed out", zap.String("op", op), zap.Error(err))
		return zero, err
	}
}

type turn struct {
	reply Reply
}

func (t *turn) say(text string) {
	t.reply.Messages = append(t.reply.Messages, Message{Role: RoleBot, Text: text})
}

func (t *turn) sayf(format string, args ...any) {
	t.say(fmt.Sprintf(format, args...))
}

// normalize lowercases and collapses whitespace for command matching.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
