package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"github.com/spec-kit/farm-shop/internal/api/dto"
	"github.com/spec-kit/farm-shop/internal/chat"
	"github.com/spec-kit/farm-shop/internal/chatstore"
	"github.com/spec-kit/farm-shop/internal/observability"
	apperrors "github.com/spec-kit/farm-shop/pkg/util/errorutil"
)

// ChatOptions tunes the controllers built per request.
type ChatOptions struct {
	BackendTimeout   time.Duration
	NavigationDelay  time.Duration
	MaxLoginAttempts int
}

// ChatHandler drives chat sessions over HTTP. Each request rebuilds a
// controller from the stored state, runs one turn and saves the result.
type ChatHandler struct {
	store    chatstore.Store
	accounts chat.AccountService
	logger   *zap.Logger
	metrics  *observability.Metrics
	opts     ChatOptions
	markdown goldmark.Markdown
	locks    *sessionLocks
}

// NewChatHandler constructs handler.
func NewChatHandler(store chatstore.Store, accounts chat.AccountService, logger *zap.Logger, metrics *observability.Metrics, opts ChatOptions) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		store:    store,
		accounts: accounts,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
		markdown: goldmark.New(goldmark.WithRendererOptions(html.WithHardWraps())),
		locks:    newSessionLocks(),
	}
}

// Start handles POST /api/chat/sessions.
func (h *ChatHandler) Start(c *fiber.Ctx) error {
	id := uuid.NewString()
	ctx := c.UserContext()

	ctrl := h.controller(ctx, id, chat.NewState())
	reply := ctrl.Greeting()
	if err := h.store.Save(ctx, id, ctrl.State()); err != nil {
		return apperrors.NewInternalError(err)
	}

	h.logger.Debug("chat session started", zap.String("session_id", id))
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.response(id, ctrl.State(), reply)})
}

// Get handles GET /api/chat/sessions/:id.
func (h *ChatHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	state, err := h.load(c.UserContext(), id)
	if err != nil {
		return err
	}
	if state.User == nil {
		user, err := h.store.LoadUser(c.UserContext(), id)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		state.User = user
	}
	return c.JSON(fiber.Map{"data": h.response(id, *state, chat.Reply{})})
}

// Send handles POST /api/chat/sessions/:id/messages.
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	id := c.Params("id")
	var req dto.ChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	unlock := h.locks.lock(id)
	defer unlock()

	ctx := c.UserContext()
	state, err := h.load(ctx, id)
	if err != nil {
		return err
	}

	phase := state.Phase.Kind()
	ctrl := h.controller(ctx, id, state)
	reply := ctrl.HandleUtterance(ctx, req.Text)
	if h.metrics != nil {
		h.metrics.RecordUtterance(string(phase))
	}

	if err := h.store.Save(ctx, id, ctrl.State()); err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": h.response(id, ctrl.State(), reply)})
}

func (h *ChatHandler) load(ctx context.Context, id string) (*chat.State, error) {
	state, err := h.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, chatstore.ErrSessionNotFound) {
			return nil, apperrors.NewNotFound("chat session", map[string]any{"session_id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return state, nil
}

func (h *ChatHandler) controller(ctx context.Context, id string, state *chat.State) *chat.Controller {
	return chat.NewController(ctx, chat.Options{
		State:            state,
		Accounts:         h.accounts,
		Sessions:         chatstore.Sessions(h.store, id),
		Logger:           h.logger.With(zap.String("session_id", id)),
		BackendTimeout:   h.opts.BackendTimeout,
		NavigationDelay:  h.opts.NavigationDelay,
		MaxLoginAttempts: h.opts.MaxLoginAttempts,
	})
}

func (h *ChatHandler) response(id string, state chat.State, reply chat.Reply) dto.ChatSessionResponse {
	resp := dto.ChatSessionResponse{
		SessionID:     id,
		Phase:         string(state.Phase.Kind()),
		Authenticated: state.IsAuthenticated(),
	}
	if u := state.User; u != nil {
		resp.User = &dto.ChatUser{
			CustomerID: u.CustomerID,
			Username:   u.Username,
			Email:      u.Email,
			Phone:      u.Phone,
			Address:    u.Address,
		}
	}
	for _, m := range reply.Messages {
		resp.Messages = append(resp.Messages, dto.ChatMessage{
			Role: string(m.Role),
			Text: m.Text,
			HTML: h.render(m.Text),
		})
	}
	if nav := reply.Navigation; nav != nil {
		resp.Navigation = &dto.ChatNavigation{Path: nav.Path, DelayMS: nav.Delay.Milliseconds()}
	}
	return resp
}

func (h *ChatHandler) render(text string) string {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(text), &buf); err != nil {
		h.logger.Warn("render chat message", zap.Error(err))
		return ""
	}
	return buf.String()
}

// sessionLocks hands out one mutex per session id and forgets it once no
// request holds or waits for it.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (s *sessionLocks) lock(id string) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}
