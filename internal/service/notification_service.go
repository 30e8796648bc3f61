package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/farm-shop/internal/config"
	"github.com/spec-kit/farm-shop/internal/events"
)

// SMSSender delivers text messages to a phone.
type SMSSender interface {
	Send(ctx context.Context, phone, body string) error
}

// LogSMSSender is the development SMS gateway: it writes messages to the log.
type LogSMSSender struct {
	Logger *zap.Logger
	Sender string
}

func (l LogSMSSender) Send(_ context.Context, phone, body string) error {
	l.Logger.Info("sms stub", zap.String("from", l.Sender), zap.String("to", phone), zap.String("body", body))
	return nil
}

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	sms        SMSSender
}

// NewNotificationService creates the service. A nil sms sends through the log.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig, sms SMSSender) *NotificationService {
	if sms == nil {
		sms = LogSMSSender{Logger: logger, Sender: cfg.SMSSender}
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		sms:        sms,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCustomerRegistered, n.handleCustomerRegistered)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventPasswordReset, n.handlePasswordReset)
	n.dispatcher.Subscribe(events.EventOrderPlaced, n.handleOrderPlaced)
}

func (n *NotificationService) handleCustomerRegistered(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.CustomerRegisteredPayload)
	n.logger.Info("CustomerRegistered", zap.String("customer_id", payload.CustomerID), zap.String("username", payload.Username))
	n.sendEmailNotificationStub(ctx, event, payload.Email)
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	minutes := int(payload.ExpiresAt.Sub(event.Timestamp).Round(time.Minute).Minutes())
	if minutes <= 0 {
		minutes = 10
	}
	body := fmt.Sprintf("Your OTP is %s. Valid for %d minutes.", payload.Code, minutes)
	if err := n.sms.Send(ctx, payload.Phone, body); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

func (n *NotificationService) handlePasswordReset(_ context.Context, event events.Event) error {
	n.logger.Info("PasswordReset", zap.String("customer", event.CustomerID))
	return nil
}

func (n *NotificationService) handleOrderPlaced(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.OrderPlacedPayload)
	n.logger.Info("OrderPlaced",
		zap.String("order_id", payload.OrderID),
		zap.Int64("total_cents", payload.TotalCents),
		zap.Int("items", payload.ItemCount))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || to == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("customer", event.CustomerID),
		zap.String("event_type", string(event.Type)))
}
