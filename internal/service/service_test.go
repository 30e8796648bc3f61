package service

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/farm-shop/internal/chat"
	"github.com/spec-kit/farm-shop/internal/config"
	"github.com/spec-kit/farm-shop/internal/domain"
	"github.com/spec-kit/farm-shop/internal/events"
	"github.com/spec-kit/farm-shop/internal/repository/memory"
	apperrors "github.com/spec-kit/farm-shop/pkg/util/errorutil"
)

type capturedSMS struct {
	mu       sync.Mutex
	messages map[string][]string
	err      error
}

func (c *capturedSMS) Send(_ context.Context, phone, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.messages == nil {
		c.messages = map[string][]string{}
	}
	c.messages[phone] = append(c.messages[phone], body)
	return nil
}

var otpPattern = regexp.MustCompile(`\b\d{6}\b`)

func (c *capturedSMS) lastCode(t *testing.T, phone string) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := c.messages[phone]
	require.NotEmpty(t, msgs, "no sms sent to %s", phone)
	code := otpPattern.FindString(msgs[len(msgs)-1])
	require.NotEmpty(t, code)
	return code
}

type fixture struct {
	accounts  *AccountService
	customers *memory.CustomerRepository
	catalog   *CatalogService
	orders    *OrderService
	sms       *capturedSMS
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Config{
		Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4, OTPTTLMinutes: 10, PasswordResetTTLMinutes: 30},
	}
	dispatcher := events.NewInMemoryDispatcher()
	sms := &capturedSMS{}
	NewNotificationService(dispatcher, zap.NewNop(), cfg.Notification, sms).RegisterHandlers()

	customers := memory.NewCustomerRepository()
	products := memory.NewProductRepository()
	return &fixture{
		accounts: NewAccountService(cfg, AccountDependencies{
			CustomerRepo:      customers,
			OTPRepo:           memory.NewOTPRepository(),
			PasswordResetRepo: memory.NewPasswordResetRepository(),
			Dispatcher:        dispatcher,
		}),
		customers: customers,
		catalog:   NewCatalogService(products),
		orders: NewOrderService(OrderDependencies{
			OrderRepo:   memory.NewOrderRepository(),
			ProductRepo: products,
			Dispatcher:  dispatcher,
		}),
		sms: sms,
	}
}

func aliceInput() RegisterInput {
	return RegisterInput{
		Username:        "alice",
		Email:           "alice@example.com",
		Phone:           "9876543210",
		Address:         "12 Dairy Lane",
		Password:        "abc123",
		ConfirmPassword: "abc123",
	}
}

func requireDomainError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, status, de.HTTPStatus)
	assert.Equal(t, message, de.Message)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer, err := f.accounts.Register(ctx, aliceInput())
	require.NoError(t, err)
	assert.Regexp(t, `^CUS\d{5}$`, customer.CustomerID)
	assert.NotEqual(t, "abc123", customer.PasswordHash)

	_, err = f.accounts.Register(ctx, aliceInput())
	requireDomainError(t, err, 409, "Username or email already exists")

	in := aliceInput()
	in.Username = "bob"
	in.Email = "bob@example.com"
	in.ConfirmPassword = "abc124"
	_, err = f.accounts.Register(ctx, in)
	requireDomainError(t, err, 400, "Passwords do not match")

	in.Password, in.ConfirmPassword = "abc", "abc"
	_, err = f.accounts.Register(ctx, in)
	requireDomainError(t, err, 400, "Password must be at least 6 characters long")

	in = aliceInput()
	in.ConfirmPassword = ""
	_, err = f.accounts.Register(ctx, in)
	requireDomainError(t, err, 400, "Confirm password is required")
}

func TestRegister_RetriesCustomerIDCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seq := []string{"00001", "00001", "00002"}
	f.accounts.digits = func(int) (string, error) {
		next := seq[0]
		seq = seq[1:]
		return next, nil
	}

	first, err := f.accounts.Register(ctx, aliceInput())
	require.NoError(t, err)
	in := aliceInput()
	in.Username, in.Email = "bob", "bob@example.com"
	second, err := f.accounts.Register(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "CUS00001", first.CustomerID)
	assert.Equal(t, "CUS00002", second.CustomerID)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.accounts.Register(ctx, aliceInput())
	require.NoError(t, err)

	customer, token, exp, err := f.accounts.Login(ctx, "alice", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "alice", customer.Username)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))

	claims, err := f.accounts.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, claims.SubjectID)

	_, _, _, err = f.accounts.Login(ctx, "alice", "wrong1")
	requireDomainError(t, err, 401, "Invalid username or password")
	_, _, _, err = f.accounts.Login(ctx, "nobody", "abc123")
	requireDomainError(t, err, 401, "Invalid username or password")
	_, _, _, err = f.accounts.Login(ctx, "", "")
	requireDomainError(t, err, 400, "Username and password are required")
}

func TestPasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.accounts.Register(ctx, aliceInput())
	require.NoError(t, err)

	requireDomainError(t, f.accounts.RequestPasswordReset(ctx, "1112223333"), 404, "Phone number not found")

	require.NoError(t, f.accounts.RequestPasswordReset(ctx, "9876543210"))
	stale := f.sms.lastCode(t, "9876543210")
	require.NoError(t, f.accounts.RequestPasswordReset(ctx, "9876543210"))
	code := f.sms.lastCode(t, "9876543210")
	assert.Contains(t, f.sms.messages["9876543210"][1], "Valid for 10 minutes.")

	if stale != code {
		_, err = f.accounts.VerifyResetCode(ctx, "9876543210", stale)
		requireDomainError(t, err, 400, "Invalid or expired OTP")
	}

	token, err := f.accounts.VerifyResetCode(ctx, "9876543210", code)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = f.accounts.VerifyResetCode(ctx, "9876543210", code)
	requireDomainError(t, err, 400, "Invalid or expired OTP")

	requireDomainError(t, f.accounts.ResetPassword(ctx, token, "newpass", "newpas"), 400, "Passwords do not match")
	require.NoError(t, f.accounts.ResetPassword(ctx, token, "newpass", "newpass"))
	requireDomainError(t, f.accounts.ResetPassword(ctx, token, "newpass", "newpass"), 400, "Your reset session is invalid or has expired")

	_, _, _, err = f.accounts.Login(ctx, "alice", "newpass")
	require.NoError(t, err)
}

func TestPasswordReset_ExpiredCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.accounts.Register(ctx, aliceInput())
	require.NoError(t, err)

	require.NoError(t, f.accounts.RequestPasswordReset(ctx, "9876543210"))
	code := f.sms.lastCode(t, "9876543210")

	f.accounts.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	_, err = f.accounts.VerifyResetCode(ctx, "9876543210", code)
	requireDomainError(t, err, 400, "Invalid or expired OTP")
}

func TestCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.catalog.List(ctx, "all")
	require.NoError(t, err)
	assert.Len(t, all, 8)

	dairy, err := f.catalog.List(ctx, "Dairy")
	require.NoError(t, err)
	assert.Len(t, dairy, 5)

	_, err = f.catalog.List(ctx, "vegetables")
	requireDomainError(t, err, 400, "unknown category")

	_, err = f.catalog.Get(ctx, 99)
	requireDomainError(t, err, 404, "product not found")
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer, err := f.accounts.Register(ctx, aliceInput())
	require.NoError(t, err)

	placedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.orders.now = func() time.Time { return placedAt }

	order, err := f.orders.Place(ctx, customer, PlaceOrderInput{
		Items:           []OrderLine{{ProductID: 1, Quantity: 2}, {ProductID: 8, Quantity: 1}},
		PaymentMethod:   "cash_on_delivery",
		DeliveryAddress: "12 Dairy Lane",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD"+strconv.FormatInt(placedAt.UnixMilli(), 10), order.ID)
	assert.Equal(t, int64(2*499+399), order.TotalCents)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, placedAt.Add(48*time.Hour), order.EstimatedDelivery)

	again, err := f.orders.Place(ctx, customer, PlaceOrderInput{
		Items:           []OrderLine{{ProductID: 5, Quantity: 1}},
		PaymentMethod:   "card",
		DeliveryAddress: "12 Dairy Lane",
	})
	require.NoError(t, err)
	assert.NotEqual(t, order.ID, again.ID)

	_, err = f.orders.Place(ctx, customer, PlaceOrderInput{PaymentMethod: "card", DeliveryAddress: "x"})
	requireDomainError(t, err, 400, "Missing required fields (items, payment_method, delivery_address)")
	_, err = f.orders.Place(ctx, customer, PlaceOrderInput{Items: []OrderLine{{ProductID: 42, Quantity: 1}}, PaymentMethod: "card", DeliveryAddress: "x"})
	requireDomainError(t, err, 400, "Unknown product")
	_, err = f.orders.Place(ctx, customer, PlaceOrderInput{Items: []OrderLine{{ProductID: 1, Quantity: 0}}, PaymentMethod: "card", DeliveryAddress: "x"})
	requireDomainError(t, err, 400, "Quantity must be at least 1")
	_, err = f.orders.Place(ctx, customer, PlaceOrderInput{Items: []OrderLine{{ProductID: 1, Quantity: 20000000000000000}}, PaymentMethod: "card", DeliveryAddress: "x"})
	requireDomainError(t, err, 400, "Quantity must be at most 1000")

	orders, err := f.orders.ListForCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "Fresh Whole Milk", orders[len(orders)-1].Items[0].Name)

	none, err := f.orders.ListForCustomer(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPlaceOrder_RejectsOverflowingTotals(t *testing.T) {
	ctx := context.Background()
	orders := memory.NewOrderRepository()
	svc := NewOrderService(OrderDependencies{
		OrderRepo: orders,
		ProductRepo: memory.NewProductRepository(
			domain.Product{ID: 1, Name: "Gold Cheese", Category: domain.CategoryDairy, PriceCents: math.MaxInt64/2 + 1},
		),
	})
	customer := &domain.Customer{ID: "c1"}

	_, err := svc.Place(ctx, customer, PlaceOrderInput{Items: []OrderLine{{ProductID: 1, Quantity: 3}}, PaymentMethod: "card", DeliveryAddress: "x"})
	requireDomainError(t, err, 400, "Order total is too large")

	_, err = svc.Place(ctx, customer, PlaceOrderInput{
		Items:           []OrderLine{{ProductID: 1, Quantity: 1}, {ProductID: 1, Quantity: 1}},
		PaymentMethod:   "card",
		DeliveryAddress: "x",
	})
	requireDomainError(t, err, 400, "Order total is too large")

	stored, err := orders.ListByCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestChatBackend_MapsErrors(t *testing.T) {
	f := newFixture(t)
	backend := NewChatBackend(f.accounts)
	ctx := context.Background()

	_, err := backend.Login(ctx, "nobody", "abc123")
	require.True(t, chat.IsRejection(err))
	assert.Equal(t, "Invalid username or password", err.Error())

	assert.Nil(t, asRejection(nil))
	transport := errors.New("connection refused")
	assert.Same(t, transport, asRejection(transport))
	assert.False(t, chat.IsRejection(asRejection(apperrors.NewInternalError(transport))))
}

func TestChatConversation_AgainstAccountService(t *testing.T) {
	f := newFixture(t)
	backend := NewChatBackend(f.accounts)
	ctx := context.Background()
	transcript := &chat.Transcript{}
	ctrl := chat.NewController(ctx, chat.Options{Accounts: backend, Sink: transcript})

	say := func(inputs ...string) chat.Reply {
		var last chat.Reply
		for _, in := range inputs {
			last = ctrl.HandleUtterance(ctx, in)
		}
		return last
	}

	reply := say("register", "alice", "abc123", "abc123", "alice@example.com", "9876543210", "12 Dairy Lane")
	require.True(t, ctrl.State().IsAuthenticated())
	require.NotNil(t, reply.Navigation)
	assert.Equal(t, "/shopping", reply.Navigation.Path)
	assert.Regexp(t, `^CUS\d{5}$`, ctrl.State().User.CustomerID)

	say("logout")
	require.False(t, ctrl.State().IsAuthenticated())

	say("forgot password", "9876543210")
	assert.Equal(t, chat.KindAwaitingOTP, ctrl.State().Phase.Kind())
	say(f.sms.lastCode(t, "9876543210"), "freshpass", "freshpass")
	assert.Equal(t, chat.KindIdle, ctrl.State().Phase.Kind())

	say("login", "alice", "freshpass")
	assert.True(t, ctrl.State().IsAuthenticated())

	registered, err := f.customers.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, ctrl.State().User.ID)
	assert.NotEmpty(t, transcript.Messages())
}
