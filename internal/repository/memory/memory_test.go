package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/farm-shop/internal/domain"
	"github.com/spec-kit/farm-shop/internal/repository"
)

func TestCustomerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository()

	alice := &domain.Customer{CustomerID: "CUS00001", Username: "alice", Email: "alice@example.com", Phone: "9876543210"}
	require.NoError(t, repo.Create(ctx, alice))
	require.NotEmpty(t, alice.ID)

	err := repo.Create(ctx, &domain.Customer{CustomerID: "CUS00002", Username: "alice", Email: "other@example.com"})
	require.ErrorIs(t, err, repository.ErrDuplicate)

	taken, err := repo.UsernameOrEmailTaken(ctx, "bob", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.CustomerIDTaken(ctx, "CUS99999")
	require.NoError(t, err)
	assert.False(t, taken)

	got, err := repo.GetByPhone(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	require.NoError(t, repo.UpdatePassword(ctx, alice.ID, "new-hash"))
	got, err = repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	_, err = repo.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, repo.UpdatePassword(ctx, "missing", "x"), repository.ErrNotFound)
}

func TestOTPRepository_NewestUsableWins(t *testing.T) {
	ctx := context.Background()
	repo := NewOTPRepository()
	now := time.Now()

	old := &domain.PasswordResetOTP{CustomerID: "c1", Code: "111111", ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.InvalidateForCustomer(ctx, "c1"))

	_, err := repo.FindUsable(ctx, "c1", "111111", now)
	require.ErrorIs(t, err, repository.ErrNotFound)

	fresh := &domain.PasswordResetOTP{CustomerID: "c1", Code: "222222", ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, fresh))

	got, err := repo.FindUsable(ctx, "c1", "222222", now)
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, got.ID)

	_, err = repo.FindUsable(ctx, "c1", "222222", now.Add(2*time.Minute))
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.MarkUsed(ctx, fresh.ID))
	_, err = repo.FindUsable(ctx, "c1", "222222", now)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPasswordResetRepository_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewPasswordResetRepository()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &repository.PasswordResetToken{CustomerID: "c1", Token: "tok", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &repository.PasswordResetToken{CustomerID: "c1", Token: "stale", ExpiresAt: now.Add(-time.Second)}))

	got, err := repo.Consume(ctx, "tok", now)
	require.NoError(t, err)
	assert.Equal(t, "c1", got.CustomerID)

	_, err = repo.Consume(ctx, "tok", now)
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.Consume(ctx, "stale", now)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProductRepository_Seeded(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 8)
	assert.Equal(t, 1, all[0].ID)

	meat, err := repo.List(ctx, domain.CategoryMeat)
	require.NoError(t, err)
	assert.Len(t, meat, 3)

	eggs, err := repo.GetByID(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(399), eggs.PriceCents)

	_, err = repo.GetByID(ctx, 42)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOrderRepository_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	base := time.Now()

	require.NoError(t, repo.Create(ctx, &domain.Order{ID: "ORD1", CustomerID: "c1", CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &domain.Order{ID: "ORD2", CustomerID: "c2", CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &domain.Order{ID: "ORD3", CustomerID: "c1", CreatedAt: base.Add(time.Second)}))
	require.ErrorIs(t, repo.Create(ctx, &domain.Order{ID: "ORD1"}), repository.ErrDuplicate)

	orders, err := repo.ListByCustomer(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD3", orders[0].ID)
	assert.Equal(t, "ORD1", orders[1].ID)
}
