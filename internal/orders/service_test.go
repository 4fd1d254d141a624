package orders

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slh-community/slh-bot/internal/domain"
	"github.com/slh-community/slh-bot/internal/ledger"
	"github.com/slh-community/slh-bot/internal/store/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*Service, *domain.User) {
	t.Helper()

	st := memory.New()
	user, err := st.GetOrCreateUser(context.Background(), domain.Identity{ChatID: 1, Username: "alice"})
	require.NoError(t, err)

	return NewService(st, testLogger()), user
}

func TestCreate(t *testing.T) {
	svc, user := newTestService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, user, "buy", "SLH", decimal.NewFromInt(10), decimal.RequireFromString("1.5"))
	require.NoError(t, err)

	assert.True(t, order.Open)
	assert.Equal(t, domain.SideBuy, order.Side)
	assert.Equal(t, "SLH", order.TokenSymbol)
	assert.Equal(t, "10", order.Amount.String())
	assert.Equal(t, "1.5", order.Price.String())

	open, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, order.ID, open[0].ID)
}

func TestCreateNormalizesSide(t *testing.T) {
	svc, user := newTestService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, user, "SELL", "slh", decimal.NewFromInt(3), decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.Equal(t, domain.SideSell, order.Side)
	assert.Equal(t, "SLH", order.TokenSymbol)
}

func TestCreateValidation(t *testing.T) {
	svc, user := newTestService(t)
	ctx := context.Background()

	one := decimal.NewFromInt(1)

	testCases := []struct {
		name    string
		side    string
		amount  decimal.Decimal
		price   decimal.Decimal
		wantErr error
	}{
		{name: "unknown side", side: "hold", amount: one, price: one, wantErr: ErrInvalidSide},
		{name: "empty side", side: "", amount: one, price: one, wantErr: ErrInvalidSide},
		{name: "zero amount", side: "buy", amount: decimal.Zero, price: one, wantErr: ledger.ErrInvalidAmount},
		{name: "negative price", side: "sell", amount: one, price: decimal.NewFromInt(-1), wantErr: ledger.ErrInvalidAmount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, user, tc.side, "SLH", tc.amount, tc.price)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.True(t, IsValidation(err))
		})
	}

	open, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open, "rejected orders must not be persisted")
}

func TestListOpenNewestFirstAndCapped(t *testing.T) {
	svc, user := newTestService(t)
	ctx := context.Background()

	for i := 0; i < OpenOrdersLimit+5; i++ {
		_, err := svc.Create(ctx, user, "buy", "SLH", decimal.NewFromInt(int64(i+1)), decimal.NewFromInt(1))
		require.NoError(t, err)
	}

	open, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, OpenOrdersLimit)

	for i := 1; i < len(open); i++ {
		assert.Greater(t, open[i-1].ID, open[i].ID, "orders must be listed most recent first")
	}
}
