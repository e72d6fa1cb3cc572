package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/threadkart/threadkart-backend/pkg/db/models"
	"github.com/threadkart/threadkart-backend/pkg/enums"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
	"github.com/threadkart/threadkart-backend/pkg/pagination"
)

func TestFindByBuyerPaginatesNewestFirst(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	buyer := uuid.New()

	base := time.Now().Add(-time.Hour).UTC()
	ids := make([]uuid.UUID, 0, 5)
	for i := 0; i < 5; i++ {
		order := models.Order{
			ID:          uuid.New(),
			BuyerID:     buyer,
			Status:      enums.OrderStatusPending,
			TotalAmount: decimal.NewFromInt(int64(10 * (i + 1))),
		}
		require.NoError(t, conn.Omit("SellerOrders").Create(&order).Error)
		require.NoError(t, conn.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
		ids = append(ids, order.ID)
	}

	firstPage, err := repo.FindByBuyer(ctx, buyer, pagination.Params{Limit: 2})
	require.NoError(t, err)
	// Buffered by one row so the caller can detect another page.
	require.Len(t, firstPage, 3)
	require.Equal(t, ids[4], firstPage[0].ID)
	require.Equal(t, ids[3], firstPage[1].ID)

	cursor := pagination.EncodeCursor(pagination.Cursor{
		CreatedAt: firstPage[1].CreatedAt,
		ID:        firstPage[1].ID,
	})
	secondPage, err := repo.FindByBuyer(ctx, buyer, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(secondPage), 2)
	require.Equal(t, ids[2], secondPage[0].ID)
	require.Equal(t, ids[1], secondPage[1].ID)
}

func TestFindByBuyerHandlesEqualTimestamps(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	buyer := uuid.New()

	// Orders committed in the same transaction can share created_at; the id
	// tiebreaker must still walk every row exactly once.
	stamp := time.Now().Add(-time.Hour).UTC()
	ids := make(map[uuid.UUID]bool, 4)
	for i := 0; i < 4; i++ {
		order := models.Order{
			ID:          uuid.New(),
			BuyerID:     buyer,
			Status:      enums.OrderStatusPending,
			TotalAmount: decimal.NewFromInt(25),
		}
		require.NoError(t, conn.Omit("SellerOrders").Create(&order).Error)
		require.NoError(t, conn.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("created_at", stamp).Error)
		ids[order.ID] = false
	}

	params := pagination.Params{Limit: 1}
	for pages := 0; pages < len(ids); pages++ {
		rows, err := repo.FindByBuyer(ctx, buyer, params)
		require.NoError(t, err)
		require.NotEmpty(t, rows)

		seen, ok := ids[rows[0].ID]
		require.True(t, ok, "unexpected order %s", rows[0].ID)
		require.False(t, seen, "order %s returned twice", rows[0].ID)
		ids[rows[0].ID] = true

		params.Cursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: rows[0].CreatedAt,
			ID:        rows[0].ID,
		})
	}
	for id, seen := range ids {
		require.True(t, seen, "order %s never returned", id)
	}
}

func TestFindByBuyerRejectsMalformedCursor(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)

	_, err := repo.FindByBuyer(context.Background(), uuid.New(), pagination.Params{Cursor: "not-base64!"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestFindSellerOrderForSellerScopesOwnership(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	buyer := uuid.New()
	product := seedProduct(t, conn, 3)
	order := seedOrder(t, conn, buyer, enums.OrderStatusPending, orderLine{product: product, quantity: 1})

	var sellerOrder models.SellerOrder
	require.NoError(t, conn.Where("order_id = ?", order.ID).First(&sellerOrder).Error)

	found, err := repo.FindSellerOrderForSeller(ctx, sellerOrder.ID, sellerOrder.SellerID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)

	_, err = repo.FindSellerOrderForSeller(ctx, sellerOrder.ID, uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdatePaymentWritesOnlyGivenFields(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	buyer := uuid.New()
	order := models.Order{BuyerID: buyer, Status: enums.OrderStatusPending, TotalAmount: decimal.NewFromInt(50)}
	require.NoError(t, conn.Omit("SellerOrders").Create(&order).Error)

	paidAt := time.Now().UTC()
	require.NoError(t, repo.UpdatePayment(ctx, order.ID, map[string]any{
		"payment_reference": "pay_001",
		"paid_at":           paidAt,
	}))

	var got models.Order
	require.NoError(t, conn.First(&got, "id = ?", order.ID).Error)
	require.NotNil(t, got.PaymentReference)
	require.Equal(t, "pay_001", *got.PaymentReference)
	require.Equal(t, enums.OrderStatusPending, got.Status)
	require.True(t, got.TotalAmount.Equal(decimal.NewFromInt(50)))
}
