package services_test

import (
	"context"
	"fmt"
	"testing"

	"kedai/internal/gateway"
	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderService_TotalComputation(t *testing.T) {
	tests := []struct {
		name         string
		coupon       string
		wantDiscount string
		wantTotal    string
		wantCoupon   bool
	}{
		{"no coupon", "", "0", "2900", false},
		{"percentage coupon", "SAVE10", "290", "2610", true},
		{"fixed coupon", "FLAT500", "500", "2400", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := f.orderInput(models.PaymentCOD, item(f.variantA, 3), item(f.variantB, 1))
			in.CouponCode = tt.coupon

			checkout, err := f.orderService.PlaceOrder(f.ctx, in)
			require.NoError(t, err)

			order := f.reload(t, checkout.Order.ID)
			assert.True(t, order.TotalAmt.Equal(dec(tt.wantTotal)), "total %s", order.TotalAmt)
			assert.True(t, order.CouponValue.Equal(dec(tt.wantDiscount)), "discount %s", order.CouponValue)
			assert.Equal(t, tt.wantCoupon, order.CouponCode != nil)
			assert.Len(t, order.Details, 2)
			assert.Equal(t, models.PaymentPending, order.PaymentStatus)
			assert.Equal(t, "Placed", order.OrderStatus.Name)
			assert.Equal(t, "Lahore", order.City)
			assert.Empty(t, f.gw.Calls, "cash on delivery never calls the gateway")
		})
	}
}

func TestOrderService_CouponFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	in := f.orderInput(models.PaymentCOD, item(f.variantA, 1))
	in.CouponCode = "FLAT500"

	checkout, err := f.orderService.PlaceOrder(f.ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Minimum order amount is 2000.00", checkout.CouponRejected)

	order := f.reload(t, checkout.Order.ID)
	assert.Nil(t, order.CouponCode)
	assert.True(t, order.CouponValue.IsZero())
	assert.True(t, order.TotalAmt.Equal(dec("800")))
}

func TestOrderService_OneTimeCouponOnlyOnce(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.coupons.Create(f.ctx, &models.Coupon{
		Code: "ONCE", Type: models.CouponFixed, Value: dec("100"), IsOneTime: true, Active: true,
	}))

	in := f.orderInput(models.PaymentCOD, item(f.variantA, 1))
	in.CouponCode = "ONCE"
	first, err := f.orderService.PlaceOrder(f.ctx, in)
	require.NoError(t, err)
	assert.True(t, first.Order.TotalAmt.Equal(dec("700")))

	second, err := f.orderService.PlaceOrder(f.ctx, in)
	require.NoError(t, err)
	assert.Equal(t, services.ReasonAlreadyUsed, second.CouponRejected)
	assert.True(t, second.Order.TotalAmt.Equal(dec("800")))
}

func TestOrderService_SkipsUnknownItemsAndMergesDuplicates(t *testing.T) {
	f := newFixture(t)
	in := f.orderInput(models.PaymentCOD,
		item(f.variantA, 1),
		services.LineItem{VariantID: "does-not-exist", Quantity: 2},
		item(f.variantA, 2),
	)

	checkout, err := f.orderService.PlaceOrder(f.ctx, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"does-not-exist"}, checkout.SkippedItems)

	order := f.reload(t, checkout.Order.ID)
	require.Len(t, order.Details, 1)
	assert.Equal(t, 3, order.Details[0].Quantity)
	assert.True(t, order.TotalAmt.Equal(dec("2400")))
	assert.Equal(t, 7, f.stockOf(t, f.variantA.ID))

	assert.NotEmpty(t, f.logs.FilterMessage("Skipping order item: item not found").All())
}

func TestOrderService_RejectsOrderWithoutValidItems(t *testing.T) {
	f := newFixture(t)
	in := f.orderInput(models.PaymentCOD, services.LineItem{VariantID: "nope", Quantity: 1})

	_, err := f.orderService.PlaceOrder(f.ctx, in)
	assert.True(t, errors.Is(err, models.ErrNoValidItems))
}

func TestOrderService_InsufficientStockLeavesNothing(t *testing.T) {
	f := newFixture(t)
	in := f.orderInput(models.PaymentGateway, item(f.variantA, 2), item(f.variantB, 11))

	_, err := f.orderService.PlaceOrder(f.ctx, in)
	var stockErr *models.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, f.variantB.ID, stockErr.VariantID)

	assert.Equal(t, 10, f.stockOf(t, f.variantA.ID))
	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
	assert.Empty(t, f.gw.Calls)
}

func TestOrderService_GatewayOrderCreatesIntent(t *testing.T) {
	f := newFixture(t)
	checkout, err := f.orderService.PlaceOrder(f.ctx, f.orderInput(models.PaymentGateway, item(f.variantA, 2)))
	require.NoError(t, err)

	call, ok := f.gw.LastCall()
	require.True(t, ok)
	assert.Equal(t, int64(160000), call.AmountMinor)
	assert.Equal(t, "pkr", call.Currency)
	assert.Equal(t, checkout.Order.ID, call.Metadata[gateway.MetadataOrderID])

	assert.NotEmpty(t, checkout.ClientSecret)
	assert.Equal(t, checkout.PaymentIntentID, *f.reload(t, checkout.Order.ID).PaymentID)
	f.pub.AssertCalled(t, "Publish", mock.Anything, services.RoutingOrderCreated, mock.Anything)
}

func TestOrderService_GatewayRejectionFailsOrder(t *testing.T) {
	f := newFixture(t)
	f.gw.Err = fmt.Errorf("%w: card declined", gateway.ErrRejected)

	checkout, err := f.orderService.PlaceOrder(f.ctx, f.orderInput(models.PaymentGateway, item(f.variantA, 2)))
	var gwErr *models.GatewayError
	require.True(t, errors.As(err, &gwErr))
	require.NotNil(t, checkout)
	assert.Equal(t, checkout.Order.ID, gwErr.OrderID)

	order := f.reload(t, gwErr.OrderID)
	assert.Equal(t, models.PaymentFailed, order.PaymentStatus)
	assert.Equal(t, 10, f.stockOf(t, f.variantA.ID), "stock returned")
	f.pub.AssertCalled(t, "Publish", mock.Anything, services.RoutingPaymentFailed, mock.Anything)
}

func TestOrderService_GatewayTimeoutLeavesOrderPending(t *testing.T) {
	f := newFixture(t)
	f.gw.Err = context.DeadlineExceeded

	_, err := f.orderService.PlaceOrder(f.ctx, f.orderInput(models.PaymentGateway, item(f.variantA, 2)))
	var gwErr *models.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	order := f.reload(t, gwErr.OrderID)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, 8, f.stockOf(t, f.variantA.ID), "stock stays reserved")
}

func TestOrderService_ZeroTotalSettlesWithoutGateway(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.coupons.Create(f.ctx, &models.Coupon{
		Code: "FREE", Type: models.CouponFixed, Value: dec("5000"), Active: true,
	}))
	in := f.orderInput(models.PaymentGateway, item(f.variantB, 1))
	in.CouponCode = "FREE"

	checkout, err := f.orderService.PlaceOrder(f.ctx, in)
	require.NoError(t, err)
	assert.Empty(t, f.gw.Calls)
	assert.Empty(t, checkout.ClientSecret)

	order := f.reload(t, checkout.Order.ID)
	assert.True(t, order.TotalAmt.IsZero())
	assert.Equal(t, models.PaymentSuccess, order.PaymentStatus)
}

func TestOrderService_SnapshotSurvivesPriceChange(t *testing.T) {
	f := newFixture(t)
	checkout, err := f.orderService.PlaceOrder(f.ctx, f.orderInput(models.PaymentCOD, item(f.variantA, 2)))
	require.NoError(t, err)

	_, err = f.products.UpdateVariantPrice(f.ctx, f.variantA.ID, dec("1200"))
	require.NoError(t, err)

	order := f.reload(t, checkout.Order.ID)
	assert.True(t, order.Details[0].UnitPrice.Equal(dec("800")))
	assert.True(t, order.TotalAmt.Equal(dec("1600")))
}

func TestOrderService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	checkout, err := f.orderService.PlaceOrder(f.ctx, f.orderInput(models.PaymentCOD, item(f.variantA, 1)))
	require.NoError(t, err)

	statuses, err := f.orderService.ListStatuses(f.ctx)
	require.NoError(t, err)

	_, err = f.orderService.UpdateStatus(f.ctx, checkout.Order.ID, 999, "")
	assert.True(t, errors.Is(err, models.ErrStatusNotFound))

	_, err = f.orderService.UpdateStatus(f.ctx, "missing", statuses[2].ID, "")
	assert.True(t, errors.Is(err, models.ErrOrderNotFound))

	order, err := f.orderService.UpdateStatus(f.ctx, checkout.Order.ID, statuses[2].ID, "Delivered to front desk")
	require.NoError(t, err)
	assert.Equal(t, "Delivered", order.OrderStatus.Name)
	assert.Equal(t, "Delivered to front desk", order.TrackDetails)
	f.pub.AssertCalled(t, "Publish", mock.Anything, services.RoutingOrderStatusUpdated, mock.Anything)
}

func TestOrderService_OrdersAreVisibleToOwnerOnly(t *testing.T) {
	f := newFixture(t)
	checkout, err := f.orderService.PlaceOrder(f.ctx, f.orderInput(models.PaymentCOD, item(f.variantA, 1)))
	require.NoError(t, err)
	otherUser, _ := f.newCustomer(t, "bilal")

	_, err = f.orderService.GetOrder(f.ctx, checkout.Order.ID, f.userID, false)
	assert.NoError(t, err)

	_, err = f.orderService.GetOrder(f.ctx, checkout.Order.ID, otherUser, false)
	assert.True(t, errors.Is(err, models.ErrOrderNotFound))

	_, err = f.orderService.GetOrder(f.ctx, checkout.Order.ID, otherUser, true)
	assert.NoError(t, err)

	mine, err := f.orderService.MyOrders(f.ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := f.orderService.MyOrders(f.ctx, otherUser)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestOrderService_PublishFailureDoesNotFailCheckout(t *testing.T) {
	f := newFixture(t)
	f.pub.ExpectedCalls = nil
	f.pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("broker down"))

	_, err := f.orderService.PlaceOrder(f.ctx, f.orderInput(models.PaymentCOD, item(f.variantA, 1)))
	require.NoError(t, err)
	assert.NotEmpty(t, f.logs.FilterMessage("Failed to publish order event").All())
}
