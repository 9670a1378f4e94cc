package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"kedai/internal/config"
	"kedai/internal/database"
	"kedai/internal/gateway/gatewaytest"
	"kedai/internal/models"
	"kedai/internal/repositories"
	"kedai/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	args := m.Called(ctx, routingKey, body)
	return args.Error(0)
}

// fixture wires the services against an in-memory sqlite database.
type fixture struct {
	ctx context.Context
	db  *gorm.DB

	products *repositories.GORMProductRepository
	carts    *repositories.GORMCartRepository
	coupons  *repositories.GORMCouponRepository
	orders   *repositories.GORMOrderRepository
	users    *repositories.GORMUserRepository

	gw   *gatewaytest.Fake
	pub  *MockPublisher
	logs *observer.ObservedLogs

	cartService    *services.CartService
	couponService  *services.CouponService
	orderService   *services.OrderService
	paymentService *services.PaymentService

	userID     string
	customerID string
	variantA   models.ProductVariant // price 800, stock 10
	variantB   models.ProductVariant // price 500, stock 10
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(config.Database{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	f := &fixture{
		ctx:      context.Background(),
		db:       db,
		products: repositories.NewGORMProductRepository(db),
		carts:    repositories.NewGORMCartRepository(db),
		coupons:  repositories.NewGORMCouponRepository(db),
		orders:   repositories.NewGORMOrderRepository(db),
		users:    repositories.NewGORMUserRepository(db),
		gw:       gatewaytest.New(),
		pub:      new(MockPublisher),
		logs:     logs,
	}
	f.pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	f.cartService = services.NewCartService(f.carts, f.products)
	f.couponService = services.NewCouponService(f.coupons)
	f.orderService = services.NewOrderService(services.OrderServiceDeps{
		Orders:         f.orders,
		Statuses:       repositories.NewGORMOrderStatusRepository(db),
		Products:       f.products,
		Users:          f.users,
		Coupons:        f.couponService,
		Gateway:        f.gw,
		Publisher:      f.pub,
		Log:            log,
		Currency:       "pkr",
		GatewayTimeout: time.Second,
	})
	f.paymentService = services.NewPaymentService(f.orderService, f.orders, f.gw, f.pub, log)

	product := models.Product{
		Name: "Classic Tee",
		Variants: []models.ProductVariant{
			{SKU: "TEE-A", Price: decimal.NewFromInt(800), Stock: 10},
			{SKU: "TEE-B", Price: decimal.NewFromInt(500), Stock: 10},
		},
	}
	require.NoError(t, f.products.Create(f.ctx, &product))
	f.variantA = product.Variants[0]
	f.variantB = product.Variants[1]

	f.userID, f.customerID = f.newCustomer(t, "ayesha")

	require.NoError(t, f.coupons.Create(f.ctx, &models.Coupon{
		Code: "SAVE10", Type: models.CouponPercentage, Value: decimal.NewFromInt(10),
		MinOrderAmt: decimal.NewFromInt(1000), Active: true,
	}))
	require.NoError(t, f.coupons.Create(f.ctx, &models.Coupon{
		Code: "FLAT500", Type: models.CouponFixed, Value: decimal.NewFromInt(500),
		MinOrderAmt: decimal.NewFromInt(2000), Active: true,
	}))
	return f
}

func (f *fixture) newCustomer(t *testing.T, username string) (userID, customerID string) {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x", Role: models.RoleCustomer}
	customer := &models.Customer{Name: username}
	require.NoError(t, f.users.CreateWithCustomer(f.ctx, user, customer))
	return user.ID, customer.ID
}

func (f *fixture) orderInput(paymentType models.PaymentType, items ...services.LineItem) services.PlaceOrderInput {
	return services.PlaceOrderInput{
		UserID:      f.userID,
		Contact:     services.Contact{Name: "Ayesha Khan", Email: "ayesha@example.com", Mobile: "03001234567"},
		Shipping:    services.ShippingAddress{Address: "12 Mall Road", City: "Lahore", State: "Punjab", PostalCode: "54000"},
		Items:       items,
		PaymentType: paymentType,
	}
}

func (f *fixture) stockOf(t *testing.T, variantID string) int {
	t.Helper()
	v, err := f.products.GetVariant(f.ctx, variantID)
	require.NoError(t, err)
	return v.Stock
}

func (f *fixture) reload(t *testing.T, orderID string) *models.Order {
	t.Helper()
	order, err := f.orders.GetByID(f.ctx, orderID)
	require.NoError(t, err)
	return order
}

func item(v models.ProductVariant, qty int) services.LineItem {
	return services.LineItem{ProductID: v.ProductID, VariantID: v.ID, Quantity: qty}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
