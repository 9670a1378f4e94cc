package services

import (
	"context"
	"strings"
	"time"

	"kedai/internal/gateway"
	"kedai/internal/models"
	"kedai/internal/repositories"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService turns line items into persisted orders and starts their payment.
type OrderService struct {
	orders    repositories.OrderRepository
	statuses  repositories.OrderStatusRepository
	products  repositories.ProductRepository
	users     repositories.UserRepository
	coupons   *CouponService
	gateway   gateway.Gateway
	publisher EventPublisher
	log       *zap.Logger

	currency       string
	gatewayTimeout time.Duration
}

// OrderServiceDeps groups the collaborators of OrderService. Publisher may be nil.
type OrderServiceDeps struct {
	Orders         repositories.OrderRepository
	Statuses       repositories.OrderStatusRepository
	Products       repositories.ProductRepository
	Users          repositories.UserRepository
	Coupons        *CouponService
	Gateway        gateway.Gateway
	Publisher      EventPublisher
	Log            *zap.Logger
	Currency       string
	GatewayTimeout time.Duration
}

// NewOrderService creates a new OrderService.
func NewOrderService(deps OrderServiceDeps) *OrderService {
	timeout := deps.GatewayTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OrderService{
		orders:         deps.Orders,
		statuses:       deps.Statuses,
		products:       deps.Products,
		users:          deps.Users,
		coupons:        deps.Coupons,
		gateway:        deps.Gateway,
		publisher:      deps.Publisher,
		log:            deps.Log,
		currency:       deps.Currency,
		gatewayTimeout: timeout,
	}
}

// Contact is the purchaser snapshot stored on the order.
type Contact struct {
	Name   string
	Email  string
	Mobile string
}

// ShippingAddress is the delivery snapshot stored on the order.
type ShippingAddress struct {
	Address    string
	City       string
	State      string
	PostalCode string
}

// LineItem is a requested (variant, quantity). ProductID is optional and only
// cross-checked against the variant.
type LineItem struct {
	ProductID string
	VariantID string
	Quantity  int
}

// PlaceOrderInput is everything checkout needs.
type PlaceOrderInput struct {
	UserID      string
	Contact     Contact
	Shipping    ShippingAddress
	Items       []LineItem
	CouponCode  string
	PaymentType models.PaymentType
	// Currency overrides the configured currency for the gateway intent.
	Currency string
}

// Checkout is the result of PlaceOrder.
type Checkout struct {
	Order           *models.Order
	ClientSecret    string
	PaymentIntentID string
	// Currency and AmountMinor are what the gateway was asked to charge.
	Currency    string
	AmountMinor int64
	// SkippedItems lists variant ids that were dropped because they do not exist.
	SkippedItems []string
	// CouponRejected holds the reason the requested coupon was not applied.
	CouponRejected string
}

// PlaceOrder prices the items from the live catalog, applies the coupon,
// persists the order with stock reserved and, for gateway orders, creates the
// payment intent. Once the order is committed it is never rolled back: a
// gateway failure returns a *models.GatewayError carrying the order id.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Checkout, error) {
	customer, err := s.users.GetCustomerByUserID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	items := mergeLineItems(in.Items)
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.VariantID)
	}
	variants, err := s.products.GetVariants(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "resolve variants")
	}

	checkout := &Checkout{}
	details := make([]models.OrderDetail, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		v, ok := variants[item.VariantID]
		if !ok || (item.ProductID != "" && item.ProductID != v.ProductID) {
			s.log.Warn("Skipping order item: item not found",
				zap.String("user_id", in.UserID),
				zap.String("variant_id", item.VariantID),
				zap.String("product_id", item.ProductID),
			)
			checkout.SkippedItems = append(checkout.SkippedItems, item.VariantID)
			continue
		}
		detail := models.OrderDetail{
			ProductID: v.ProductID,
			VariantID: v.ID,
			UnitPrice: v.Price,
			Quantity:  item.Quantity,
		}
		details = append(details, detail)
		subtotal = subtotal.Add(detail.LineTotal())
	}
	if len(details) == 0 {
		return nil, models.ErrNoValidItems
	}

	status, err := s.statuses.GetDefault(ctx)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		CustomerID:    customer.ID,
		Name:          in.Contact.Name,
		Email:         in.Contact.Email,
		Mobile:        in.Contact.Mobile,
		Address:       in.Shipping.Address,
		City:          in.Shipping.City,
		State:         in.Shipping.State,
		PostalCode:    in.Shipping.PostalCode,
		OrderStatusID: status.ID,
		PaymentType:   in.PaymentType,
		PaymentStatus: models.PaymentPending,
		TotalAmt:      subtotal.Round(2),
		Details:       details,
	}

	if in.CouponCode != "" {
		check, err := s.coupons.Validate(ctx, in.CouponCode, subtotal)
		if err != nil {
			return nil, err
		}
		if check.Valid {
			code := check.Coupon.Code
			order.CouponCode = &code
			order.CouponValue = check.Discount
			order.TotalAmt = OrderTotal(subtotal, check.Discount)
		} else {
			s.log.Info("Coupon not applied",
				zap.String("coupon_code", in.CouponCode),
				zap.String("reason", check.Reason),
			)
			checkout.CouponRejected = check.Reason
		}
	}

	err = s.orders.Place(ctx, order)
	if errors.Is(err, models.ErrCouponUnavailable) {
		// Lost the race for a one-time coupon; checkout goes on without it.
		s.log.Info("Coupon not applied",
			zap.String("coupon_code", in.CouponCode),
			zap.String("reason", ReasonAlreadyUsed),
		)
		checkout.CouponRejected = ReasonAlreadyUsed
		order.CouponCode = nil
		order.CouponValue = decimal.Zero
		order.TotalAmt = subtotal.Round(2)
		err = s.orders.Place(ctx, order)
	}
	if err != nil {
		return nil, errors.Wrap(err, "place order")
	}

	s.log.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("customer_id", order.CustomerID),
		zap.String("total_amt", order.TotalAmt.String()),
		zap.String("payment_type", string(order.PaymentType)),
	)
	publishOrderEvent(ctx, s.publisher, s.log, RoutingOrderCreated, order)
	checkout.Order = order

	if order.PaymentType == models.PaymentGateway {
		if err := s.startPayment(ctx, checkout, in.Currency); err != nil {
			return checkout, err
		}
	}
	return checkout, nil
}

func (s *OrderService) startPayment(ctx context.Context, checkout *Checkout, currency string) error {
	order := checkout.Order

	if order.TotalAmt.IsZero() {
		// Nothing to charge.
		return s.settleLocally(ctx, order, models.PaymentSuccess)
	}

	if currency == "" {
		currency = s.currency
	}
	currency = strings.ToLower(currency)
	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	checkout.Currency = currency
	checkout.AmountMinor = MinorUnits(order.TotalAmt, currency)
	intent, err := s.gateway.CreateIntent(gctx, checkout.AmountMinor, currency, map[string]string{
		gateway.MetadataOrderID: order.ID,
		"customer_id":           order.CustomerID,
		"email":                 order.Email,
	})
	if err != nil {
		s.log.Error("Payment intent creation failed",
			zap.String("order_id", order.ID),
			zap.Bool("rejected", errors.Is(err, gateway.ErrRejected)),
			zap.Error(err),
		)
		if errors.Is(err, gateway.ErrRejected) {
			if settleErr := s.settleLocally(ctx, order, models.PaymentFailed); settleErr != nil {
				s.log.Error("Failed to mark order payment failed", zap.String("order_id", order.ID), zap.Error(settleErr))
			}
		}
		return &models.GatewayError{OrderID: order.ID, Err: err}
	}

	if err := s.orders.SetPaymentID(ctx, order.ID, intent.ID); err != nil {
		// The webhook correlates on order_id metadata, so the order can
		// still settle without the stored intent id.
		s.log.Error("Failed to store payment intent id",
			zap.String("order_id", order.ID),
			zap.String("payment_intent_id", intent.ID),
			zap.Error(err),
		)
	}
	order.PaymentID = &intent.ID
	checkout.PaymentIntentID = intent.ID
	checkout.ClientSecret = intent.ClientSecret
	return nil
}

func (s *OrderService) settleLocally(ctx context.Context, order *models.Order, status models.PaymentStatus) error {
	res, err := s.orders.SettlePayment(ctx, repositories.PaymentSettlement{OrderID: order.ID, Status: status})
	if err != nil {
		return err
	}
	if res.Outcome == repositories.SettleApplied {
		order.PaymentStatus = status
		publishOrderEvent(ctx, s.publisher, s.log, paymentRoutingKey(status), order)
	}
	return nil
}

// UpdateStatus sets the fulfillment status and tracking details of an order.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, statusID uint, trackDetails string) (*models.Order, error) {
	if _, err := s.statuses.GetByID(ctx, statusID); err != nil {
		return nil, err
	}
	order, err := s.orders.UpdateStatus(ctx, orderID, statusID, trackDetails)
	if err != nil {
		return nil, err
	}
	publishOrderEvent(ctx, s.publisher, s.log, RoutingOrderStatusUpdated, order)
	return order, nil
}

// GetOrder returns an order visible to the caller. Other customers' orders
// are reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID string, isAdmin bool) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		return order, nil
	}
	customer, err := s.users.GetCustomerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customer.ID {
		return nil, errors.Wrapf(models.ErrOrderNotFound, "order with ID %s", orderID)
	}
	return order, nil
}

// MyOrders lists the caller's orders, newest first.
func (s *OrderService) MyOrders(ctx context.Context, userID string) ([]models.Order, error) {
	customer, err := s.users.GetCustomerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.orders.ListByCustomer(ctx, customer.ID)
}

// ListStatuses returns the fulfillment status vocabulary.
func (s *OrderService) ListStatuses(ctx context.Context) ([]models.OrderStatus, error) {
	return s.statuses.GetAll(ctx)
}

// mergeLineItems sums quantities of repeated variants, keeping first-seen order.
func mergeLineItems(items []LineItem) []LineItem {
	merged := make([]LineItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if i, ok := index[item.VariantID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.VariantID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// Currencies whose smallest unit is not a hundredth, as the card processor counts them.
var (
	zeroDecimalCurrencies = map[string]bool{
		"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
		"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
		"vuv": true, "xaf": true, "xof": true, "xpf": true,
	}
	threeDecimalCurrencies = map[string]bool{
		"bhd": true, "jod": true, "kwd": true, "omr": true, "tnd": true,
	}
)

// MinorUnits converts an amount to the smallest unit of currency.
func MinorUnits(amount decimal.Decimal, currency string) int64 {
	currency = strings.ToLower(currency)
	switch {
	case zeroDecimalCurrencies[currency]:
		return amount.Round(0).IntPart()
	case threeDecimalCurrencies[currency]:
		// Three-decimal amounts must end in zero.
		return amount.Shift(2).Round(0).IntPart() * 10
	default:
		return amount.Shift(2).Round(0).IntPart()
	}
}

func paymentRoutingKey(status models.PaymentStatus) string {
	if status == models.PaymentSuccess {
		return RoutingPaymentSucceeded
	}
	return RoutingPaymentFailed
}
