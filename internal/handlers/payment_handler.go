package handlers

import (
	"kedai/internal/middleware"
	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SignatureHeader carries the gateway's webhook signature.
const SignatureHeader = "Stripe-Signature"

// PaymentHandler serves gateway checkout and the gateway webhook.
type PaymentHandler struct {
	payments *services.PaymentService
	carts    *services.CartService
	validate *validator.Validate
	log      *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler. carts may be nil, in which
// case the caller's cart is left alone after checkout.
func NewPaymentHandler(payments *services.PaymentService, carts *services.CartService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, carts: carts, validate: newValidator(), log: log}
}

// RegisterRoutes registers the payment routes. The webhook is public; intent
// creation goes through auth.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	payments := router.Group("/payments")
	payments.Post("/create-payment-intent", auth, h.HandleCreatePaymentIntent)
	payments.Post("/webhook", h.HandleWebhook)
}

// ContactInfo is the purchaser block of a checkout form.
type ContactInfo struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress" validate:"required,email"`
	PhoneNumber  string `json:"phoneNumber" validate:"max=15"`
}

// ShippingInfo is the delivery block of a checkout form.
type ShippingInfo struct {
	StreetAddress string `json:"streetAddress" validate:"required"`
	TownCity      string `json:"townCity" validate:"required"`
	State         string `json:"state"`
	ZipCode       string `json:"zipCode" validate:"max=10"`
}

// OrderData is the order part of a create-payment-intent request.
type OrderData struct {
	ContactInfo     ContactInfo       `json:"contact_info"`
	ShippingAddress ShippingInfo      `json:"shipping_address"`
	CouponCode      string            `json:"coupon_code"`
	Discount        decimal.Decimal   `json:"discount"`
	CartItems       []LineItemRequest `json:"cart_items" validate:"required,min=1,dive"`
}

// CreatePaymentIntentRequest is the body of POST /payments/create-payment-intent.
// Amount is in minor units and is informational only.
type CreatePaymentIntentRequest struct {
	Amount    int64     `json:"amount" validate:"min=0"`
	Currency  string    `json:"currency" validate:"omitempty,len=3"`
	OrderData OrderData `json:"order_data"`
}

// HandleCreatePaymentIntent places a gateway order for the caller and returns
// the client secret needed to confirm it.
func (h *PaymentHandler) HandleCreatePaymentIntent(c *fiber.Ctx) error {
	var req CreatePaymentIntentRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	userID := middleware.UserID(c)
	data := req.OrderData
	name := data.ContactInfo.FirstName
	if data.ContactInfo.LastName != "" {
		name += " " + data.ContactInfo.LastName
	}

	checkout, err := h.payments.CreatePaymentIntent(c.UserContext(), services.PaymentIntentInput{
		Amount:   req.Amount,
		Currency: req.Currency,
		Discount: data.Discount,
		Order: services.PlaceOrderInput{
			UserID: userID,
			Contact: services.Contact{
				Name:   name,
				Email:  data.ContactInfo.EmailAddress,
				Mobile: data.ContactInfo.PhoneNumber,
			},
			Shipping: services.ShippingAddress{
				Address:    data.ShippingAddress.StreetAddress,
				City:       data.ShippingAddress.TownCity,
				State:      data.ShippingAddress.State,
				PostalCode: data.ShippingAddress.ZipCode,
			},
			Items:      toLineItems(data.CartItems),
			CouponCode: data.CouponCode,
		},
	})
	if err != nil {
		h.log.Warn("Create payment intent failed", zap.String("user_id", userID), zap.Error(err))
		body := fiber.Map{"error": err.Error()}
		var gatewayErr *models.GatewayError
		if errors.As(err, &gatewayErr) {
			body["order_id"] = gatewayErr.OrderID
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}

	if h.carts != nil {
		if _, err := h.carts.Clear(c.UserContext(), userID); err != nil {
			h.log.Warn("Failed to clear cart after checkout", zap.String("user_id", userID), zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{
		"client_secret":     checkout.ClientSecret,
		"order_id":          checkout.Order.ID,
		"payment_intent_id": checkout.PaymentIntentID,
	})
}

// HandleWebhook verifies a gateway delivery and settles the order it refers
// to. Deliveries that fail verification change nothing and get a 400.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	// fasthttp reuses the request buffer once the handler returns.
	payload := append([]byte(nil), c.Body()...)

	result, err := h.payments.HandleWebhook(c.UserContext(), payload, c.Get(SignatureHeader))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"received": true,
		"outcome":  result.Outcome,
	})
}
