package handlers

import (
	"kedai/internal/middleware"
	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
	log      *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the order routes behind auth.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/my-orders", h.HandleMyOrders)
	orderRoutes.Get("/statuses", h.HandleListStatuses)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/update-status", middleware.AdminOnly(), h.HandleUpdateOrderStatus)
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	Name        string            `json:"name" validate:"required,max=100"`
	Email       string            `json:"email" validate:"required,email"`
	Mobile      string            `json:"mobile" validate:"required,max=15"`
	Address     string            `json:"address" validate:"required"`
	City        string            `json:"city" validate:"required,max=50"`
	State       string            `json:"state" validate:"required,max=50"`
	PostalCode  string            `json:"postal_code" validate:"required,max=10"`
	CouponCode  string            `json:"coupon_code"`
	PaymentType string            `json:"payment_type" validate:"required,oneof=cod gateway"`
	Items       []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// HandleCreateOrder places an order for the authenticated user.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	checkout, err := h.service.PlaceOrder(c.UserContext(), services.PlaceOrderInput{
		UserID:      middleware.UserID(c),
		Contact:     services.Contact{Name: req.Name, Email: req.Email, Mobile: req.Mobile},
		Shipping:    services.ShippingAddress{Address: req.Address, City: req.City, State: req.State, PostalCode: req.PostalCode},
		Items:       toLineItems(req.Items),
		CouponCode:  req.CouponCode,
		PaymentType: models.PaymentType(req.PaymentType),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(newCheckoutResponse(checkout))
}

// HandleMyOrders lists the caller's own orders, newest first.
func (h *OrderHandler) HandleMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.MyOrders(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(orders)
}

// HandleListStatuses returns the order status vocabulary.
func (h *OrderHandler) HandleListStatuses(c *fiber.Ctx) error {
	statuses, err := h.service.ListStatuses(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(statuses)
}

// HandleGetOrderByID retrieves a single order. Orders of other customers are
// reported as not found unless the caller is an admin.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("id"), middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(order)
}

// UpdateStatusRequest is the body of PATCH /orders/:id/update-status.
type UpdateStatusRequest struct {
	OrderStatus  uint   `json:"order_status" validate:"required"`
	TrackDetails string `json:"track_details"`
}

// HandleUpdateOrderStatus moves an order to another status.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	order, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), req.OrderStatus, req.TrackDetails)
	if err != nil {
		return respondError(c, h.log, err)
	}

	h.log.Info("Order status updated",
		zap.String("order_id", order.ID),
		zap.Uint("order_status_id", req.OrderStatus),
	)
	return c.JSON(order)
}
