package handlers

import (
	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CouponHandler exposes coupon validation and administration.
type CouponHandler struct {
	service  *services.CouponService
	validate *validator.Validate
	log      *zap.Logger
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(service *services.CouponService, log *zap.Logger) *CouponHandler {
	return &CouponHandler{service: service, validate: newValidator(), log: log}
}

// RegisterRoutes registers the coupon routes. Validation is public; creating
// coupons goes through admin.
func (h *CouponHandler) RegisterRoutes(router fiber.Router, admin ...fiber.Handler) {
	coupons := router.Group("/coupons")
	coupons.Post("/validate-coupon", h.HandleValidate)
	coupons.Post("/", append(admin, h.HandleCreate)...)
}

// ValidateCouponRequest is the body of POST /coupons/validate-coupon.
type ValidateCouponRequest struct {
	Code        string          `json:"code" validate:"required"`
	OrderAmount decimal.Decimal `json:"order_amount"`
}

// HandleValidate reports whether a coupon applies to an order amount. A
// rejected coupon is still a 200 with valid=false.
func (h *CouponHandler) HandleValidate(c *fiber.Ctx) error {
	var req ValidateCouponRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	check, err := h.service.Validate(c.UserContext(), req.Code, req.OrderAmount)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if !check.Valid {
		return c.JSON(fiber.Map{
			"valid":   false,
			"message": check.Reason,
		})
	}
	return c.JSON(fiber.Map{
		"valid":    true,
		"discount": check.Discount,
		"coupon":   check.Coupon,
	})
}

// CreateCouponRequest is the body of POST /coupons.
type CreateCouponRequest struct {
	Title       string          `json:"title" validate:"max=100"`
	Code        string          `json:"code" validate:"required,max=50"`
	Type        string          `json:"type" validate:"required,oneof=fixed percentage"`
	Value       decimal.Decimal `json:"value"`
	MinOrderAmt decimal.Decimal `json:"min_order_amt"`
	IsOneTime   bool            `json:"is_one_time"`
	Active      *bool           `json:"active"`
}

// HandleCreate creates a coupon. Coupons are active unless stated otherwise.
func (h *CouponHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateCouponRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	coupon := &models.Coupon{
		Title:       req.Title,
		Code:        req.Code,
		Type:        models.CouponType(req.Type),
		Value:       req.Value,
		MinOrderAmt: req.MinOrderAmt,
		IsOneTime:   req.IsOneTime,
		Active:      req.Active == nil || *req.Active,
	}
	if err := h.service.CreateCoupon(c.UserContext(), coupon); err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(coupon)
}
