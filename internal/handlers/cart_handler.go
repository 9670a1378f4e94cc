package handlers

import (
	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler serves the shopper cart. Carts are keyed by an opaque shopper
// id so guests can use them without an account.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	log      *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{service: service, validate: newValidator(), log: log}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cart := router.Group("/cart")
	cart.Post("/add-item", h.HandleAddItem)
	cart.Post("/update-quantity", h.HandleUpdateQuantity)
	cart.Get("/total", h.HandleTotal)
	cart.Delete("/clear-cart", h.HandleClear)
	cart.Delete("/:id/remove-item", h.HandleRemoveItem)
}

// AddItemRequest is the body of POST /cart/add-item.
type AddItemRequest struct {
	ShopperID   string `json:"shopper_id" validate:"required,max=64"`
	ShopperKind string `json:"shopper_kind" validate:"omitempty,oneof=registered guest"`
	ProductID   string `json:"product_id"`
	VariantID   string `json:"variant_id" validate:"required"`
	Qty         int    `json:"qty" validate:"min=1"`
}

// HandleAddItem adds a variant to the cart, merging with an existing line.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	req := AddItemRequest{Qty: 1}
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	line, err := h.service.AddItem(c.UserContext(), services.AddItemInput{
		ShopperID:   req.ShopperID,
		ShopperKind: req.ShopperKind,
		ProductID:   req.ProductID,
		VariantID:   req.VariantID,
		Quantity:    req.Qty,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(line)
}

// UpdateQuantityRequest is the body of POST /cart/update-quantity. A qty of
// zero or less removes the line.
type UpdateQuantityRequest struct {
	ShopperID string `json:"shopper_id" validate:"required"`
	VariantID string `json:"variant_id" validate:"required"`
	Qty       int    `json:"qty"`
}

// HandleUpdateQuantity overwrites the quantity of a cart line.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var req UpdateQuantityRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	update, err := h.service.UpdateQuantity(c.UserContext(), req.ShopperID, req.VariantID, req.Qty)
	if err != nil {
		if errors.Is(err, models.ErrCartLineNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not found in cart"})
		}
		return respondError(c, h.log, err)
	}
	if update.Removed {
		return c.JSON(fiber.Map{"message": "Item removed from cart"})
	}
	return c.JSON(update.Line)
}

// HandleTotal prices the cart at current catalog prices.
func (h *CartHandler) HandleTotal(c *fiber.Ctx) error {
	shopperID := c.Query("shopper_id")
	if shopperID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "shopper_id is required"})
	}

	total, err := h.service.Total(c.UserContext(), shopperID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	items := total.Items
	if items == nil {
		items = []models.CartLine{}
	}
	return c.JSON(fiber.Map{
		"total":      total.Total,
		"item_count": total.ItemCount,
		"items":      items,
	})
}

// HandleClear empties the shopper's cart.
func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	shopperID := c.Query("shopper_id")
	if shopperID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "shopper_id is required"})
	}

	if _, err := h.service.Clear(c.UserContext(), shopperID); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Cart cleared successfully"})
}

// HandleRemoveItem deletes a single cart line.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	if err := h.service.RemoveLine(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, models.ErrCartLineNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Object not found."})
		}
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
