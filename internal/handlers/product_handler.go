package handlers

import (
	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	log      *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{service: service, validate: newValidator(), log: log}
}

// RegisterRoutes registers the catalog routes. Reads are public, writes go
// through admin.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, admin ...fiber.Handler) {
	router.Get("/products", h.HandleGetProducts)
	router.Get("/products/:id", h.HandleGetProductByID)
	router.Post("/products", append(admin, h.HandleCreateProduct)...)
	router.Patch("/variants/:id/price", append(admin, h.HandleUpdateVariantPrice)...)
}

// HandleGetProducts lists every product with its variants.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves one product with its variants.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a product together with its variants.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if ok, err := parseBody(c, h.validate, &product); !ok {
		return err
	}

	if err := h.service.CreateProduct(c.UserContext(), &product); err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// PriceRequest is the body of PATCH /variants/:id/price.
type PriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

// HandleUpdateVariantPrice changes a variant's live price.
func (h *ProductHandler) HandleUpdateVariantPrice(c *fiber.Ctx) error {
	var req PriceRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	variant, err := h.service.UpdateVariantPrice(c.UserContext(), c.Params("id"), req.Price)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(variant)
}
