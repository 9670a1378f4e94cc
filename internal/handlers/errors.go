package handlers

import (
	"fmt"

	"kedai/internal/gateway"
	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var notFound = []error{
	models.ErrProductNotFound,
	models.ErrVariantNotFound,
	models.ErrCartLineNotFound,
	models.ErrOrderNotFound,
	models.ErrCouponNotFound,
	models.ErrUserNotFound,
	models.ErrCustomerNotFound,
}

var badRequest = []error{
	models.ErrVariantMismatch,
	models.ErrNoValidItems,
	models.ErrStatusNotFound,
	services.ErrInvalidPrice,
	services.ErrInvalidCoupon,
	gateway.ErrMissingSignature,
	gateway.ErrMissingSecret,
	gateway.ErrInvalidSignature,
}

// respondError maps a service error onto an HTTP response. Anything it does
// not recognise is logged and reported as a 500 without leaking details.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var (
		outOfStock   *models.OutOfStockError
		insufficient *models.InsufficientStockError
		gatewayErr   *models.GatewayError
	)
	switch {
	case errors.As(err, &outOfStock):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":           "out of stock",
			"available_stock": outOfStock.Available,
		})
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":           insufficient.Error(),
			"variant_id":      insufficient.VariantID,
			"available_stock": insufficient.Available,
		})
	case errors.As(err, &gatewayErr):
		log.Error("Payment gateway failed", zap.String("order_id", gatewayErr.OrderID), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":    "payment gateway unavailable",
			"order_id": gatewayErr.OrderID,
		})
	case errors.Is(err, models.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrUsernameTaken), errors.Is(err, models.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	for _, target := range notFound {
		if errors.Is(err, target) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	log.Error("Request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// parseBody decodes and validates the request body into dst. On failure the
// 400 response has already been written and ok is false.
func parseBody(c *fiber.Ctx, validate *validator.Validate, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(dst); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Validation failed",
		"errors": errorMessages,
	})
}
