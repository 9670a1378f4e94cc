package handlers

import (
	"kedai/internal/middleware"
	"kedai/internal/services"

	"github.com/go-faster/errors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Services are the collaborators the HTTP layer is built on.
type Services struct {
	Auth     *services.AuthService
	Products *services.ProductService
	Carts    *services.CartService
	Coupons  *services.CouponService
	Orders   *services.OrderService
	Payments *services.PaymentService
}

// RegisterAll mounts every API route on router.
func RegisterAll(router fiber.Router, svc Services, log *zap.Logger) {
	auth := middleware.AuthRequired(svc.Auth, log)
	admin := []fiber.Handler{auth, middleware.AdminOnly()}

	NewAuthHandler(svc.Auth, log).RegisterRoutes(router)
	NewProductHandler(svc.Products, log).RegisterRoutes(router, admin...)
	NewCartHandler(svc.Carts, log).RegisterRoutes(router)
	NewCouponHandler(svc.Coupons, log).RegisterRoutes(router, admin...)
	NewOrderHandler(svc.Orders, log).RegisterRoutes(router, auth)
	NewPaymentHandler(svc.Payments, svc.Carts, log).RegisterRoutes(router, auth)
}

// ErrorHandler reports errors that escape a handler, such as unknown routes,
// in the same JSON shape the handlers use.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("Unhandled error", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(code).JSON(fiber.Map{"error": "internal server error"})
		}
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}
