package services

import (
	"context"
	"fmt"

	"kedai/internal/models"
	"kedai/internal/repositories"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Coupon rejection reasons.
const (
	ReasonInvalidCode = "invalid code"
	ReasonAlreadyUsed = "coupon already used"
)

var hundred = decimal.NewFromInt(100)

// ErrInvalidCoupon is returned when a coupon definition cannot be used.
var ErrInvalidCoupon = errors.New("invalid coupon definition")

// CouponCheck is the verdict of a coupon validation.
type CouponCheck struct {
	Valid    bool
	Discount decimal.Decimal
	Reason   string
	Coupon   *models.Coupon
}

// CouponService evaluates coupons. It never mutates coupon state.
type CouponService struct {
	repo repositories.CouponRepository
}

// NewCouponService creates a new CouponService.
func NewCouponService(repo repositories.CouponRepository) *CouponService {
	return &CouponService{repo: repo}
}

// Validate decides whether code applies to orderAmount and computes the
// discount. Only infrastructure failures are returned as errors.
func (s *CouponService) Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (*CouponCheck, error) {
	coupon, err := s.repo.GetActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, models.ErrCouponNotFound) {
			return &CouponCheck{Reason: ReasonInvalidCode}, nil
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}
	if orderAmount.LessThan(coupon.MinOrderAmt) {
		return &CouponCheck{
			Reason: fmt.Sprintf("Minimum order amount is %s", coupon.MinOrderAmt.StringFixed(2)),
			Coupon: coupon,
		}, nil
	}
	if coupon.IsOneTime && coupon.TimesUsed > 0 {
		return &CouponCheck{Reason: ReasonAlreadyUsed, Coupon: coupon}, nil
	}
	return &CouponCheck{
		Valid:    true,
		Discount: Discount(coupon, orderAmount),
		Coupon:   coupon,
	}, nil
}

// CreateCoupon stores a new coupon after checking its definition.
func (s *CouponService) CreateCoupon(ctx context.Context, coupon *models.Coupon) error {
	switch {
	case coupon.Type != models.CouponFixed && coupon.Type != models.CouponPercentage:
		return errors.Wrapf(ErrInvalidCoupon, "unknown type %q", coupon.Type)
	case !coupon.Value.IsPositive():
		return errors.Wrap(ErrInvalidCoupon, "value must be positive")
	case coupon.Type == models.CouponPercentage && coupon.Value.GreaterThan(hundred):
		return errors.Wrap(ErrInvalidCoupon, "percentage above 100")
	case coupon.MinOrderAmt.IsNegative():
		return errors.Wrap(ErrInvalidCoupon, "negative minimum order amount")
	}
	coupon.TimesUsed = 0
	return s.repo.Create(ctx, coupon)
}

// Discount returns the amount coupon takes off amount: the fixed value, or
// amount*value/100 rounded to cents for percentage coupons.
func Discount(coupon *models.Coupon, amount decimal.Decimal) decimal.Decimal {
	switch coupon.Type {
	case models.CouponFixed:
		return coupon.Value.Round(2)
	case models.CouponPercentage:
		return amount.Mul(coupon.Value).Div(hundred).Round(2)
	default:
		return decimal.Zero
	}
}

// OrderTotal is subtotal minus discount, floored at zero.
func OrderTotal(subtotal, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Round(2)
}
