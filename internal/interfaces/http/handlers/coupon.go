// internal/interfaces/http/handlers/coupon.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/apparel-store/internal/domain/coupon"
)

// CouponHandler handles admin coupon endpoints
type CouponHandler struct {
	couponService *coupon.Service
	logger        logrus.FieldLogger
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(couponService *coupon.Service, logger logrus.FieldLogger) *CouponHandler {
	RegisterValidators()
	return &CouponHandler{
		couponService: couponService,
		logger:        logger,
	}
}

// GetCoupons handles GET /admin/coupons
func (h *CouponHandler) GetCoupons(c *gin.Context) {
	coupons, err := h.couponService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupons retrieved successfully",
		"data":    coupons,
	})
}

// GetCoupon handles GET /admin/coupons/:id
func (h *CouponHandler) GetCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "coupon")
	if !ok {
		return
	}

	cp, err := h.couponService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon retrieved successfully",
		"data":    cp,
	})
}

// CreateCoupon handles POST /admin/coupons
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req coupon.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cp, err := h.couponService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Coupon created successfully",
		"data":    cp,
	})
}

// UpdateCoupon handles PUT /admin/coupons/:id
func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "coupon")
	if !ok {
		return
	}

	var req coupon.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cp, err := h.couponService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon updated successfully",
		"data":    cp,
	})
}

// DeleteCoupon handles DELETE /admin/coupons/:id
func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "coupon")
	if !ok {
		return
	}

	if err := h.couponService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon deleted successfully",
	})
}
