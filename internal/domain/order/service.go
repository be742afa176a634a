// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/apparel-store/internal/domain/product"
	"github.com/your-org/apparel-store/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Store persists order snapshots for the pricing engine
type Store interface {
	Create(ctx context.Context, o *Order) error
	WithTx(tx *gorm.DB) Store
}

// Service handles order persistence, lifecycle and payment confirmation
type Service struct {
	db      *gorm.DB
	catalog product.Catalog
	now     func() time.Time
}

// NewService creates a new order service. The catalog is used to restock
// cancelled orders.
func NewService(db *gorm.DB, catalog product.Catalog) *Service {
	return &Service{
		db:      db,
		catalog: catalog,
		now:     time.Now,
	}
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page          int           `form:"page,default=1"`
	Limit         int           `form:"limit,default=20"`
	Status        OrderStatus   `form:"status"`
	PaymentStatus PaymentStatus `form:"payment_status"`
	UserID        uint          `form:"user_id"`
	SortBy        string        `form:"sort_by,default=created_at"`
	SortOrder     string        `form:"sort_order,default=desc"`
}

// OrderResponse represents order response with pagination
type OrderResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// UpdateStatusRequest represents an admin status transition
type UpdateStatusRequest struct {
	Status  OrderStatus `json:"status" binding:"required,oneof=confirmed shipped delivered cancelled"`
	Comment string      `json:"comment"`
}

// WithTx returns a store bound to the given transaction
func (s *Service) WithTx(tx *gorm.DB) Store {
	if tx == nil {
		return s
	}
	return &Service{db: tx, catalog: s.catalog, now: s.now}
}

// Create persists the order, its items and the initial history row
func (s *Service) Create(ctx context.Context, o *Order) error {
	if o.OrderNumber == "" {
		o.OrderNumber = GenerateOrderNumber(s.now())
	}
	if o.Status == "" {
		o.Status = OrderStatusPlaced
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = PaymentStatusPending
	}
	if len(o.StatusHistory) == 0 {
		o.StatusHistory = []OrderStatusHistory{{
			Status:    o.Status,
			Comment:   "Order placed",
			CreatedAt: s.now().UTC(),
		}}
	}

	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return apperror.Wrap(apperror.CodeInternal, err, "failed to create order")
	}
	return nil
}

// Get retrieves a single order by ID
func (s *Service) Get(ctx context.Context, id uint) (*Order, error) {
	return s.first(ctx, s.db.Where("id = ?", id))
}

// GetForUser retrieves an order only if it belongs to userID
func (s *Service) GetForUser(ctx context.Context, userID, id uint) (*Order, error) {
	return s.first(ctx, s.db.Where("id = ? AND user_id = ?", id, userID))
}

// GetByNumber retrieves a single order by order number
func (s *Service) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	return s.first(ctx, s.db.Where("order_number = ?", orderNumber))
}

func (s *Service) first(ctx context.Context, scope *gorm.DB) (*Order, error) {
	var o Order
	result := scope.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Payments").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&o)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "order not found")
		}
		return nil, apperror.Wrap(apperror.CodeInternal, result.Error, "failed to retrieve order")
	}
	return &o, nil
}

// List retrieves orders with filtering and pagination
func (s *Service) List(ctx context.Context, req *OrderListRequest) (*OrderResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.WithContext(ctx).Model(&Order{})

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.PaymentStatus != "" {
		query = query.Where("payment_status = ?", req.PaymentStatus)
	}
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to count orders")
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Order(s.buildOrderClause(req.SortBy, req.SortOrder)).
		Offset(offset).
		Limit(req.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to retrieve orders")
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &OrderResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// ListForUser retrieves the orders of a specific user
func (s *Service) ListForUser(ctx context.Context, userID uint, page, limit int) (*OrderResponse, error) {
	return s.List(ctx, &OrderListRequest{
		Page:   page,
		Limit:  limit,
		UserID: userID,
	})
}

// UpdateStatus moves an order through its lifecycle. Cancelling puts the
// ordered quantities back in stock.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, status OrderStatus, comment string, updatedBy uint) (*Order, error) {
	var o Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&o, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "order not found")
		}
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to load order")
	}

	if !isValidStatusTransition(o.Status, status) {
		return nil, apperror.Newf(apperror.CodeStateConflict, "invalid status transition from %s to %s", o.Status, status)
	}

	now := s.now().UTC()
	updates := map[string]interface{}{
		"status": status,
	}
	switch status {
	case OrderStatusConfirmed:
		updates["confirmed_at"] = now
	case OrderStatusShipped:
		updates["shipped_at"] = now
	case OrderStatusDelivered:
		updates["delivered_at"] = now
	case OrderStatusCancelled:
		updates["cancelled_at"] = now
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Order{}).
			Where("id = ? AND status = ?", o.ID, o.Status).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperror.New(apperror.CodeStateConflict, "order status changed concurrently")
		}

		if status == OrderStatusCancelled && s.catalog != nil {
			stock := s.catalog.WithTx(tx)
			for _, item := range o.Items {
				if err := stock.RestoreStock(ctx, item.ProductID, item.SKU, item.Quantity); err != nil {
					return err
				}
			}
		}

		return tx.Create(&OrderStatusHistory{
			OrderID:   o.ID,
			Status:    status,
			Comment:   comment,
			CreatedBy: updatedBy,
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		if _, ok := apperror.As(err); ok {
			return nil, err
		}
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to update order status")
	}

	return s.Get(ctx, o.ID)
}

// MarkPaid flips payment status to paid, for cash collected on delivery
func (s *Service) MarkPaid(ctx context.Context, orderID uint, comment string, updatedBy uint) (*Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return markPaid(tx, orderID, comment, updatedBy, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// RecordPayment stores a verified gateway payment and marks its order paid
func (s *Service) RecordPayment(ctx context.Context, p *Payment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return apperror.Wrap(apperror.CodeInternal, err, "failed to record payment")
		}
		return markPaid(tx, p.OrderID, fmt.Sprintf("Payment %s captured", p.GatewayPaymentID), 0, s.now().UTC())
	})
	return err
}

func markPaid(tx *gorm.DB, orderID uint, comment string, updatedBy uint, now time.Time) error {
	var o Order
	if err := tx.First(&o, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(apperror.CodeNotFound, "order not found")
		}
		return apperror.Wrap(apperror.CodeInternal, err, "failed to load order")
	}
	if o.PaymentStatus == PaymentStatusPaid {
		return apperror.New(apperror.CodeStateConflict, "order is already paid")
	}
	if o.Status == OrderStatusCancelled {
		return apperror.New(apperror.CodeStateConflict, "cancelled orders cannot be marked paid")
	}

	err := tx.Model(&Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"payment_status": PaymentStatusPaid,
		"paid_at":        now,
	}).Error
	if err != nil {
		return apperror.Wrap(apperror.CodeInternal, err, "failed to mark order paid")
	}

	if comment == "" {
		comment = "Payment received"
	}
	err = tx.Create(&OrderStatusHistory{
		OrderID:   orderID,
		Status:    o.Status,
		Comment:   comment,
		CreatedBy: updatedBy,
		CreatedAt: now,
	}).Error
	if err != nil {
		return apperror.Wrap(apperror.CodeInternal, err, "failed to create status history")
	}
	return nil
}

// Delete hard-deletes an order with its items, payments and history
func (s *Service) Delete(ctx context.Context, id uint) error {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&OrderItem{}, &Payment{}, &OrderStatusHistory{}} {
			if err := tx.Where("order_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&Order{}, id)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return apperror.Wrap(apperror.CodeInternal, err, "failed to delete order")
	}
	if affected == 0 {
		return apperror.New(apperror.CodeNotFound, "order not found")
	}
	return nil
}

func isValidStatusTransition(from, to OrderStatus) bool {
	validTransitions := map[OrderStatus][]OrderStatus{
		OrderStatusPlaced: {
			OrderStatusConfirmed,
			OrderStatusCancelled,
		},
		OrderStatusConfirmed: {
			OrderStatusShipped,
			OrderStatusCancelled,
		},
		OrderStatusShipped: {
			OrderStatusDelivered,
		},
	}

	for _, status := range validTransitions[from] {
		if status == to {
			return true
		}
	}
	return false
}

func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"grand_total":  true,
		"status":       true,
		"order_number": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s, id %s", sortBy, sortOrder, sortOrder)
}
