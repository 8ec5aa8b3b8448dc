package repository

import (
	"github.com/deceroacien/backend/app/models"
	"gorm.io/gorm"
)

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create persists a new order row
func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// GetByID retrieves an order by id
func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPending records the processor session id once the external preference
// has been created.
func (r *orderRepository) MarkPending(id uint, preferenceID string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        models.OrderStatusPending,
		"preference_id": preferenceID,
	}).Error
}

// MarkPaid transitions an order to paid. Returns false when the order was
// already paid (or does not exist), so callers can tell whether this call
// performed the transition.
func (r *orderRepository) MarkPaid(id uint) (bool, error) {
	tx := r.db.Model(&models.Order{}).
		Where("id = ? AND status <> ?", id, models.OrderStatusPaid).
		Update("status", models.OrderStatusPaid)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
