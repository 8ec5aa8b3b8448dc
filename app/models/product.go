package models

import "time"

// Product is a purchasable catalog entry. SKU is the public identifier used
// by the front-end cart (e.g. "course.pmv").
type Product struct {
	SKU         string    `gorm:"primaryKey;type:varchar(100)" json:"sku"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	UnitPrice   float64   `gorm:"not null" json:"unit_price"`
	Currency    string    `gorm:"type:varchar(10);not null" json:"currency"`
	Entitlement string    `gorm:"type:varchar(100)" json:"entitlement"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
