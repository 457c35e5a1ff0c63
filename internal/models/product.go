package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is one catalog entry grouping the pack-size variants it is sold in.
type Product struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"-"`
	Name     string `gorm:"size:255;not null;index" json:"name"`
	Category string `gorm:"size:100;index" json:"category"`
	Brand    string `gorm:"size:100" json:"brand"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// GetUserID implements Ownable.
func (p *Product) GetUserID() uint {
	return p.UserID
}

// ProductVariant is a specific sellable pack size with its own price and stock.
// PackSize is free text ("500ml", "1kg"); the leading numeric portion, when
// present, feeds the volume rollups in reports.
type ProductVariant struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	ProductID         uint    `gorm:"not null;index" json:"product_id"`
	PackSize          string  `gorm:"size:100;not null" json:"pack_size"`
	Unit              string  `gorm:"size:50" json:"unit"`
	StockQuantity     int     `gorm:"not null;default:0" json:"stock_quantity"`
	SellingPrice      float64 `gorm:"not null" json:"selling_price"`
	PurchasePrice     float64 `json:"purchase_price,omitempty"`
	LowStockThreshold int     `gorm:"not null;default:0" json:"low_stock_threshold"`
	Barcode           string  `gorm:"size:100;index" json:"barcode,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LowStock reports whether the variant is at or below its reorder threshold.
func (v *ProductVariant) LowStock() bool {
	return v.StockQuantity <= v.LowStockThreshold
}
