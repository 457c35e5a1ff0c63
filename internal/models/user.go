package models

import "time"

// User owns a private namespace of products, customers, invoices, and
// expenses. There are no cross-user relationships anywhere in the schema.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null;index" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash
	Name      string    `json:"name"`
	ShopName  string    `json:"shop_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ownable is implemented by every tenant-scoped entity so ownership checks
// work uniformly across handlers.
type Ownable interface {
	GetUserID() uint
}
