package models

import "time"

// Expense is a single outgoing payment. Category is free text expected to
// match an ExpenseCategory name, but the link is by name only.
type Expense struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Category      string    `gorm:"size:100;index" json:"category"`
	Amount        float64   `gorm:"not null" json:"amount"`
	PaymentMethod string    `gorm:"size:50" json:"payment_method"`
	Date          time.Time `gorm:"not null;index" json:"date"`
	Vendor        string    `json:"vendor,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GetUserID implements Ownable.
func (e *Expense) GetUserID() uint {
	return e.UserID
}

// ExpenseCategory names a bucket for expenses. Color and icon are presentation
// hints for clients; the core never interprets them.
type ExpenseCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Color     string    `gorm:"size:20" json:"color,omitempty"`
	Icon      string    `gorm:"size:50" json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetUserID implements Ownable.
func (c *ExpenseCategory) GetUserID() uint {
	return c.UserID
}
