package models

import "time"

// Customer carries the shop's running ledger for one buyer. CreditBalance and
// TotalPurchases are written only by invoice commit and delete; no other code
// path touches them.
type Customer struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"-"`
	Name    string `gorm:"size:255;not null;index" json:"name"`
	Phone   string `gorm:"size:20;index" json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`

	// Signed running total of unpaid invoice balances. Overpayments push it down.
	CreditBalance float64 `gorm:"not null;default:0" json:"credit_balance"`
	// Lifetime sum of invoice grand totals.
	TotalPurchases float64    `gorm:"not null;default:0" json:"total_purchases"`
	LastVisit      *time.Time `json:"last_visit,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetUserID implements Ownable.
func (c *Customer) GetUserID() uint {
	return c.UserID
}
