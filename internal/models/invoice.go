package models

import "time"

// PaymentType is how a sale was settled at the counter.
type PaymentType string

const (
	PaymentCash   PaymentType = "cash"
	PaymentUPI    PaymentType = "upi"
	PaymentOnline PaymentType = "online"
	PaymentCredit PaymentType = "credit"
)

// ValidPaymentType reports whether t is one of the accepted payment types.
func ValidPaymentType(t PaymentType) bool {
	switch t {
	case PaymentCash, PaymentUPI, PaymentOnline, PaymentCredit:
		return true
	}
	return false
}

// InvoiceStatus is a pure projection of (amountPaid, grandTotal, balanceDue)
// computed at commit time. Invoices never transition afterwards; they are
// immutable once created, except for deletion.
type InvoiceStatus string

const (
	StatusPaid    InvoiceStatus = "paid"
	StatusPartial InvoiceStatus = "partial"
	StatusCredit  InvoiceStatus = "credit"
)

// Invoice is a committed sale. CustomerName and every item's product fields are
// copied at sale time so later catalog or customer edits never alter an issued
// invoice.
type Invoice struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UserID        uint   `gorm:"not null;index:idx_invoices_user_number,priority:1" json:"user_id"`
	InvoiceNumber string `gorm:"size:50;not null;index:idx_invoices_user_number,unique,priority:2" json:"invoice_number"`

	CustomerID   uint   `gorm:"not null;index" json:"customer_id"`
	CustomerName string `gorm:"size:255;not null" json:"customer_name"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`

	Subtotal   float64 `gorm:"not null" json:"subtotal"`
	Tax        float64 `gorm:"not null" json:"tax"` // reserved, always 0 for now
	Discount   float64 `gorm:"not null" json:"discount"`
	GrandTotal float64 `gorm:"not null" json:"grand_total"`

	PaymentType PaymentType   `gorm:"size:20;not null" json:"payment_type"`
	AmountPaid  float64       `gorm:"not null" json:"amount_paid"`
	BalanceDue  float64       `gorm:"not null" json:"balance_due"`
	Status      InvoiceStatus `gorm:"size:20;not null" json:"status"`

	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetUserID implements Ownable.
func (i *Invoice) GetUserID() uint {
	return i.UserID
}

// InvoiceItem is one line of a committed sale, denormalized from the catalog
// at the moment of commit.
type InvoiceItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	InvoiceID   uint    `gorm:"not null;index" json:"invoice_id"`
	ProductID   uint    `gorm:"not null;index" json:"product_id"`
	VariantID   uint    `gorm:"not null" json:"variant_id"`
	ProductName string  `gorm:"size:255;not null" json:"product_name"`
	PackSize    string  `gorm:"size:100" json:"pack_size"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	Rate        float64 `gorm:"not null" json:"rate"`
	Total       float64 `gorm:"not null" json:"total"`
}
