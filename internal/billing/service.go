package billing

import (
	"errors"
	"time"

	"github.com/khaata-app/khaata-server/internal/models"
	"gorm.io/gorm"
)

// Service commits carts into invoices and reverses deletions. Every commit
// runs inside one transaction so stock, the customer ledger, and the invoice
// collection never drift apart; a failed precondition leaves no state change.
type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Now: time.Now}
}

// Payment captures how the sale is settled at commit time.
type Payment struct {
	Type       models.PaymentType `json:"type"`
	AmountPaid float64            `json:"amount_paid"`
	Discount   float64            `json:"discount"`
	Notes      string             `json:"notes"`
}

// Commit turns the cart into a persisted invoice for the given customer:
// stock is decremented per line, the customer's total purchases grow by the
// grand total and the credit balance by the balance due (which may be
// negative), and the invoice is appended with the next sequential number.
// It fails without touching anything if the customer is missing, the cart is
// empty, any quantity is below one, or any line exceeds the stock currently on
// hand.
func (s *Service) Commit(userID, customerID uint, cart *Cart, pay Payment) (*models.Invoice, error) {
	if customerID == 0 {
		return nil, ErrNoCustomer
	}
	if cart == nil || len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	// Lines may arrive straight off the wire. Quantities must be positive and
	// a line total is always quantity times rate, whatever the client sent.
	for i := range cart.Lines {
		l := &cart.Lines[i]
		if l.Quantity < 1 {
			return nil, ErrBadQuantity
		}
		l.Total = float64(l.Quantity) * l.Rate
	}

	now := s.Now()
	totals := ComputeTotals(cart, pay.Discount, pay.AmountPaid)
	status := DeriveStatus(pay.AmountPaid, totals.GrandTotal, totals.BalanceDue)

	var inv models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.Where("id = ? AND user_id = ?", customerID, userID).First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoCustomer
			}
			return err
		}

		// Verify every line before any decrement.
		for _, l := range cart.Lines {
			var v models.ProductVariant
			err := tx.Joins("JOIN products ON products.id = product_variants.product_id").
				Where("product_variants.id = ? AND products.user_id = ? AND products.deleted_at IS NULL", l.VariantID, userID).
				First(&v).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &InsufficientStockError{ProductName: l.ProductName, PackSize: l.PackSize, Requested: l.Quantity, Available: 0}
				}
				return err
			}
			if v.StockQuantity < l.Quantity {
				return &InsufficientStockError{ProductName: l.ProductName, PackSize: l.PackSize, Requested: l.Quantity, Available: v.StockQuantity}
			}
		}

		for _, l := range cart.Lines {
			err := tx.Model(&models.ProductVariant{}).
				Where("id = ? AND product_id IN (SELECT id FROM products WHERE user_id = ? AND deleted_at IS NULL)", l.VariantID, userID).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", l.Quantity)).Error
			if err != nil {
				return err
			}
		}

		err := tx.Model(&models.Customer{}).Where("id = ? AND user_id = ?", customer.ID, userID).Updates(map[string]any{
			"total_purchases": gorm.Expr("total_purchases + ?", totals.GrandTotal),
			"credit_balance":  gorm.Expr("credit_balance + ?", totals.BalanceDue),
			"last_visit":      now,
		}).Error
		if err != nil {
			return err
		}

		// The transaction is the single writer here, which is what makes
		// max+1 numbering collision-free.
		var numbers []string
		if err := tx.Model(&models.Invoice{}).Where("user_id = ?", userID).Pluck("invoice_number", &numbers).Error; err != nil {
			return err
		}

		items := make([]models.InvoiceItem, 0, len(cart.Lines))
		for _, l := range cart.Lines {
			items = append(items, models.InvoiceItem{
				ProductID:   l.ProductID,
				VariantID:   l.VariantID,
				ProductName: l.ProductName,
				PackSize:    l.PackSize,
				Quantity:    l.Quantity,
				Rate:        l.Rate,
				Total:       l.Total,
			})
		}
		inv = models.Invoice{
			UserID:        userID,
			InvoiceNumber: NextInvoiceNumber(numbers),
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			Items:         items,
			Subtotal:      totals.Subtotal,
			Tax:           totals.Tax,
			Discount:      totals.Discount,
			GrandTotal:    totals.GrandTotal,
			PaymentType:   pay.Type,
			AmountPaid:    totals.AmountPaid,
			BalanceDue:    totals.BalanceDue,
			Status:        status,
			Notes:         pay.Notes,
			CreatedAt:     now,
		}
		return tx.Create(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Delete removes an invoice and symmetrically reverses its side effects: sold
// quantities return to stock and the customer's total purchases and credit
// balance are rolled back by exactly what the commit added.
func (s *Service) Delete(userID, invoiceID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Preload("Items").Where("id = ? AND user_id = ?", invoiceID, userID).First(&inv).Error; err != nil {
			return err
		}
		for _, it := range inv.Items {
			err := tx.Model(&models.ProductVariant{}).Where("id = ?", it.VariantID).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", it.Quantity)).Error
			if err != nil {
				return err
			}
		}
		err := tx.Model(&models.Customer{}).Where("id = ? AND user_id = ?", inv.CustomerID, userID).Updates(map[string]any{
			"total_purchases": gorm.Expr("total_purchases - ?", inv.GrandTotal),
			"credit_balance":  gorm.Expr("credit_balance - ?", inv.BalanceDue),
		}).Error
		if err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&inv).Error
	})
}
