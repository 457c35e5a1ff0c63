package billing

import "github.com/khaata-app/khaata-server/internal/models"

// Line is one cart row. Rate is copied from the variant when the line is added
// and may be edited independently afterwards; it never tracks later catalog
// changes.
type Line struct {
	ProductID   uint    `json:"product_id"`
	VariantID   uint    `json:"variant_id"`
	ProductName string  `json:"product_name"`
	PackSize    string  `json:"pack_size"`
	Quantity    int     `json:"quantity"`
	Rate        float64 `json:"rate"`
	Total       float64 `json:"total"`
}

// Cart is the in-progress sale a point-of-sale screen builds up before commit.
type Cart struct {
	Lines []Line `json:"lines"`
}

// AddLine puts a variant in the cart. An existing line for the same variant
// has its quantity incremented and is re-totalled at the line's current rate,
// which may already carry a manual override. A new line starts at the
// variant's selling price. Quantities below one are treated as one.
func (c *Cart) AddLine(p *models.Product, v *models.ProductVariant, qty int) {
	if qty < 1 {
		qty = 1
	}
	for i := range c.Lines {
		if c.Lines[i].VariantID == v.ID {
			c.Lines[i].Quantity += qty
			c.Lines[i].Total = float64(c.Lines[i].Quantity) * c.Lines[i].Rate
			return
		}
	}
	c.Lines = append(c.Lines, Line{
		ProductID:   p.ID,
		VariantID:   v.ID,
		ProductName: p.Name,
		PackSize:    v.PackSize,
		Quantity:    qty,
		Rate:        v.SellingPrice,
		Total:       float64(qty) * v.SellingPrice,
	})
}

// UpdateQuantity sets the quantity of the line at index and re-totals it.
// A quantity of zero or less removes the line.
func (c *Cart) UpdateQuantity(index, qty int) {
	if index < 0 || index >= len(c.Lines) {
		return
	}
	if qty <= 0 {
		c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
		return
	}
	c.Lines[index].Quantity = qty
	c.Lines[index].Total = float64(qty) * c.Lines[index].Rate
}

// UpdateRate overrides the rate of the line at index and re-totals it. Bounds
// beyond what callers enforce are intentionally not applied here.
func (c *Cart) UpdateRate(index int, rate float64) {
	if index < 0 || index >= len(c.Lines) {
		return
	}
	c.Lines[index].Rate = rate
	c.Lines[index].Total = float64(c.Lines[index].Quantity) * rate
}

// Subtotal sums the line totals.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Total
	}
	return total
}

// Totals holds the derived money figures of a sale.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	Tax        float64 `json:"tax"`
	Discount   float64 `json:"discount"`
	GrandTotal float64 `json:"grand_total"`
	AmountPaid float64 `json:"amount_paid"`
	BalanceDue float64 `json:"balance_due"`
}

// ComputeTotals derives subtotal, grand total, and balance due. Tax is
// reserved and fixed at zero. The grand total is not clamped: a discount
// larger than the subtotal takes it negative, and a negative balance due is
// change owed back to the customer.
func ComputeTotals(c *Cart, discount, amountPaid float64) Totals {
	subtotal := c.Subtotal()
	tax := 0.0
	grand := subtotal + tax - discount
	return Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		Discount:   discount,
		GrandTotal: grand,
		AmountPaid: amountPaid,
		BalanceDue: grand - amountPaid,
	}
}

// DeriveStatus projects the payment status from the committed figures,
// evaluated strictly in this order: anything still due is credit, then a paid
// amount short of the total is partial, otherwise paid.
func DeriveStatus(amountPaid, grandTotal, balanceDue float64) models.InvoiceStatus {
	if balanceDue > 0 {
		return models.StatusCredit
	}
	if amountPaid < grandTotal {
		return models.StatusPartial
	}
	return models.StatusPaid
}
