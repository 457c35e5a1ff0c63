// Package reports is the read-only aggregation engine: pure functions that
// turn entity collections into derived figures. Nothing here mutates its
// inputs, and every date partition derives from a caller-supplied instant so
// the functions stay deterministic under test.
package reports

import (
	"sort"
	"time"

	"github.com/khaata-app/khaata-server/internal/models"
)

// NoProduct is the sentinel top-seller name when no invoice exists yet.
const NoProduct = "N/A"

// DashboardStats summarizes the shop at a single instant.
type DashboardStats struct {
	TodaySales        float64 `json:"today_sales"`
	MonthlySales      float64 `json:"monthly_sales"`
	YearlyRevenue     float64 `json:"yearly_revenue"`
	CreditPending     float64 `json:"credit_pending"`
	TopSellingProduct string  `json:"top_selling_product"`
	LowStockCount     int     `json:"low_stock_count"`
	NewCustomersWeek  int     `json:"new_customers_week"`
}

// Dashboard partitions invoices into today / this month / this year relative
// to now and sums grand totals per partition. The top seller is the product
// name with the highest cumulative quantity across all invoices regardless of
// date, ties going to the first one encountered. Credit pending comes from the
// customer ledger, not from invoices.
func Dashboard(invoices []models.Invoice, products []models.Product, customers []models.Customer, now time.Time) DashboardStats {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)

	stats := DashboardStats{TopSellingProduct: NoProduct}

	qtyByProduct := map[string]int{}
	var firstSeen []string
	for _, inv := range invoices {
		if !inv.CreatedAt.Before(startOfDay) {
			stats.TodaySales += inv.GrandTotal
		}
		if !inv.CreatedAt.Before(startOfMonth) {
			stats.MonthlySales += inv.GrandTotal
		}
		if !inv.CreatedAt.Before(startOfYear) {
			stats.YearlyRevenue += inv.GrandTotal
		}
		for _, it := range inv.Items {
			if _, seen := qtyByProduct[it.ProductName]; !seen {
				firstSeen = append(firstSeen, it.ProductName)
			}
			qtyByProduct[it.ProductName] += it.Quantity
		}
	}
	best := 0
	for _, name := range firstSeen {
		if qtyByProduct[name] > best {
			best = qtyByProduct[name]
			stats.TopSellingProduct = name
		}
	}

	for _, c := range customers {
		stats.CreditPending += c.CreditBalance
		if !c.CreatedAt.Before(weekAgo) {
			stats.NewCustomersWeek++
		}
	}
	for _, p := range products {
		for _, v := range p.Variants {
			if v.LowStock() {
				stats.LowStockCount++
			}
		}
	}
	return stats
}

// SalesReport aggregates the invoices of one period.
type SalesReport struct {
	TotalSales       float64 `json:"total_sales"`
	TotalUnits       int     `json:"total_units"`
	InvoiceCount     int     `json:"invoice_count"`
	AverageOrderSize float64 `json:"average_order_size"`
}

// Sales filters invoices created in [start, end] inclusive and sums grand
// totals and unit counts. AverageOrderSize is zero for an empty period rather
// than a division error.
func Sales(invoices []models.Invoice, start, end time.Time) SalesReport {
	var r SalesReport
	for _, inv := range invoices {
		if !within(inv.CreatedAt, start, end) {
			continue
		}
		r.TotalSales += inv.GrandTotal
		r.InvoiceCount++
		for _, it := range inv.Items {
			r.TotalUnits += it.Quantity
		}
	}
	if r.InvoiceCount > 0 {
		r.AverageOrderSize = r.TotalSales / float64(r.InvoiceCount)
	}
	return r
}

// PackSizeSales is one row of a product sales breakdown, keyed by the exact
// pack-size string.
type PackSizeSales struct {
	PackSize  string  `json:"pack_size"`
	UnitsSold int     `json:"units_sold"`
	Revenue   float64 `json:"revenue"`
	Volume    float64 `json:"volume"`
}

// ProductSalesReport breaks one product's sales down by pack size.
type ProductSalesReport struct {
	ProductID    uint            `json:"product_id"`
	ProductName  string          `json:"product_name"`
	TotalUnits   int             `json:"total_units"`
	TotalRevenue float64         `json:"total_revenue"`
	TotalVolume  float64         `json:"total_volume"`
	PackSizes    []PackSizeSales `json:"pack_sizes"`
}

// ProductSales returns nil when no invoice in range references the product, so
// callers can tell "no data" apart from a period of zero sales. Volume is the
// leading numeric portion of the pack size times quantity, a best-effort
// heuristic rather than a unit conversion.
func ProductSales(invoices []models.Invoice, productID uint, start, end time.Time) *ProductSalesReport {
	var rep *ProductSalesReport
	rowIdx := map[string]int{}
	for _, inv := range invoices {
		if !within(inv.CreatedAt, start, end) {
			continue
		}
		for _, it := range inv.Items {
			if it.ProductID != productID {
				continue
			}
			if rep == nil {
				rep = &ProductSalesReport{ProductID: productID, ProductName: it.ProductName}
			}
			i, ok := rowIdx[it.PackSize]
			if !ok {
				i = len(rep.PackSizes)
				rowIdx[it.PackSize] = i
				rep.PackSizes = append(rep.PackSizes, PackSizeSales{PackSize: it.PackSize})
			}
			volume := PackSizeMagnitude(it.PackSize) * float64(it.Quantity)
			rep.PackSizes[i].UnitsSold += it.Quantity
			rep.PackSizes[i].Revenue += it.Total
			rep.PackSizes[i].Volume += volume
			rep.TotalUnits += it.Quantity
			rep.TotalRevenue += it.Total
			rep.TotalVolume += volume
		}
	}
	return rep
}

// CustomerSales is one customer's rollup for a period.
type CustomerSales struct {
	CustomerID   uint    `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	InvoiceCount int     `json:"invoice_count"`
	TotalSpent   float64 `json:"total_spent"`
}

// Customers groups in-range invoices per customer, biggest spender first.
func Customers(invoices []models.Invoice, start, end time.Time) []CustomerSales {
	idx := map[uint]int{}
	var out []CustomerSales
	for _, inv := range invoices {
		if !within(inv.CreatedAt, start, end) {
			continue
		}
		i, ok := idx[inv.CustomerID]
		if !ok {
			i = len(out)
			idx[inv.CustomerID] = i
			out = append(out, CustomerSales{CustomerID: inv.CustomerID, CustomerName: inv.CustomerName})
		}
		out[i].InvoiceCount++
		out[i].TotalSpent += inv.GrandTotal
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].TotalSpent > out[b].TotalSpent })
	return out
}

// ExpenseRow is one bucket of an expense breakdown.
type ExpenseRow struct {
	Key     string  `json:"key"`
	Amount  float64 `json:"amount"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// ExpenseReport rolls a period's expenses up by category and payment method.
type ExpenseReport struct {
	TotalAmount  float64      `json:"total_amount"`
	ExpenseCount int          `json:"expense_count"`
	ByCategory   []ExpenseRow `json:"by_category"`
	ByPayment    []ExpenseRow `json:"by_payment_method"`
}

// Expenses filters by the expense date (not creation time) and produces both
// breakdowns. Percentages are zero when the total is zero rather than NaN.
func Expenses(expenses []models.Expense, start, end time.Time) ExpenseReport {
	var r ExpenseReport
	var inRange []models.Expense
	for _, e := range expenses {
		if !within(e.Date, start, end) {
			continue
		}
		inRange = append(inRange, e)
		r.TotalAmount += e.Amount
		r.ExpenseCount++
	}
	r.ByCategory = groupExpenses(inRange, r.TotalAmount, func(e models.Expense) string { return e.Category })
	r.ByPayment = groupExpenses(inRange, r.TotalAmount, func(e models.Expense) string { return e.PaymentMethod })
	return r
}

func groupExpenses(expenses []models.Expense, total float64, key func(models.Expense) string) []ExpenseRow {
	idx := map[string]int{}
	var out []ExpenseRow
	for _, e := range expenses {
		k := key(e)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, ExpenseRow{Key: k})
		}
		out[i].Amount += e.Amount
		out[i].Count++
	}
	if total > 0 {
		for i := range out {
			out[i].Percent = out[i].Amount / total * 100
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Amount > out[b].Amount })
	return out
}

// within reports t in [start, end] inclusive.
func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
