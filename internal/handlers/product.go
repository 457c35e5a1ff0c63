package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/khaata-app/khaata-server/internal/auth"
	"github.com/khaata-app/khaata-server/internal/httpx"
	"github.com/khaata-app/khaata-server/internal/models"
	"github.com/khaata-app/khaata-server/internal/validation"

	"gorm.io/gorm"
)

type ProductHandler struct{ DB *gorm.DB }

func NewProductHandler(db *gorm.DB) *ProductHandler { return &ProductHandler{DB: db} }

var unsafeQueryChars = regexp.MustCompile(`[^a-zA-Z0-9 \-_]`)

type variantInput struct {
	ID                uint    `json:"id"`
	PackSize          string  `json:"pack_size"`
	Unit              string  `json:"unit"`
	StockQuantity     int     `json:"stock_quantity"`
	SellingPrice      float64 `json:"selling_price"`
	PurchasePrice     float64 `json:"purchase_price"`
	LowStockThreshold int     `json:"low_stock_threshold"`
	Barcode           string  `json:"barcode"`
}

type productInput struct {
	Name     string         `json:"name"`
	Category string         `json:"category"`
	Brand    string         `json:"brand"`
	Variants []variantInput `json:"variants"`
}

func (in *productInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if len(in.Variants) == 0 {
		v["variants"] = "required"
	}
	for _, vi := range in.Variants {
		validation.Required("variants.pack_size", vi.PackSize, v)
		validation.PositiveFloat("variants.selling_price", vi.SellingPrice, v)
		validation.NonNegativeInt("variants.stock_quantity", vi.StockQuantity, v)
		validation.NonNegativeInt("variants.low_stock_threshold", vi.LowStockThreshold, v)
	}
	return v
}

// List: GET /products?q=&page=&limit=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	dbq := h.DB.Where("user_id = ?", userID)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(unsafeQueryChars.ReplaceAllString(q, "")) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR lower(category) LIKE ? OR lower(brand) LIKE ?", like, like, like)
	}
	var total int64
	dbq.Model(&models.Product{}).Count(&total)
	var products []models.Product
	if err := dbq.Preload("Variants").Order("name").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in productInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	product := models.Product{UserID: userID, Name: in.Name, Category: in.Category, Brand: in.Brand}
	for _, vi := range in.Variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			PackSize:          vi.PackSize,
			Unit:              vi.Unit,
			StockQuantity:     vi.StockQuantity,
			SellingPrice:      vi.SellingPrice,
			PurchasePrice:     vi.PurchasePrice,
			LowStockThreshold: vi.LowStockThreshold,
			Barcode:           vi.Barcode,
		})
	}
	if err := h.DB.Create(&product).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_product", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

// Get: GET /products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	product, ok := h.load(w, r.PathValue("id"), userID)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Update: PUT /products/{id} — replaces the product's fields and variant set.
// Variants with a known id are updated in place so committed invoices keep
// valid references; ids not present any more are deleted; new entries are
// created.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	product, ok := h.load(w, r.PathValue("id"), userID)
	if !ok {
		return
	}

	var in productInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(product).Updates(map[string]any{
			"name": in.Name, "category": in.Category, "brand": in.Brand,
		}).Error; err != nil {
			return err
		}
		keep := map[uint]bool{}
		for _, vi := range in.Variants {
			if vi.ID != 0 {
				keep[vi.ID] = true
				err := tx.Model(&models.ProductVariant{}).
					Where("id = ? AND product_id = ?", vi.ID, product.ID).
					Updates(map[string]any{
						"pack_size":           vi.PackSize,
						"unit":                vi.Unit,
						"stock_quantity":      vi.StockQuantity,
						"selling_price":       vi.SellingPrice,
						"purchase_price":      vi.PurchasePrice,
						"low_stock_threshold": vi.LowStockThreshold,
						"barcode":             vi.Barcode,
					}).Error
				if err != nil {
					return err
				}
				continue
			}
			nv := models.ProductVariant{
				ProductID:         product.ID,
				PackSize:          vi.PackSize,
				Unit:              vi.Unit,
				StockQuantity:     vi.StockQuantity,
				SellingPrice:      vi.SellingPrice,
				PurchasePrice:     vi.PurchasePrice,
				LowStockThreshold: vi.LowStockThreshold,
				Barcode:           vi.Barcode,
			}
			if err := tx.Create(&nv).Error; err != nil {
				return err
			}
			keep[nv.ID] = true
		}
		var existing []models.ProductVariant
		if err := tx.Where("product_id = ?", product.ID).Find(&existing).Error; err != nil {
			return err
		}
		for _, ev := range existing {
			if !keep[ev.ID] {
				if err := tx.Delete(&models.ProductVariant{}, ev.ID).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_product", nil)
		return
	}

	var updated models.Product
	if err := h.DB.Preload("Variants").First(&updated, product.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// Delete: DELETE /products/{id} — soft delete; issued invoices keep their
// denormalized copies.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	product, ok := h.load(w, r.PathValue("id"), userID)
	if !ok {
		return
	}
	if err := h.DB.Delete(product).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_product", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// LowStock: GET /products/low-stock — variants at or below their threshold,
// the same predicate the dashboard counts.
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var products []models.Product
	if err := h.DB.Where("user_id = ?", userID).Preload("Variants").Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	type lowStockRow struct {
		ProductID   uint   `json:"product_id"`
		ProductName string `json:"product_name"`
		VariantID   uint   `json:"variant_id"`
		PackSize    string `json:"pack_size"`
		Stock       int    `json:"stock_quantity"`
		Threshold   int    `json:"low_stock_threshold"`
	}
	rows := []lowStockRow{}
	for _, p := range products {
		for _, v := range p.Variants {
			if v.LowStock() {
				rows = append(rows, lowStockRow{
					ProductID: p.ID, ProductName: p.Name,
					VariantID: v.ID, PackSize: v.PackSize,
					Stock: v.StockQuantity, Threshold: v.LowStockThreshold,
				})
			}
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": rows, "count": len(rows)})
}

func (h *ProductHandler) load(w http.ResponseWriter, idStr string, userID uint) (*models.Product, bool) {
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	var product models.Product
	if err := h.DB.Preload("Variants").Where("id = ? AND user_id = ?", id, userID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return nil, false
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return nil, false
	}
	return &product, true
}
