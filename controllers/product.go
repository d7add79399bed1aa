package controllers

import (
	"errors"
	"net/http"
	"strings"

	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateProductInput struct {
	Name         string          `json:"name" binding:"required"`
	SKU          string          `json:"sku" binding:"required"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	Stock        int             `json:"stock" binding:"min=0"`
	ReorderLevel int             `json:"reorderLevel" binding:"min=0"`
}

type UpdateProductInput struct {
	Name         *string          `json:"name"`
	SKU          *string          `json:"sku"`
	Unit         *string          `json:"unit"`
	Price        *decimal.Decimal `json:"price"`
	Cost         *decimal.Decimal `json:"cost"`
	ReorderLevel *int             `json:"reorderLevel" binding:"omitempty,min=0"`
	IsActive     *bool            `json:"isActive"`
}

type AdjustStockInput struct {
	Quantity int    `json:"quantity" binding:"required"` // signed
	Reason   string `json:"reason" binding:"required"`
}

func (h *Handler) CreateProduct(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	var input CreateProductInput
	if !bindJSON(c, &input) {
		return
	}
	if input.Price.IsNegative() || input.Cost.IsNegative() {
		utils.RespondWithError(c, http.StatusBadRequest, "Price and cost must not be negative")
		return
	}

	sku := strings.ToUpper(strings.TrimSpace(input.SKU))
	if taken, err := h.skuTaken(c, salonID, sku); err != nil {
		h.respondServiceError(c, err, "Database error")
		return
	} else if taken {
		utils.RespondWithError(c, http.StatusConflict, "Product with this SKU already exists")
		return
	}

	product := models.Product{
		SalonID:      salonID,
		Name:         input.Name,
		SKU:          sku,
		Unit:         input.Unit,
		Price:        input.Price,
		Cost:         input.Cost,
		ReorderLevel: input.ReorderLevel,
		IsActive:     true,
	}
	if product.Unit == "" {
		product.Unit = "pcs"
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		if input.Stock == 0 {
			return nil
		}
		// Opening stock goes through the ledger like any other movement.
		product.Stock = input.Stock
		if err := tx.Model(&product).Update("stock", input.Stock).Error; err != nil {
			return err
		}
		return tx.Create(&models.StockMovement{
			SalonID:    salonID,
			ProductID:  product.ID,
			Kind:       models.MovementAdjustment,
			Quantity:   input.Stock,
			StockAfter: input.Stock,
			Reason:     "opening stock",
		}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Product with this SKU already exists")
			return
		}
		h.respondServiceError(c, err, "Failed to create product")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Product created", product)
}

func (h *Handler) GetProducts(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	q := h.DB.WithContext(c.Request.Context()).Where("salon_id = ?", salonID)
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR sku LIKE ?", like, like)
	}

	var products []models.Product
	if err := q.Order("name ASC").Find(&products).Error; err != nil {
		h.respondServiceError(c, err, "Failed to retrieve products")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Products retrieved", products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	product, ok := h.loadProduct(c)
	if !ok {
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Product retrieved", product)
}

// UpdateProduct edits catalog fields. Stock only moves through adjust-stock,
// procurements and billing.
func (h *Handler) UpdateProduct(c *gin.Context) {
	var input UpdateProductInput
	if !bindJSON(c, &input) {
		return
	}
	product, ok := h.loadProduct(c)
	if !ok {
		return
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.SKU != nil {
		sku := strings.ToUpper(strings.TrimSpace(*input.SKU))
		if sku != product.SKU {
			taken, err := h.skuTaken(c, product.SalonID, sku)
			if err != nil {
				h.respondServiceError(c, err, "Database error")
				return
			}
			if taken {
				utils.RespondWithError(c, http.StatusConflict, "Product with this SKU already exists")
				return
			}
		}
		product.SKU = sku
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Cost != nil {
		product.Cost = *input.Cost
	}
	if product.Price.IsNegative() || product.Cost.IsNegative() {
		utils.RespondWithError(c, http.StatusBadRequest, "Price and cost must not be negative")
		return
	}
	if input.ReorderLevel != nil {
		product.ReorderLevel = *input.ReorderLevel
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := h.DB.WithContext(c.Request.Context()).Model(product).
		Select("name", "sku", "unit", "price", "cost", "reorder_level", "is_active").
		Updates(product).Error; err != nil {
		h.respondServiceError(c, err, "Failed to update product")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Product updated", product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	product, ok := h.loadProduct(c)
	if !ok {
		return
	}
	if err := h.DB.WithContext(c.Request.Context()).Delete(product).Error; err != nil {
		h.respondServiceError(c, err, "Failed to delete product")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *Handler) GetLowStockProducts(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	products, err := h.Inventory.LowStock(c.Request.Context(), salonID)
	if err != nil {
		h.respondServiceError(c, err, "Failed to retrieve low stock products")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Low stock products retrieved", products)
}

// AdjustProductStock applies a signed correction, e.g. damage or a recount.
func (h *Handler) AdjustProductStock(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "product")
	if !ok {
		return
	}
	var input AdjustStockInput
	if !bindJSON(c, &input) {
		return
	}

	product, err := h.Inventory.AdjustStock(c.Request.Context(), salonID, id, input.Quantity, input.Reason)
	if err != nil {
		h.respondServiceError(c, err, "Failed to adjust stock")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Stock adjusted", product)
}

func (h *Handler) GetProductMovements(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "product")
	if !ok {
		return
	}
	_, limit := utils.Pagination(c)

	movements, err := h.Inventory.Movements(c.Request.Context(), salonID, id, limit)
	if err != nil {
		h.respondServiceError(c, err, "Failed to retrieve stock movements")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Stock movements retrieved", movements)
}

func (h *Handler) loadProduct(c *gin.Context) (*models.Product, bool) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return nil, false
	}
	id, ok := utils.ParamUUID(c, "id", "product")
	if !ok {
		return nil, false
	}

	var product models.Product
	if err := h.DB.WithContext(c.Request.Context()).Where("salon_id = ? AND id = ?", salonID, id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Product not found")
		} else {
			h.respondServiceError(c, err, "Database error")
		}
		return nil, false
	}
	return &product, true
}

func (h *Handler) skuTaken(c *gin.Context, salonID uuid.UUID, sku string) (bool, error) {
	var count int64
	err := h.DB.WithContext(c.Request.Context()).Model(&models.Product{}).
		Where("salon_id = ? AND sku = ?", salonID, sku).Count(&count).Error
	return count > 0, err
}
