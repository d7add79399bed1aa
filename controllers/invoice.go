// controllers/invoice.go
package controllers

import (
	"errors"
	"net/http"

	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetInvoices retrieves the salon's invoices. Invoices are raised by billing
// an appointment, so this resource is read-only.
// Filters: ?status=unpaid|paid|void, ?customerId, ?from/?to on invoice date.
func (h *Handler) GetInvoices(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	page, limit := utils.Pagination(c)

	q := h.DB.WithContext(c.Request.Context()).Model(&models.Invoice{}).Where("salon_id = ?", salonID)
	if status := c.Query("status"); status != "" {
		switch status {
		case models.PaymentUnpaid, models.PaymentPaid, models.PaymentVoid:
			q = q.Where("payment_status = ?", status)
		default:
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid payment status")
			return
		}
	}
	if v := c.Query("customerId"); v != "" {
		customerID, err := uuid.Parse(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
			return
		}
		q = q.Where("customer_id = ?", customerID)
	}
	if c.Query("from") != "" || c.Query("to") != "" {
		from, to, ok := dayRange(c)
		if !ok {
			return
		}
		q = q.Where("invoice_date BETWEEN ? AND ?", from, to)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		h.respondServiceError(c, err, "Failed to retrieve invoices")
		return
	}

	var invoices []models.Invoice
	if err := q.Preload("Items").Order("invoice_date DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&invoices).Error; err != nil {
		h.respondServiceError(c, err, "Failed to retrieve invoices")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, "Invoices retrieved", utils.Paged{
		Items: invoices, Total: total, Page: page, Limit: limit,
	})
}

// GetInvoice retrieves a specific invoice by ID
func (h *Handler) GetInvoice(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	invoiceID, ok := utils.ParamUUID(c, "id", "invoice")
	if !ok {
		return
	}

	var invoice models.Invoice
	if err := h.DB.WithContext(c.Request.Context()).Preload("Items").
		Where("salon_id = ? AND id = ?", salonID, invoiceID).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			h.respondServiceError(c, err, "Database error")
		}
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, "Invoice retrieved", invoice)
}
