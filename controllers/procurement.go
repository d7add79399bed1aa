package controllers

import (
	"net/http"

	"salonpro-suite/services"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
)

// CreateProcurement receives stock from a supplier.
func (h *Handler) CreateProcurement(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	userID, ok := utils.CurrentUser(c)
	if !ok {
		return
	}
	var input services.ProcurementInput
	if !bindJSON(c, &input) {
		return
	}
	input.SalonID = salonID
	input.UserID = userID

	procurement, err := h.Inventory.Receive(c.Request.Context(), input)
	if err != nil {
		h.respondServiceError(c, err, "Failed to record procurement")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Procurement received", procurement)
}

func (h *Handler) GetProcurements(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	from, to, ok := dayRange(c)
	if !ok {
		return
	}

	list, err := h.Inventory.ListProcurements(c.Request.Context(), salonID, from, to)
	if err != nil {
		h.respondServiceError(c, err, "Failed to retrieve procurements")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Procurements retrieved", list)
}

func (h *Handler) GetProcurement(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	id, ok := utils.ParamUUID(c, "id", "procurement")
	if !ok {
		return
	}

	procurement, err := h.Inventory.GetProcurement(c.Request.Context(), salonID, id)
	if err != nil {
		h.respondServiceError(c, err, "Failed to retrieve procurement")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Procurement retrieved", procurement)
}

// GetDailySales lists the per-day sales rows for ?from/?to with totals.
func (h *Handler) GetDailySales(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	from, to, ok := dayRange(c)
	if !ok {
		return
	}

	rows, err := h.Sales.List(c.Request.Context(), salonID, from, to)
	if err != nil {
		h.respondServiceError(c, err, "Failed to retrieve daily sales")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Daily sales retrieved", gin.H{
		"days":   rows,
		"totals": services.Totals(rows),
	})
}
