package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"salonpro-suite/services"
	"salonpro-suite/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IdempotencyHeader lets clients retry bill and pay safely.
const IdempotencyHeader = "Idempotency-Key"

func (h *Handler) CreateAppointment(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	userID, ok := utils.CurrentUser(c)
	if !ok {
		return
	}

	var input services.CreateAppointmentInput
	if !bindJSON(c, &input) {
		return
	}
	input.SalonID = salonID
	input.UserID = userID

	appt, err := h.Appointments.Create(c.Request.Context(), input)
	if err != nil {
		h.respondServiceError(c, err, "Failed to create appointment")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Appointment scheduled", appt)
}

// GetAppointments lists appointments filtered by ?status, ?stylistId,
// ?customerId and a ?from/?to day range.
func (h *Handler) GetAppointments(c *gin.Context) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return
	}
	page, limit := utils.Pagination(c)
	filter := services.AppointmentFilter{Status: c.Query("status"), Page: page, Limit: limit}

	if v := c.Query("stylistId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid stylist ID format")
			return
		}
		filter.StylistID = &id
	}
	if v := c.Query("customerId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
			return
		}
		filter.CustomerID = &id
	}
	if v := c.Query("from"); v != "" {
		from, err := time.ParseInLocation(utils.DayLayout, v, time.Local)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		filter.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.ParseInLocation(utils.DayLayout, v, time.Local)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		to = utils.EndOfDay(to)
		filter.To = &to
	}

	list, total, err := h.Appointments.List(c.Request.Context(), salonID, filter)
	if err != nil {
		h.respondServiceError(c, err, "Failed to retrieve appointments")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Appointments retrieved", utils.Paged{
		Items: list, Total: total, Page: page, Limit: limit,
	})
}

func (h *Handler) GetAppointment(c *gin.Context) {
	salonID, id, ok := appointmentScope(c)
	if !ok {
		return
	}
	appt, err := h.Appointments.Get(c.Request.Context(), salonID, id)
	if err != nil {
		h.respondServiceError(c, err, "Failed to retrieve appointment")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Appointment retrieved", appt)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	salonID, id, ok := appointmentScope(c)
	if !ok {
		return
	}
	var input services.UpdateAppointmentInput
	if !bindJSON(c, &input) {
		return
	}

	appt, err := h.Appointments.Update(c.Request.Context(), salonID, id, input)
	if err != nil {
		h.respondServiceError(c, err, "Failed to update appointment")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Appointment updated", appt)
}

// CheckInAppointment handles POST /api/appointment/:id/check-in.
func (h *Handler) CheckInAppointment(c *gin.Context) {
	salonID, id, ok := appointmentScope(c)
	if !ok {
		return
	}
	appt, err := h.Appointments.CheckIn(c.Request.Context(), salonID, id)
	if err != nil {
		h.respondServiceError(c, err, "Failed to check in appointment")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Appointment checked in", appt)
}

// BillAppointment handles POST /api/appointment/:id/bill.
func (h *Handler) BillAppointment(c *gin.Context) {
	salonID, id, ok := appointmentScope(c)
	if !ok {
		return
	}
	userID, ok := utils.CurrentUser(c)
	if !ok {
		return
	}
	var input services.BillInput
	if c.Request.ContentLength != 0 && !bindJSON(c, &input) {
		return
	}
	input.UserID = userID

	h.idempotent(c, "bill", func() (int, string, interface{}, error) {
		appt, err := h.Appointments.Bill(c.Request.Context(), salonID, id, input)
		return http.StatusOK, "Appointment billed", appt, err
	}, "Failed to bill appointment")
}

// PayAppointment handles POST /api/appointment/:id/pay.
func (h *Handler) PayAppointment(c *gin.Context) {
	salonID, id, ok := appointmentScope(c)
	if !ok {
		return
	}
	var input services.PayInput
	if !bindJSON(c, &input) {
		return
	}

	h.idempotent(c, "pay", func() (int, string, interface{}, error) {
		result, err := h.Appointments.Pay(c.Request.Context(), salonID, id, input)
		return http.StatusOK, "Payment recorded", result, err
	}, "Failed to record payment")
}

// CancelAppointment handles POST /api/appointment/:id/cancel.
func (h *Handler) CancelAppointment(c *gin.Context) {
	salonID, id, ok := appointmentScope(c)
	if !ok {
		return
	}
	var input services.CancelInput
	if c.Request.ContentLength != 0 && !bindJSON(c, &input) {
		return
	}

	appt, err := h.Appointments.Cancel(c.Request.Context(), salonID, id, input)
	if err != nil {
		h.respondServiceError(c, err, "Failed to cancel appointment")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Appointment cancelled", appt)
}

// idempotent runs fn once per Idempotency-Key. A repeated key replays the
// stored success response. Errors are never stored so the client may retry.
func (h *Handler) idempotent(c *gin.Context, action string, fn func() (int, string, interface{}, error), fallback string) {
	key := c.GetHeader(IdempotencyHeader)
	if key != "" && h.Idempotency != nil {
		key = c.GetString(utils.CtxSalonID) + ":" + action + ":" + c.Param("id") + ":" + key
		body, found, err := h.Idempotency.Get(c.Request.Context(), key)
		if err != nil {
			h.Log.Warn("idempotency lookup failed", zap.Error(err))
		} else if found {
			c.Header("Idempotent-Replayed", "true")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			return
		}
	}

	status, message, data, err := fn()
	if err != nil {
		h.respondServiceError(c, err, fallback)
		return
	}

	resp := utils.Response{Success: true, Message: message, Data: data}
	if key != "" && h.Idempotency != nil {
		if body, err := json.Marshal(resp); err == nil {
			if err := h.Idempotency.Save(c.Request.Context(), key, body); err != nil {
				h.Log.Warn("idempotency save failed", zap.Error(err))
			}
		}
	}
	c.JSON(status, resp)
}

func appointmentScope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	salonID, ok := utils.CurrentSalon(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := utils.ParamUUID(c, "id", "appointment")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return salonID, id, true
}
