package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonpro-suite/metrics"
	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppointmentService runs the appointment lifecycle. Every transition is one
// database transaction; the status and stylist rows are changed with guarded
// UPDATEs so concurrent requests on the same appointment or stylist lose
// cleanly instead of double-booking.
type AppointmentService struct {
	db         *gorm.DB
	log        *zap.Logger
	loyalty    *LoyaltyService
	inventory  *InventoryService
	sales      *SalesService
	incentives *IncentiveService
	now        func() time.Time
}

func NewAppointmentService(db *gorm.DB, log *zap.Logger, loyalty *LoyaltyService, inventory *InventoryService, sales *SalesService, incentives *IncentiveService) *AppointmentService {
	return &AppointmentService{
		db:         db,
		log:        log,
		loyalty:    loyalty,
		inventory:  inventory,
		sales:      sales,
		incentives: incentives,
		now:        time.Now,
	}
}

type CreateAppointmentInput struct {
	SalonID     uuid.UUID   `json:"-"`
	UserID      uuid.UUID   `json:"-"`
	CustomerID  uuid.UUID   `json:"customerId" binding:"required"`
	StylistID   uuid.UUID   `json:"stylistId" binding:"required"`
	ScheduledAt time.Time   `json:"scheduledAt" binding:"required"`
	ServiceIDs  []uuid.UUID `json:"serviceIds" binding:"required,min=1"`
	Notes       string      `json:"notes"`
}

type UpdateAppointmentInput struct {
	StylistID   *uuid.UUID   `json:"stylistId"`
	ScheduledAt *time.Time   `json:"scheduledAt"`
	ServiceIDs  *[]uuid.UUID `json:"serviceIds"`
	Notes       *string      `json:"notes"`
}

type AppointmentFilter struct {
	Status     string
	StylistID  *uuid.UUID
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

type LineInput struct {
	ID       uuid.UUID `json:"id" binding:"required"`
	Quantity int       `json:"quantity" binding:"omitempty,min=1"`
}

type BillInput struct {
	UserID        uuid.UUID       `json:"-"`
	ExtraServices []LineInput     `json:"extraServices" binding:"dive"`
	Products      []LineInput     `json:"products" binding:"dive"`
	Discount      decimal.Decimal `json:"discount"`
	Tax           decimal.Decimal `json:"tax"` // percent
	RedeemPoints  int             `json:"redeemPoints" binding:"min=0"`
	Notes         string          `json:"notes"`
}

type PayInput struct {
	PaymentMethod string           `json:"paymentMethod" binding:"required,oneof=cash card upi wallet bank_transfer other"`
	PaidAmount    *decimal.Decimal `json:"paidAmount"`
}

type CancelInput struct {
	Reason string `json:"reason"`
}

// PaymentResult describes what a payment changed besides the appointment.
type PaymentResult struct {
	Appointment   *models.Appointment `json:"appointment"`
	PointsEarned  int                 `json:"pointsEarned"`
	PointsBalance int                 `json:"pointsBalance"`
	Incentive     *models.Incentive   `json:"incentive"`
	Change        decimal.Decimal     `json:"change"`
}

// Create books a new appointment in the Scheduled state.
func (s *AppointmentService) Create(ctx context.Context, in CreateAppointmentInput) (*models.Appointment, error) {
	if in.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: scheduledAt is required", ErrValidation)
	}

	appt := models.Appointment{
		Base:            models.Base{ID: uuid.New()},
		SalonID:         in.SalonID,
		CreatedByUserID: in.UserID,
		CustomerID:      in.CustomerID,
		StylistID:       in.StylistID,
		ScheduledAt:     in.ScheduledAt,
		Status:          models.StatusScheduled,
		Notes:           in.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.Where("salon_id = ? AND id = ?", in.SalonID, in.CustomerID).First(&customer).Error; err != nil {
			return notFound(err, "customer")
		}
		if !customer.IsActive {
			return fmt.Errorf("%w: customer is inactive", ErrValidation)
		}
		if err := s.checkStylist(tx, in.SalonID, in.StylistID); err != nil {
			return err
		}

		items, duration, err := s.bookServices(tx, in.SalonID, appt.ID, in.ServiceIDs)
		if err != nil {
			return err
		}
		appt.Items = items
		appt.Duration = duration

		if err := s.checkOverlap(tx, &appt); err != nil {
			return err
		}
		return tx.Create(&appt).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("appointment scheduled",
		zap.String("appointment_id", appt.ID.String()),
		zap.String("stylist_id", appt.StylistID.String()),
		zap.Time("scheduled_at", appt.ScheduledAt))
	return s.Get(ctx, in.SalonID, appt.ID)
}

// Update reschedules or rebooks an appointment while it is still Scheduled.
func (s *AppointmentService) Update(ctx context.Context, salonID, id uuid.UUID, in UpdateAppointmentInput) (*models.Appointment, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appt models.Appointment
		if err := s.find(tx, salonID, id, &appt); err != nil {
			return err
		}
		if appt.Status != models.StatusScheduled {
			return fmt.Errorf("%w: only scheduled appointments can be changed (status %s)", ErrInvalidTransition, appt.Status)
		}

		if in.StylistID != nil && *in.StylistID != appt.StylistID {
			if err := s.checkStylist(tx, salonID, *in.StylistID); err != nil {
				return err
			}
			appt.StylistID = *in.StylistID
		}
		if in.ScheduledAt != nil {
			appt.ScheduledAt = *in.ScheduledAt
		}
		if in.Notes != nil {
			appt.Notes = *in.Notes
		}
		if in.ServiceIDs != nil {
			if err := tx.Where("appointment_id = ?", appt.ID).Delete(&models.AppointmentItem{}).Error; err != nil {
				return err
			}
			items, duration, err := s.bookServices(tx, salonID, appt.ID, *in.ServiceIDs)
			if err != nil {
				return err
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
			appt.Duration = duration
		}

		if err := s.checkOverlap(tx, &appt); err != nil {
			return err
		}

		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", appt.ID, models.StatusScheduled).
			Updates(map[string]interface{}{
				"stylist_id":   appt.StylistID,
				"scheduled_at": appt.ScheduledAt,
				"duration":     appt.Duration,
				"notes":        appt.Notes,
				"reminded_at":  nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, salonID, id)
}

// Get loads an appointment with its customer, stylist, services and invoice.
func (s *AppointmentService) Get(ctx context.Context, salonID, id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Customer").Preload("Stylist").Preload("Items").Preload("Invoice.Items").
		Where("salon_id = ? AND id = ?", salonID, id).
		First(&appt).Error
	if err != nil {
		return nil, notFound(err, "appointment")
	}
	return &appt, nil
}

// List returns one page of appointments matching the filter, soonest first.
func (s *AppointmentService) List(ctx context.Context, salonID uuid.UUID, f AppointmentFilter) ([]models.Appointment, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Appointment{}).Where("salon_id = ?", salonID)
	if f.Status != "" {
		if !models.AppointmentStatus(f.Status).Valid() {
			return nil, 0, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
		}
		q = q.Where("status = ?", f.Status)
	}
	if f.StylistID != nil {
		q = q.Where("stylist_id = ?", *f.StylistID)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.From != nil {
		q = q.Where("scheduled_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("scheduled_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	var list []models.Appointment
	err := q.Preload("Customer").Preload("Stylist").Preload("Items").
		Order("scheduled_at ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&list).Error
	return list, total, err
}

// CheckIn marks the customer as arrived and makes the stylist busy with
// this appointment.
func (s *AppointmentService) CheckIn(ctx context.Context, salonID, id uuid.UUID) (*models.Appointment, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appt models.Appointment
		if err := s.find(tx, salonID, id, &appt); err != nil {
			return err
		}
		if !appt.Status.CanTransitionTo(models.StatusCheckedIn) {
			return invalidTransition(appt.Status, models.StatusCheckedIn)
		}

		var customer models.Customer
		if err := tx.Select("id").Where("salon_id = ? AND id = ?", salonID, appt.CustomerID).First(&customer).Error; err != nil {
			return notFound(err, "customer")
		}

		var stylist models.Stylist
		if err := tx.Where("salon_id = ? AND id = ?", salonID, appt.StylistID).First(&stylist).Error; err != nil {
			return notFound(err, "stylist")
		}
		switch {
		case stylist.Status == models.StylistBusy:
			return fmt.Errorf("%w: %s is serving another appointment", ErrStylistBusy, stylist.Name)
		case stylist.Status != models.StylistAvailable || !stylist.IsActive:
			return fmt.Errorf("%w: %s is %s", ErrStylistUnavailable, stylist.Name, stylist.Status)
		}

		res := tx.Model(&models.Stylist{}).
			Where("id = ? AND status = ?", stylist.ID, models.StylistAvailable).
			Updates(map[string]interface{}{
				"status":                 models.StylistBusy,
				"current_appointment_id": appt.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s was just assigned elsewhere", ErrStylistBusy, stylist.Name)
		}

		return s.transition(tx, &appt, models.StatusCheckedIn, map[string]interface{}{
			"checked_in_at": s.now(),
		})
	})
	if err != nil {
		s.conflict(err)
		return nil, err
	}

	s.log.Info("appointment checked in", zap.String("appointment_id", id.String()))
	return s.Get(ctx, salonID, id)
}

// Bill raises the unpaid invoice for a checked-in appointment. Products sold
// leave stock and redeemed points leave the customer balance in the same
// transaction.
func (s *AppointmentService) Bill(ctx context.Context, salonID, id uuid.UUID, in BillInput) (*models.Appointment, error) {
	if in.Discount.IsNegative() || in.Tax.IsNegative() {
		return nil, fmt.Errorf("%w: discount and tax must not be negative", ErrValidation)
	}
	if in.RedeemPoints < 0 {
		return nil, fmt.Errorf("%w: redeemPoints must not be negative", ErrValidation)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appt models.Appointment
		if err := tx.Preload("Items").Where("salon_id = ? AND id = ?", salonID, id).First(&appt).Error; err != nil {
			return notFound(err, "appointment")
		}
		if !appt.Status.CanTransitionTo(models.StatusBilled) {
			return invalidTransition(appt.Status, models.StatusBilled)
		}

		var salon models.Salon
		if err := tx.Where("id = ?", salonID).First(&salon).Error; err != nil {
			return notFound(err, "salon")
		}

		now := s.now()
		invoice := models.Invoice{
			Base:            models.Base{ID: uuid.New()},
			SalonID:         salonID,
			CreatedByUserID: in.UserID,
			InvoiceNumber:   "INV-" + now.Format("20060102") + "-" + utils.GenerateRandomString(6),
			CustomerID:      appt.CustomerID,
			StylistID:       appt.StylistID,
			AppointmentID:   &appt.ID,
			InvoiceDate:     now,
			Discount:        in.Discount,
			Tax:             in.Tax,
			PaymentStatus:   models.PaymentUnpaid,
			Notes:           in.Notes,
		}

		subtotal := decimal.Zero
		for _, item := range appt.Items {
			serviceID := item.ServiceID
			invoice.Items = append(invoice.Items, models.InvoiceItem{
				Kind:       models.ItemService,
				ServiceID:  &serviceID,
				Name:       item.ServiceName,
				Quantity:   1,
				UnitPrice:  item.Price,
				TotalPrice: item.Price,
			})
			subtotal = subtotal.Add(item.Price)
		}

		for _, line := range in.ExtraServices {
			qty := quantity(line.Quantity)
			var service models.Service
			if err := tx.Where("salon_id = ? AND id = ? AND is_active = ?", salonID, line.ID, true).
				First(&service).Error; err != nil {
				return notFound(err, "service "+line.ID.String())
			}
			lineTotal := service.Price.Mul(decimal.NewFromInt(int64(qty)))
			invoice.Items = append(invoice.Items, models.InvoiceItem{
				Kind:       models.ItemService,
				ServiceID:  &service.ID,
				Name:       service.Name,
				Quantity:   qty,
				UnitPrice:  service.Price,
				TotalPrice: lineTotal,
			})
			subtotal = subtotal.Add(lineTotal)
		}

		for _, line := range in.Products {
			qty := quantity(line.Quantity)
			var product models.Product
			if err := tx.Where("salon_id = ? AND id = ? AND is_active = ?", salonID, line.ID, true).
				First(&product).Error; err != nil {
				return notFound(err, "product "+line.ID.String())
			}
			if _, err := s.inventory.move(tx, salonID, product.ID, -qty, models.MovementSale, &invoice.ID, "sold on "+invoice.InvoiceNumber); err != nil {
				return err
			}
			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(qty)))
			invoice.Items = append(invoice.Items, models.InvoiceItem{
				Kind:       models.ItemProduct,
				ProductID:  &product.ID,
				Name:       product.Name,
				Quantity:   qty,
				UnitPrice:  product.Price,
				TotalPrice: lineTotal,
			})
			subtotal = subtotal.Add(lineTotal)
		}

		if in.Discount.GreaterThan(subtotal) {
			return fmt.Errorf("%w: discount exceeds subtotal", ErrValidation)
		}
		due := subtotal.Sub(in.Discount)

		if in.RedeemPoints > 0 {
			value := salon.LoyaltyPointValue.Mul(decimal.NewFromInt(int64(in.RedeemPoints)))
			if value.GreaterThan(due) {
				value = due
			}
			if _, err := s.loyalty.apply(tx, salonID, appt.CustomerID, -in.RedeemPoints, models.LoyaltyRedeem, &appt.ID, "redeemed on "+invoice.InvoiceNumber); err != nil {
				return err
			}
			invoice.RedeemedPoints = in.RedeemPoints
			invoice.LoyaltyDiscount = value
			due = due.Sub(value)
		}

		invoice.Subtotal = subtotal
		invoice.Total = InvoiceTotal(due, in.Tax)

		if err := tx.Create(&invoice).Error; err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		return s.transition(tx, &appt, models.StatusBilled, map[string]interface{}{
			"billed_at":  now,
			"invoice_id": invoice.ID,
		})
	})
	if err != nil {
		s.conflict(err)
		return nil, err
	}

	s.log.Info("appointment billed", zap.String("appointment_id", id.String()))
	return s.Get(ctx, salonID, id)
}

// Pay settles the invoice of a billed appointment. The customer earns one
// loyalty point per service line item, the stylist is freed and credited
// with an incentive, and the day's sales are updated.
func (s *AppointmentService) Pay(ctx context.Context, salonID, id uuid.UUID, in PayInput) (*PaymentResult, error) {
	result := &PaymentResult{}
	var total decimal.Decimal

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appt models.Appointment
		if err := s.find(tx, salonID, id, &appt); err != nil {
			return err
		}
		if !appt.Status.CanTransitionTo(models.StatusPaid) {
			return invalidTransition(appt.Status, models.StatusPaid)
		}
		if appt.InvoiceID == nil {
			return fmt.Errorf("%w: billed appointment has no invoice", ErrConflict)
		}

		var invoice models.Invoice
		if err := tx.Preload("Items").Where("salon_id = ? AND id = ?", salonID, *appt.InvoiceID).
			First(&invoice).Error; err != nil {
			return notFound(err, "invoice")
		}

		paid := invoice.Total
		if in.PaidAmount != nil {
			paid = *in.PaidAmount
		}
		if paid.LessThan(invoice.Total) {
			return fmt.Errorf("%w: paid amount %s is less than invoice total %s", ErrValidation, paid.StringFixed(2), invoice.Total.StringFixed(2))
		}
		result.Change = paid.Sub(invoice.Total)

		now := s.now()
		res := tx.Model(&models.Invoice{}).
			Where("id = ? AND payment_status = ?", invoice.ID, models.PaymentUnpaid).
			Updates(map[string]interface{}{
				"payment_status": models.PaymentPaid,
				"paid_amount":    invoice.Total,
				"payment_method": in.PaymentMethod,
				"paid_at":        now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: invoice %s is not unpaid", ErrConflict, invoice.InvoiceNumber)
		}
		invoice.PaymentStatus = models.PaymentPaid

		points := invoice.ServiceLines()
		if points > 0 {
			entry, err := s.loyalty.apply(tx, salonID, appt.CustomerID, points, models.LoyaltyEarn, &appt.ID, "earned on "+invoice.InvoiceNumber)
			if err != nil {
				return err
			}
			result.PointsBalance = entry.BalanceAfter
		} else {
			if err := tx.Model(&models.Customer{}).Where("id = ?", appt.CustomerID).
				Select("loyalty_points").Scan(&result.PointsBalance).Error; err != nil {
				return err
			}
		}
		result.PointsEarned = points

		if err := tx.Model(&models.Customer{}).Where("id = ?", appt.CustomerID).
			Updates(map[string]interface{}{
				"total_visits": gorm.Expr("total_visits + ?", 1),
				"total_spent":  gorm.Expr("total_spent + ?", invoice.Total),
				"last_visit":   now,
			}).Error; err != nil {
			return fmt.Errorf("failed to update customer stats: %w", err)
		}

		if err := s.releaseStylist(tx, appt.StylistID, appt.ID); err != nil {
			return err
		}

		var stylist models.Stylist
		if err := tx.Unscoped().Where("id = ?", appt.StylistID).First(&stylist).Error; err != nil {
			return notFound(err, "stylist")
		}
		incentive, err := s.incentives.record(tx, &stylist, appt.ID, &invoice, now)
		if err != nil {
			return fmt.Errorf("failed to record incentive: %w", err)
		}
		result.Incentive = incentive

		if err := s.sales.record(tx, &invoice, now, points); err != nil {
			return fmt.Errorf("failed to record daily sale: %w", err)
		}

		total = invoice.Total
		return s.transition(tx, &appt, models.StatusPaid, map[string]interface{}{
			"paid_at": now,
		})
	})
	if err != nil {
		s.conflict(err)
		return nil, err
	}

	totalFloat, _ := total.Float64()
	metrics.RevenueTotal.Add(totalFloat)
	s.log.Info("appointment paid",
		zap.String("appointment_id", id.String()),
		zap.String("total", total.StringFixed(2)),
		zap.Int("points_earned", result.PointsEarned))

	appt, err := s.Get(ctx, salonID, id)
	if err != nil {
		return nil, err
	}
	result.Appointment = appt
	return result, nil
}

// Cancel ends an appointment that has not been paid. A checked-in or billed
// appointment frees its stylist; a billed one also voids the invoice,
// returns sold products to stock and refunds redeemed points.
func (s *AppointmentService) Cancel(ctx context.Context, salonID, id uuid.UUID, in CancelInput) (*models.Appointment, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appt models.Appointment
		if err := s.find(tx, salonID, id, &appt); err != nil {
			return err
		}
		if !appt.Status.CanTransitionTo(models.StatusCancelled) {
			return invalidTransition(appt.Status, models.StatusCancelled)
		}

		if appt.Status == models.StatusCheckedIn || appt.Status == models.StatusBilled {
			if err := s.releaseStylist(tx, appt.StylistID, appt.ID); err != nil {
				return err
			}
		}

		if appt.Status == models.StatusBilled && appt.InvoiceID != nil {
			if err := s.voidInvoice(tx, salonID, &appt, *appt.InvoiceID); err != nil {
				return err
			}
		}

		return s.transition(tx, &appt, models.StatusCancelled, map[string]interface{}{
			"cancelled_at":  s.now(),
			"cancel_reason": in.Reason,
		})
	})
	if err != nil {
		s.conflict(err)
		return nil, err
	}

	s.log.Info("appointment cancelled", zap.String("appointment_id", id.String()), zap.String("reason", in.Reason))
	return s.Get(ctx, salonID, id)
}

// InvoiceTotal applies a tax percentage to the amount due, rounded to cents.
func InvoiceTotal(due, taxPercent decimal.Decimal) decimal.Decimal {
	tax := due.Mul(taxPercent).Div(decimal.NewFromInt(100))
	total := due.Add(tax).Round(2)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func (s *AppointmentService) voidInvoice(tx *gorm.DB, salonID uuid.UUID, appt *models.Appointment, invoiceID uuid.UUID) error {
	var invoice models.Invoice
	if err := tx.Preload("Items").Where("salon_id = ? AND id = ?", salonID, invoiceID).First(&invoice).Error; err != nil {
		return notFound(err, "invoice")
	}

	res := tx.Model(&models.Invoice{}).
		Where("id = ? AND payment_status = ?", invoice.ID, models.PaymentUnpaid).
		Update("payment_status", models.PaymentVoid)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: invoice %s is not unpaid", ErrConflict, invoice.InvoiceNumber)
	}

	for _, item := range invoice.Items {
		if item.Kind != models.ItemProduct || item.ProductID == nil {
			continue
		}
		if _, err := s.inventory.move(tx, salonID, *item.ProductID, item.Quantity, models.MovementReturn, &invoice.ID, "voided "+invoice.InvoiceNumber); err != nil {
			return err
		}
	}

	if invoice.RedeemedPoints > 0 {
		if _, err := s.loyalty.apply(tx, salonID, appt.CustomerID, invoice.RedeemedPoints, models.LoyaltyRefund, &appt.ID, "refund for voided "+invoice.InvoiceNumber); err != nil {
			return err
		}
	}
	return nil
}

// releaseStylist frees the stylist if this appointment is the one they are on.
func (s *AppointmentService) releaseStylist(tx *gorm.DB, stylistID, appointmentID uuid.UUID) error {
	res := tx.Model(&models.Stylist{}).
		Where("id = ? AND current_appointment_id = ?", stylistID, appointmentID).
		Updates(map[string]interface{}{
			"status":                 models.StylistAvailable,
			"current_appointment_id": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to release stylist: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		s.log.Warn("stylist was not holding the appointment being closed",
			zap.String("stylist_id", stylistID.String()),
			zap.String("appointment_id", appointmentID.String()))
	}
	return nil
}

// transition moves appt to next, failing with ErrConflict when another
// request changed the status since it was read.
func (s *AppointmentService) transition(tx *gorm.DB, appt *models.Appointment, next models.AppointmentStatus, updates map[string]interface{}) error {
	if !appt.Status.CanTransitionTo(next) {
		return invalidTransition(appt.Status, next)
	}
	updates["status"] = next
	res := tx.Model(&models.Appointment{}).
		Where("id = ? AND status = ?", appt.ID, appt.Status).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: appointment status changed", ErrConflict)
	}
	appt.Status = next
	metrics.AppointmentTransitionsTotal.WithLabelValues(string(next)).Inc()
	return nil
}

func (s *AppointmentService) find(tx *gorm.DB, salonID, id uuid.UUID, appt *models.Appointment) error {
	if err := tx.Where("salon_id = ? AND id = ?", salonID, id).First(appt).Error; err != nil {
		return notFound(err, "appointment")
	}
	return nil
}

func (s *AppointmentService) checkStylist(tx *gorm.DB, salonID, stylistID uuid.UUID) error {
	var stylist models.Stylist
	if err := tx.Where("salon_id = ? AND id = ?", salonID, stylistID).First(&stylist).Error; err != nil {
		return notFound(err, "stylist")
	}
	if !stylist.IsActive {
		return fmt.Errorf("%w: %s is inactive", ErrStylistUnavailable, stylist.Name)
	}
	return nil
}

// bookServices prices the requested services into appointment items and
// returns their combined duration.
func (s *AppointmentService) bookServices(tx *gorm.DB, salonID, appointmentID uuid.UUID, ids []uuid.UUID) ([]models.AppointmentItem, int, error) {
	if len(ids) == 0 {
		return nil, 0, fmt.Errorf("%w: at least one service is required", ErrValidation)
	}
	var items []models.AppointmentItem
	duration := 0
	for _, sid := range ids {
		var service models.Service
		if err := tx.Where("salon_id = ? AND id = ? AND is_active = ?", salonID, sid, true).
			First(&service).Error; err != nil {
			return nil, 0, notFound(err, "service "+sid.String())
		}
		items = append(items, models.AppointmentItem{
			AppointmentID: appointmentID,
			ServiceID:     service.ID,
			ServiceName:   service.Name,
			Price:         service.Price,
			Duration:      service.Duration,
		})
		duration += service.Duration
	}
	return items, duration, nil
}

// checkOverlap rejects a booking that overlaps another open appointment of
// the same stylist.
func (s *AppointmentService) checkOverlap(tx *gorm.DB, appt *models.Appointment) error {
	var others []models.Appointment
	dayStart := appt.ScheduledAt.Add(-24 * time.Hour)
	if err := tx.Where("stylist_id = ? AND id <> ? AND status IN ? AND scheduled_at BETWEEN ? AND ?",
		appt.StylistID, appt.ID, models.OccupyingStatuses(),
		dayStart, appt.EndsAt()).
		Find(&others).Error; err != nil {
		return err
	}
	for _, o := range others {
		if o.ScheduledAt.Before(appt.EndsAt()) && appt.ScheduledAt.Before(o.EndsAt()) {
			return fmt.Errorf("%w (%s)", ErrScheduleConflict, o.ScheduledAt.Format(time.RFC3339))
		}
	}
	return nil
}

func (s *AppointmentService) conflict(err error) {
	reasons := []struct {
		err    error
		reason string
	}{
		{ErrStylistBusy, "stylist_busy"},
		{ErrStylistUnavailable, "stylist_unavailable"},
		{ErrInvalidTransition, "invalid_transition"},
		{ErrInsufficientStock, "insufficient_stock"},
		{ErrInsufficientPoints, "insufficient_points"},
		{ErrConflict, "concurrent_update"},
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			metrics.WorkflowConflictsTotal.WithLabelValues(r.reason).Inc()
			return
		}
	}
}

func invalidTransition(from, to models.AppointmentStatus) error {
	return fmt.Errorf("%w: appointment is %s and cannot become %s", ErrInvalidTransition, from, to)
}

func quantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
