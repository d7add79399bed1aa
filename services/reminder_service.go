// services/reminder_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"salonpro-suite/metrics"
	"salonpro-suite/models"
	"salonpro-suite/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
)

// Notifier delivers a text message to a phone number.
type Notifier interface {
	Send(ctx context.Context, channel, to, body string) (string, error)
}

// TwilioNotifier sends SMS and WhatsApp messages through Twilio.
type TwilioNotifier struct {
	client         *twilio.RestClient
	phoneNumber    string
	whatsAppNumber string
}

func NewTwilioNotifier(accountSID, authToken, phoneNumber, whatsAppNumber string) *TwilioNotifier {
	return &TwilioNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		phoneNumber:    phoneNumber,
		whatsAppNumber: whatsAppNumber,
	}
}

func (n *TwilioNotifier) Send(_ context.Context, channel, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetBody(body)
	if channel == ChannelWhatsApp {
		params.SetTo("whatsapp:" + to)
		params.SetFrom("whatsapp:" + n.whatsAppNumber)
	} else {
		params.SetTo(to)
		params.SetFrom(n.phoneNumber)
	}

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid != nil {
		return *resp.Sid, nil
	}
	return "", nil
}

// ReminderService sends birthday, anniversary and next-day appointment
// reminders once a day.
type ReminderService struct {
	db       *gorm.DB
	log      *zap.Logger
	notifier Notifier
	cron     *cron.Cron
	now      func() time.Time
}

func NewReminderService(db *gorm.DB, log *zap.Logger, notifier Notifier) *ReminderService {
	return &ReminderService{db: db, log: log, notifier: notifier, now: time.Now}
}

// StartScheduler runs SendDailyReminders on the given cron schedule until Stop.
func (s *ReminderService) StartScheduler(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		s.SendDailyReminders(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	s.log.Info("reminder scheduler started", zap.String("schedule", schedule))
	return nil
}

// Stop waits for a running job to finish.
func (s *ReminderService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// ReminderRun counts what one run did.
type ReminderRun struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

func (s *ReminderService) SendDailyReminders(ctx context.Context) ReminderRun {
	s.log.Info("starting daily reminder processing")

	var total ReminderRun
	var salons []models.Salon
	if err := s.db.WithContext(ctx).Find(&salons, "is_active = ?", true).Error; err != nil {
		s.log.Error("failed to fetch salons", zap.Error(err))
		return total
	}

	for i := range salons {
		run := s.ProcessSalonReminders(ctx, &salons[i])
		total.Sent += run.Sent
		total.Failed += run.Failed
	}

	s.log.Info("daily reminder processing completed", zap.Int("sent", total.Sent), zap.Int("failed", total.Failed))
	return total
}

func (s *ReminderService) ProcessSalonReminders(ctx context.Context, salon *models.Salon) ReminderRun {
	var run ReminderRun
	log := s.log.With(zap.String("salon_id", salon.ID.String()))

	if salon.BirthdayReminders || salon.AnniversaryReminders {
		var customers []models.Customer
		if err := s.db.WithContext(ctx).
			Where("salon_id = ? AND is_active = ? AND (birthday IS NOT NULL OR anniversary IS NOT NULL)", salon.ID, true).
			Find(&customers).Error; err != nil {
			log.Error("failed to load customers", zap.Error(err))
		} else {
			if salon.BirthdayReminders {
				run.add(s.sendEventReminders(ctx, salon, customers, models.ReminderBirthday))
			}
			if salon.AnniversaryReminders {
				run.add(s.sendEventReminders(ctx, salon, customers, models.ReminderAnniversary))
			}
		}
	}

	if salon.AppointmentReminders {
		run.add(s.sendAppointmentReminders(ctx, salon))
	}
	return run
}

func (r *ReminderRun) add(o ReminderRun) {
	r.Sent += o.Sent
	r.Failed += o.Failed
}

// DueToday keeps the customers whose birthday or anniversary is today.
func DueToday(customers []models.Customer, eventType string, now time.Time) []models.Customer {
	var due []models.Customer
	for _, c := range customers {
		var date *time.Time
		switch eventType {
		case models.ReminderBirthday:
			date = c.Birthday
		case models.ReminderAnniversary:
			date = c.Anniversary
		}
		if date != nil && utils.DaysUntilAnniversary(*date, now) == 0 {
			due = append(due, c)
		}
	}
	return due
}

func (s *ReminderService) sendEventReminders(ctx context.Context, salon *models.Salon, customers []models.Customer, eventType string) ReminderRun {
	var run ReminderRun
	due := DueToday(customers, eventType, s.now())
	if len(due) == 0 {
		return run
	}
	template, ok := s.template(ctx, salon.ID, eventType)
	if !ok {
		return run
	}
	for _, customer := range due {
		message := RenderReminder(template.Message, map[string]string{
			"CustomerName": customer.Name,
			"SalonName":    salon.Name,
		})
		run.add(s.deliver(ctx, salon, &customer, template, message))
	}
	return run
}

// sendAppointmentReminders messages customers with a scheduled appointment
// in the next 24 hours that has not been reminded yet.
func (s *ReminderService) sendAppointmentReminders(ctx context.Context, salon *models.Salon) ReminderRun {
	var run ReminderRun
	now := s.now()

	var appts []models.Appointment
	if err := s.db.WithContext(ctx).Preload("Customer").Preload("Stylist").
		Where("salon_id = ? AND status = ? AND reminded_at IS NULL AND scheduled_at BETWEEN ? AND ?",
			salon.ID, models.StatusScheduled, now, now.Add(24*time.Hour)).
		Find(&appts).Error; err != nil {
		s.log.Error("failed to load upcoming appointments", zap.String("salon_id", salon.ID.String()), zap.Error(err))
		return run
	}
	if len(appts) == 0 {
		return run
	}
	template, ok := s.template(ctx, salon.ID, models.ReminderAppointment)
	if !ok {
		return run
	}

	for _, appt := range appts {
		message := RenderReminder(template.Message, map[string]string{
			"CustomerName": appt.Customer.Name,
			"SalonName":    salon.Name,
			"Stylist":      appt.Stylist.Name,
			"Time":         appt.ScheduledAt.Format("Mon Jan 2 15:04"),
		})
		result := s.deliver(ctx, salon, &appt.Customer, template, message)
		run.add(result)
		if result.Sent > 0 {
			if err := s.db.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", appt.ID).
				Update("reminded_at", now).Error; err != nil {
				s.log.Error("failed to stamp reminder", zap.String("appointment_id", appt.ID.String()), zap.Error(err))
			}
		}
	}
	return run
}

func (s *ReminderService) template(ctx context.Context, salonID uuid.UUID, eventType string) (*models.ReminderTemplate, bool) {
	var template models.ReminderTemplate
	if err := s.db.WithContext(ctx).Where("salon_id = ? AND type = ? AND is_active = ?", salonID, eventType, true).
		First(&template).Error; err != nil {
		s.log.Info("no active reminder template", zap.String("salon_id", salonID.String()), zap.String("type", eventType))
		return nil, false
	}
	return &template, true
}

// deliver sends one message and logs the attempt.
func (s *ReminderService) deliver(ctx context.Context, salon *models.Salon, customer *models.Customer, template *models.ReminderTemplate, message string) ReminderRun {
	channel := ReminderChannel(salon, customer.Phone)
	status := "sent"
	errorMsg := ""

	sid, err := s.notifier.Send(ctx, channel, customer.Phone, message)
	if err != nil {
		s.log.Warn("failed to send reminder", zap.String("customer_id", customer.ID.String()), zap.Error(err))
		status = "failed"
		errorMsg = err.Error()
	} else {
		s.log.Debug("reminder sent", zap.String("customer_id", customer.ID.String()), zap.String("sid", sid))
	}
	metrics.RemindersSentTotal.WithLabelValues(template.Type, channel, status).Inc()

	reminderLog := models.ReminderLog{
		SalonID:      salon.ID,
		CustomerID:   customer.ID,
		TemplateID:   template.ID,
		Type:         template.Type,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      channel,
		SentAt:       s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&reminderLog).Error; err != nil {
		s.log.Error("failed to log reminder", zap.String("customer_id", customer.ID.String()), zap.Error(err))
	}

	if status == "sent" {
		return ReminderRun{Sent: 1}
	}
	return ReminderRun{Failed: 1}
}

// ReminderChannel uses WhatsApp when the salon enabled it and the phone is in
// E.164 form, SMS otherwise.
func ReminderChannel(salon *models.Salon, phone string) string {
	if salon.WhatsAppNotifications && strings.HasPrefix(phone, "+") {
		return ChannelWhatsApp
	}
	return ChannelSMS
}

// RenderReminder replaces [Placeholder] tokens in a template.
func RenderReminder(message string, values map[string]string) string {
	for k, v := range values {
		message = strings.ReplaceAll(message, "["+k+"]", v)
	}
	return message
}
