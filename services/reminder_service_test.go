package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"salonpro-suite/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentMessage struct {
	channel, to, body string
}

type fakeNotifier struct {
	sent []sentMessage
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, channel, to, body string) (string, error) {
	if n.err != nil {
		return "", n.err
	}
	n.sent = append(n.sent, sentMessage{channel: channel, to: to, body: body})
	return "SM123", nil
}

func newReminderFixture(t *testing.T) (*fixture, *ReminderService, *fakeNotifier) {
	t.Helper()
	f := newFixture(t)
	notifier := &fakeNotifier{}
	reminders := NewReminderService(f.db, zap.NewNop(), notifier)

	templates := []models.ReminderTemplate{
		{SalonID: f.salon.ID, Type: models.ReminderBirthday, Message: "Happy birthday [CustomerName] from [SalonName]!", IsActive: true},
		{SalonID: f.salon.ID, Type: models.ReminderAppointment, Message: "Hi [CustomerName], see you with [Stylist] at [Time].", IsActive: true},
	}
	require.NoError(t, f.db.Create(&templates).Error)
	require.NoError(t, f.db.First(&f.salon, "id = ?", f.salon.ID).Error)
	return f, reminders, notifier
}

func TestBirthdayReminderSent(t *testing.T) {
	f, reminders, notifier := newReminderFixture(t)
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.Local)
	reminders.now = func() time.Time { return now }

	birthday := time.Date(1990, 6, 15, 0, 0, 0, 0, time.Local)
	require.NoError(t, f.db.Model(&models.Customer{}).Where("id = ?", f.customer.ID).
		Update("birthday", birthday).Error)

	run := reminders.ProcessSalonReminders(f.ctx, &f.salon)
	assert.Equal(t, ReminderRun{Sent: 1}, run)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, ChannelSMS, notifier.sent[0].channel)
	assert.Equal(t, "+919800000001", notifier.sent[0].to)
	assert.Equal(t, "Happy birthday Asha from Glow Studio!", notifier.sent[0].body)

	var logs []models.ReminderLog
	require.NoError(t, f.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "sent", logs[0].Status)
	assert.Equal(t, models.ReminderBirthday, logs[0].Type)
}

func TestBirthdayReminderSkippedWhenDisabled(t *testing.T) {
	f, reminders, notifier := newReminderFixture(t)
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.Local)
	reminders.now = func() time.Time { return now }
	require.NoError(t, f.db.Model(&models.Customer{}).Where("id = ?", f.customer.ID).
		Update("birthday", time.Date(1990, 6, 15, 0, 0, 0, 0, time.Local)).Error)

	f.salon.BirthdayReminders = false
	run := reminders.ProcessSalonReminders(f.ctx, &f.salon)
	assert.Zero(t, run.Sent)
	assert.Empty(t, notifier.sent)
}

func TestReminderFailureIsLogged(t *testing.T) {
	f, reminders, notifier := newReminderFixture(t)
	notifier.err = errors.New("twilio down")
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.Local)
	reminders.now = func() time.Time { return now }
	require.NoError(t, f.db.Model(&models.Customer{}).Where("id = ?", f.customer.ID).
		Update("birthday", time.Date(1990, 6, 15, 0, 0, 0, 0, time.Local)).Error)

	run := reminders.ProcessSalonReminders(f.ctx, &f.salon)
	assert.Equal(t, ReminderRun{Failed: 1}, run)

	var log models.ReminderLog
	require.NoError(t, f.db.First(&log).Error)
	assert.Equal(t, "failed", log.Status)
	assert.Equal(t, "twilio down", log.ErrorMessage)
}

func TestAppointmentReminderSentOnce(t *testing.T) {
	f, reminders, notifier := newReminderFixture(t)
	f.salon.BirthdayReminders = false
	f.salon.AnniversaryReminders = false
	f.salon.WhatsAppNotifications = true

	appt := f.book(t, time.Now().Add(2*time.Hour), f.haircut)

	run := reminders.ProcessSalonReminders(f.ctx, &f.salon)
	assert.Equal(t, ReminderRun{Sent: 1}, run)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, ChannelWhatsApp, notifier.sent[0].channel)
	assert.Contains(t, notifier.sent[0].body, "Hi Asha, see you with Ravi")

	var reloaded models.Appointment
	f.reload(t, &reloaded, appt.ID)
	assert.NotNil(t, reloaded.RemindedAt)

	run = reminders.ProcessSalonReminders(f.ctx, &f.salon)
	assert.Zero(t, run.Sent)
	assert.Len(t, notifier.sent, 1)
}

func TestDueToday(t *testing.T) {
	now := time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC)
	leap := time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC)
	other := time.Date(1995, 3, 1, 0, 0, 0, 0, time.UTC)
	customers := []models.Customer{
		{Name: "leap", Birthday: &leap},
		{Name: "march", Birthday: &other},
		{Name: "none"},
		{Name: "wed", Anniversary: &leap},
	}

	due := DueToday(customers, models.ReminderBirthday, now)
	require.Len(t, due, 1)
	assert.Equal(t, "leap", due[0].Name)

	due = DueToday(customers, models.ReminderAnniversary, now)
	require.Len(t, due, 1)
	assert.Equal(t, "wed", due[0].Name)
}

func TestReminderChannel(t *testing.T) {
	salon := &models.Salon{WhatsAppNotifications: true}
	assert.Equal(t, ChannelWhatsApp, ReminderChannel(salon, "+919800000001"))
	assert.Equal(t, ChannelSMS, ReminderChannel(salon, "9800000001"))

	salon.WhatsAppNotifications = false
	assert.Equal(t, ChannelSMS, ReminderChannel(salon, "+919800000001"))
}

func TestRenderReminder(t *testing.T) {
	got := RenderReminder("Hi [CustomerName], [SalonName] misses you. [Unknown]", map[string]string{
		"CustomerName": "Asha",
		"SalonName":    "Glow",
	})
	assert.Equal(t, "Hi Asha, Glow misses you. [Unknown]", got)
}

func TestStartSchedulerRejectsBadSchedule(t *testing.T) {
	reminders := NewReminderService(nil, zap.NewNop(), &fakeNotifier{})
	assert.Error(t, reminders.StartScheduler("not a schedule"))

	require.NoError(t, reminders.StartScheduler("0 9 * * *"))
	reminders.Stop()
}
