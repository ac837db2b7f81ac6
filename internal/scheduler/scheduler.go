package scheduler

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/studybot/internal/database"
)

// Default notification window (hours of day, inclusive)
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier interface for sending due-review reminders
type Notifier interface {
	SendDueReminder(count int) error
}

// Scheduler periodically checks the review store for due expressions and
// nudges the learner through the notifier
type Scheduler struct {
	scheduler *gocron.Scheduler
	reviews   *database.ReviewRepository
	notifier  Notifier
}

// New creates a new scheduler instance
func New(reviews *database.ReviewRepository, notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		reviews:   reviews,
		notifier:  notifier,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminder)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminder sends a reminder when reviews are due and the
// current hour falls inside the notification window
func (s *Scheduler) checkAndSendReminder() {
	currentHour := time.Now().Hour()

	startHour := hourFromEnv("NOTIFICATION_START_HOUR", DefaultNotificationStartHour)
	endHour := hourFromEnv("NOTIFICATION_END_HOUR", DefaultNotificationEndHour)

	if currentHour < startHour || currentHour > endHour {
		return
	}

	due, err := s.reviews.DueToday()
	if err != nil {
		log.Printf("Error getting due expressions: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	if err := s.notifier.SendDueReminder(len(due)); err != nil {
		log.Printf("Error sending reminder: %v", err)
	}
}

// RunManualCheck forces an immediate due check, ignoring the window
func (s *Scheduler) RunManualCheck() error {
	due, err := s.reviews.DueToday()
	if err != nil {
		return err
	}
	if len(due) > 0 {
		return s.notifier.SendDueReminder(len(due))
	}
	return nil
}

// hourFromEnv reads an hour-of-day override from the environment
func hourFromEnv(name string, fallback int) int {
	if raw := os.Getenv(name); raw != "" {
		if h, err := strconv.Atoi(raw); err == nil && h >= 0 && h <= 23 {
			return h
		}
	}
	return fallback
}
