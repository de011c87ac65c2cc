package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"subtrack/models"
)

// ReminderStore is the slice of the subscription store the daily scan
// needs: every record whose renewal lands on an exact calendar date.
type ReminderStore interface {
	ListByRenewalDate(date models.Date) ([]models.Subscription, error)
}

type NotifierOptions struct {
	// LookaheadDays is how many days before renewal the reminder goes
	// out. Defaults to 3.
	LookaheadDays int
	// SlackWebhookURL, when set, mirrors each reminder to Slack.
	SlackWebhookURL string
	// ManageURL is linked from the email body so the user can act.
	ManageURL string
}

type Notifier struct {
	store  ReminderStore
	mailer Mailer
	opts   NotifierOptions
}

func NewNotifier(store ReminderStore, mailer Mailer, opts NotifierOptions) *Notifier {
	if opts.LookaheadDays <= 0 {
		opts.LookaheadDays = 3
	}
	return &Notifier{store: store, mailer: mailer, opts: opts}
}

// Start launches the daily loop. Each day at the given local wall-clock
// hour one scan runs; a missed tick (process down) is simply skipped,
// there is no catch-up.
func (n *Notifier) Start(ctx context.Context, hour int) {
	log.Printf("Scheduler started: checking for renewals daily at %02d:00", hour)

	go func() {
		for {
			timer := time.NewTimer(time.Until(nextRunAt(time.Now(), hour)))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("Renewal check panic: %v", r)
					}
				}()
				n.RunOnce(time.Now())
			}()
		}
	}()
}

func nextRunAt(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunOnce scans for subscriptions renewing exactly lookahead days after
// now's calendar date and sends one reminder per match. Each send is
// isolated: a failure is logged and the batch continues. No already-sent
// marker is kept, so a second run on the same day sends duplicates.
func (n *Notifier) RunOnce(now time.Time) (sent, failed int) {
	target := models.NewDate(now.AddDate(0, 0, n.opts.LookaheadDays))
	log.Printf("Checking for renewals on %s", target)

	subs, err := n.store.ListByRenewalDate(target)
	if err != nil {
		log.Printf("Renewal scan failed: %v", err)
		return 0, 0
	}

	if len(subs) == 0 {
		log.Printf("No renewals found for %d days from now", n.opts.LookaheadDays)
		return 0, 0
	}

	log.Printf("Found %d renewals", len(subs))

	for _, sub := range subs {
		subject, plainText, htmlContent := renewalReminder(sub, target, n.opts.ManageURL)

		if err := n.mailer.Send(sub.OwnerEmail, subject, plainText, htmlContent); err != nil {
			log.Printf("Failed to email %s for %s: %v", sub.OwnerEmail, sub.ServiceName, err)
			failed++
			continue
		}

		log.Printf("Reminder sent to %s for %s", sub.OwnerEmail, sub.ServiceName)
		sent++

		if n.opts.SlackWebhookURL != "" {
			go SendSlackPing(n.opts.SlackWebhookURL, sub, target)
		}
	}

	return sent, failed
}

func renewalReminder(sub models.Subscription, renewalDate models.Date, manageURL string) (subject, plainText, htmlContent string) {
	subject = fmt.Sprintf("Your %s subscription renews soon!", sub.ServiceName)

	plainText = fmt.Sprintf(
		"Hi there! Your subscription for %s ($%.2f) is renewing on %s. Log in to manage it.",
		sub.ServiceName, sub.Cost, renewalDate,
	)

	htmlContent = fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; padding: 20px;">
  <h2 style="color: #4F46E5;">Subscription Renewal Alert</h2>
  <p>Just a heads up that your <strong>%s</strong> subscription is renewing soon.</p>
  <ul>
    <li><strong>Cost:</strong> $%.2f</li>
    <li><strong>Date:</strong> %s</li>
  </ul>
  <a href="%s" style="background: #4F46E5; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Manage Subscriptions</a>
</div>`,
		sub.ServiceName, sub.Cost, renewalDate, manageURL,
	)

	return subject, plainText, htmlContent
}
