// Package notify announces timesheet decisions to the outside world.
package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"github.com/yukikurage/timesheet-admin-api/internal/models"
)

// Notifier is told about every approved or rejected timesheet
type Notifier interface {
	TimesheetDecided(ctx context.Context, ts models.Timesheet) error
}

// Nop discards every notification
type Nop struct{}

func (Nop) TimesheetDecided(context.Context, models.Timesheet) error { return nil }

// PostFunc posts a webhook message; slack.PostWebhookContext in production
type PostFunc func(ctx context.Context, url string, msg *slack.WebhookMessage) error

// SlackNotifier posts decisions to an incoming-webhook channel
type SlackNotifier struct {
	webhookURL string
	post       PostFunc
}

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		post:       slack.PostWebhookContext,
	}
}

// NewSlackNotifierWithPoster is NewSlackNotifier with a custom transport
func NewSlackNotifierWithPoster(webhookURL string, post PostFunc) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL, post: post}
}

func (n *SlackNotifier) TimesheetDecided(ctx context.Context, ts models.Timesheet) error {
	if err := n.post(ctx, n.webhookURL, DecisionMessage(ts)); err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	return nil
}

// DecisionMessage renders the webhook payload for a decided timesheet
func DecisionMessage(ts models.Timesheet) *slack.WebhookMessage {
	approver := "someone"
	if ts.Approver != nil {
		approver = ts.Approver.DisplayName()
	}

	text := fmt.Sprintf("Timesheet for %s on %s (week %d/%d) was %s by %s",
		ts.User.DisplayName(), ts.Project.Name, ts.Week, ts.Year, ts.Status, approver)
	if ts.Status == models.TimesheetStatusRejected && ts.RejectionReason != nil {
		text += fmt.Sprintf(": %s", *ts.RejectionReason)
	}

	return &slack.WebhookMessage{Text: text}
}
