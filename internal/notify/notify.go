// Package notify delivers push notifications to guardians' devices.
package notify

import (
	"context"
	"log/slog"

	"firebase.google.com/go/v4/messaging"
	"funnybanny-backend/internal/metrics"
	"funnybanny-backend/internal/repository"
)

type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Notifier sends a message to every device registered for an account.
type Notifier interface {
	Notify(ctx context.Context, accountID string, msg Message) error
}

// Noop discards messages.
type Noop struct{}

func (Noop) Notify(context.Context, string, Message) error { return nil }

// FCM sends through Firebase Cloud Messaging and drops tokens FCM reports as gone.
type FCM struct {
	Client *messaging.Client
	Tokens repository.DeviceTokenRepository
	Logger *slog.Logger
}

func (n FCM) Notify(ctx context.Context, accountID string, msg Message) error {
	if accountID == "" {
		return nil
	}
	devices, err := n.Tokens.List(ctx, accountID)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.Token)
	}

	resp, err := n.Client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	})
	if err != nil {
		metrics.Notifications.WithLabelValues("error").Inc()
		return err
	}
	metrics.Notifications.WithLabelValues("sent").Add(float64(resp.SuccessCount))

	var stale []string
	for i, r := range resp.Responses {
		if r.Success {
			continue
		}
		metrics.Notifications.WithLabelValues("failed").Inc()
		if messaging.IsUnregistered(r.Error) || messaging.IsInvalidArgument(r.Error) {
			stale = append(stale, tokens[i])
		}
	}
	if len(stale) > 0 {
		if err := n.Tokens.Remove(ctx, accountID, stale); err != nil {
			n.Logger.Warn("failed to prune device tokens", "account", accountID, "err", err)
		}
	}
	return nil
}
