package notify

//go:generate go run go.uber.org/mock/mockgen -source=./notifier.go -destination=./mocks/notifier_mock.go -package=mocks

import (
	"context"

	"classbook/config"
	"classbook/infras/kafka"

	"github.com/rs/zerolog/log"
)

const (
	KindSubmitted = "reservation.submitted"
	KindApproved  = "reservation.approved"
	KindRejected  = "reservation.rejected"
	KindCancelled = "reservation.cancelled"
	KindExpired   = "reservation.expired"

	// RecipientApprovers is the broadcast audience for new submissions.
	RecipientApprovers = "approvers"
)

// Notification is one post-commit side effect of a lifecycle transition.
// The state machine returns these instead of calling the sink itself, so the
// transition logic stays testable without a network-capable mock.
type Notification struct {
	RecipientID string            `json:"recipient_id"`
	Kind        string            `json:"kind"`
	Message     string            `json:"message"`
	Context     map[string]string `json:"context,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

type kafkaNotifier struct {
	client kafka.Client
	topic  string
}

func New(client kafka.Client, cfg *config.Config) Notifier {
	return &kafkaNotifier{
		client: client,
		topic:  cfg.Kafka.Topics.Notifications,
	}
}

func (n *kafkaNotifier) Notify(ctx context.Context, notification Notification) error {
	return n.client.SendMessages(ctx, n.topic, kafka.Message{ //nolint:wrapcheck
		Key:   notification.RecipientID,
		Value: notification,
	})
}

// Dispatch delivers the side-effect list fire-and-forget. Delivery failures
// are logged, never allowed to fail the transition that produced them.
func Dispatch(ctx context.Context, notifier Notifier, notifications []Notification) {
	for _, notification := range notifications {
		if err := notifier.Notify(ctx, notification); err != nil {
			log.Error().
				Err(err).
				Str("recipient", notification.RecipientID).
				Str("kind", notification.Kind).
				Msg("failed to deliver notification")
		}
	}
}
