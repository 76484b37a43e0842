package service

import (
	"context"
	"fmt"
	"strings"

	"catalog-bot/internal/models"
	"catalog-bot/internal/roles"
	"catalog-bot/internal/util"

	"go.uber.org/zap"
)

// RecipientSender delivers a notification text to a single identity
type RecipientSender interface {
	Send(ctx context.Context, identity int64, text string) error
}

// Notifier fans a finalized order out to every identity with admin
// access plus every courier. Delivery is at-least-once best effort:
// one recipient's failure never blocks the rest, and there is no retry
// queue — a failed delivery is logged and lost.
type Notifier struct {
	roles  *roles.Service
	sender RecipientSender
	logger *zap.Logger
}

// NewNotifier creates a new order fan-out notifier
func NewNotifier(roleSvc *roles.Service, sender RecipientSender) *Notifier {
	return &Notifier{
		roles:  roleSvc,
		sender: sender,
		logger: util.GetLogger(),
	}
}

// Notify delivers an order summary to all eligible recipients
func (n *Notifier) Notify(ctx context.Context, order *models.OrderPlacedEvent) error {
	summary := formatOrder(order)

	admins, err := n.roles.AdminIdentities(ctx)
	if err != nil {
		n.logger.Error("Failed to list admin recipients", zap.Error(err))
	}
	couriers, err := n.roles.CourierIdentities(ctx)
	if err != nil {
		n.logger.Error("Failed to list courier recipients", zap.Error(err))
	}

	for _, id := range admins {
		n.deliver(ctx, id, "📦 NEW ORDER:\n\n"+summary, order.EventID)
	}
	for _, id := range couriers {
		n.deliver(ctx, id, "🚚 New order!\n\n"+summary, order.EventID)
	}

	n.logger.Info("Order fan-out finished",
		zap.String("event_id", order.EventID),
		zap.Int("admins", len(admins)),
		zap.Int("couriers", len(couriers)))
	return nil
}

func (n *Notifier) deliver(ctx context.Context, identity int64, text, eventID string) {
	if err := n.sender.Send(ctx, identity, text); err != nil {
		util.OrderNotificationFailuresTotal.Inc()
		n.logger.Warn("Order notification delivery failed",
			zap.Int64("identity", identity),
			zap.String("event_id", eventID),
			zap.Error(err))
		return
	}
	util.OrderNotificationsTotal.Inc()
}

func formatOrder(order *models.OrderPlacedEvent) string {
	var b strings.Builder
	for _, item := range order.Items {
		if item.Variant != "" {
			fmt.Fprintf(&b, "• %s (%s) — %s\n", item.Name, item.Variant, formatPrice(item.Price))
		} else {
			fmt.Fprintf(&b, "• %s — %s\n", item.Name, formatPrice(item.Price))
		}
	}
	fmt.Fprintf(&b, "\n📞 Contact: %s\n", order.Contact)
	fmt.Fprintf(&b, "📍 Address: %s\n", order.Address)
	fmt.Fprintf(&b, "💰 Total: %s", formatPrice(order.Total))
	return b.String()
}

func formatPrice(price float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", price), "0"), ".")
}
