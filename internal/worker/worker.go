package worker

import (
	"context"

	"catalog-bot/internal/broker"
	"catalog-bot/internal/models"
	"catalog-bot/internal/service"
	"catalog-bot/internal/util"
)

// OrderWorker consumes order events and fans them out to staff
type OrderWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	notifier     *service.Notifier
}

// NewOrderWorker creates a new order worker
func NewOrderWorker(
	consumer *broker.Consumer,
	notifier *service.Notifier,
) *OrderWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnOrderPlaced(func(ctx context.Context, event *models.OrderPlacedEvent) error {
		return notifier.Notify(ctx, event)
	})

	return &OrderWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		notifier:     notifier,
	}
}

// Start starts the worker
func (w *OrderWorker) Start(ctx context.Context) error {
	util.GetLogger().Info("Starting order worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *OrderWorker) Stop() error {
	util.GetLogger().Info("Stopping order worker")
	return w.consumer.Close()
}
