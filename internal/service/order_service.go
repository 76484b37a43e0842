package service

import (
	"context"
	"errors"
	"time"

	"catalog-bot/internal/models"
	"catalog-bot/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmptyOrder rejects a structurally invalid payload; it is the only
// reason an order submission is refused.
var ErrEmptyOrder = errors.New("order has no items")

// OrderPublisher publishes accepted orders for asynchronous fan-out
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
}

// OrderService accepts storefront orders and hands them to the event
// pipeline. Acceptance reflects "submitted", never "delivered to every
// admin" — downstream delivery is best effort.
type OrderService struct {
	publisher OrderPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(publisher OrderPublisher) *OrderService {
	return &OrderService{
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// SubmitOrderRequest is the storefront's order payload
type SubmitOrderRequest struct {
	Items      []models.OrderItem `json:"items" binding:"required,min=1"`
	Contact    string             `json:"contact"`
	Address    string             `json:"address"`
	Total      float64            `json:"total"`
	CustomerID int64              `json:"user_id"`
}

// SubmitOrderResponse acknowledges a submission
type SubmitOrderResponse struct {
	Status string `json:"status"`
}

// SubmitOrder validates and publishes an order
func (s *OrderService) SubmitOrder(ctx context.Context, req *SubmitOrderRequest) (*SubmitOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.SubmitOrder")
	defer span.End()

	if len(req.Items) == 0 {
		util.OrdersRejectedTotal.Inc()
		return nil, ErrEmptyOrder
	}

	total := req.Total
	if total == 0 {
		for _, item := range req.Items {
			total += item.Price
		}
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		CustomerID: req.CustomerID,
		Items:      req.Items,
		Contact:    req.Contact,
		Address:    req.Address,
		Total:      total,
	}

	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		// The customer-facing acknowledgment is not tied to fan-out.
		s.logger.Error("Failed to publish OrderPlaced event",
			zap.String("event_id", event.EventID),
			zap.Error(err))
	}

	util.OrdersSubmittedTotal.Inc()
	s.logger.Info("Order submitted",
		zap.String("event_id", event.EventID),
		zap.Int("items", len(req.Items)),
		zap.Float64("total", total))

	return &SubmitOrderResponse{Status: "accepted"}, nil
}
