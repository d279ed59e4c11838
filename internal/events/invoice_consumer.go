package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// PaymentApplier records a settled invoice on its booking.
type PaymentApplier interface {
	MarkInvoicePaid(ctx context.Context, bookingID, invoiceID uuid.UUID) error
}

// InvoicePaidConsumer listens to invoice events and updates booking payment
// status when an invoice is settled.
type InvoicePaidConsumer struct {
	consumer *Consumer
	applier  PaymentApplier
	logger   *zap.Logger
}

// NewInvoicePaidConsumer creates a new InvoicePaidConsumer.
func NewInvoicePaidConsumer(brokers []string, groupID string, applier PaymentApplier, logger *zap.Logger) *InvoicePaidConsumer {
	consumer := NewConsumer(brokers, groupID, TopicInvoiceEvents, logger)
	return &InvoicePaidConsumer{
		consumer: consumer,
		applier:  applier,
		logger:   logger,
	}
}

// Start begins consuming invoice events. This blocks until the context is cancelled.
func (c *InvoicePaidConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *InvoicePaidConsumer) Close() error {
	return c.consumer.Close()
}

func (c *InvoicePaidConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from invoice topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case InvoicePaid:
		return c.handleInvoicePaid(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled invoice event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *InvoicePaidConsumer) handleInvoicePaid(ctx context.Context, cloudEvent CloudEvent) error {
	var evt InvoicePaidEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse InvoicePaidEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing invoice paid event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("invoice_id", evt.InvoiceID.String()),
	)

	if err := c.applier.MarkInvoicePaid(ctx, evt.BookingID, evt.InvoiceID); err != nil {
		c.logger.Error("failed to record payment on booking",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}
