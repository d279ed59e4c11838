package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/stayops/service-booking/internal/domain"
	bookingDomain "github.com/stayops/service-booking/internal/domain/booking"
)

const eventSource = "service-booking"

// KafkaNotifier publishes booking lifecycle notifications as CloudEvents on
// the booking events topic. It satisfies the application layer's Notifier
// port; callers treat dispatch as fire-and-forget and only log failures.
type KafkaNotifier struct {
	producer *Producer
	logger   *zap.Logger
}

// NewKafkaNotifier creates a KafkaNotifier on top of a Producer.
func NewKafkaNotifier(producer *Producer, logger *zap.Logger) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, logger: logger}
}

// BookingCreated publishes a booking.created event.
func (n *KafkaNotifier) BookingCreated(ctx context.Context, b *bookingDomain.Booking, propertyName string, actor domain.Actor) error {
	evt := BookingCreatedEvent{
		BookingID:    b.ID(),
		Reference:    b.Reference(),
		PropertyID:   b.PropertyID(),
		PropertyName: propertyName,
		GuestName:    b.GuestName(),
		CheckInDate:  b.Period().CheckIn.Format(bookingDomain.DateLayout),
		CheckOutDate: b.Period().CheckOut.Format(bookingDomain.DateLayout),
		Status:       b.Status().String(),
		Channel:      b.Channel(),
		TotalCents:   b.TotalCents(),
		Currency:     b.Currency(),
		ActorID:      actor.UserID,
		OccurredAt:   time.Now().UTC(),
	}
	return n.publish(ctx, BookingCreated, b.ID().String(), evt)
}

// BookingConfirmed publishes a booking.confirmed event.
func (n *KafkaNotifier) BookingConfirmed(ctx context.Context, b *bookingDomain.Booking, propertyName string, actor domain.Actor) error {
	evt := BookingConfirmedEvent{
		BookingID:    b.ID(),
		Reference:    b.Reference(),
		PropertyID:   b.PropertyID(),
		PropertyName: propertyName,
		GuestName:    b.GuestName(),
		InvoiceID:    b.InvoiceID(),
		ActorID:      actor.UserID,
		OccurredAt:   time.Now().UTC(),
	}
	return n.publish(ctx, BookingConfirmed, b.ID().String(), evt)
}

// BookingCancelled publishes a booking.cancelled event carrying the reason.
func (n *KafkaNotifier) BookingCancelled(ctx context.Context, b *bookingDomain.Booking, propertyName string, actor domain.Actor, reason string) error {
	evt := BookingCancelledEvent{
		BookingID:    b.ID(),
		Reference:    b.Reference(),
		PropertyID:   b.PropertyID(),
		PropertyName: propertyName,
		GuestName:    b.GuestName(),
		Reason:       reason,
		ActorID:      actor.UserID,
		OccurredAt:   time.Now().UTC(),
	}
	return n.publish(ctx, BookingCancelled, b.ID().String(), evt)
}

// BookingStatusChanged publishes a generic booking.status_changed event.
func (n *KafkaNotifier) BookingStatusChanged(ctx context.Context, b *bookingDomain.Booking, propertyName string, oldStatus, newStatus bookingDomain.BookingStatus, actor domain.Actor) error {
	evt := BookingStatusChangedEvent{
		BookingID:    b.ID(),
		Reference:    b.Reference(),
		PropertyID:   b.PropertyID(),
		PropertyName: propertyName,
		OldStatus:    oldStatus.String(),
		NewStatus:    newStatus.String(),
		ActorID:      actor.UserID,
		OccurredAt:   time.Now().UTC(),
	}
	return n.publish(ctx, BookingStatusChanged, b.ID().String(), evt)
}

func (n *KafkaNotifier) publish(ctx context.Context, eventType, key string, data interface{}) error {
	ce, err := NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		n.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return n.producer.PublishEvent(ctx, TopicBookingEvents, key, ce)
}
