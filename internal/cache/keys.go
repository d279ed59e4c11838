package cache

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Key is a hierarchical view-cache key, e.g. ["bookings", "property", "<id>"].
// Its string form joins the segments with ':'.
type Key []string

// String returns the colon-joined form of the key.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// View keys for the cached projections a booking mutation can affect. Each
// projection is cached independently, so every mutation must invalidate all
// of them explicitly.
func KeyBookingsList() Key                   { return Key{"bookings", "list"} }
func KeyBookingsByProperty(id uuid.UUID) Key { return Key{"bookings", "property", id.String()} }
func KeyBookingsCalendar() Key               { return Key{"bookings", "calendar"} }
func KeyPropertiesList() Key                 { return Key{"properties", "list"} }
func KeyProperty(id uuid.UUID) Key           { return Key{"properties", "detail", id.String()} }
func KeyInvoices() Key                       { return Key{"invoices"} }
func KeyFinancialSummary() Key               { return Key{"financial", "summary"} }

// Invalidator triggers dependent views to refetch by dropping their cached
// projections. Implementations must treat each key as a prefix: invalidating
// ["bookings", "calendar"] drops every cached calendar range.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...Key) error
}
