package property

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Property is the minimal read model of a managed property that the booking
// core needs: a name for notification payloads and view invalidation. Full
// property management lives elsewhere.
type Property struct {
	ID        uuid.UUID
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines the read-side persistence contract for properties.
type Repository interface {
	// FindByID retrieves a property by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
}
