package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber is a confirmed recipient of the weekly digest. Subscription
// management itself lives outside this service; the digest only reads the
// confirmed set.
type Subscriber struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
}
