package campaign

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PreparedSender is a usable access token plus the sender identity it
// belongs to.
type PreparedSender struct {
	AccessToken string
	SenderEmail string
}

// EmailProvider is one send strategy. Prepare resolves the user's active
// token and refreshes it when close to expiry; it returns nil when the
// user has no usable token for this provider, which tells the worker to
// try the next strategy.
type EmailProvider interface {
	Name() string
	Prepare(ctx context.Context, tx *gorm.DB, userId uuid.UUID) (*PreparedSender, error)
	Send(ctx context.Context, sender *PreparedSender, to, subject, htmlBody string) error
}

// refreshSkew is how early a token counts as expired.
const refreshSkew = 5 * time.Minute

// httpTimeout bounds every provider HTTP call.
const httpTimeout = 30 * time.Second
