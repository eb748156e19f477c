package history

import (
	"context"

	"github.com/dmitrijs2005/camfeed/internal/server/models"
)

// Repository is the append-only log of device sightings.
type Repository interface {
	// LastSeen returns the most recent observed_at stored for sn. The bool is
	// false when sn has never been recorded.
	LastSeen(ctx context.Context, sn string) (string, bool, error)
	Append(ctx context.Context, rec models.DeviceRecord) error
	ListBySerial(ctx context.Context, sn string, limit int) ([]models.Row, error)
}
