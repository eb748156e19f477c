package latest

import (
	"context"

	"github.com/dmitrijs2005/camfeed/internal/server/models"
)

// Repository keeps one row per serial number holding the newest sighting.
type Repository interface {
	Upsert(ctx context.Context, rec models.DeviceRecord) (models.LatestOutcome, error)
	Get(ctx context.Context, sn string) (*models.Row, error)
}
