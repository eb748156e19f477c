package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/camfeed/internal/common"
	"github.com/dmitrijs2005/camfeed/internal/server/models"
	"github.com/dmitrijs2005/camfeed/internal/server/repositories/repomanager"
)

// MaxHistoryLimit caps a single history lookup.
const MaxHistoryLimit = 500

// DeviceService answers read-side queries about known devices.
type DeviceService struct {
	db      Pool
	repos   repomanager.RepositoryManager
	timeout time.Duration
}

func NewDeviceService(db Pool, repos repomanager.RepositoryManager, timeout time.Duration) *DeviceService {
	return &DeviceService{db: db, repos: repos, timeout: timeout}
}

// Latest returns the latest-state row for sn, or common.ErrorNotFound.
func (s *DeviceService) Latest(ctx context.Context, sn string) (*models.Row, error) {
	sn = strings.TrimSpace(sn)
	if sn == "" {
		return nil, &common.ValidationError{Field: s.repos.Schema().Key().Name, Reason: "missing or blank"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row, err := s.repos.Latest(s.db).Get(ctx, sn)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, classify(ctx, "latest get", err)
	}
	return row, nil
}

// History returns up to limit history rows for sn, newest first. limit is
// clamped to [1, MaxHistoryLimit].
func (s *DeviceService) History(ctx context.Context, sn string, limit int) ([]models.Row, error) {
	sn = strings.TrimSpace(sn)
	if sn == "" {
		return nil, &common.ValidationError{Field: s.repos.Schema().Key().Name, Reason: "missing or blank"}
	}
	limit = max(1, min(limit, MaxHistoryLimit))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.repos.History(s.db).ListBySerial(ctx, sn, limit)
	if err != nil {
		return nil, classify(ctx, "history list", err)
	}
	return rows, nil
}

// Ping checks that the store answers within the timeout.
func (s *DeviceService) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return classify(ctx, "ping", err)
	}
	return nil
}
