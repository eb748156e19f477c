// Package services holds the business operations behind the transports:
// reconciliation of extracted device records and read-side device lookups.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/camfeed/internal/common"
	"github.com/dmitrijs2005/camfeed/internal/dbx"
	"github.com/dmitrijs2005/camfeed/internal/keylock"
	"github.com/dmitrijs2005/camfeed/internal/logging"
	"github.com/dmitrijs2005/camfeed/internal/metrics"
	"github.com/dmitrijs2005/camfeed/internal/server/models"
	"github.com/dmitrijs2005/camfeed/internal/server/repositories/repomanager"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool is the part of *sql.DB the services need.
type Pool interface {
	dbx.Conner
	dbx.DBTX
	PingContext(ctx context.Context) error
}

// ReconcileService applies one device record to the history and latest-state
// relations in a single transaction.
type ReconcileService struct {
	db      Pool
	repos   repomanager.RepositoryManager
	timeout time.Duration
	locks   keylock.Map
	logger  logging.Logger
}

// NewReconcileService builds the service. timeout bounds every call to the
// store, including waiting for a pooled connection.
func NewReconcileService(db Pool, repos repomanager.RepositoryManager, timeout time.Duration, logger logging.Logger) *ReconcileService {
	return &ReconcileService{
		db:      db,
		repos:   repos,
		timeout: timeout,
		logger:  logger.With("module", "reconcile"),
	}
}

// Reconcile records rec in the history unless its serial number has been seen
// before, then upserts the latest-state row. Records without a usable serial
// number fail with *common.ValidationError before the store is touched. Store
// failures are returned as *common.StoreError; nothing is retried.
func (s *ReconcileService) Reconcile(ctx context.Context, rec models.DeviceRecord) (out models.ReconcileOutcome, err error) {
	start := time.Now()
	defer func() {
		metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.ReconcileFailures.WithLabelValues(failureReason(err)).Inc()
			return
		}
		metrics.Records.WithLabelValues(out.History.String(), out.Latest.String()).Inc()
	}()

	sn, ok := rec.Serial()
	if !ok {
		return out, &common.ValidationError{Field: s.repos.Schema().Key().Name, Reason: "missing or blank"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	unlock, err := s.locks.Lock(ctx, sn)
	if err != nil {
		return out, classify(ctx, "serial lock", err)
	}
	defer unlock()

	release := func(op string, rerr error) {
		s.logger.Warn(ctx, "release failed", "op", op, "sn", sn, "error", rerr)
	}

	err = dbx.WithTx(ctx, s.db, nil, release, func(ctx context.Context, tx dbx.DBTX) error {
		history := s.repos.History(tx)

		_, seen, err := history.LastSeen(ctx, sn)
		if err != nil {
			return classify(ctx, "history lookup", err)
		}
		if seen {
			out.History = models.HistoryDuplicateSkipped
		} else {
			if err := history.Append(ctx, rec); err != nil {
				return classify(ctx, "history append", err)
			}
			out.History = models.HistoryInserted
		}

		out.Latest, err = s.repos.Latest(tx).Upsert(ctx, rec)
		if err != nil {
			return classify(ctx, "latest upsert", err)
		}
		return nil
	})
	if err != nil {
		var se *common.StoreError
		if !errors.As(err, &se) {
			err = classify(ctx, "transaction", err)
		}
		s.logger.Error(ctx, "reconcile failed", "sn", sn, "error", err)
		return models.ReconcileOutcome{}, err
	}

	s.logger.Info(ctx, "record reconciled",
		"sn", sn,
		"history", out.History.String(),
		"latest", out.Latest.String(),
	)
	return out, nil
}

// classify maps a driver or context error onto a StoreError kind.
func classify(ctx context.Context, op string, err error) *common.StoreError {
	kind := common.StoreKindFailure

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		kind = common.StoreKindTimeout
	case errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23"):
		kind = common.StoreKindConstraint
	}
	return &common.StoreError{Op: op, Kind: kind, Err: err}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, common.ErrValidation):
		return metrics.ReasonValidation
	case errors.Is(err, common.ErrStoreTimeout):
		return metrics.ReasonTimeout
	case errors.Is(err, common.ErrConstraint):
		return metrics.ReasonConstraint
	default:
		return metrics.ReasonStore
	}
}
