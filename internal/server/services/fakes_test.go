package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/camfeed/internal/dbx"
	"github.com/dmitrijs2005/camfeed/internal/server/models"
	"github.com/dmitrijs2005/camfeed/internal/server/repositories/history"
	"github.com/dmitrijs2005/camfeed/internal/server/repositories/latest"
	"github.com/dmitrijs2005/camfeed/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/camfeed/internal/server/schema"
)

// -------- test fakes --------

type fakeHistoryRepo struct {
	history.Repository

	mu        sync.Mutex
	seen      bool
	lookupErr error
	appendErr error
	block     bool

	lookups  int
	appended []models.DeviceRecord
}

func (f *fakeHistoryRepo) LastSeen(ctx context.Context, sn string) (string, bool, error) {
	f.mu.Lock()
	f.lookups++
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", false, ctx.Err()
	}
	if f.lookupErr != nil {
		return "", false, f.lookupErr
	}
	return "2024-01-01 00:00:00.000", f.seen, nil
}

func (f *fakeHistoryRepo) Append(ctx context.Context, rec models.DeviceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, rec)
	return nil
}

func (f *fakeHistoryRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups + len(f.appended)
}

type fakeLatestRepo struct {
	latest.Repository

	mu        sync.Mutex
	outcome   models.LatestOutcome
	upsertErr error
	upserted  []models.DeviceRecord
}

func (f *fakeLatestRepo) Upsert(ctx context.Context, rec models.DeviceRecord) (models.LatestOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.upserted = append(f.upserted, rec)
	if f.outcome == 0 {
		return models.LatestUpserted, nil
	}
	return f.outcome, nil
}

func (f *fakeLatestRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserted)
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	h *fakeHistoryRepo
	l *fakeLatestRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{h: &fakeHistoryRepo{}, l: &fakeLatestRepo{}}
}

func (m *fakeRepoManager) Schema() *schema.Schema                 { return schema.Reduced() }
func (m *fakeRepoManager) History(db dbx.DBTX) history.Repository { return m.h }
func (m *fakeRepoManager) Latest(db dbx.DBTX) latest.Repository   { return m.l }
