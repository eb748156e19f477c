package repomanager

import (
	"github.com/dmitrijs2005/camfeed/internal/dbx"
	"github.com/dmitrijs2005/camfeed/internal/server/repositories/history"
	"github.com/dmitrijs2005/camfeed/internal/server/repositories/latest"
	"github.com/dmitrijs2005/camfeed/internal/server/schema"
)

// RepositoryManager vends repositories bound to a connection or transaction.
type RepositoryManager interface {
	Schema() *schema.Schema
	History(db dbx.DBTX) history.Repository
	Latest(db dbx.DBTX) latest.Repository
}
