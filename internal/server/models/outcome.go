package models

// HistoryOutcome reports what happened to the history relation.
type HistoryOutcome int

const (
	HistoryInserted HistoryOutcome = iota + 1
	HistoryDuplicateSkipped
)

func (o HistoryOutcome) String() string {
	switch o {
	case HistoryInserted:
		return "inserted"
	case HistoryDuplicateSkipped:
		return "duplicate_skipped"
	default:
		return "unknown"
	}
}

// LatestOutcome reports what happened to the latest-state relation.
type LatestOutcome int

const (
	LatestUpserted LatestOutcome = iota + 1
	// LatestSuperseded means the stored row is newer than the record and was
	// left as is.
	LatestSuperseded
)

func (o LatestOutcome) String() string {
	switch o {
	case LatestUpserted:
		return "upserted"
	case LatestSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// ReconcileOutcome pairs both facts so callers can assert on each.
type ReconcileOutcome struct {
	History HistoryOutcome
	Latest  LatestOutcome
}

// Row is a stored history or latest-state row as read back from the
// store. ObservedAt keeps the stored text form.
// Values is keyed by column; each value is nil, a string or an int64.
type Row struct {
	SerialNumber string
	ObservedAt   string
	Values       map[string]any
}
