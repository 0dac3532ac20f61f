package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hello7893/romdex/internal/rdb"
)

// Build materializes every record matching queryText into a catalog list.
// An empty queryText matches all records. Non-map records are skipped
// without counting. The cursor is released on every path; the store stays
// open and remains the caller's to close.
func Build(ctx context.Context, store *rdb.Store, queryText string, logger *slog.Logger) (*List, error) {
	var prog *rdb.Program
	if queryText != "" {
		var err error
		prog, err = store.Compile(queryText)
		if err != nil {
			return nil, fmt.Errorf("compiling query: %w", err)
		}
	}

	cur, err := store.OpenCursor(ctx, prog)
	if err != nil {
		return nil, fmt.Errorf("opening cursor: %w", err)
	}
	defer cur.Close() //nolint:errcheck

	list := &List{Entries: []Entry{}}
	for cur.Next() {
		rec := cur.Record()
		if rec.Kind != rdb.KindMap {
			logger.Debug("skipping non-map record", "kind", rec.Kind.String())
			continue
		}
		list.Entries = append(list.Entries, project(rec))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	logger.Debug("catalog built", "entries", list.Count(), "query", queryText)
	return list, nil
}

// BuildFile opens the record database at dbPath, builds the catalog, and
// closes the database before returning, success or failure.
func BuildFile(ctx context.Context, dbPath, queryText string, logger *slog.Logger) (*List, error) {
	store, err := rdb.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening record database: %w", err)
	}
	defer store.Close() //nolint:errcheck

	return Build(ctx, store, queryText, logger)
}
