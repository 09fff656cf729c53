package reconcile

import (
	"context"
	"fmt"
	"log"

	"listingetl/internal/storage"
)

// Store is the slice of storage.Repository that live reconciliation needs.
type Store interface {
	SelectIDs(ctx context.Context, table, idColumn string) ([]int64, error)
	UpdateByID(ctx context.Context, table, idColumn, setColumn string, updates []storage.Update) (int64, error)
}

const updateLogLimit = 5

// UpdateStore reads every identifier of the target table in ascending order
// and sets SetColumn to the value s assigns to it. The store applies the
// batch in one transaction, so a failure leaves the table as it was.
//
// Changed is the backend's affected-row count; some drivers (MySQL) only
// count rows whose value actually changed.
func UpdateStore(ctx context.Context, store Store, t Target, values []int64, s CorrespondenceStrategy) (Stats, error) {
	var st Stats
	if len(values) == 0 {
		return st, ErrNoSourceValues
	}

	ids, err := store.SelectIDs(ctx, t.Table, t.IDColumn)
	if err != nil {
		return st, fmt.Errorf("reconcile: select ids: %w", err)
	}

	updates := make([]storage.Update, 0, len(ids))
	for _, id := range ids {
		v, err := pick(s, id, values)
		if err != nil {
			return st, err
		}
		updates = append(updates, storage.Update{ID: id, Value: v})
		if len(updates) <= updateLogLimit {
			log.Printf("reconcile: update %s=%d %s=%d", t.IDColumn, id, t.SetColumn, v)
		}
	}

	n, err := store.UpdateByID(ctx, t.Table, t.IDColumn, t.SetColumn, updates)
	if err != nil {
		return st, fmt.Errorf("reconcile: update %s: %w", t.Table, err)
	}

	st.Rows = len(ids)
	st.Changed = int(n)
	st.Unchanged = st.Rows - st.Changed
	log.Printf("reconcile: update table=%s rows=%d changed=%d unchanged=%d", t.Table, st.Rows, st.Changed, st.Unchanged)
	return st, nil
}
