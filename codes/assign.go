package codes

import (
	"context"
	"errors"
	"fmt"

	"github.com/barretodotcom/inmocrm/db"
)

// Result is the outcome of Apply: the assignments in input order plus the
// properties whose write failed.
type Result struct {
	Assignments []Assignment
	Failed      map[int64]error
}

// Apply writes codes for every candidate without one. Each prefix is handled
// in its own transaction holding an advisory lock, and numbering is re-read
// under that lock, so concurrent runs cannot hand out the same code.
func Apply(ctx context.Context, store *db.Store, props []Candidate) (*Result, error) {
	res := &Result{Failed: map[int64]error{}}
	pending := map[string][]int{} // prefix -> indexes into res.Assignments
	var order []string

	for _, p := range props {
		a := Assignment{ID: p.ID, Title: p.Title, Type: p.Type}
		if p.Code != "" {
			a.Code, a.Reused = p.Code, true
		} else {
			prefix := PrefixFor(p.Type)
			if _, ok := pending[prefix]; !ok {
				order = append(order, prefix)
			}
			pending[prefix] = append(pending[prefix], len(res.Assignments))
		}
		res.Assignments = append(res.Assignments, a)
	}

	for _, prefix := range order {
		if err := applyPrefix(ctx, store, prefix, pending[prefix], res); err != nil {
			if ctx.Err() != nil {
				return res, err
			}
		}
	}
	return res, nil
}

func applyPrefix(ctx context.Context, store *db.Store, prefix string, idx []int, res *Result) error {
	// a rollback undoes every write of the prefix
	failAll := func(err error) error {
		for _, i := range idx {
			res.Failed[res.Assignments[i].ID] = err
		}
		return err
	}

	tx, err := store.BeginCodeTx(ctx, prefix)
	if err != nil {
		return failAll(err)
	}
	existing, err := tx.Codes(ctx, prefix)
	if err != nil {
		tx.Rollback()
		return failAll(err)
	}

	n := Next(prefix, existing)
	for _, i := range idx {
		a := &res.Assignments[i]
		a.Code = Format(prefix, n)
		err := tx.SetCode(ctx, a.ID, a.Code)
		if errors.Is(err, db.ErrNotFound) {
			// coded by someone else meanwhile; number stays free
			res.Failed[a.ID] = fmt.Errorf("already has a code: %w", err)
			a.Code = ""
			continue
		}
		if err != nil {
			tx.Rollback()
			return failAll(err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return failAll(fmt.Errorf("commit %s: %w", prefix, err))
	}
	return nil
}
