package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/raahi/backend/internal/domain"
)

// ChildStore is the per-parent CRUD surface the reconciler needs.
// repo.HotelRepo and repo.TransportRepo satisfy it for their input types.
type ChildStore[T any] interface {
	ExistingIDs(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error)
	Insert(ctx context.Context, parentID uuid.UUID, in T) (uuid.UUID, error)
	Patch(ctx context.Context, parentID, id uuid.UUID, in T) (bool, error)
	Delete(ctx context.Context, parentID, id uuid.UUID) error
}

// ReconcileResult counts what a Reconcile call did.
// Unmatched lists ids that were submitted but matched no child of the parent.
type ReconcileResult struct {
	Inserted  int
	Updated   int
	Deleted   int
	Unmatched []uuid.UUID
}

// Reconcile makes the children of parentID match desired:
//
//   - records with an id are patched in place (only present fields), scoped by parent
//   - records without an id are inserted
//   - stored children whose id was not submitted are deleted
//
// Repeating a call with the same desired list leaves the stored set unchanged.
// An id that matches nothing under parentID is a silent no-op and is reported
// in ReconcileResult.Unmatched. A submitted id never causes a delete, even if
// it appears more than once.
func Reconcile[T domain.Identified](ctx context.Context, store ChildStore[T], parentID uuid.UUID, desired []T) (ReconcileResult, error) {
	var res ReconcileResult

	existing, err := store.ExistingIDs(ctx, parentID)
	if err != nil {
		return res, fmt.Errorf("service.Reconcile: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, len(desired))
	for _, rec := range desired {
		id, ok := rec.ChildID()
		if !ok {
			if _, err := store.Insert(ctx, parentID, rec); err != nil {
				return res, fmt.Errorf("service.Reconcile: insert: %w", err)
			}
			res.Inserted++
			continue
		}

		seen[id] = struct{}{}
		found, err := store.Patch(ctx, parentID, id, rec)
		if err != nil {
			return res, fmt.Errorf("service.Reconcile: patch %s: %w", id, err)
		}
		if found {
			res.Updated++
		} else {
			res.Unmatched = append(res.Unmatched, id)
		}
	}

	for _, id := range existing {
		if _, keep := seen[id]; keep {
			continue
		}
		switch err := store.Delete(ctx, parentID, id); {
		case err == nil:
			res.Deleted++
		case errors.Is(err, domain.ErrNotFound):
			// Already gone.
		default:
			return res, fmt.Errorf("service.Reconcile: delete %s: %w", id, err)
		}
	}

	return res, nil
}
