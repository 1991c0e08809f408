// Package service contains the business logic for the Raahi travel API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/raahi/backend/internal/domain"
	"github.com/raahi/backend/internal/repo"
)

// UnitOfWork hands out repositories and runs work in a transaction.
// *repo.Store satisfies it.
type UnitOfWork interface {
	Repos() repo.Repos
	WithTx(ctx context.Context, fn func(repo.Repos) error) error
}

// TravelCardService implements create/read/update/delete of the travel card
// aggregate (card plus hotels and transports). Every operation is scoped to
// the calling user.
type TravelCardService struct {
	store UnitOfWork
	log   *slog.Logger
}

// NewTravelCardService constructs a TravelCardService. A nil logger
// falls back to slog.Default().
func NewTravelCardService(store UnitOfWork, log *slog.Logger) *TravelCardService {
	if log == nil {
		log = slog.Default()
	}
	return &TravelCardService{store: store, log: log}
}

// Create validates the card and its children, then inserts them in one
// transaction. Children are always inserted as new rows; any id they carry
// is ignored. Returns domain.ErrValidation for bad input.
func (s *TravelCardService) Create(ctx context.Context, userID uuid.UUID, in domain.NewTravelCard) (domain.TravelCard, error) {
	if err := domain.ValidateDateRange(in.StartDate, in.EndDate); err != nil {
		return domain.TravelCard{}, err
	}
	hotels := make([]domain.HotelInput, len(in.Hotels))
	for i, h := range in.Hotels {
		h.ID = nil
		if err := h.Validate(); err != nil {
			return domain.TravelCard{}, fmt.Errorf("%w (hotels[%d])", err, i)
		}
		hotels[i] = h
	}
	transports := make([]domain.TransportInput, len(in.Transports))
	for i, t := range in.Transports {
		t.ID = nil
		if err := t.Validate(); err != nil {
			return domain.TravelCard{}, fmt.Errorf("%w (transports[%d])", err, i)
		}
		transports[i] = t
	}
	status := in.Status
	if status == "" {
		status = domain.DefaultStatus
	}

	var result domain.TravelCard
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		card, err := r.Cards.Create(ctx, domain.TravelCard{
			UserID:       userID,
			Destination:  in.Destination,
			StartDate:    in.StartDate,
			EndDate:      in.EndDate,
			DurationDays: domain.DurationDays(in.StartDate, in.EndDate),
			Status:       status,
		})
		if err != nil {
			return err
		}
		for _, h := range hotels {
			if _, err := r.Hotels.Insert(ctx, card.ID, h); err != nil {
				return err
			}
		}
		for _, t := range transports {
			if _, err := r.Transports.Insert(ctx, card.ID, t); err != nil {
				return err
			}
		}
		result, err = attachChildren(ctx, r, card)
		return err
	})
	if err != nil {
		return domain.TravelCard{}, fmt.Errorf("service.TravelCardService.Create: %w", err)
	}
	return result, nil
}

// Get returns one card with its children.
// Returns domain.ErrNotFound if the card does not exist or belongs to someone else.
func (s *TravelCardService) Get(ctx context.Context, userID, id uuid.UUID) (domain.TravelCard, error) {
	r := s.store.Repos()
	card, err := r.Cards.GetForUser(ctx, userID, id)
	if err != nil {
		return domain.TravelCard{}, fmt.Errorf("service.TravelCardService.Get: %w", err)
	}
	card, err = attachChildren(ctx, r, card)
	if err != nil {
		return domain.TravelCard{}, fmt.Errorf("service.TravelCardService.Get: %w", err)
	}
	return card, nil
}

// List returns all of the user's cards, each with its children.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TravelCardService) List(ctx context.Context, userID uuid.UUID) ([]domain.TravelCard, error) {
	r := s.store.Repos()
	cards, err := r.Cards.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.TravelCardService.List: %w", err)
	}
	out := make([]domain.TravelCard, 0, len(cards))
	for _, c := range cards {
		full, err := attachChildren(ctx, r, c)
		if err != nil {
			return nil, fmt.Errorf("service.TravelCardService.List: %w", err)
		}
		out = append(out, full)
	}
	return out, nil
}

// Update applies a partial update to the card and reconciles each child list
// that is present in the patch. Absent lists are left untouched.
// Returns domain.ErrNotFound for a missing or foreign card and
// domain.ErrValidation when the merged date range is inverted.
func (s *TravelCardService) Update(ctx context.Context, userID, id uuid.UUID, patch domain.TravelCardPatch) (domain.TravelCard, error) {
	for i, h := range patch.Hotels.Items {
		if err := h.Validate(); err != nil {
			return domain.TravelCard{}, fmt.Errorf("%w (hotels[%d])", err, i)
		}
	}
	for i, t := range patch.Transports.Items {
		if err := t.Validate(); err != nil {
			return domain.TravelCard{}, fmt.Errorf("%w (transports[%d])", err, i)
		}
	}

	var result domain.TravelCard
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		current, err := r.Cards.GetForUser(ctx, userID, id)
		if err != nil {
			return err
		}
		merged, changed, err := patch.Apply(current)
		if err != nil {
			return err
		}
		if changed {
			if merged, err = r.Cards.Update(ctx, merged); err != nil {
				return err
			}
		}

		if patch.Hotels.Present {
			if err := checkStoredHotelDates(ctx, r.Hotels, id, patch.Hotels.Items); err != nil {
				return err
			}
			res, err := Reconcile[domain.HotelInput](ctx, r.Hotels, id, patch.Hotels.Items)
			if err != nil {
				return fmt.Errorf("hotels: %w", err)
			}
			s.logReconcile(ctx, "hotel", id, res)
		}
		if patch.Transports.Present {
			res, err := Reconcile[domain.TransportInput](ctx, r.Transports, id, patch.Transports.Items)
			if err != nil {
				return fmt.Errorf("transports: %w", err)
			}
			s.logReconcile(ctx, "transport", id, res)
		}

		result, err = attachChildren(ctx, r, merged)
		return err
	})
	if err != nil {
		return domain.TravelCard{}, fmt.Errorf("service.TravelCardService.Update: %w", err)
	}
	return result, nil
}

// Delete removes the user's card. Hotels and transports are removed by the
// database's ON DELETE CASCADE. Returns domain.ErrNotFound for a missing or
// foreign card.
func (s *TravelCardService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.store.Repos().Cards.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("service.TravelCardService.Delete: %w", err)
	}
	return nil
}

func (s *TravelCardService) logReconcile(ctx context.Context, kind string, cardID uuid.UUID, res ReconcileResult) {
	s.log.DebugContext(ctx, "children reconciled",
		"kind", kind,
		"travel_card_id", cardID,
		"inserted", res.Inserted,
		"updated", res.Updated,
		"deleted", res.Deleted,
	)
	if len(res.Unmatched) > 0 {
		s.log.WarnContext(ctx, "submitted child ids matched nothing",
			"kind", kind,
			"travel_card_id", cardID,
			"ids", res.Unmatched,
		)
	}
}

// checkStoredHotelDates validates hotels that target an existing row and
// send only one of their dates against the stored other date. Ids that match
// nothing are skipped; Reconcile reports them.
func checkStoredHotelDates(ctx context.Context, hotels repo.HotelRepo, cardID uuid.UUID, items []domain.HotelInput) error {
	partial := slices.ContainsFunc(items, func(h domain.HotelInput) bool {
		return h.ID != nil && (h.CheckInDate == nil) != (h.CheckOutDate == nil)
	})
	if !partial {
		return nil
	}
	stored, err := hotels.ListByCard(ctx, cardID)
	if err != nil {
		return fmt.Errorf("hotels: %w", err)
	}
	byID := make(map[uuid.UUID]domain.Hotel, len(stored))
	for _, h := range stored {
		byID[h.ID] = h
	}
	for i, h := range items {
		if h.ID == nil {
			continue
		}
		current, ok := byID[*h.ID]
		if !ok {
			continue
		}
		if err := h.ValidateAgainst(current); err != nil {
			return fmt.Errorf("%w (hotels[%d])", err, i)
		}
	}
	return nil
}

// attachChildren loads hotels and transports onto card. The slices are
// never nil so that responses encode them as [] rather than null.
func attachChildren(ctx context.Context, r repo.Repos, card domain.TravelCard) (domain.TravelCard, error) {
	hotels, err := r.Hotels.ListByCard(ctx, card.ID)
	if err != nil {
		return domain.TravelCard{}, err
	}
	transports, err := r.Transports.ListByCard(ctx, card.ID)
	if err != nil {
		return domain.TravelCard{}, err
	}
	if hotels == nil {
		hotels = []domain.Hotel{}
	}
	if transports == nil {
		transports = []domain.Transport{}
	}
	card.Hotels = hotels
	card.Transports = transports
	return card, nil
}
