package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/raahi/backend/internal/domain"
)

// TravelCardRepo defines the persistence operations for TravelCards.
// Every method is scoped by owning user: a card that belongs to another user
// behaves exactly like a card that does not exist.
type TravelCardRepo interface {
	// Create inserts a new card and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, card domain.TravelCard) (domain.TravelCard, error)

	// GetForUser retrieves a card by id and owner in one query.
	// Returns domain.ErrNotFound if no such card is owned by userID.
	GetForUser(ctx context.Context, userID, id uuid.UUID) (domain.TravelCard, error)

	// ListForUser returns all cards owned by userID ordered by start_date descending.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.TravelCard, error)

	// Update overwrites the mutable fields of a card owned by card.UserID.
	// Returns domain.ErrNotFound if no such card exists.
	Update(ctx context.Context, card domain.TravelCard) (domain.TravelCard, error)

	// Delete removes a card owned by userID. Hotels and transports cascade.
	// Returns domain.ErrNotFound if no such card exists.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// pgTravelCardRepo is the Postgres implementation of TravelCardRepo.
type pgTravelCardRepo struct {
	db db
}

// NewTravelCardRepo constructs a TravelCardRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTravelCardRepo(db db) TravelCardRepo {
	return &pgTravelCardRepo{db: db}
}

const travelCardColumns = `id, user_id, destination, start_date, end_date, duration_days, status, created_at, updated_at`

// Create inserts a new card row and returns the full persisted record.
func (r *pgTravelCardRepo) Create(ctx context.Context, card domain.TravelCard) (domain.TravelCard, error) {
	const q = `
		INSERT INTO travel_cards (user_id, destination, start_date, end_date, duration_days, status)
		VALUES (@user_id, @destination, @start_date, @end_date, @duration_days, @status)
		RETURNING ` + travelCardColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"user_id":       card.UserID,
		"destination":   card.Destination,
		"start_date":    pgtype.Date{Time: card.StartDate, Valid: true},
		"end_date":      pgtype.Date{Time: card.EndDate, Valid: true},
		"duration_days": card.DurationDays,
		"status":        card.Status,
	})
	result, err := scanTravelCard(row)
	if err != nil {
		return domain.TravelCard{}, fmt.Errorf("repo.TravelCardRepo.Create: %w", err)
	}
	return result, nil
}

// GetForUser retrieves a card by primary key and owner.
func (r *pgTravelCardRepo) GetForUser(ctx context.Context, userID, id uuid.UUID) (domain.TravelCard, error) {
	const q = `
		SELECT ` + travelCardColumns + `
		FROM travel_cards
		WHERE id = @id AND user_id = @user_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	result, err := scanTravelCard(row)
	if err != nil {
		return domain.TravelCard{}, fmt.Errorf("repo.TravelCardRepo.GetForUser: %w", err)
	}
	return result, nil
}

// ListForUser returns the user's cards, most recent trip first.
func (r *pgTravelCardRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.TravelCard, error) {
	const q = `
		SELECT ` + travelCardColumns + `
		FROM travel_cards
		WHERE user_id = @user_id
		ORDER BY start_date DESC, created_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.TravelCardRepo.ListForUser: %w", err)
	}
	cards, err := collect(rows, scanTravelCard)
	if err != nil {
		return nil, fmt.Errorf("repo.TravelCardRepo.ListForUser: %w", err)
	}
	return cards, nil
}

// Update overwrites the mutable fields of a card and returns the updated record.
func (r *pgTravelCardRepo) Update(ctx context.Context, card domain.TravelCard) (domain.TravelCard, error) {
	const q = `
		UPDATE travel_cards
		SET destination   = @destination,
		    start_date    = @start_date,
		    end_date      = @end_date,
		    duration_days = @duration_days,
		    status        = @status,
		    updated_at    = now()
		WHERE id = @id AND user_id = @user_id
		RETURNING ` + travelCardColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":            card.ID,
		"user_id":       card.UserID,
		"destination":   card.Destination,
		"start_date":    pgtype.Date{Time: card.StartDate, Valid: true},
		"end_date":      pgtype.Date{Time: card.EndDate, Valid: true},
		"duration_days": card.DurationDays,
		"status":        card.Status,
	})
	result, err := scanTravelCard(row)
	if err != nil {
		return domain.TravelCard{}, fmt.Errorf("repo.TravelCardRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a card by primary key and owner.
func (r *pgTravelCardRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const q = `DELETE FROM travel_cards WHERE id = @id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.TravelCardRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TravelCardRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanTravelCard maps a single database row into a domain.TravelCard.
func scanTravelCard(s scanner) (domain.TravelCard, error) {
	var (
		c         domain.TravelCard
		startDate pgtype.Date
		endDate   pgtype.Date
	)

	err := s.Scan(&c.ID, &c.UserID, &c.Destination, &startDate, &endDate,
		&c.DurationDays, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TravelCard{}, domain.ErrNotFound
		}
		return domain.TravelCard{}, err
	}

	c.StartDate = startDate.Time
	c.EndDate = endDate.Time
	return c, nil
}
