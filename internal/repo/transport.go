package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/raahi/backend/internal/domain"
)

// TransportRepo defines the persistence operations for Transports.
// Method semantics mirror HotelRepo.
type TransportRepo interface {
	// ListByCard returns a card's transports in insertion order.
	ListByCard(ctx context.Context, cardID uuid.UUID) ([]domain.Transport, error)
	ExistingIDs(ctx context.Context, cardID uuid.UUID) ([]uuid.UUID, error)
	Insert(ctx context.Context, cardID uuid.UUID, in domain.TransportInput) (uuid.UUID, error)
	Patch(ctx context.Context, cardID, id uuid.UUID, in domain.TransportInput) (bool, error)
	Delete(ctx context.Context, cardID, id uuid.UUID) error
}

type pgTransportRepo struct {
	db db
}

// NewTransportRepo constructs a TransportRepo backed by the provided db connection.
func NewTransportRepo(db db) TransportRepo {
	return &pgTransportRepo{db: db}
}

const transportColumns = `id, travel_card_id, transport_type, origin, destination,
	departure_time, arrival_time, booking_reference, cost, is_departure`

func (r *pgTransportRepo) ListByCard(ctx context.Context, cardID uuid.UUID) ([]domain.Transport, error) {
	const q = `
		SELECT ` + transportColumns + `
		FROM transports
		WHERE travel_card_id = @travel_card_id
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"travel_card_id": cardID})
	if err != nil {
		return nil, fmt.Errorf("repo.TransportRepo.ListByCard: %w", err)
	}
	transports, err := collect(rows, scanTransport)
	if err != nil {
		return nil, fmt.Errorf("repo.TransportRepo.ListByCard: %w", err)
	}
	return transports, nil
}

func (r *pgTransportRepo) ExistingIDs(ctx context.Context, cardID uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT id FROM transports WHERE travel_card_id = @travel_card_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"travel_card_id": cardID})
	if err != nil {
		return nil, fmt.Errorf("repo.TransportRepo.ExistingIDs: %w", err)
	}
	ids, err := collect(rows, scanID)
	if err != nil {
		return nil, fmt.Errorf("repo.TransportRepo.ExistingIDs: %w", err)
	}
	return ids, nil
}

func (r *pgTransportRepo) Insert(ctx context.Context, cardID uuid.UUID, in domain.TransportInput) (uuid.UUID, error) {
	const q = `
		INSERT INTO transports (travel_card_id, transport_type, origin, destination,
		                        departure_time, arrival_time, booking_reference, cost, is_departure)
		VALUES (@travel_card_id, @transport_type, @origin, @destination,
		        @departure_time, @arrival_time, @booking_reference, @cost, @is_departure)
		RETURNING id`

	args := transportArgs(in)
	args["travel_card_id"] = cardID
	args["is_departure"] = in.IsDeparture != nil && *in.IsDeparture

	id, err := scanID(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("repo.TransportRepo.Insert: %w", err)
	}
	return id, nil
}

func (r *pgTransportRepo) Patch(ctx context.Context, cardID, id uuid.UUID, in domain.TransportInput) (bool, error) {
	const q = `
		UPDATE transports
		SET transport_type    = COALESCE(@transport_type::text, transport_type),
		    origin            = COALESCE(@origin::text, origin),
		    destination       = COALESCE(@destination::text, destination),
		    departure_time    = COALESCE(@departure_time::text, departure_time),
		    arrival_time      = COALESCE(@arrival_time::text, arrival_time),
		    booking_reference = COALESCE(@booking_reference::text, booking_reference),
		    cost              = COALESCE(@cost::numeric, cost),
		    is_departure      = COALESCE(@is_departure::boolean, is_departure),
		    updated_at        = now()
		WHERE id = @id AND travel_card_id = @travel_card_id`

	args := transportArgs(in)
	args["id"] = id
	args["travel_card_id"] = cardID
	args["is_departure"] = in.IsDeparture

	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return false, fmt.Errorf("repo.TransportRepo.Patch: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgTransportRepo) Delete(ctx context.Context, cardID, id uuid.UUID) error {
	const q = `DELETE FROM transports WHERE id = @id AND travel_card_id = @travel_card_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "travel_card_id": cardID})
	if err != nil {
		return fmt.Errorf("repo.TransportRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TransportRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func transportArgs(in domain.TransportInput) pgx.NamedArgs {
	return pgx.NamedArgs{
		"transport_type":    in.TransportType,
		"origin":            in.Origin,
		"destination":       in.Destination,
		"departure_time":    in.DepartureTime,
		"arrival_time":      in.ArrivalTime,
		"booking_reference": in.BookingReference,
		"cost":              in.Cost,
	}
}

func scanTransport(s scanner) (domain.Transport, error) {
	var t domain.Transport
	err := s.Scan(&t.ID, &t.TravelCardID, &t.TransportType, &t.Origin, &t.Destination,
		&t.DepartureTime, &t.ArrivalTime, &t.BookingReference, &t.Cost, &t.IsDeparture)
	return t, err
}
