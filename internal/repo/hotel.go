package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/raahi/backend/internal/domain"
)

// HotelRepo defines the persistence operations for Hotels.
// All operations are scoped by travel card id.
type HotelRepo interface {
	// ListByCard returns a card's hotels ordered by check-in date.
	ListByCard(ctx context.Context, cardID uuid.UUID) ([]domain.Hotel, error)

	// ExistingIDs returns the ids of all hotels currently attached to cardID.
	ExistingIDs(ctx context.Context, cardID uuid.UUID) ([]uuid.UUID, error)

	// Insert creates a hotel under cardID from every field of in and returns its id.
	Insert(ctx context.Context, cardID uuid.UUID, in domain.HotelInput) (uuid.UUID, error)

	// Patch writes only the non-nil fields of in to the hotel matching both
	// id and cardID. It reports whether such a hotel existed.
	Patch(ctx context.Context, cardID, id uuid.UUID, in domain.HotelInput) (bool, error)

	// Delete removes a hotel by id under cardID.
	// Returns domain.ErrNotFound if no such hotel exists.
	Delete(ctx context.Context, cardID, id uuid.UUID) error
}

type pgHotelRepo struct {
	db db
}

// NewHotelRepo constructs a HotelRepo backed by the provided db connection.
func NewHotelRepo(db db) HotelRepo {
	return &pgHotelRepo{db: db}
}

const hotelColumns = `id, travel_card_id, hotel_name, location, check_in_date, check_out_date,
	room_type, price_per_night, total_cost`

func (r *pgHotelRepo) ListByCard(ctx context.Context, cardID uuid.UUID) ([]domain.Hotel, error) {
	const q = `
		SELECT ` + hotelColumns + `
		FROM hotels
		WHERE travel_card_id = @travel_card_id
		ORDER BY check_in_date, created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"travel_card_id": cardID})
	if err != nil {
		return nil, fmt.Errorf("repo.HotelRepo.ListByCard: %w", err)
	}
	hotels, err := collect(rows, scanHotel)
	if err != nil {
		return nil, fmt.Errorf("repo.HotelRepo.ListByCard: %w", err)
	}
	return hotels, nil
}

func (r *pgHotelRepo) ExistingIDs(ctx context.Context, cardID uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT id FROM hotels WHERE travel_card_id = @travel_card_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"travel_card_id": cardID})
	if err != nil {
		return nil, fmt.Errorf("repo.HotelRepo.ExistingIDs: %w", err)
	}
	ids, err := collect(rows, scanID)
	if err != nil {
		return nil, fmt.Errorf("repo.HotelRepo.ExistingIDs: %w", err)
	}
	return ids, nil
}

func (r *pgHotelRepo) Insert(ctx context.Context, cardID uuid.UUID, in domain.HotelInput) (uuid.UUID, error) {
	const q = `
		INSERT INTO hotels (travel_card_id, hotel_name, location, check_in_date, check_out_date,
		                    room_type, price_per_night, total_cost)
		VALUES (@travel_card_id, @hotel_name, @location, @check_in_date, @check_out_date,
		        @room_type, @price_per_night, @total_cost)
		RETURNING id`

	args := hotelArgs(in)
	args["travel_card_id"] = cardID

	id, err := scanID(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("repo.HotelRepo.Insert: %w", dateRangeError(err))
	}
	return id, nil
}

// Patch uses COALESCE so that a NULL parameter (nil field) keeps the stored value.
func (r *pgHotelRepo) Patch(ctx context.Context, cardID, id uuid.UUID, in domain.HotelInput) (bool, error) {
	const q = `
		UPDATE hotels
		SET hotel_name      = COALESCE(@hotel_name::text, hotel_name),
		    location        = COALESCE(@location::text, location),
		    check_in_date   = COALESCE(@check_in_date::date, check_in_date),
		    check_out_date  = COALESCE(@check_out_date::date, check_out_date),
		    room_type       = COALESCE(@room_type::text, room_type),
		    price_per_night = COALESCE(@price_per_night::numeric, price_per_night),
		    total_cost      = COALESCE(@total_cost::numeric, total_cost),
		    updated_at      = now()
		WHERE id = @id AND travel_card_id = @travel_card_id`

	args := hotelArgs(in)
	args["id"] = id
	args["travel_card_id"] = cardID

	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return false, fmt.Errorf("repo.HotelRepo.Patch: %w", dateRangeError(err))
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgHotelRepo) Delete(ctx context.Context, cardID, id uuid.UUID) error {
	const q = `DELETE FROM hotels WHERE id = @id AND travel_card_id = @travel_card_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "travel_card_id": cardID})
	if err != nil {
		return fmt.Errorf("repo.HotelRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.HotelRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// hotelArgs maps the optional input fields onto named args; nil becomes NULL.
func hotelArgs(in domain.HotelInput) pgx.NamedArgs {
	return pgx.NamedArgs{
		"hotel_name":      in.HotelName,
		"location":        in.Location,
		"check_in_date":   optionalDate(in.CheckInDate),
		"check_out_date":  optionalDate(in.CheckOutDate),
		"room_type":       in.RoomType,
		"price_per_night": in.PricePerNight,
		"total_cost":      in.TotalCost,
	}
}

// dateRangeError maps a hotels_date_range violation to domain.ErrValidation.
func dateRangeError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == checkViolation && pgErr.ConstraintName == "hotels_date_range" {
		return fmt.Errorf("%w: check_out_date must not be before check_in_date", domain.ErrValidation)
	}
	return err
}

func scanHotel(s scanner) (domain.Hotel, error) {
	var (
		h        domain.Hotel
		checkIn  pgtype.Date
		checkOut pgtype.Date
	)
	err := s.Scan(&h.ID, &h.TravelCardID, &h.HotelName, &h.Location, &checkIn, &checkOut,
		&h.RoomType, &h.PricePerNight, &h.TotalCost)
	if err != nil {
		return domain.Hotel{}, err
	}
	h.CheckInDate = checkIn.Time
	h.CheckOutDate = checkOut.Time
	return h, nil
}

func scanID(s scanner) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.Scan(&id)
	return id, err
}

func optionalDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}
