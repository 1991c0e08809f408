package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Hotel is a hotel booking attached to a travel card.
// Optional columns are nil when the client never supplied them.
type Hotel struct {
	ID            uuid.UUID
	TravelCardID  uuid.UUID
	HotelName     string
	Location      string
	CheckInDate   time.Time
	CheckOutDate  time.Time
	RoomType      *string
	PricePerNight *float64
	TotalCost     *float64
}

// HotelInput is a desired hotel row as submitted by a client.
// A nil ID marks a new row; a non-nil ID targets an existing row and only the
// non-nil fields are written.
type HotelInput struct {
	ID            *uuid.UUID
	HotelName     *string
	Location      *string
	CheckInDate   *time.Time
	CheckOutDate  *time.Time
	RoomType      *string
	PricePerNight *float64
	TotalCost     *float64
}

// ChildID implements Identified.
func (h HotelInput) ChildID() (uuid.UUID, bool) {
	if h.ID == nil {
		return uuid.UUID{}, false
	}
	return *h.ID, true
}

// Validate checks the input. New rows must carry every required column;
// existing rows only have the fields they send checked.
func (h HotelInput) Validate() error {
	if h.ID == nil {
		switch {
		case blank(h.HotelName):
			return fmt.Errorf("%w: hotel_name is required", ErrValidation)
		case blank(h.Location):
			return fmt.Errorf("%w: hotel location is required", ErrValidation)
		case h.CheckInDate == nil:
			return fmt.Errorf("%w: check_in_date is required", ErrValidation)
		case h.CheckOutDate == nil:
			return fmt.Errorf("%w: check_out_date is required", ErrValidation)
		}
	}
	if h.CheckInDate != nil && h.CheckOutDate != nil && h.CheckOutDate.Before(*h.CheckInDate) {
		return fmt.Errorf("%w: check_out_date must not be before check_in_date", ErrValidation)
	}
	return nil
}

// ValidateAgainst checks the date range that results from writing h over
// stored, so a patch that sends only one date is still checked.
func (h HotelInput) ValidateAgainst(stored Hotel) error {
	checkIn, checkOut := stored.CheckInDate, stored.CheckOutDate
	if h.CheckInDate != nil {
		checkIn = *h.CheckInDate
	}
	if h.CheckOutDate != nil {
		checkOut = *h.CheckOutDate
	}
	if checkOut.Before(checkIn) {
		return fmt.Errorf("%w: check_out_date must not be before check_in_date", ErrValidation)
	}
	return nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
