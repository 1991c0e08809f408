// Package domain contains the core data types for the Raahi travel API.
// It depends only on uuid and the standard library and is imported by every
// other internal package (repo, service, handler).
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultStatus is applied to a new travel card when the client sends none.
const DefaultStatus = "planning"

// TravelCard is a single trip owned by one user. It is the top-level
// aggregate; hotels and transports belong to a card and are attached by the
// service layer when the card is read.
type TravelCard struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Destination  string
	StartDate    time.Time
	EndDate      time.Time
	DurationDays int
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Hotels     []Hotel
	Transports []Transport
}

// NewTravelCard is the input for creating a card together with its first
// children. Every child is inserted; none may carry an ID.
type NewTravelCard struct {
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	Status      string
	Hotels      []HotelInput
	Transports  []TransportInput
}

// TravelCardPatch is a partial update. Nil fields keep their stored value.
// Hotels and Transports are tri-state, see ChildList.
type TravelCardPatch struct {
	Destination *string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *string
	Hotels      ChildList[HotelInput]
	Transports  ChildList[TransportInput]
}

// Apply merges the present fields of p onto card and recomputes
// DurationDays from the effective dates. It reports whether any parent
// field was present and returns ErrValidation if the merged range is inverted.
func (p TravelCardPatch) Apply(card TravelCard) (TravelCard, bool, error) {
	changed := false
	if p.Destination != nil {
		card.Destination = *p.Destination
		changed = true
	}
	if p.Status != nil {
		card.Status = *p.Status
		changed = true
	}
	if p.StartDate != nil {
		card.StartDate = *p.StartDate
		changed = true
	}
	if p.EndDate != nil {
		card.EndDate = *p.EndDate
		changed = true
	}
	if p.StartDate != nil || p.EndDate != nil {
		if err := ValidateDateRange(card.StartDate, card.EndDate); err != nil {
			return TravelCard{}, false, err
		}
		card.DurationDays = DurationDays(card.StartDate, card.EndDate)
	}
	return card, changed, nil
}

// ValidateDateRange returns ErrValidation when end falls before start.
// Only the calendar date is compared.
func ValidateDateRange(start, end time.Time) error {
	if calendarDate(end).Before(calendarDate(start)) {
		return fmt.Errorf("%w: end date must not be before start date", ErrValidation)
	}
	return nil
}

// DurationDays returns the inclusive number of calendar days between start
// and end: a trip that starts and ends on the same day lasts 1 day.
func DurationDays(start, end time.Time) int {
	hours := calendarDate(end).Sub(calendarDate(start)).Hours()
	return int(hours/24) + 1
}

// calendarDate drops the clock and zone so that DST shifts and offsets
// cannot change a day count.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
