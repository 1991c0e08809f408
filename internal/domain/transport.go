package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Transport is a flight, train, bus or similar booking attached to a travel
// card. DepartureTime and ArrivalTime are free-form strings.
type Transport struct {
	ID               uuid.UUID
	TravelCardID     uuid.UUID
	TransportType    string
	Origin           string
	Destination      string
	DepartureTime    string
	ArrivalTime      string
	BookingReference *string
	Cost             *float64
	IsDeparture      bool
}

// TransportInput is a desired transport row. Semantics match HotelInput.
// A nil IsDeparture on a new row is stored as false.
type TransportInput struct {
	ID               *uuid.UUID
	TransportType    *string
	Origin           *string
	Destination      *string
	DepartureTime    *string
	ArrivalTime      *string
	BookingReference *string
	Cost             *float64
	IsDeparture      *bool
}

// ChildID implements Identified.
func (t TransportInput) ChildID() (uuid.UUID, bool) {
	if t.ID == nil {
		return uuid.UUID{}, false
	}
	return *t.ID, true
}

// Validate checks that a new row carries every required column.
func (t TransportInput) Validate() error {
	if t.ID != nil {
		return nil
	}
	switch {
	case blank(t.TransportType):
		return fmt.Errorf("%w: transport_type is required", ErrValidation)
	case blank(t.Origin):
		return fmt.Errorf("%w: origin is required", ErrValidation)
	case blank(t.Destination):
		return fmt.Errorf("%w: transport destination is required", ErrValidation)
	case blank(t.DepartureTime):
		return fmt.Errorf("%w: departure_time is required", ErrValidation)
	case blank(t.ArrivalTime):
		return fmt.Errorf("%w: arrival_time is required", ErrValidation)
	}
	return nil
}
