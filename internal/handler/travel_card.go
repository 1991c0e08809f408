package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/raahi/backend/internal/auth"
	"github.com/raahi/backend/internal/domain"
)

// ---- request bodies --------------------------------------------------------

type hotelRequest struct {
	ID            *uuid.UUID          `json:"id"`
	HotelName     *string             `json:"hotel_name" validate:"omitnil,max=200"`
	Location      *string             `json:"location" validate:"omitnil,max=200"`
	CheckInDate   *openapi_types.Date `json:"check_in_date"`
	CheckOutDate  *openapi_types.Date `json:"check_out_date"`
	RoomType      *string             `json:"room_type"`
	PricePerNight *float64            `json:"price_per_night" validate:"omitnil,gte=0"`
	TotalCost     *float64            `json:"total_cost" validate:"omitnil,gte=0"`
}

type transportRequest struct {
	ID               *uuid.UUID `json:"id"`
	TransportType    *string    `json:"transport_type" validate:"omitnil,max=50"`
	Origin           *string    `json:"origin" validate:"omitnil,max=200"`
	Destination      *string    `json:"destination" validate:"omitnil,max=200"`
	DepartureTime    *string    `json:"departure_time"`
	ArrivalTime      *string    `json:"arrival_time"`
	BookingReference *string    `json:"booking_reference"`
	Cost             *float64   `json:"cost" validate:"omitnil,gte=0"`
	IsDeparture      *bool      `json:"is_departure"`
}

type createTravelCardRequest struct {
	Destination string              `json:"destination" validate:"required,max=200"`
	StartDate   *openapi_types.Date `json:"start_date" validate:"required"`
	EndDate     *openapi_types.Date `json:"end_date" validate:"required"`
	Status      string              `json:"status" validate:"max=50"`
	Hotels      []hotelRequest      `json:"hotels" validate:"dive"`
	Transports  []transportRequest  `json:"transports" validate:"dive"`
}

// updateTravelCardRequest: every field is optional. hotels and transports
// distinguish an absent key (keep children) from [] (delete all).
type updateTravelCardRequest struct {
	Destination *string                            `json:"destination" validate:"omitnil,min=1,max=200"`
	StartDate   *openapi_types.Date                `json:"start_date"`
	EndDate     *openapi_types.Date                `json:"end_date"`
	Status      *string                            `json:"status" validate:"omitnil,max=50"`
	Hotels      domain.ChildList[hotelRequest]     `json:"hotels"`
	Transports  domain.ChildList[transportRequest] `json:"transports"`
}

// ---- response bodies -------------------------------------------------------

type hotelResponse struct {
	ID            uuid.UUID          `json:"id"`
	TravelCardID  uuid.UUID          `json:"travel_card_id"`
	HotelName     string             `json:"hotel_name"`
	Location      string             `json:"location"`
	CheckInDate   openapi_types.Date `json:"check_in_date"`
	CheckOutDate  openapi_types.Date `json:"check_out_date"`
	RoomType      *string            `json:"room_type"`
	PricePerNight *float64           `json:"price_per_night"`
	TotalCost     *float64           `json:"total_cost"`
}

type transportResponse struct {
	ID               uuid.UUID `json:"id"`
	TravelCardID     uuid.UUID `json:"travel_card_id"`
	TransportType    string    `json:"transport_type"`
	Origin           string    `json:"origin"`
	Destination      string    `json:"destination"`
	DepartureTime    string    `json:"departure_time"`
	ArrivalTime      string    `json:"arrival_time"`
	BookingReference *string   `json:"booking_reference"`
	Cost             *float64  `json:"cost"`
	IsDeparture      bool      `json:"is_departure"`
}

type travelCardResponse struct {
	ID           uuid.UUID           `json:"id"`
	UserID       uuid.UUID           `json:"user_id"`
	Destination  string              `json:"destination"`
	StartDate    openapi_types.Date  `json:"start_date"`
	EndDate      openapi_types.Date  `json:"end_date"`
	DurationDays int                 `json:"duration_days"`
	Status       string              `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Hotels       []hotelResponse     `json:"hotels"`
	Transports   []transportResponse `json:"transports"`
}

// ---- handlers --------------------------------------------------------------

// createTravelCard handles POST /api/travel-cards.
func (s *Server) createTravelCard(w http.ResponseWriter, r *http.Request) {
	var req createTravelCardRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.cards.Create(r.Context(), userID(r), requestToNewTravelCard(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, travelCardToResponse(created))
}

// listTravelCards handles GET /api/travel-cards.
func (s *Server) listTravelCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.cards.List(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data := make([]travelCardResponse, len(cards))
	for i, c := range cards {
		data[i] = travelCardToResponse(c)
	}
	writeJSON(w, http.StatusOK, data)
}

// getTravelCard handles GET /api/travel-cards/{id}.
func (s *Server) getTravelCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	card, err := s.cards.Get(r.Context(), userID(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, travelCardToResponse(card))
}

// updateTravelCard handles PUT /api/travel-cards/{id}.
func (s *Server) updateTravelCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateTravelCardRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	// ChildList items are not reached by the struct walk.
	for i, h := range req.Hotels.Items {
		if err := s.validateStruct(h, fmt.Sprintf("hotels[%d].", i)); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	for i, t := range req.Transports.Items {
		if err := s.validateStruct(t, fmt.Sprintf("transports[%d].", i)); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	updated, err := s.cards.Update(r.Context(), userID(r), id, requestToPatch(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, travelCardToResponse(updated))
}

// deleteTravelCard handles DELETE /api/travel-cards/{id}.
func (s *Server) deleteTravelCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.cards.Delete(r.Context(), userID(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Travel card deleted successfully"})
}

// ---- mapping helpers -------------------------------------------------------

// userID returns the caller's id. RequireAuth guarantees it is present.
func userID(r *http.Request) uuid.UUID {
	u, _ := auth.UserFrom(r.Context())
	return u.UserID
}

// pathID parses the {id} URL parameter. A malformed id is reported as not
// found so that it looks the same as a missing card.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.UUID{}, domain.ErrNotFound
	}
	return id, nil
}

func requestToNewTravelCard(req createTravelCardRequest) domain.NewTravelCard {
	in := domain.NewTravelCard{
		Destination: req.Destination,
		StartDate:   req.StartDate.Time,
		EndDate:     req.EndDate.Time,
		Status:      req.Status,
		Hotels:      make([]domain.HotelInput, len(req.Hotels)),
		Transports:  make([]domain.TransportInput, len(req.Transports)),
	}
	for i, h := range req.Hotels {
		in.Hotels[i] = hotelToInput(h)
	}
	for i, t := range req.Transports {
		in.Transports[i] = transportToInput(t)
	}
	return in
}

func requestToPatch(req updateTravelCardRequest) domain.TravelCardPatch {
	return domain.TravelCardPatch{
		Destination: req.Destination,
		StartDate:   dateTime(req.StartDate),
		EndDate:     dateTime(req.EndDate),
		Status:      req.Status,
		Hotels:      domain.Map(req.Hotels, hotelToInput),
		Transports:  domain.Map(req.Transports, transportToInput),
	}
}

func hotelToInput(h hotelRequest) domain.HotelInput {
	return domain.HotelInput{
		ID:            h.ID,
		HotelName:     h.HotelName,
		Location:      h.Location,
		CheckInDate:   dateTime(h.CheckInDate),
		CheckOutDate:  dateTime(h.CheckOutDate),
		RoomType:      h.RoomType,
		PricePerNight: h.PricePerNight,
		TotalCost:     h.TotalCost,
	}
}

func transportToInput(t transportRequest) domain.TransportInput {
	return domain.TransportInput{
		ID:               t.ID,
		TransportType:    t.TransportType,
		Origin:           t.Origin,
		Destination:      t.Destination,
		DepartureTime:    t.DepartureTime,
		ArrivalTime:      t.ArrivalTime,
		BookingReference: t.BookingReference,
		Cost:             t.Cost,
		IsDeparture:      t.IsDeparture,
	}
}

func dateTime(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func travelCardToResponse(c domain.TravelCard) travelCardResponse {
	resp := travelCardResponse{
		ID:           c.ID,
		UserID:       c.UserID,
		Destination:  c.Destination,
		StartDate:    openapi_types.Date{Time: c.StartDate},
		EndDate:      openapi_types.Date{Time: c.EndDate},
		DurationDays: c.DurationDays,
		Status:       c.Status,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Hotels:       make([]hotelResponse, len(c.Hotels)),
		Transports:   make([]transportResponse, len(c.Transports)),
	}
	for i, h := range c.Hotels {
		resp.Hotels[i] = hotelResponse{
			ID:            h.ID,
			TravelCardID:  h.TravelCardID,
			HotelName:     h.HotelName,
			Location:      h.Location,
			CheckInDate:   openapi_types.Date{Time: h.CheckInDate},
			CheckOutDate:  openapi_types.Date{Time: h.CheckOutDate},
			RoomType:      h.RoomType,
			PricePerNight: h.PricePerNight,
			TotalCost:     h.TotalCost,
		}
	}
	for i, t := range c.Transports {
		resp.Transports[i] = transportResponse{
			ID:               t.ID,
			TravelCardID:     t.TravelCardID,
			TransportType:    t.TransportType,
			Origin:           t.Origin,
			Destination:      t.Destination,
			DepartureTime:    t.DepartureTime,
			ArrivalTime:      t.ArrivalTime,
			BookingReference: t.BookingReference,
			Cost:             t.Cost,
			IsDeparture:      t.IsDeparture,
		}
	}
	return resp
}
