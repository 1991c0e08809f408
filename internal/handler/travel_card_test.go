package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raahi/backend/internal/domain"
	"github.com/raahi/backend/internal/middleware"
)

func cardFixture() domain.TravelCard {
	id := uuid.New()
	price := 120.0
	return domain.TravelCard{
		ID:           id,
		UserID:       caller.UserID,
		Destination:  "Paris",
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		DurationDays: 5,
		Status:       "planning",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
		Hotels: []domain.Hotel{{
			ID:            uuid.New(),
			TravelCardID:  id,
			HotelName:     "H1",
			Location:      "Paris",
			CheckInDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			CheckOutDate:  time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			PricePerNight: &price,
		}},
		Transports: []domain.Transport{},
	}
}

type cardBody struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Destination  string    `json:"destination"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	DurationDays int       `json:"duration_days"`
	Status       string    `json:"status"`
	Hotels       []struct {
		ID            uuid.UUID `json:"id"`
		HotelName     string    `json:"hotel_name"`
		CheckInDate   string    `json:"check_in_date"`
		PricePerNight *float64  `json:"price_per_night"`
		RoomType      *string   `json:"room_type"`
	} `json:"hotels"`
	Transports []json.RawMessage `json:"transports"`
}

func decodeCard(t *testing.T, body []byte) cardBody {
	t.Helper()
	var c cardBody
	require.NoError(t, json.Unmarshal(body, &c))
	return c
}

func validCreateBody() map[string]any {
	return map[string]any{
		"destination": "Paris",
		"start_date":  "2024-01-01",
		"end_date":    "2024-01-05",
		"status":      "planning",
		"hotels": []map[string]any{{
			"hotel_name":     "H1",
			"location":       "Paris",
			"check_in_date":  "2024-01-01",
			"check_out_date": "2024-01-05",
		}},
		"transports": []map[string]any{{
			"transport_type": "flight",
			"origin":         "JFK",
			"destination":    "CDG",
			"departure_time": "2024-01-01T08:00",
			"arrival_time":   "2024-01-01T20:00",
			"is_departure":   true,
		}},
	}
}

// ---- POST /api/travel-cards ------------------------------------------------

func TestCreateTravelCard_201(t *testing.T) {
	fixture := cardFixture()
	var (
		gotUser uuid.UUID
		got     domain.NewTravelCard
	)
	cards := &mockCards{
		create: func(_ context.Context, userID uuid.UUID, in domain.NewTravelCard) (domain.TravelCard, error) {
			gotUser, got = userID, in
			return fixture, nil
		},
	}

	rec := do(t, newHTTPHandler(cards, nil), http.MethodPost, "/api/travel-cards", validCreateBody(), true)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, caller.UserID, gotUser, "owner comes from the token")
	assert.Equal(t, "Paris", got.Destination)
	assert.True(t, got.StartDate.Equal(fixture.StartDate))
	require.Len(t, got.Hotels, 1)
	assert.Equal(t, "H1", *got.Hotels[0].HotelName)
	assert.Nil(t, got.Hotels[0].PricePerNight)
	require.Len(t, got.Transports, 1)
	require.NotNil(t, got.Transports[0].IsDeparture)
	assert.True(t, *got.Transports[0].IsDeparture)

	body := decodeCard(t, rec.Body.Bytes())
	assert.Equal(t, fixture.ID, body.ID)
	assert.Equal(t, "2024-01-01", body.StartDate)
	assert.Equal(t, 5, body.DurationDays)
	require.Len(t, body.Hotels, 1)
	assert.Equal(t, 120.0, *body.Hotels[0].PricePerNight)
	assert.Nil(t, body.Hotels[0].RoomType)
	assert.NotNil(t, body.Transports, "empty children encode as []")
}

func TestCreateTravelCard_400_RequestValidation(t *testing.T) {
	cases := map[string]struct {
		mutate  func(map[string]any)
		message string
	}{
		"no destination": {func(b map[string]any) { delete(b, "destination") }, "destination is required"},
		"no start date":  {func(b map[string]any) { delete(b, "start_date") }, "start_date is required"},
		"bad date":       {func(b map[string]any) { b["end_date"] = "05/01/2024" }, "dates must be formatted YYYY-MM-DD"},
		"negative price": {
			func(b map[string]any) { b["hotels"].([]map[string]any)[0]["price_per_night"] = -1 },
			"hotels[0].price_per_night must be at least 0",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			body := validCreateBody()
			tc.mutate(body)

			rec := do(t, newHTTPHandler(&mockCards{}, nil), http.MethodPost, "/api/travel-cards", body, true)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			got := decodeError(t, rec)
			assert.Equal(t, "validation_error", got.Error.Code)
			assert.Equal(t, tc.message, got.Error.Message)
		})
	}
}

func TestCreateTravelCard_400_ServiceValidation(t *testing.T) {
	cards := &mockCards{
		create: func(context.Context, uuid.UUID, domain.NewTravelCard) (domain.TravelCard, error) {
			return domain.TravelCard{}, fmt.Errorf("%w: end date must not be before start date", domain.ErrValidation)
		},
	}

	rec := do(t, newHTTPHandler(cards, nil), http.MethodPost, "/api/travel-cards", validCreateBody(), true)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "end date must not be before start date", decodeError(t, rec).Error.Message)
}

func TestCreateTravelCard_500(t *testing.T) {
	cards := &mockCards{
		create: func(context.Context, uuid.UUID, domain.NewTravelCard) (domain.TravelCard, error) {
			return domain.TravelCard{}, fmt.Errorf("service.TravelCardService.Create: %w", errDB)
		},
	}

	rec := do(t, newHTTPHandler(cards, nil), http.MethodPost, "/api/travel-cards", validCreateBody(), true)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decodeError(t, rec).Error.Code)
}

func TestCreateTravelCard_401(t *testing.T) {
	rec := do(t, newHTTPHandler(&mockCards{}, nil), http.MethodPost, "/api/travel-cards", validCreateBody(), false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateTravelCard_413(t *testing.T) {
	h := newHTTPHandler(&mockCards{}, nil, middleware.NewMaxBodySizeHandler(64))
	body := validCreateBody()
	body["destination"] = strings.Repeat("x", 100)

	rec := do(t, h, http.MethodPost, "/api/travel-cards", body, true)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "payload_too_large", decodeError(t, rec).Error.Code)
}

// ---- GET /api/travel-cards -------------------------------------------------

func TestListTravelCards_200(t *testing.T) {
	var gotUser uuid.UUID
	cards := &mockCards{
		list: func(_ context.Context, userID uuid.UUID) ([]domain.TravelCard, error) {
			gotUser = userID
			return []domain.TravelCard{cardFixture(), cardFixture()}, nil
		},
	}

	rec := do(t, newHTTPHandler(cards, nil), http.MethodGet, "/api/travel-cards", nil, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, caller.UserID, gotUser)
	var body []cardBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body, 2)
}

func TestListTravelCards_EmptyIsArray(t *testing.T) {
	cards := &mockCards{
		list: func(context.Context, uuid.UUID) ([]domain.TravelCard, error) {
			return []domain.TravelCard{}, nil
		},
	}

	rec := do(t, newHTTPHandler(cards, nil), http.MethodGet, "/api/travel-cards", nil, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

// ---- GET /api/travel-cards/{id} --------------------------------------------

func TestGetTravelCard_200(t *testing.T) {
	fixture := cardFixture()
	cards := &mockCards{
		get: func(_ context.Context, userID, id uuid.UUID) (domain.TravelCard, error) {
			require.Equal(t, caller.UserID, userID)
			require.Equal(t, fixture.ID, id)
			return fixture, nil
		},
	}

	rec := do(t, newHTTPHandler(cards, nil), http.MethodGet, "/api/travel-cards/"+fixture.ID.String(), nil, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fixture.ID, decodeCard(t, rec.Body.Bytes()).ID)
}

func TestGetTravelCard_404(t *testing.T) {
	cards := &mockCards{
		get: func(context.Context, uuid.UUID, uuid.UUID) (domain.TravelCard, error) {
			return domain.TravelCard{}, fmt.Errorf("service.TravelCardService.Get: %w", domain.ErrNotFound)
		},
	}

	rec := do(t, newHTTPHandler(cards, nil), http.MethodGet, "/api/travel-cards/"+uuid.NewString(), nil, true)

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "not_found", body.Error.Code)
	assert.Equal(t, "travel card not found", body.Error.Message)
}

// TestGetTravelCard_404_MalformedID: a non-UUID id looks exactly like a
// missing card and never reaches the service.
func TestGetTravelCard_404_MalformedID(t *testing.T) {
	rec := do(t, newHTTPHandler(&mockCards{}, nil), http.MethodGet, "/api/travel-cards/not-a-uuid", nil, true)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "travel card not found", decodeError(t, rec).Error.Message)
}

// ---- PUT /api/travel-cards/{id} --------------------------------------------

func captureUpdate(got *domain.TravelCardPatch) *mockCards {
	return &mockCards{
		update: func(_ context.Context, _, _ uuid.UUID, p domain.TravelCardPatch) (domain.TravelCard, error) {
			*got = p
			return cardFixture(), nil
		},
	}
}

func TestUpdateTravelCard_AbsentListsStayAbsent(t *testing.T) {
	var got domain.TravelCardPatch

	rec := do(t, newHTTPHandler(captureUpdate(&got), nil), http.MethodPut,
		"/api/travel-cards/"+uuid.NewString(), `{"destination":"Lyon"}`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Destination)
	assert.Equal(t, "Lyon", *got.Destination)
	assert.Nil(t, got.StartDate)
	assert.False(t, got.Hotels.Present)
	assert.False(t, got.Transports.Present)
}

func TestUpdateTravelCard_NullListIsAbsent(t *testing.T) {
	var got domain.TravelCardPatch

	rec := do(t, newHTTPHandler(captureUpdate(&got), nil), http.MethodPut,
		"/api/travel-cards/"+uuid.NewString(), `{"hotels":null}`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, got.Hotels.Present)
}

func TestUpdateTravelCard_EmptyListIsPresent(t *testing.T) {
	var got domain.TravelCardPatch

	rec := do(t, newHTTPHandler(captureUpdate(&got), nil), http.MethodPut,
		"/api/travel-cards/"+uuid.NewString(), `{"hotels":[]}`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.Hotels.Present)
	assert.Empty(t, got.Hotels.Items)
	assert.False(t, got.Transports.Present)
}

func TestUpdateTravelCard_ChildWithIDAndPartialFields(t *testing.T) {
	var got domain.TravelCardPatch
	hotelID := uuid.New()

	rec := do(t, newHTTPHandler(captureUpdate(&got), nil), http.MethodPut,
		"/api/travel-cards/"+uuid.NewString(),
		fmt.Sprintf(`{"end_date":"2024-01-10","hotels":[{"id":%q,"price_per_night":120},{"hotel_name":"H2"}]}`, hotelID), true)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.EndDate)
	assert.Equal(t, "2024-01-10", got.EndDate.Format("2006-01-02"))
	require.Len(t, got.Hotels.Items, 2)
	assert.Equal(t, hotelID, *got.Hotels.Items[0].ID)
	assert.Equal(t, 120.0, *got.Hotels.Items[0].PricePerNight)
	assert.Nil(t, got.Hotels.Items[0].HotelName, "absent fields stay nil")
	assert.Nil(t, got.Hotels.Items[1].ID)
}

func TestUpdateTravelCard_400_ChildValidation(t *testing.T) {
	rec := do(t, newHTTPHandler(&mockCards{}, nil), http.MethodPut,
		"/api/travel-cards/"+uuid.NewString(), `{"transports":[{"cost":5},{"cost":-5}]}`, true)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "transports[1].cost must be at least 0", decodeError(t, rec).Error.Message)
}

func TestUpdateTravelCard_400_EmptyDestination(t *testing.T) {
	rec := do(t, newHTTPHandler(&mockCards{}, nil), http.MethodPut,
		"/api/travel-cards/"+uuid.NewString(), `{"destination":""}`, true)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "destination must be at least 1 characters", decodeError(t, rec).Error.Message)
}

func TestUpdateTravelCard_ErrorMapping(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"not found":   {fmt.Errorf("service.TravelCardService.Update: %w", domain.ErrNotFound), http.StatusNotFound},
		"bad range":   {fmt.Errorf("service.TravelCardService.Update: %w: end date must not be before start date", domain.ErrValidation), http.StatusBadRequest},
		"store error": {errDB, http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cards := &mockCards{
				update: func(context.Context, uuid.UUID, uuid.UUID, domain.TravelCardPatch) (domain.TravelCard, error) {
					return domain.TravelCard{}, tc.err
				},
			}

			rec := do(t, newHTTPHandler(cards, nil), http.MethodPut,
				"/api/travel-cards/"+uuid.NewString(), `{"start_date":"2024-02-01"}`, true)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

// ---- DELETE /api/travel-cards/{id} -----------------------------------------

func TestDeleteTravelCard_200(t *testing.T) {
	id := uuid.New()
	var gotID uuid.UUID
	cards := &mockCards{
		delete: func(_ context.Context, userID, cardID uuid.UUID) error {
			require.Equal(t, caller.UserID, userID)
			gotID = cardID
			return nil
		},
	}

	rec := do(t, newHTTPHandler(cards, nil), http.MethodDelete, "/api/travel-cards/"+id.String(), nil, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, gotID)
	assert.JSONEq(t, `{"success":true,"message":"Travel card deleted successfully"}`, rec.Body.String())
}

func TestDeleteTravelCard_404(t *testing.T) {
	cards := &mockCards{
		delete: func(context.Context, uuid.UUID, uuid.UUID) error {
			return fmt.Errorf("service.TravelCardService.Delete: %w", domain.ErrNotFound)
		},
	}

	rec := do(t, newHTTPHandler(cards, nil), http.MethodDelete, "/api/travel-cards/"+uuid.NewString(), nil, true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
