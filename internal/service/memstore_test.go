package service_test

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/raahi/backend/internal/domain"
	"github.com/raahi/backend/internal/repo"
	"github.com/raahi/backend/internal/service"
)

// memStore is an in-memory test double for the whole persistence layer.
// WithTx snapshots every table and restores the snapshot when fn fails,
// so tests can assert rollback behaviour without a database.
type memStore struct {
	users      []domain.User
	cards      []domain.TravelCard
	hotels     []domain.Hotel
	transports []domain.Transport

	// fail makes the named operation (e.g. "hotels.Insert") return the error.
	fail map[string]error
	// calls counts invocations per operation name.
	calls map[string]int
}

func newMemStore() *memStore {
	return &memStore{fail: map[string]error{}, calls: map[string]int{}}
}

// compile-time checks: the fakes must satisfy the interfaces they replace.
var (
	_ service.UnitOfWork  = (*memStore)(nil)
	_ repo.UserRepo       = memUsers{}
	_ repo.TravelCardRepo = memCards{}
	_ repo.HotelRepo      = memHotels{}
	_ repo.TransportRepo  = memTransports{}
)

func (m *memStore) Repos() repo.Repos {
	return repo.Repos{
		Users:      memUsers{m},
		Cards:      memCards{m},
		Hotels:     memHotels{m},
		Transports: memTransports{m},
	}
}

func (m *memStore) WithTx(_ context.Context, fn func(repo.Repos) error) error {
	m.calls["tx"]++
	users, cards := slices.Clone(m.users), slices.Clone(m.cards)
	hotels, transports := slices.Clone(m.hotels), slices.Clone(m.transports)
	if err := fn(m.Repos()); err != nil {
		m.users, m.cards, m.hotels, m.transports = users, cards, hotels, transports
		return err
	}
	return nil
}

func (m *memStore) op(name string) error {
	m.calls[name]++
	return m.fail[name]
}

// hotelsOf returns the stored hotels of a card in insertion order.
func (m *memStore) hotelsOf(cardID uuid.UUID) []domain.Hotel {
	var out []domain.Hotel
	for _, h := range m.hotels {
		if h.TravelCardID == cardID {
			out = append(out, h)
		}
	}
	return out
}

// ---- users -----------------------------------------------------------------

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, u domain.User) (domain.User, error) {
	if err := r.m.op("users.Create"); err != nil {
		return domain.User{}, err
	}
	for _, existing := range r.m.users {
		if existing.Email == u.Email {
			return domain.User{}, domain.ErrConflict
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	r.m.users = append(r.m.users, u)
	return u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	if err := r.m.op("users.GetByEmail"); err != nil {
		return domain.User{}, err
	}
	for _, u := range r.m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	for _, u := range r.m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

// ---- travel cards ----------------------------------------------------------

type memCards struct{ m *memStore }

func (r memCards) Create(_ context.Context, c domain.TravelCard) (domain.TravelCard, error) {
	if err := r.m.op("cards.Create"); err != nil {
		return domain.TravelCard{}, err
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.m.cards = append(r.m.cards, c)
	return c, nil
}

func (r memCards) GetForUser(_ context.Context, userID, id uuid.UUID) (domain.TravelCard, error) {
	if err := r.m.op("cards.GetForUser"); err != nil {
		return domain.TravelCard{}, err
	}
	for _, c := range r.m.cards {
		if c.ID == id && c.UserID == userID {
			return c, nil
		}
	}
	return domain.TravelCard{}, domain.ErrNotFound
}

func (r memCards) ListForUser(_ context.Context, userID uuid.UUID) ([]domain.TravelCard, error) {
	if err := r.m.op("cards.ListForUser"); err != nil {
		return nil, err
	}
	var out []domain.TravelCard
	for _, c := range r.m.cards {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memCards) Update(_ context.Context, c domain.TravelCard) (domain.TravelCard, error) {
	if err := r.m.op("cards.Update"); err != nil {
		return domain.TravelCard{}, err
	}
	for i, existing := range r.m.cards {
		if existing.ID == c.ID && existing.UserID == c.UserID {
			c.UpdatedAt = time.Now()
			r.m.cards[i] = c
			return c, nil
		}
	}
	return domain.TravelCard{}, domain.ErrNotFound
}

func (r memCards) Delete(_ context.Context, userID, id uuid.UUID) error {
	if err := r.m.op("cards.Delete"); err != nil {
		return err
	}
	for i, c := range r.m.cards {
		if c.ID == id && c.UserID == userID {
			r.m.cards = slices.Delete(r.m.cards, i, i+1)
			// Emulate ON DELETE CASCADE.
			r.m.hotels = slices.DeleteFunc(r.m.hotels, func(h domain.Hotel) bool { return h.TravelCardID == id })
			r.m.transports = slices.DeleteFunc(r.m.transports, func(t domain.Transport) bool { return t.TravelCardID == id })
			return nil
		}
	}
	return domain.ErrNotFound
}

// ---- hotels ----------------------------------------------------------------

type memHotels struct{ m *memStore }

func (r memHotels) ListByCard(_ context.Context, cardID uuid.UUID) ([]domain.Hotel, error) {
	if err := r.m.op("hotels.ListByCard"); err != nil {
		return nil, err
	}
	return r.m.hotelsOf(cardID), nil
}

func (r memHotels) ExistingIDs(_ context.Context, cardID uuid.UUID) ([]uuid.UUID, error) {
	if err := r.m.op("hotels.ExistingIDs"); err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for _, h := range r.m.hotelsOf(cardID) {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (r memHotels) Insert(_ context.Context, cardID uuid.UUID, in domain.HotelInput) (uuid.UUID, error) {
	if err := r.m.op("hotels.Insert"); err != nil {
		return uuid.UUID{}, err
	}
	h := domain.Hotel{ID: uuid.New(), TravelCardID: cardID}
	patchHotel(&h, in)
	r.m.hotels = append(r.m.hotels, h)
	return h.ID, nil
}

func (r memHotels) Patch(_ context.Context, cardID, id uuid.UUID, in domain.HotelInput) (bool, error) {
	if err := r.m.op("hotels.Patch"); err != nil {
		return false, err
	}
	for i := range r.m.hotels {
		if r.m.hotels[i].ID == id && r.m.hotels[i].TravelCardID == cardID {
			patchHotel(&r.m.hotels[i], in)
			return true, nil
		}
	}
	return false, nil
}

func (r memHotels) Delete(_ context.Context, cardID, id uuid.UUID) error {
	if err := r.m.op("hotels.Delete"); err != nil {
		return err
	}
	before := len(r.m.hotels)
	r.m.hotels = slices.DeleteFunc(r.m.hotels, func(h domain.Hotel) bool {
		return h.ID == id && h.TravelCardID == cardID
	})
	if len(r.m.hotels) == before {
		return domain.ErrNotFound
	}
	return nil
}

func patchHotel(h *domain.Hotel, in domain.HotelInput) {
	if in.HotelName != nil {
		h.HotelName = *in.HotelName
	}
	if in.Location != nil {
		h.Location = *in.Location
	}
	if in.CheckInDate != nil {
		h.CheckInDate = *in.CheckInDate
	}
	if in.CheckOutDate != nil {
		h.CheckOutDate = *in.CheckOutDate
	}
	if in.RoomType != nil {
		h.RoomType = in.RoomType
	}
	if in.PricePerNight != nil {
		h.PricePerNight = in.PricePerNight
	}
	if in.TotalCost != nil {
		h.TotalCost = in.TotalCost
	}
}

// ---- transports ------------------------------------------------------------

type memTransports struct{ m *memStore }

func (r memTransports) ListByCard(_ context.Context, cardID uuid.UUID) ([]domain.Transport, error) {
	if err := r.m.op("transports.ListByCard"); err != nil {
		return nil, err
	}
	var out []domain.Transport
	for _, t := range r.m.transports {
		if t.TravelCardID == cardID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r memTransports) ExistingIDs(ctx context.Context, cardID uuid.UUID) ([]uuid.UUID, error) {
	ts, err := r.ListByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for _, t := range ts {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func (r memTransports) Insert(_ context.Context, cardID uuid.UUID, in domain.TransportInput) (uuid.UUID, error) {
	if err := r.m.op("transports.Insert"); err != nil {
		return uuid.UUID{}, err
	}
	t := domain.Transport{ID: uuid.New(), TravelCardID: cardID}
	patchTransport(&t, in)
	r.m.transports = append(r.m.transports, t)
	return t.ID, nil
}

func (r memTransports) Patch(_ context.Context, cardID, id uuid.UUID, in domain.TransportInput) (bool, error) {
	for i := range r.m.transports {
		if r.m.transports[i].ID == id && r.m.transports[i].TravelCardID == cardID {
			patchTransport(&r.m.transports[i], in)
			return true, nil
		}
	}
	return false, nil
}

func (r memTransports) Delete(_ context.Context, cardID, id uuid.UUID) error {
	before := len(r.m.transports)
	r.m.transports = slices.DeleteFunc(r.m.transports, func(t domain.Transport) bool {
		return t.ID == id && t.TravelCardID == cardID
	})
	if len(r.m.transports) == before {
		return domain.ErrNotFound
	}
	return nil
}

func patchTransport(t *domain.Transport, in domain.TransportInput) {
	if in.TransportType != nil {
		t.TransportType = *in.TransportType
	}
	if in.Origin != nil {
		t.Origin = *in.Origin
	}
	if in.Destination != nil {
		t.Destination = *in.Destination
	}
	if in.DepartureTime != nil {
		t.DepartureTime = *in.DepartureTime
	}
	if in.ArrivalTime != nil {
		t.ArrivalTime = *in.ArrivalTime
	}
	if in.BookingReference != nil {
		t.BookingReference = in.BookingReference
	}
	if in.Cost != nil {
		t.Cost = in.Cost
	}
	if in.IsDeparture != nil {
		t.IsDeparture = *in.IsDeparture
	}
}

func ptr[T any](v T) *T { return &v }
