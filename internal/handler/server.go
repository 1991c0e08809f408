// Package handler implements the HTTP handlers for the Raahi API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, auth.go, travel_card.go) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/raahi/backend/internal/domain"
	"github.com/raahi/backend/internal/middleware"
	"github.com/raahi/backend/internal/service"
)

// TravelCardServicer defines the business operations the travel card
// handlers depend on. *service.TravelCardService satisfies it; handler tests
// inject a mock without touching the database or service layer.
type TravelCardServicer interface {
	Create(ctx context.Context, userID uuid.UUID, in domain.NewTravelCard) (domain.TravelCard, error)
	Get(ctx context.Context, userID, id uuid.UUID) (domain.TravelCard, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.TravelCard, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch domain.TravelCardPatch) (domain.TravelCard, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// UserServicer defines the account operations the auth handlers depend on.
// *service.UserService satisfies it.
type UserServicer interface {
	Register(ctx context.Context, email, password, fullName string) (service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	Me(ctx context.Context, current domain.CurrentUser) (domain.CurrentUser, error)
}

// Server implements every API endpoint. Build the http.Handler with Routes.
type Server struct {
	cards    TravelCardServicer
	users    UserServicer
	authn    middleware.Authenticator
	log      *slog.Logger
	validate *validator.Validate
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(cards TravelCardServicer, users UserServicer, authn middleware.Authenticator, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cards:    cards,
		users:    users,
		authn:    authn,
		log:      log,
		validate: newValidator(),
	}
}

// Routes returns the chi router for the whole API with mw applied to every
// route. Travel card and session routes require a bearer token.
func (s *Server) Routes(mw ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(mw...)
	r.NotFound(s.notFound)
	r.MethodNotAllowed(s.methodNotAllowed)

	r.Get("/", s.root)
	r.Get("/healthz", s.health)
	r.Get("/openapi.yaml", s.openAPI)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.authn, s.writeError))

			r.Post("/auth/logout", s.logout)
			r.Get("/auth/me", s.me)

			r.Route("/travel-cards", func(r chi.Router) {
				r.Post("/", s.createTravelCard)
				r.Get("/", s.listTravelCards)
				r.Get("/{id}", s.getTravelCard)
				r.Put("/{id}", s.updateTravelCard)
				r.Delete("/{id}", s.deleteTravelCard)
			})
		})
	})
	return r
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
