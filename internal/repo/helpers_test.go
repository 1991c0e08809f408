package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/raahi/backend/internal/domain"
	"github.com/raahi/backend/internal/repo"
	"github.com/raahi/backend/testutil"
)

// newTestRepos returns repositories bound to a transaction that is rolled
// back when the test finishes, giving free per-test isolation.
func newTestRepos(t *testing.T) repo.Repos {
	t.Helper()
	return repo.NewRepos(testutil.NewTx(t))
}

func mustCreateUser(t *testing.T, r repo.Repos) domain.User {
	t.Helper()
	u, err := r.Users.Create(context.Background(), domain.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "$2a$04$placeholder",
		FullName:     "Test User",
	})
	require.NoError(t, err, "create user")
	return u
}

func mustCreateCard(t *testing.T, r repo.Repos, userID uuid.UUID) domain.TravelCard {
	t.Helper()
	c, err := r.Cards.Create(context.Background(), cardFixture(userID))
	require.NoError(t, err, "create travel card")
	return c
}

func cardFixture(userID uuid.UUID) domain.TravelCard {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	return domain.TravelCard{
		UserID:       userID,
		Destination:  "Paris",
		StartDate:    start,
		EndDate:      end,
		DurationDays: domain.DurationDays(start, end),
		Status:       domain.DefaultStatus,
	}
}

func ptr[T any](v T) *T { return &v }
