package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/diagnosis/visitor-hosts/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool connects to TEST_DATABASE_URL; the tests are skipped without it.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, EnsureSchema(ctx, pool))
	return pool
}

func TestHostRepoRoundTrip(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewHostRepo(pool)

	ext := "ext-" + uuid.NewString()
	phone := "97433445566"
	location := domain.LocationMarina50
	created, err := repo.Create(ctx, &domain.CreateHostRequest{
		ExternalID: ext,
		Name:       "Dana Reyes",
		Company:    "Acme",
		Phone:      &phone,
		Location:   &location,
		Status:     domain.HostActive,
	})
	require.NoError(t, err)
	assert.Equal(t, ext, *created.ExternalID)
	assert.Nil(t, created.Email)
	assert.Equal(t, &location, created.Location)

	found, err := repo.FindByExternalIDs(ctx, []string{ext, "ext-missing-" + uuid.NewString()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)

	updated := "201098765432"
	require.NoError(t, repo.UpdatePhone(ctx, created.ID, &updated))
	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got.PhoneValue())

	missing, err := repo.FindByID(ctx, -1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUsersRepoLookups(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	hosts := NewHostRepo(pool)
	users := NewUsersRepo(pool)

	host, err := hosts.Create(ctx, &domain.CreateHostRequest{ExternalID: "ext-" + uuid.NewString(), Name: "Acme", Company: "Acme", Status: domain.HostActive})
	require.NoError(t, err)

	email := fmt.Sprintf("owner-%d@acme.com", time.Now().UnixNano())
	u, err := users.Create(ctx, &domain.CreateUserRequest{Email: email, Name: "Owner", Role: domain.RoleHost, HostID: &host.ID}, "hash")
	require.NoError(t, err)

	byEmail, err := users.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byHost, err := users.FindByHostID(ctx, host.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byHost.ID)

	none, err := users.FindByEmail(ctx, "nobody-"+uuid.NewString()+"@acme.com")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestResetRepoConsumesOnce(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUsersRepo(pool)
	resets := NewResetRepo(pool)

	u, err := users.Create(ctx, &domain.CreateUserRequest{Email: "reset-" + uuid.NewString() + "@acme.com", Name: "R", Role: domain.RoleHost}, "hash")
	require.NoError(t, err)

	token := uuid.NewString()
	require.NoError(t, resets.CreatePasswordReset(ctx, u.ID, token, time.Now().Add(72*time.Hour)))

	id, err := resets.ConsumePasswordReset(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	id, err = resets.ConsumePasswordReset(ctx, token)
	require.NoError(t, err)
	assert.Zero(t, id)
}
