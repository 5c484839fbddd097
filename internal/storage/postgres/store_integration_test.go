//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/leozw/domainy/internal/config"
	"github.com/leozw/domainy/internal/core"
)

type StoreSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	db        *DB
}

func TestStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration tests in short mode")
	}
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("domainy"),
		tcpostgres.WithUsername("domainy"),
		tcpostgres.WithPassword("domainy"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = NewConnection(config.DatabaseConfig{URL: dsn, MaxConnections: 5, MaxIdleConns: 1})
	s.Require().NoError(err)
	s.Require().NoError(s.db.Migrate())
	s.Require().NoError(s.db.Migrate(), "second migrate is a no-op")
}

func (s *StoreSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *StoreSuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx, `TRUNCATE users CASCADE`)
	s.Require().NoError(err)
}

func (s *StoreSuite) newUser(email string) *core.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &core.User{ID: uuid.New(), Email: email, PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}
	s.Require().NoError(s.db.CreateUser(s.ctx, u))
	return u
}

func (s *StoreSuite) newDomain(userID uuid.UUID, name string, created time.Time) *core.Domain {
	whois := "raw " + name
	expiry := created.AddDate(1, 0, 0)
	d, err := s.db.InsertDomain(s.ctx, &core.Domain{
		ID: uuid.New(), UserID: userID, DomainName: name, Registrar: "R",
		ExpiryDate: &expiry, WhoisData: &whois, CreatedAt: created, UpdatedAt: created,
	})
	s.Require().NoError(err)
	return d
}

func (s *StoreSuite) TestUsers() {
	u := s.newUser("a@example.com")

	got, err := s.db.GetUserByEmail(s.ctx, "a@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, got.ID)
	s.Equal("hash", got.PasswordHash)

	err = s.db.CreateUser(s.ctx, &core.User{ID: uuid.New(), Email: "a@example.com", PasswordHash: "x"})
	s.ErrorIs(err, core.ErrConflict)

	_, err = s.db.GetUserByEmail(s.ctx, "missing@example.com")
	s.ErrorIs(err, core.ErrNotFound)
}

func (s *StoreSuite) TestDomainLifecycle() {
	owner := s.newUser("owner@example.com")
	other := s.newUser("other@example.com")
	base := time.Now().UTC().Truncate(time.Microsecond)

	second := s.newDomain(owner.ID, "b.com", base.Add(time.Minute))
	first := s.newDomain(owner.ID, "a.com", base)
	s.newDomain(other.ID, "c.com", base)

	list, err := s.db.ListDomainsByUser(s.ctx, owner.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(first.ID, list[0].ID)
	s.Equal(second.ID, list[1].ID)

	bumped := base.Add(time.Hour)
	updated, err := s.db.UpdateDomainWhere(s.ctx, first.ID, owner.ID, core.DomainPatch{
		Registrar:  core.Set("X"),
		ExpiryDate: core.Cleared[time.Time](),
		UpdatedAt:  bumped,
	})
	s.Require().NoError(err)
	s.Equal("X", updated.Registrar)
	s.Nil(updated.ExpiryDate)
	s.Require().NotNil(updated.WhoisData)
	s.Equal("raw a.com", *updated.WhoisData)
	s.True(bumped.Equal(updated.UpdatedAt))

	_, err = s.db.UpdateDomainWhere(s.ctx, first.ID, other.ID, core.DomainPatch{Registrar: core.Set("Y"), UpdatedAt: bumped})
	s.ErrorIs(err, core.ErrNotFound)

	n, err := s.db.DeleteDomainWhere(s.ctx, first.ID, other.ID)
	s.Require().NoError(err)
	s.Zero(n)

	n, err = s.db.DeleteDomainWhere(s.ctx, first.ID, owner.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	_, err = s.db.GetDomain(s.ctx, first.ID, owner.ID)
	s.ErrorIs(err, core.ErrNotFound)
}

func (s *StoreSuite) TestInsertForUnknownUser() {
	_, err := s.db.InsertDomain(s.ctx, &core.Domain{
		ID: uuid.New(), UserID: uuid.New(), DomainName: "x.com", Registrar: "R",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	s.ErrorIs(err, core.ErrNotFound)
}

func (s *StoreSuite) TestDueForRefreshAndCascade() {
	u := s.newUser("due@example.com")
	old := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Microsecond)
	s.newDomain(u.ID, "old.com", old)
	s.newDomain(u.ID, "fresh.com", time.Now().UTC())

	due, err := s.db.ListDomainsDueForRefresh(s.ctx, time.Now().Add(-24*time.Hour), nil, 10)
	s.Require().NoError(err)
	s.Require().Len(due, 1)
	s.Equal("old.com", due[0].DomainName)

	skipped, err := s.db.ListDomainsDueForRefresh(s.ctx, time.Now().Add(-24*time.Hour), []uuid.UUID{due[0].ID}, 10)
	s.Require().NoError(err)
	s.Empty(skipped)

	_, err = s.db.ExecContext(s.ctx, `DELETE FROM users WHERE id = $1`, u.ID)
	s.Require().NoError(err)

	list, err := s.db.ListDomainsByUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Empty(list)
}
