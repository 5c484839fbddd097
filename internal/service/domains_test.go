package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/leozw/domainy/internal/checker"
	"github.com/leozw/domainy/internal/core"
	"github.com/leozw/domainy/internal/reconciler"
	"github.com/leozw/domainy/internal/status"
	"github.com/leozw/domainy/internal/storage/memory"
)

type statusCounter map[status.Status]int

func (c statusCounter) RecordStatus(s status.Status) { c[s]++ }

type DomainServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	stub     *checker.StubChecker
	statuses statusCounter
	svc      *DomainService
	userID   uuid.UUID
	otherID  uuid.UUID
	now      time.Time
}

func TestDomainServiceSuite(t *testing.T) {
	suite.Run(t, new(DomainServiceSuite))
}

func (s *DomainServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.stub = checker.NewStubChecker().FailFor("down.example")
	s.statuses = statusCounter{}
	rec := reconciler.New(s.stub, time.Second, nil, zap.NewNop())
	s.svc = NewDomainService(s.store, rec, s.statuses, zap.NewNop())
	s.now = time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	s.svc.now = func() time.Time { return s.now }

	s.userID = s.createUser("owner@example.com")
	s.otherID = s.createUser("other@example.com")
}

func (s *DomainServiceSuite) createUser(email string) uuid.UUID {
	id := uuid.New()
	s.Require().NoError(s.store.CreateUser(s.ctx, &core.User{ID: id, Email: email, PasswordHash: "x"}))
	return id
}

func (s *DomainServiceSuite) TestAddDomain() {
	s.Run("populates whois fields from a successful lookup", func() {
		d, res, err := s.svc.AddDomain(s.ctx, s.userID, core.AddDomainInput{DomainName: "example.com", Registrar: "GoDaddy"})
		s.Require().NoError(err)

		s.True(res.Success)
		s.Equal("example.com", d.DomainName)
		s.Equal("Example Registrar Inc.", d.Registrar)
		s.Equal(s.userID, d.UserID)
		s.Require().NotNil(d.ExpiryDate)
		s.Require().NotNil(d.WhoisData)
		s.Contains(*d.WhoisData, "EXAMPLE.COM")
		s.Equal(status.Orange, d.Status)
		s.Require().NotNil(d.DaysUntilExpiry)
		s.Equal(11, *d.DaysUntilExpiry)
	})

	s.Run("failed lookup still creates an unknown domain", func() {
		d, res, err := s.svc.AddDomain(s.ctx, s.userID, core.AddDomainInput{DomainName: "down.example", Registrar: "Mine"})
		s.Require().NoError(err)

		s.False(res.Success)
		s.Contains(res.WhoisData, "WHOIS lookup failed")
		s.Equal("Mine", d.Registrar)
		s.Nil(d.ExpiryDate)
		s.Nil(d.WhoisData)
		s.Equal(status.Unknown, d.Status)
		s.Nil(d.DaysUntilExpiry)
	})

	s.Run("rejects blank inputs before touching storage", func() {
		_, _, err := s.svc.AddDomain(s.ctx, s.userID, core.AddDomainInput{DomainName: " ", Registrar: "R"})
		s.ErrorIs(err, core.ErrValidation)
		_, _, err = s.svc.AddDomain(s.ctx, s.userID, core.AddDomainInput{DomainName: "x.com", Registrar: ""})
		s.ErrorIs(err, core.ErrValidation)
	})

	s.Run("unknown user cannot own domains", func() {
		_, _, err := s.svc.AddDomain(s.ctx, uuid.New(), core.AddDomainInput{DomainName: "x.com", Registrar: "R"})
		s.ErrorIs(err, core.ErrNotFound)
	})
}

func (s *DomainServiceSuite) TestGetDomainsClassifiesEachRecord() {
	for _, name := range []string{"example.com", "expired-domain.com", "redemption-domain.com", "no-expiry.com"} {
		_, _, err := s.svc.AddDomain(s.ctx, s.userID, core.AddDomainInput{DomainName: name, Registrar: "R"})
		s.Require().NoError(err)
	}
	_, _, err := s.svc.AddDomain(s.ctx, s.otherID, core.AddDomainInput{DomainName: "theirs.com", Registrar: "R"})
	s.Require().NoError(err)

	s.statuses = statusCounter{}
	s.svc.statuses = s.statuses

	list, err := s.svc.GetDomains(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Require().Len(list, 4)

	got := map[string]status.Status{}
	for _, d := range list {
		got[d.DomainName] = d.Status
	}
	s.Equal(map[string]status.Status{
		"example.com":           status.Orange,
		"expired-domain.com":    status.Red,
		"redemption-domain.com": status.Blue,
		"no-expiry.com":         status.Unknown,
	}, got)
	s.Equal(4, s.statuses[status.Orange]+s.statuses[status.Red]+s.statuses[status.Blue]+s.statuses[status.Unknown])
}

func (s *DomainServiceSuite) TestStatusIsRecomputedOnRead() {
	_, _, err := s.svc.AddDomain(s.ctx, s.userID, core.AddDomainInput{DomainName: "example.com", Registrar: "R"})
	s.Require().NoError(err)

	list, err := s.svc.GetDomains(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(status.Orange, list[0].Status)

	s.now = s.now.AddDate(0, 0, 60)
	list, err = s.svc.GetDomains(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(status.Red, list[0].Status)
}

func (s *DomainServiceSuite) TestUpdateDomain() {
	d, _, err := s.svc.AddDomain(s.ctx, s.userID, core.AddDomainInput{DomainName: "example.com", Registrar: "R"})
	s.Require().NoError(err)

	s.Run("only provided fields change and updated_at moves", func() {
		s.now = s.now.Add(time.Hour)
		updated, err := s.svc.UpdateDomain(s.ctx, s.userID, core.UpdateDomainInput{ID: d.ID, Registrar: core.Set("X")})
		s.Require().NoError(err)

		s.Equal("X", updated.Registrar)
		s.Equal("example.com", updated.DomainName)
		s.Equal(d.ExpiryDate, updated.ExpiryDate)
		s.Equal(d.WhoisData, updated.WhoisData)
		s.True(updated.UpdatedAt.After(d.UpdatedAt))
		s.Equal(d.CreatedAt, updated.CreatedAt)
	})

	s.Run("clearing expiry returns the domain to unknown", func() {
		updated, err := s.svc.UpdateDomain(s.ctx, s.userID, core.UpdateDomainInput{ID: d.ID, ExpiryDate: core.Cleared[time.Time]()})
		s.Require().NoError(err)
		s.Nil(updated.ExpiryDate)
		s.Equal(status.Unknown, updated.Status)
	})

	s.Run("manual expiry moves the domain back to having data", func() {
		expiry := s.now.AddDate(0, 0, 90)
		updated, err := s.svc.UpdateDomain(s.ctx, s.userID, core.UpdateDomainInput{ID: d.ID, ExpiryDate: core.Set(expiry)})
		s.Require().NoError(err)
		s.Equal(status.Green, updated.Status)
	})

	s.Run("another user's domain looks missing", func() {
		_, err := s.svc.UpdateDomain(s.ctx, s.otherID, core.UpdateDomainInput{ID: d.ID, DomainName: core.Set("mine.com")})
		s.ErrorIs(err, core.ErrNotFound)
	})

	s.Run("validation errors", func() {
		_, err := s.svc.UpdateDomain(s.ctx, s.userID, core.UpdateDomainInput{ID: d.ID, Registrar: core.Cleared[string]()})
		s.ErrorIs(err, core.ErrValidation)
		_, err = s.svc.UpdateDomain(s.ctx, s.userID, core.UpdateDomainInput{})
		s.ErrorIs(err, core.ErrValidation)
	})
}

func (s *DomainServiceSuite) TestDeleteDomain() {
	d, _, err := s.svc.AddDomain(s.ctx, s.userID, core.AddDomainInput{DomainName: "example.com", Registrar: "R"})
	s.Require().NoError(err)

	s.ErrorIs(s.svc.DeleteDomain(s.ctx, s.otherID, d.ID), core.ErrNotFound)
	s.Require().NoError(s.svc.DeleteDomain(s.ctx, s.userID, d.ID))
	s.ErrorIs(s.svc.DeleteDomain(s.ctx, s.userID, d.ID), core.ErrNotFound)
	s.ErrorIs(s.svc.DeleteDomain(s.ctx, s.userID, uuid.Nil), core.ErrValidation)
}

func (s *DomainServiceSuite) TestRefreshDomain() {
	s.Run("successful refresh writes new whois data", func() {
		d, _, err := s.svc.AddDomain(s.ctx, s.userID, core.AddDomainInput{DomainName: "example.com", Registrar: "R"})
		s.Require().NoError(err)
		_, err = s.svc.UpdateDomain(s.ctx, s.userID, core.UpdateDomainInput{ID: d.ID, ExpiryDate: core.Cleared[time.Time](), WhoisData: core.Cleared[string]()})
		s.Require().NoError(err)

		s.now = s.now.Add(time.Minute)
		refreshed, res, err := s.svc.RefreshDomain(s.ctx, s.userID, d.ID)
		s.Require().NoError(err)
		s.True(res.Success)
		s.Require().NotNil(refreshed.ExpiryDate)
		s.Require().NotNil(refreshed.WhoisData)
		s.Equal(s.now, refreshed.UpdatedAt)
	})

	s.Run("failed refresh leaves the record untouched", func() {
		d, _, err := s.svc.AddDomain(s.ctx, s.userID, core.AddDomainInput{DomainName: "down.example", Registrar: "R"})
		s.Require().NoError(err)
		_, err = s.svc.UpdateDomain(s.ctx, s.userID, core.UpdateDomainInput{ID: d.ID, WhoisData: core.Set("manual notes")})
		s.Require().NoError(err)
		before, err := s.store.GetDomain(s.ctx, d.ID, s.userID)
		s.Require().NoError(err)

		s.now = s.now.Add(time.Hour)
		_, res, err := s.svc.RefreshDomain(s.ctx, s.userID, d.ID)
		s.Require().NoError(err)
		s.False(res.Success)

		after, err := s.store.GetDomain(s.ctx, d.ID, s.userID)
		s.Require().NoError(err)
		s.Equal(before, after)
	})

	s.Run("cannot refresh someone else's domain", func() {
		d, _, err := s.svc.AddDomain(s.ctx, s.userID, core.AddDomainInput{DomainName: "example.com", Registrar: "R"})
		s.Require().NoError(err)
		_, _, err = s.svc.RefreshDomain(s.ctx, s.otherID, d.ID)
		s.ErrorIs(err, core.ErrNotFound)
	})
}

func (s *DomainServiceSuite) TestLookup() {
	res, err := s.svc.Lookup(s.ctx, "no-expiry.com")
	s.Require().NoError(err)
	s.True(res.Success)
	s.Nil(res.ExpiryDate)

	_, err = s.svc.Lookup(s.ctx, "")
	s.ErrorIs(err, core.ErrValidation)

	list, err := s.svc.GetDomains(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *DomainServiceSuite) TestDueForRefresh() {
	_, _, err := s.svc.AddDomain(s.ctx, s.userID, core.AddDomainInput{DomainName: "example.com", Registrar: "R"})
	s.Require().NoError(err)

	due, err := s.svc.DueForRefresh(s.ctx, 24*time.Hour, nil, 10)
	s.Require().NoError(err)
	s.Empty(due)

	s.now = s.now.Add(25 * time.Hour)
	due, err = s.svc.DueForRefresh(s.ctx, 24*time.Hour, nil, 10)
	s.Require().NoError(err)
	s.Len(due, 1)
}
