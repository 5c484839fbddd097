package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leozw/domainy/internal/core"
	"github.com/leozw/domainy/internal/reconciler"
)

type DomainService struct {
	store      DomainStore
	reconciler *reconciler.Reconciler
	statuses   StatusRecorder
	logger     *zap.Logger
	now        func() time.Time
}

func NewDomainService(store DomainStore, rec *reconciler.Reconciler, statuses StatusRecorder, logger *zap.Logger) *DomainService {
	return &DomainService{
		store:      store,
		reconciler: rec,
		statuses:   statuses,
		logger:     logger.With(zap.String("component", "domain_service")),
		now:        time.Now,
	}
}

// AddDomain validates input, runs one WHOIS lookup and inserts the merged
// record. A failed lookup does not block creation; the caller sees it in the
// returned WhoisResult.
func (s *DomainService) AddDomain(ctx context.Context, userID uuid.UUID, in core.AddDomainInput) (*core.DomainWithStatus, *core.WhoisResult, error) {
	in.DomainName = strings.TrimSpace(in.DomainName)
	in.Registrar = strings.TrimSpace(in.Registrar)
	if in.DomainName == "" {
		return nil, nil, fmt.Errorf("%w: domain name is required", core.ErrValidation)
	}
	if in.Registrar == "" {
		return nil, nil, fmt.Errorf("%w: registrar is required", core.ErrValidation)
	}

	result := s.reconciler.LookupAndPopulate(ctx, in.DomainName)
	record := reconciler.MergeOnCreate(userID, in, result, s.now())

	saved, err := s.store.InsertDomain(ctx, record)
	if err != nil {
		return nil, nil, fmt.Errorf("insert domain: %w", err)
	}

	s.logger.Info("Domain added",
		zap.String("domain_id", saved.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Bool("whois_success", result.Success),
	)

	out := s.decorate(saved, s.now())
	return &out, result, nil
}

// GetDomains lists the user's domains, all classified at the same instant.
func (s *DomainService) GetDomains(ctx context.Context, userID uuid.UUID) ([]core.DomainWithStatus, error) {
	domains, err := s.store.ListDomainsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}

	now := s.now()
	out := make([]core.DomainWithStatus, 0, len(domains))
	for _, d := range domains {
		out = append(out, s.decorate(d, now))
	}
	return out, nil
}

func (s *DomainService) UpdateDomain(ctx context.Context, userID uuid.UUID, in core.UpdateDomainInput) (*core.DomainWithStatus, error) {
	if in.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: domain id is required", core.ErrValidation)
	}

	patch, err := reconciler.MergeOnUpdate(in, s.now())
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateDomainWhere(ctx, in.ID, userID, patch)
	if err != nil {
		return nil, fmt.Errorf("update domain: %w", err)
	}

	out := s.decorate(updated, s.now())
	return &out, nil
}

func (s *DomainService) DeleteDomain(ctx context.Context, userID, domainID uuid.UUID) error {
	if domainID == uuid.Nil {
		return fmt.Errorf("%w: domain id is required", core.ErrValidation)
	}

	affected, err := s.store.DeleteDomainWhere(ctx, domainID, userID)
	if err != nil {
		return fmt.Errorf("delete domain: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	s.logger.Info("Domain deleted",
		zap.String("domain_id", domainID.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}

// RefreshDomain re-runs WHOIS for an owned domain. The stored record is only
// touched when the lookup succeeds.
func (s *DomainService) RefreshDomain(ctx context.Context, userID, domainID uuid.UUID) (*core.DomainWithStatus, *core.WhoisResult, error) {
	existing, err := s.store.GetDomain(ctx, domainID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load domain: %w", err)
	}

	result := s.reconciler.LookupAndPopulate(ctx, existing.DomainName)
	patch, ok := reconciler.MergeOnRefresh(result, s.now())
	if !ok {
		out := s.decorate(existing, s.now())
		return &out, result, nil
	}

	updated, err := s.store.UpdateDomainWhere(ctx, domainID, userID, patch)
	if err != nil {
		return nil, nil, fmt.Errorf("update domain: %w", err)
	}

	out := s.decorate(updated, s.now())
	return &out, result, nil
}

// Lookup runs WHOIS without persisting anything.
func (s *DomainService) Lookup(ctx context.Context, domainName string) (*core.WhoisResult, error) {
	domainName = strings.TrimSpace(domainName)
	if domainName == "" {
		return nil, fmt.Errorf("%w: domain name is required", core.ErrValidation)
	}
	return s.reconciler.LookupAndPopulate(ctx, domainName), nil
}

// DueForRefresh lists domains not updated within maxAge, across all users,
// skipping the excluded ids.
func (s *DomainService) DueForRefresh(ctx context.Context, maxAge time.Duration, exclude []uuid.UUID, limit int) ([]*core.Domain, error) {
	return s.store.ListDomainsDueForRefresh(ctx, s.now().Add(-maxAge), exclude, limit)
}

func (s *DomainService) decorate(d *core.Domain, now time.Time) core.DomainWithStatus {
	out := core.WithStatus(d, now)
	if s.statuses != nil {
		s.statuses.RecordStatus(out.Status)
	}
	return out
}
