// Package reconciler decides how WHOIS lookups fold into stored domain
// records. Provider failures never surface as errors here: they come back
// as a WhoisResult with Success=false so domain creation can carry on.
package reconciler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leozw/domainy/internal/checker"
	"github.com/leozw/domainy/internal/core"
)

// LookupRecorder receives one observation per provider call.
type LookupRecorder interface {
	RecordLookup(provider string, success bool, duration time.Duration)
}

type Reconciler struct {
	provider checker.Provider
	timeout  time.Duration
	recorder LookupRecorder
	logger   *zap.Logger
}

func New(provider checker.Provider, timeout time.Duration, recorder LookupRecorder, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		provider: provider,
		timeout:  timeout,
		recorder: recorder,
		logger:   logger.With(zap.String("component", "reconciler")),
	}
}

// LookupAndPopulate calls the provider exactly once, bounded by the
// configured timeout.
func (r *Reconciler) LookupAndPopulate(ctx context.Context, domainName string) *core.WhoisResult {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	record, err := r.provider.Lookup(ctx, domainName)
	if err == nil && record == nil {
		err = fmt.Errorf("provider %s returned no record", r.provider.Name())
	}
	if r.recorder != nil {
		r.recorder.RecordLookup(r.provider.Name(), err == nil, time.Since(start))
	}

	if err != nil {
		r.logger.Warn("WHOIS lookup failed",
			zap.String("domain", domainName),
			zap.String("provider", r.provider.Name()),
			zap.Error(err),
		)
		return &core.WhoisResult{
			DomainName: domainName,
			WhoisData:  fmt.Sprintf("WHOIS lookup failed: %v", err),
			Success:    false,
		}
	}

	result := &core.WhoisResult{
		DomainName:   domainName,
		ExpiryDate:   record.ExpiryDate,
		WhoisData:    record.WhoisData,
		Success:      true,
		IsRedemption: record.IsRedemption,
	}
	if record.Registrar != "" {
		registrar := record.Registrar
		result.Registrar = &registrar
	}
	return result
}

// MergeOnCreate builds the record to insert for a new domain. A registrar
// reported by a successful lookup takes precedence over the user's value;
// expiry and raw text come only from a successful lookup.
func MergeOnCreate(userID uuid.UUID, in core.AddDomainInput, result *core.WhoisResult, now time.Time) *core.Domain {
	d := &core.Domain{
		ID:         uuid.New(),
		UserID:     userID,
		DomainName: in.DomainName,
		Registrar:  in.Registrar,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if result == nil || !result.Success {
		return d
	}

	if result.Registrar != nil && strings.TrimSpace(*result.Registrar) != "" {
		d.Registrar = *result.Registrar
	}
	if result.ExpiryDate != nil {
		expiry := *result.ExpiryDate
		d.ExpiryDate = &expiry
	}
	whois := result.WhoisData
	d.WhoisData = &whois

	return d
}

// MergeOnUpdate turns a user edit into the patch storage applies. Fields
// the caller left out stay Unchanged; updated_at is always bumped.
func MergeOnUpdate(in core.UpdateDomainInput, now time.Time) (core.DomainPatch, error) {
	if err := requireText("domain_name", in.DomainName); err != nil {
		return core.DomainPatch{}, err
	}
	if err := requireText("registrar", in.Registrar); err != nil {
		return core.DomainPatch{}, err
	}

	return core.DomainPatch{
		DomainName: in.DomainName,
		Registrar:  in.Registrar,
		ExpiryDate: in.ExpiryDate,
		WhoisData:  in.WhoisData,
		UpdatedAt:  now,
	}, nil
}

// MergeOnRefresh returns the patch for a fresh lookup of an existing
// record. ok is false when the lookup failed, in which case nothing should
// be written.
func MergeOnRefresh(result *core.WhoisResult, now time.Time) (patch core.DomainPatch, ok bool) {
	if result == nil || !result.Success {
		return core.DomainPatch{}, false
	}

	patch = core.DomainPatch{
		WhoisData: core.Set(result.WhoisData),
		UpdatedAt: now,
	}
	if result.ExpiryDate != nil {
		patch.ExpiryDate = core.Set(*result.ExpiryDate)
	}
	if result.Registrar != nil && strings.TrimSpace(*result.Registrar) != "" {
		patch.Registrar = core.Set(*result.Registrar)
	}
	return patch, true
}

func requireText(name string, f core.Field[string]) error {
	switch {
	case f.IsClear():
		return fmt.Errorf("%w: %s cannot be null", core.ErrValidation, name)
	case f.IsSet() && strings.TrimSpace(f.Value) == "":
		return fmt.Errorf("%w: %s cannot be empty", core.ErrValidation, name)
	}
	return nil
}
