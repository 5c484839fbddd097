package checker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/leozw/domainy/internal/status"
)

var ErrStubFailure = errors.New("stub whois failure")

type stubEntry struct {
	registrar string
	expiry    *time.Time
	whoisData string
}

func date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// StubChecker answers from a fixed table of well-known test domains and
// returns a generic record for everything else.
type StubChecker struct {
	mu      sync.RWMutex
	entries map[string]stubEntry
	failing map[string]bool
	delay   time.Duration
}

func NewStubChecker() *StubChecker {
	return &StubChecker{
		entries: map[string]stubEntry{
			"example.com": {
				registrar: "Example Registrar Inc.",
				expiry:    date(2024, time.December, 31),
				whoisData: "Domain Name: EXAMPLE.COM\nRegistrar: Example Registrar Inc.\nExpiry Date: 2024-12-31T23:59:59Z\nStatus: clientTransferProhibited",
			},
			"expired-domain.com": {
				registrar: "Old Registrar LLC",
				expiry:    date(2023, time.January, 1),
				whoisData: "Domain Name: EXPIRED-DOMAIN.COM\nRegistrar: Old Registrar LLC\nExpiry Date: 2023-01-01T00:00:00Z\nStatus: expired",
			},
			"no-expiry.com": {
				registrar: "Unknown Registrar",
				whoisData: "Domain Name: NO-EXPIRY.COM\nRegistrar: Unknown Registrar\nStatus: active",
			},
			"redemption-domain.com": {
				registrar: "Grace Registrar",
				expiry:    date(2023, time.June, 1),
				whoisData: "Domain Name: REDEMPTION-DOMAIN.COM\nRegistrar: Grace Registrar\nExpiry Date: 2023-06-01T00:00:00Z\nStatus: redemptionPeriod",
			},
			"pending-delete.com": {
				registrar: "Grace Registrar",
				expiry:    date(2023, time.May, 1),
				whoisData: "Domain Name: PENDING-DELETE.COM\nRegistrar: Grace Registrar\nExpiry Date: 2023-05-01T00:00:00Z\nStatus: pending delete",
			},
		},
		failing: map[string]bool{},
	}
}

// WithDelay makes every lookup wait d (or until ctx is done) first.
func (s *StubChecker) WithDelay(d time.Duration) *StubChecker {
	s.delay = d
	return s
}

// FailFor makes lookups of the given names fail.
func (s *StubChecker) FailFor(names ...string) *StubChecker {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range names {
		s.failing[strings.ToLower(n)] = true
	}
	return s
}

func (s *StubChecker) Name() string { return "stub" }

func (s *StubChecker) Lookup(ctx context.Context, domainName string) (*Record, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("whois lookup aborted: %w", ctx.Err())
		case <-time.After(s.delay):
		}
	}

	key := strings.ToLower(strings.TrimSpace(domainName))

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failing[key] {
		return nil, fmt.Errorf("%w: %s", ErrStubFailure, domainName)
	}

	entry, ok := s.entries[key]
	if !ok {
		return &Record{
			Registrar: "Unknown Registrar",
			WhoisData: fmt.Sprintf("Domain Name: %s\nNo additional WHOIS data available", strings.ToUpper(domainName)),
		}, nil
	}

	record := &Record{
		Registrar:    entry.registrar,
		WhoisData:    entry.whoisData,
		IsRedemption: status.IsRedemption(entry.whoisData),
	}
	if entry.expiry != nil {
		t := *entry.expiry
		record.ExpiryDate = &t
	}
	return record, nil
}
