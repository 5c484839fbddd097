package checker

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -source=provider.go -destination=mocks/mocks.go -package=mocks Provider

var ErrInvalidName = errors.New("invalid domain name")

// Record is what a WHOIS provider knows about a registered name.
type Record struct {
	Registrar    string     `json:"registrar"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	WhoisData    string     `json:"whois_data"`
	IsRedemption bool       `json:"is_redemption"`
}

// Provider looks a domain up in WHOIS. Implementations may be slow and
// may fail; callers are expected to bound ctx.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, domainName string) (*Record, error)
}
