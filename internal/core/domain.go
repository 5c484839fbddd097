package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/leozw/domainy/internal/status"
)

type Domain struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	DomainName string     `json:"domain_name" db:"domain_name"`
	Registrar  string     `json:"registrar" db:"registrar"`
	ExpiryDate *time.Time `json:"expiry_date" db:"expiry_date"`
	WhoisData  *string    `json:"whois_data" db:"whois_data"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// HasExpiryData reports whether the record has left the NO_EXPIRY_DATA state.
func (d *Domain) HasExpiryData() bool {
	return d.ExpiryDate != nil
}

// DomainWithStatus is a domain decorated with its status at read time.
type DomainWithStatus struct {
	Domain
	Status          status.Status `json:"status"`
	DaysUntilExpiry *int          `json:"days_until_expiry"`
}

func WithStatus(d *Domain, now time.Time) DomainWithStatus {
	c := status.Classify(d.ExpiryDate, d.WhoisData, now)
	return DomainWithStatus{
		Domain:          *d,
		Status:          c.Status,
		DaysUntilExpiry: c.DaysUntilExpiry,
	}
}

type AddDomainInput struct {
	DomainName string `json:"domain_name"`
	Registrar  string `json:"registrar"`
}

type UpdateDomainInput struct {
	ID         uuid.UUID        `json:"-"`
	DomainName Field[string]    `json:"domain_name"`
	Registrar  Field[string]    `json:"registrar"`
	ExpiryDate Field[time.Time] `json:"expiry_date"`
	WhoisData  Field[string]    `json:"whois_data"`
}

// DomainPatch is the set of column writes an update resolves to. UpdatedAt
// is always written.
type DomainPatch struct {
	DomainName Field[string]
	Registrar  Field[string]
	ExpiryDate Field[time.Time]
	WhoisData  Field[string]
	UpdatedAt  time.Time
}

// ApplyTo returns a copy of d with the patch applied.
func (p DomainPatch) ApplyTo(d Domain) Domain {
	if p.DomainName.IsSet() {
		d.DomainName = p.DomainName.Value
	}
	if p.Registrar.IsSet() {
		d.Registrar = p.Registrar.Value
	}
	p.ExpiryDate.Apply(&d.ExpiryDate)
	p.WhoisData.Apply(&d.WhoisData)
	d.UpdatedAt = p.UpdatedAt
	return d
}
