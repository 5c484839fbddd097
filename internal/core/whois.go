package core

import "time"

// WhoisResult is the outcome of one lookup. It is never stored on its own;
// the reconciler folds it into a Domain or hands it back to the caller.
type WhoisResult struct {
	DomainName   string     `json:"domain_name"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	Registrar    *string    `json:"registrar"`
	WhoisData    string     `json:"whois_data"`
	Success      bool       `json:"success"`
	IsRedemption bool       `json:"is_redemption"`
}
