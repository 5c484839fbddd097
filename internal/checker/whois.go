package checker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

// WHOISChecker queries public WHOIS servers.
type WHOISChecker struct {
	client *whois.Client
}

func NewWHOISChecker(timeout time.Duration) *WHOISChecker {
	client := whois.NewClient()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &WHOISChecker{client: client}
}

func (w *WHOISChecker) Name() string { return "live" }

func (w *WHOISChecker) Lookup(ctx context.Context, domainName string) (*Record, error) {
	name, err := NormalizeName(domainName)
	if err != nil {
		return nil, err
	}

	type reply struct {
		raw string
		err error
	}
	done := make(chan reply, 1)
	go func() {
		raw, err := w.client.Whois(name)
		done <- reply{raw: raw, err: err}
	}()

	var raw string
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("whois lookup aborted: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("whois lookup failed: %w", r.err)
		}
		raw = r.raw
	}

	return parseRecord(raw)
}

func parseRecord(raw string) (*Record, error) {
	record := &Record{WhoisData: raw}

	result, err := whoisparser.Parse(raw)
	if err != nil {
		// Some registries answer in formats the parser does not know; the
		// raw text may still carry an expiry line.
		if t, ok := extractExpiryDate(raw); ok {
			record.ExpiryDate = &t
			return record, nil
		}
		return nil, fmt.Errorf("whois parse failed: %w", err)
	}

	if result.Registrar != nil {
		record.Registrar = result.Registrar.Name
	}

	if result.Domain != nil {
		if result.Domain.ExpirationDate != "" {
			if t, err := parseWhoisDate(result.Domain.ExpirationDate); err == nil {
				record.ExpiryDate = &t
			}
		}
		record.IsRedemption = hasRedemptionStatus(result.Domain.Status)
	}

	if record.ExpiryDate == nil {
		if t, ok := extractExpiryDate(raw); ok {
			record.ExpiryDate = &t
		}
	}

	return record, nil
}

func hasRedemptionStatus(statuses []string) bool {
	for _, s := range statuses {
		s = strings.ToLower(strings.ReplaceAll(s, " ", ""))
		if strings.Contains(s, "redemption") || strings.Contains(s, "pendingdelete") {
			return true
		}
	}
	return false
}

var whoisDateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.0Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02 15:04:05",
	"2006.01.02",
	"2006/01/02",
}

func parseWhoisDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	for _, format := range whoisDateFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

var expiryPrefixes = []string{
	"registry expiry date:",
	"registrar registration expiration date:",
	"expiry date:",
	"expiration date:",
	"expires:",
	"expiry:",
	"paid-till:",
}

func extractExpiryDate(whoisData string) (time.Time, bool) {
	for _, line := range strings.Split(whoisData, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		for _, prefix := range expiryPrefixes {
			if !strings.HasPrefix(lower, prefix) {
				continue
			}
			if t, err := parseWhoisDate(line[len(prefix):]); err == nil {
				return t, true
			}
		}
	}

	return time.Time{}, false
}
