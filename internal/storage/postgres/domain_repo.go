package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/leozw/domainy/internal/core"
)

const foreignKeyViolation = "23503"

const domainColumns = `id, user_id, domain_name, registrar, expiry_date, whois_data, created_at, updated_at`

func (db *DB) InsertDomain(ctx context.Context, d *core.Domain) (*core.Domain, error) {
	query := `
        INSERT INTO domains (
            id, user_id, domain_name, registrar, expiry_date,
            whois_data, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8
        )
        RETURNING ` + domainColumns

	var saved core.Domain
	err := db.GetContext(ctx, &saved, query,
		d.ID, d.UserID, d.DomainName, d.Registrar,
		d.ExpiryDate, d.WhoisData, d.CreatedAt, d.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (db *DB) ListDomainsByUser(ctx context.Context, userID uuid.UUID) ([]*core.Domain, error) {
	domains := []*core.Domain{}
	query := `
        SELECT ` + domainColumns + `
        FROM domains
        WHERE user_id = $1
        ORDER BY created_at, id`

	err := db.SelectContext(ctx, &domains, query, userID)
	return domains, err
}

func (db *DB) GetDomain(ctx context.Context, id, userID uuid.UUID) (*core.Domain, error) {
	var d core.Domain
	query := `SELECT ` + domainColumns + ` FROM domains WHERE id = $1 AND user_id = $2`

	err := db.GetContext(ctx, &d, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDomainWhere writes only the columns the patch touches, scoped to
// the owner in the same statement.
func (db *DB) UpdateDomainWhere(ctx context.Context, id, userID uuid.UUID, patch core.DomainPatch) (*core.Domain, error) {
	sets, args := patchAssignments(patch)
	args = append(args, id, userID)

	query := fmt.Sprintf(`
        UPDATE domains SET %s
        WHERE id = $%d AND user_id = $%d
        RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), domainColumns)

	var d core.Domain
	err := db.GetContext(ctx, &d, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func patchAssignments(patch core.DomainPatch) ([]string, []interface{}) {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.DomainName.IsSet() {
		add("domain_name", patch.DomainName.Value)
	}
	if patch.Registrar.IsSet() {
		add("registrar", patch.Registrar.Value)
	}
	if patch.ExpiryDate.IsPresent() {
		add("expiry_date", patch.ExpiryDate.Ptr())
	}
	if patch.WhoisData.IsPresent() {
		add("whois_data", patch.WhoisData.Ptr())
	}
	add("updated_at", patch.UpdatedAt)

	return sets, args
}

func (db *DB) DeleteDomainWhere(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	query := `DELETE FROM domains WHERE id = $1 AND user_id = $2`
	result, err := db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListDomainsDueForRefresh pages past the excluded ids so domains that are
// already queued do not hold the oldest slots of every batch.
func (db *DB) ListDomainsDueForRefresh(ctx context.Context, updatedBefore time.Time, exclude []uuid.UUID, limit int) ([]*core.Domain, error) {
	ids := make([]string, len(exclude))
	for i, id := range exclude {
		ids[i] = id.String()
	}

	domains := []*core.Domain{}
	query := `
        SELECT ` + domainColumns + `
        FROM domains
        WHERE updated_at < $1
        AND NOT (id = ANY($2::uuid[]))
        ORDER BY updated_at
        LIMIT NULLIF($3::int, 0)`

	err := db.SelectContext(ctx, &domains, query, updatedBefore, pq.Array(ids), limit)
	return domains, err
}
