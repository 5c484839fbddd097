package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/leozw/domainy/internal/core"
	"github.com/leozw/domainy/internal/status"
)

// DomainStore is the storage collaborator for domains. Every call that
// targets an existing record filters on both id and owner in one step.
type DomainStore interface {
	InsertDomain(ctx context.Context, d *core.Domain) (*core.Domain, error)
	ListDomainsByUser(ctx context.Context, userID uuid.UUID) ([]*core.Domain, error)
	GetDomain(ctx context.Context, id, userID uuid.UUID) (*core.Domain, error)
	UpdateDomainWhere(ctx context.Context, id, userID uuid.UUID, patch core.DomainPatch) (*core.Domain, error)
	DeleteDomainWhere(ctx context.Context, id, userID uuid.UUID) (int64, error)
	ListDomainsDueForRefresh(ctx context.Context, updatedBefore time.Time, exclude []uuid.UUID, limit int) ([]*core.Domain, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u *core.User) error
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
}

// StatusRecorder observes every status served to a reader.
type StatusRecorder interface {
	RecordStatus(s status.Status)
}
