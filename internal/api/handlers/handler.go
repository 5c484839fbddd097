package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leozw/domainy/internal/core"
)

type DomainService interface {
	AddDomain(ctx context.Context, userID uuid.UUID, in core.AddDomainInput) (*core.DomainWithStatus, *core.WhoisResult, error)
	GetDomains(ctx context.Context, userID uuid.UUID) ([]core.DomainWithStatus, error)
	UpdateDomain(ctx context.Context, userID uuid.UUID, in core.UpdateDomainInput) (*core.DomainWithStatus, error)
	DeleteDomain(ctx context.Context, userID, domainID uuid.UUID) error
	RefreshDomain(ctx context.Context, userID, domainID uuid.UUID) (*core.DomainWithStatus, *core.WhoisResult, error)
	Lookup(ctx context.Context, domainName string) (*core.WhoisResult, error)
}

type AuthService interface {
	Register(ctx context.Context, in core.RegisterInput) (*core.AuthResponse, error)
	Login(ctx context.Context, in core.LoginInput) (*core.AuthResponse, error)
}

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	domains      DomainService
	auth         AuthService
	dependencies map[string]Pinger
	logger       *zap.Logger
	now          func() time.Time
}

func NewHandler(domains DomainService, auth AuthService, dependencies map[string]Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		domains:      domains,
		auth:         auth,
		dependencies: dependencies,
		logger:       logger,
		now:          time.Now,
	}
}
