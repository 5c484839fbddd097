package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/leozw/domainy/internal/api/middleware"
	"github.com/leozw/domainy/internal/core"
)

type domainResponse struct {
	Domain *core.DomainWithStatus `json:"domain"`
	Whois  *core.WhoisResult      `json:"whois,omitempty"`
}

func (h *Handler) ListDomains(c *gin.Context) {
	userID := middleware.UserID(c)

	domains, err := h.domains.GetDomains(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"domains": domains,
		"count":   len(domains),
	})
}

func (h *Handler) CreateDomain(c *gin.Context) {
	userID := middleware.UserID(c)

	var req core.AddDomainInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	domain, whois, err := h.domains.AddDomain(c.Request.Context(), userID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, domainResponse{Domain: domain, Whois: whois})
}

// UpdateDomain applies a partial update. A key left out of the body is
// untouched; a key sent as null clears the field.
func (h *Handler) UpdateDomain(c *gin.Context) {
	userID := middleware.UserID(c)

	domainID, ok := parseDomainID(c)
	if !ok {
		return
	}

	var req core.UpdateDomainInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	req.ID = domainID

	domain, err := h.domains.UpdateDomain(c.Request.Context(), userID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domainResponse{Domain: domain})
}

func (h *Handler) DeleteDomain(c *gin.Context) {
	userID := middleware.UserID(c)

	domainID, ok := parseDomainID(c)
	if !ok {
		return
	}

	if err := h.domains.DeleteDomain(c.Request.Context(), userID, domainID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) RefreshDomain(c *gin.Context) {
	userID := middleware.UserID(c)

	domainID, ok := parseDomainID(c)
	if !ok {
		return
	}

	domain, whois, err := h.domains.RefreshDomain(c.Request.Context(), userID, domainID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domainResponse{Domain: domain, Whois: whois})
}

func parseDomainID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid domain id")
		return uuid.Nil, false
	}
	return id, true
}
