package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// WhoisLookup runs a lookup without storing anything.
func (h *Handler) WhoisLookup(c *gin.Context) {
	result, err := h.domains.Lookup(c.Request.Context(), c.Query("domain"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
