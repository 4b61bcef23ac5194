package handlers

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/overdns/overdns/internal/api/models"
)

// GetOverride reports the pinned address of a domain, or 404.
func (h *Handler) GetOverride(c *gin.Context) {
	domain, ok := h.domainParam(c)
	if !ok {
		return
	}

	value, err := h.store.Execute(c.Request.Context(), "GET "+domain)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "override store unreachable"})
		return
	}
	if value == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no override for domain"})
		return
	}
	c.JSON(http.StatusOK, models.OverrideResponse{Domain: domain, IP: string(value)})
}

// PutOverride pins a domain to an IPv4 address.
//
// The store session collapses status replies to "no value", so a write is
// acknowledged as accepted rather than confirmed.
func (h *Handler) PutOverride(c *gin.Context) {
	domain, ok := h.domainParam(c)
	if !ok {
		return
	}

	var req models.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "body must carry an ip field"})
		return
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(req.IP))
	if err != nil || !addr.Is4() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "ip must be an IPv4 address"})
		return
	}

	if _, err := h.store.Execute(c.Request.Context(), "SET "+domain+" "+addr.String()); err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "override store unreachable"})
		return
	}
	c.JSON(http.StatusAccepted, models.OverrideResponse{Domain: domain, IP: addr.String()})
}

// DeleteOverride unpins a domain.
func (h *Handler) DeleteOverride(c *gin.Context) {
	domain, ok := h.domainParam(c)
	if !ok {
		return
	}

	if _, err := h.store.Execute(c.Request.Context(), "DEL "+domain); err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "override store unreachable"})
		return
	}
	c.Status(http.StatusNoContent)
}

// domainParam extracts and validates the :domain path parameter. The store
// protocol is line-oriented, so whitespace and control characters are
// rejected outright.
func (h *Handler) domainParam(c *gin.Context) (string, bool) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "override store not configured"})
		return "", false
	}

	domain := strings.TrimSpace(c.Param("domain"))
	if domain == "" || !validDomain(domain) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid domain"})
		return "", false
	}
	return domain, true
}

func validDomain(domain string) bool {
	for i := range len(domain) {
		b := domain[i]
		if b <= ' ' || b == 0x7F {
			return false
		}
	}
	return true
}
