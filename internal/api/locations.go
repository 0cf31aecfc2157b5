package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/romangod6/dmv-sitemap/internal/pages"
	"github.com/romangod6/dmv-sitemap/internal/registry"
)

const defaultNearbyLimit = 5

// ListLocations lists the service areas, optionally filtered with ?state=.
func (h *Handler) ListLocations(c *gin.Context) {
	reg := h.generator.Registry()

	var records []models.LocationRecord
	if state := c.Query("state"); state != "" {
		records = reg.ByState(state)
	} else {
		records = reg.Records()
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   records,
		"count":  len(records),
		"states": reg.States(),
	})
}

func (h *Handler) GetLocation(c *gin.Context) {
	rec, err := h.generator.Registry().Find(c.Param("slug"))
	if err != nil {
		h.locationError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *Handler) GetLocationByZip(c *gin.Context) {
	rec, err := h.generator.Registry().FindByZip(c.Param("zip"))
	if err != nil {
		h.locationError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *Handler) GetNearbyLocations(c *gin.Context) {
	limit := defaultNearbyLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit"})
			return
		}
		limit = parsed
	}

	nearby, err := h.generator.Registry().Nearby(c.Param("slug"), limit)
	if err != nil {
		h.locationError(c, err)
		return
	}

	c.JSON(http.StatusOK, nearby)
}

func (h *Handler) GetLocationPage(c *gin.Context) {
	page, err := pages.BuildLocationPage(h.options.Site, h.generator.Registry(), c.Param("slug"))
	if err != nil {
		h.locationError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *Handler) locationError(c *gin.Context, err error) {
	if errors.Is(err, registry.ErrLocationNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Location not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}
