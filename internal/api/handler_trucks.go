package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"streetfeast-web/internal/backend"
	"streetfeast-web/internal/profile"
	"streetfeast-web/internal/schedule"
	"streetfeast-web/internal/selection"
	"streetfeast-web/internal/truck"
)

// GetTruckProfile handles GET /api/trucks/:truck_id and GET /truck/:truck_id.
// Optional date and occurrence query parameters apply a selection before rendering.
func (h *Handler) GetTruckProfile(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}
	if !h.applySelection(c, session) {
		return
	}

	view, err := session.View(h.now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to render truck"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetTruckStatus handles GET /api/trucks/:truck_id/status.
func (h *Handler) GetTruckStatus(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}

	status, err := session.StatusView(h.now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve status"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetTruckMenu handles GET /api/trucks/:truck_id/menu.
func (h *Handler) GetTruckMenu(c *gin.Context) {
	session, ok := h.loadSession(c)
	if !ok {
		return
	}
	if !h.applySelection(c, session) {
		return
	}

	menu, err := session.MenuView()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve menu"})
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (h *Handler) loadSession(c *gin.Context) (*profile.Session, bool) {
	truckID, err := strconv.ParseInt(c.Param("truck_id"), 10, 64)
	if err != nil || truckID <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid truck ID"})
		return nil, false
	}

	opts := h.profile
	opts.Now = h.now
	session := profile.NewSession(h.trucks, opts)

	if err := session.Load(c.Request.Context(), truckID); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "truck not found"})
			return nil, false
		}
		log.WithField("truck_id", truckID).Errorf("Failed to load truck: %v", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "failed to load truck information"})
		return nil, false
	}
	return session, true
}

// applySelection picks the date, then the occurrence, from the query string.
func (h *Handler) applySelection(c *gin.Context, session *profile.Session) bool {
	if raw := c.Query("date"); raw != "" {
		day, err := schedule.ParseDate(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return false
		}
		if err := session.SelectDate(day); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": selectionMessage(err)})
			return false
		}
	}

	if raw := c.Query("occurrence"); raw != "" {
		if err := session.SelectOccurrence(truck.ID(raw)); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": selectionMessage(err)})
			return false
		}
	}
	return true
}

func selectionMessage(err error) string {
	switch {
	case errors.Is(err, selection.ErrDateOutOfWindow):
		return "date is outside the schedule window"
	case errors.Is(err, selection.ErrOccurrenceNotInDate):
		return "occurrence is not on the selected date"
	case errors.Is(err, selection.ErrNoDateSelected):
		return "no date selected"
	default:
		return err.Error()
	}
}
