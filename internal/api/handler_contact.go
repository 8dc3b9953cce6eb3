package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"streetfeast-web/internal/model"
)

type contactRequest struct {
	Name    string `json:"name" binding:"required,max=128"`
	Email   string `json:"email" binding:"required,email,max=256"`
	Message string `json:"message" binding:"required,max=5000"`
}

// PostContact handles POST /api/contact.
func (h *Handler) PostContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	msg := model.ContactMessage{
		ID:       uuid.New().String(),
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Message:  strings.TrimSpace(req.Message),
		RemoteIP: c.ClientIP(),
	}
	if msg.Name == "" || msg.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.store.SaveContactMessage(c.Request.Context(), &msg); err != nil {
		log.Errorf("Failed to save contact message: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": msg.ID})
}
