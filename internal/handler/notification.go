package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campusride/internal/domain"
	"campusride/internal/repository"
)

// NotificationHandler handles HTTP requests for in-app notifications.
type NotificationHandler struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationRepo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo}
}

// NotificationResponse is the HTTP response for a notification.
type NotificationResponse struct {
	ID            string `json:"id"`
	Message       string `json:"message"`
	Type          string `json:"type"`
	RelatedRideID string `json:"related_ride_id,omitempty"`
	Read          bool   `json:"read"`
	CreatedAt     string `json:"created_at"`
}

// List handles GET /v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID := actingUser(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing user identity"})
		return
	}

	notifications, err := h.notificationRepo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, notificationResponse(n))
	}

	respondJSON(c, http.StatusOK, response)
}

// MarkRead handles POST /v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := actingUser(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing user identity"})
		return
	}

	if err := h.notificationRepo.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "read"})
}

// MarkAllRead handles POST /v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := actingUser(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing user identity"})
		return
	}

	if err := h.notificationRepo.MarkAllRead(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "all read"})
}

func notificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:            n.ID,
		Message:       n.Message,
		Type:          string(n.Type),
		RelatedRideID: n.RelatedRideID,
		Read:          n.Read,
		CreatedAt:     n.CreatedAt.Format(time.RFC3339),
	}
}
