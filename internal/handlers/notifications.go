package handlers

import (
	"errors"
	"net/http"

	"github.com/AgboganEmmanuel/planty/internal/notify"
	"github.com/AgboganEmmanuel/planty/internal/util"
	"github.com/gin-gonic/gin"
)

// GetNotifications returns the user's notifications, newest first
// GET /api/v1/notifications
func (h *Handlers) GetNotifications(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	items, err := h.notify.ListByUser(c.Request.Context(), userID)
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch notifications")
		return
	}

	unread := 0
	for _, item := range items {
		if !item.IsRead {
			unread++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": items,
		"count":         len(items),
		"unread":        unread,
	})
}

// MarkNotificationRead marks one notification as read
// POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	err := h.notify.MarkRead(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, notify.ErrNotFound) {
		util.RespondNotFound(c, "notification")
		return
	} else if err != nil {
		util.RespondInternalError(c, "Failed to mark notification as read")
		return
	}

	c.JSON(http.StatusOK, gin.H{"read": true})
}
