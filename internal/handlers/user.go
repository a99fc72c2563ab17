package handlers

import (
	"net/http"

	"github.com/AgboganEmmanuel/planty/internal/database"
	"github.com/AgboganEmmanuel/planty/internal/util"
	"github.com/gin-gonic/gin"
)

// GetProfile returns the authenticated user's profile
// GET /api/v1/users/me
func (h *Handlers) GetProfile(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": currentUser})
}

// UpdateProfile updates the authenticated user's profile fields
// PUT /api/v1/users/me
func (h *Handlers) UpdateProfile(c *gin.Context) {
	currentUser, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req struct {
		FullName  *string `json:"full_name" binding:"omitempty,max=100"`
		AvatarURL *string `json:"avatar_url" binding:"omitempty,url,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"user": currentUser})
		return
	}

	if err := database.DB.Model(currentUser).Updates(updates).Error; err != nil {
		util.RespondInternalError(c, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": currentUser})
}
