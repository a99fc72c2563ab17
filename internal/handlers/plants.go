package handlers

import (
	"errors"
	"net/http"
	"time"

	apierrors "github.com/AgboganEmmanuel/planty/internal/errors"
	"github.com/AgboganEmmanuel/planty/internal/logger"
	"github.com/AgboganEmmanuel/planty/internal/metrics"
	"github.com/AgboganEmmanuel/planty/internal/plantnet"
	"github.com/AgboganEmmanuel/planty/internal/plants"
	"github.com/AgboganEmmanuel/planty/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxImageSize = 10 << 20 // 10MB upload cap

// IdentifyPlant identifies a plant from an uploaded photo, enriches the top
// match with a botanical description and saves it to the user's collection.
// POST /api/v1/plants/identify
func (h *Handlers) IdentifyPlant(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		util.RespondBadRequest(c, "image file is required")
		return
	}
	if fileHeader.Size > maxImageSize {
		util.RespondBadRequest(c, "image exceeds the 10MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.RespondInternalError(c, "Failed to read uploaded image")
		return
	}
	defer file.Close()

	start := time.Now()
	results, err := h.plantnet.Identify(c.Request.Context(), fileHeader.Filename, file)
	outcome := identifyOutcome(results, err)
	metrics.Get().IdentificationsTotal.WithLabelValues(outcome).Inc()
	metrics.Get().IdentificationDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if errors.Is(err, plantnet.ErrMissingAPIKey) {
		util.RespondWithAPIError(c, apierrors.ServiceUnavailable("plant identification"))
		return
	} else if err != nil {
		logger.Log.Error("Plant identification failed",
			logger.WithUserID(userID),
			zap.Error(err),
		)
		util.RespondWithAPIError(c, apierrors.ServiceUnavailable("plant identification"))
		return
	}

	if len(results) == 0 {
		util.RespondNotFound(c, "plant match")
		return
	}

	top := results[0]
	imageURL := c.PostForm("image_url")

	plant, err := h.plants.SaveIdentified(c.Request.Context(), userID, &top, imageURL)
	if err != nil {
		util.RespondInternalError(c, "Failed to save identified plant")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"plant":          plant,
		"identification": top,
	})
}

func identifyOutcome(results []plantnet.Result, err error) string {
	switch {
	case err != nil:
		return "error"
	case len(results) == 0:
		return "no_match"
	default:
		return "matched"
	}
}

// GetPlants returns the user's plant collection, newest first
// GET /api/v1/plants
func (h *Handlers) GetPlants(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	list, err := h.plants.ListByUser(c.Request.Context(), userID)
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch plants")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plants": list,
		"count":  len(list),
	})
}

// GetPlant returns a single plant
// GET /api/v1/plants/:id
func (h *Handlers) GetPlant(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	plant, err := h.plants.Get(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, plants.ErrNotFound) {
		util.RespondNotFound(c, "plant")
		return
	} else if err != nil {
		util.RespondInternalError(c, "Failed to fetch plant")
		return
	}

	c.JSON(http.StatusOK, gin.H{"plant": plant})
}

// DeletePlant removes a plant from the user's collection
// DELETE /api/v1/plants/:id
func (h *Handlers) DeletePlant(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	err := h.plants.Delete(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, plants.ErrNotFound) {
		util.RespondNotFound(c, "plant")
		return
	} else if err != nil {
		util.RespondInternalError(c, "Failed to delete plant")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
