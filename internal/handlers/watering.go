package handlers

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/AgboganEmmanuel/planty/internal/util"
	"github.com/AgboganEmmanuel/planty/internal/watering"
	"github.com/gin-gonic/gin"
)

// WaterPlant records a watering for one plant
// POST /api/v1/plants/:id/water
func (h *Handlers) WaterPlant(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	plant, err := h.watering.RecordWatering(c.Request.Context(), userID, c.Param("id"), time.Now())
	if errors.Is(err, watering.ErrNotFound) {
		util.RespondNotFound(c, "plant")
		return
	} else if err != nil {
		util.RespondInternalError(c, "Failed to record watering")
		return
	}

	c.JSON(http.StatusOK, gin.H{"plant": plant})
}

// wateringView is the trimmed plant shape the watering screen needs
type wateringView struct {
	ID               string     `json:"id"`
	PlantName        string     `json:"plant_name"`
	ImageURL         string     `json:"image_url,omitempty"`
	LastWatered      *time.Time `json:"last_watered,omitempty"`
	NextWateringDate *time.Time `json:"next_watering_date,omitempty"`
	WateringFrequency int       `json:"watering_frequency"`
}

// GetWateringList returns each plant's watering fields, soonest due first
// GET /api/v1/plants/watering
func (h *Handlers) GetWateringList(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	list, err := h.plants.ListByUser(c.Request.Context(), userID)
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch plants")
		return
	}

	views := make([]wateringView, 0, len(list))
	for i := range list {
		p := &list[i]
		views = append(views, wateringView{
			ID:                p.ID,
			PlantName:         p.PlantName,
			ImageURL:          p.ImageURL,
			LastWatered:       p.LastWatered,
			NextWateringDate:  p.NextWateringDate,
			WateringFrequency: p.WateringFrequency,
		})
	}
	sortWateringViews(views)

	c.JSON(http.StatusOK, gin.H{
		"plants": views,
		"count":  len(views),
	})
}

// sortWateringViews orders scheduled plants by due date, unscheduled last
func sortWateringViews(views []wateringView) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].NextWateringDate, views[j].NextWateringDate
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})
}

// CheckWatering sweeps the user's plants for due or overdue waterings and
// returns a per-plant outcome report
// POST /api/v1/watering/check
func (h *Handlers) CheckWatering(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	outcomes, err := h.watering.CheckWateringNotifications(c.Request.Context(), userID, time.Now())
	if err != nil {
		util.RespondInternalError(c, "Failed to check watering schedules")
		return
	}

	notified := 0
	for _, o := range outcomes {
		notified += len(o.Notified)
	}

	c.JSON(http.StatusOK, gin.H{
		"outcomes": outcomes,
		"notified": notified,
	})
}
