package handlers

import (
	"github.com/AgboganEmmanuel/planty/internal/auth"
	"github.com/AgboganEmmanuel/planty/internal/notify"
	"github.com/AgboganEmmanuel/planty/internal/plantnet"
	"github.com/AgboganEmmanuel/planty/internal/plants"
	"github.com/AgboganEmmanuel/planty/internal/watering"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	auth     *auth.Service
	plantnet *plantnet.Client
	plants   *plants.Service
	watering *watering.Tracker
	notify   *notify.Service
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	authService *auth.Service,
	plantnetClient *plantnet.Client,
	plantService *plants.Service,
	wateringTracker *watering.Tracker,
	notifyService *notify.Service,
) *Handlers {
	return &Handlers{
		auth:     authService,
		plantnet: plantnetClient,
		plants:   plantService,
		watering: wateringTracker,
		notify:   notifyService,
	}
}
