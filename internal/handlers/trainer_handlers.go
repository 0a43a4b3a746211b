package handlers

import (
	"net/http"

	"github.com/daabouladam6/gymnastika-crm/internal/trainers"

	"github.com/gin-gonic/gin"
)

// TrainerHandler serves the static trainer directory.
type TrainerHandler struct {
	directory *trainers.Directory
}

// NewTrainerHandler creates a new TrainerHandler.
func NewTrainerHandler(directory *trainers.Directory) *TrainerHandler {
	return &TrainerHandler{directory: directory}
}

// ListTrainers returns every trainer known to the directory.
func (h *TrainerHandler) ListTrainers(c *gin.Context) {
	c.JSON(http.StatusOK, h.directory.All())
}
