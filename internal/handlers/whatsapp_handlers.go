package handlers

import (
	"errors"
	"net/http"

	"github.com/daabouladam6/gymnastika-crm/internal/services"
	"github.com/daabouladam6/gymnastika-crm/pkg/utils"

	"github.com/gin-gonic/gin"
)

// WhatsAppHandler holds the broadcast service.
type WhatsAppHandler struct {
	broadcastService services.BroadcastService
}

// NewWhatsAppHandler creates a new WhatsAppHandler.
func NewWhatsAppHandler(bs services.BroadcastService) *WhatsAppHandler {
	return &WhatsAppHandler{broadcastService: bs}
}

// SendMessageRequest is the payload for direct WhatsApp sends.
type SendMessageRequest struct {
	Phone   string `json:"phone" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// SendToCustomerRequest is the payload for sending to a known customer.
type SendToCustomerRequest struct {
	CustomerID int64  `json:"customer_id" binding:"required"`
	Message    string `json:"message" binding:"required"`
}

// Status reports whether the WhatsApp channel is configured.
func (h *WhatsAppHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.broadcastService.Status())
}

// SendMessage sends a free-form message to a phone number.
func (h *WhatsAppHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SendMessage: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	outcome, err := h.broadcastService.SendMessage(c.Request.Context(), req.Phone, req.Message)
	if err != nil {
		utils.LogError(err, "SendMessage: Error from broadcastService.SendMessage")
		if errors.Is(err, services.ErrWhatsAppNotConfigured) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeInternalServerError, "WhatsApp channel is not configured.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to send message.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// SendToCustomer sends a free-form message to a customer's phone.
func (h *WhatsAppHandler) SendToCustomer(c *gin.Context) {
	var req SendToCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SendToCustomer: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	outcome, err := h.broadcastService.SendToCustomer(c.Request.Context(), req.CustomerID, req.Message)
	if err != nil {
		utils.LogError(err, "SendToCustomer: Error from broadcastService.SendToCustomer")
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found.", err.Error()))
		} else if errors.Is(err, services.ErrWhatsAppNotConfigured) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeInternalServerError, "WhatsApp channel is not configured.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to send message.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// Broadcast sends a message to every customer in a segment.
func (h *WhatsAppHandler) Broadcast(c *gin.Context) {
	var req services.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "Broadcast: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.broadcastService.Broadcast(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "Broadcast: Error from broadcastService.Broadcast")
		if errors.Is(err, services.ErrInvalidSegment) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid broadcast segment.", err.Error()))
		} else if errors.Is(err, services.ErrWhatsAppNotConfigured) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeInternalServerError, "WhatsApp channel is not configured.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to run broadcast.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, result)
}
