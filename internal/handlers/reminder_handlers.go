package handlers

import (
	"errors"
	"net/http"

	"github.com/daabouladam6/gymnastika-crm/internal/models"
	"github.com/daabouladam6/gymnastika-crm/internal/services"
	"github.com/daabouladam6/gymnastika-crm/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReminderHandler holds the reminder service.
type ReminderHandler struct {
	reminderService services.ReminderService
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(rs services.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: rs}
}

// CreateReminder handles creating an ad hoc follow-up reminder.
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	var req services.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateReminder: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	reminder, err := h.reminderService.CreateReminder(req)
	if err != nil {
		utils.LogError(err, "CreateReminder: Error from reminderService.CreateReminder")
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found.", err.Error()))
		} else if errors.Is(err, services.ErrDateFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create reminder.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

// GetReminders handles fetching reminders, optionally filtered by status.
func (h *ReminderHandler) GetReminders(c *gin.Context) {
	var (
		reminders []models.DueReminder
		err       error
	)
	switch c.Query("status") {
	case "pending":
		reminders, err = h.reminderService.GetPendingReminders()
	case "completed":
		reminders, err = h.reminderService.GetCompletedReminders()
	default:
		reminders, err = h.reminderService.GetReminders()
	}
	if err != nil {
		utils.LogError(err, "GetReminders: Error from reminderService")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch reminders.", "Internal error"))
		return
	}
	if reminders == nil {
		reminders = []models.DueReminder{}
	}
	c.JSON(http.StatusOK, reminders)
}

// GetRemindersByCustomer handles fetching all reminders for one customer.
func (h *ReminderHandler) GetRemindersByCustomer(c *gin.Context) {
	customerID, ok := parseIDParam(c)
	if !ok {
		return
	}

	reminders, err := h.reminderService.GetRemindersByCustomer(customerID)
	if err != nil {
		utils.LogError(err, "GetRemindersByCustomer: Error from reminderService.GetRemindersByCustomer")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch reminders.", "Internal error"))
		return
	}
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	c.JSON(http.StatusOK, reminders)
}

// UpdateReminder handles updating a reminder.
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	reminderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateReminder: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	reminder, err := h.reminderService.UpdateReminder(reminderID, req)
	if err != nil {
		utils.LogError(err, "UpdateReminder: Error from reminderService.UpdateReminder")
		if errors.Is(err, services.ErrReminderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Reminder not found.", err.Error()))
		} else if errors.Is(err, services.ErrDateFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update reminder.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, reminder)
}

// CompleteReminder handles marking a reminder as done.
func (h *ReminderHandler) CompleteReminder(c *gin.Context) {
	reminderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.reminderService.CompleteReminder(reminderID); err != nil {
		utils.LogError(err, "CompleteReminder: Error from reminderService.CompleteReminder")
		if errors.Is(err, services.ErrReminderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Reminder not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to complete reminder.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reminder completed"})
}

// DeleteReminder handles deleting a reminder.
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	reminderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.reminderService.DeleteReminder(reminderID); err != nil {
		utils.LogError(err, "DeleteReminder: Error from reminderService.DeleteReminder")
		if errors.Is(err, services.ErrReminderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Reminder not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete reminder.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted"})
}
