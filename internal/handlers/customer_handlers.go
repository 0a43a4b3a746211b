package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/daabouladam6/gymnastika-crm/internal/models"
	"github.com/daabouladam6/gymnastika-crm/internal/services"
	"github.com/daabouladam6/gymnastika-crm/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CustomerHandler holds the customer service.
type CustomerHandler struct {
	customerService services.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(cs services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: cs}
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid ID format.", err.Error()))
		return 0, false
	}
	return id, true
}

// CreateCustomer handles the creation of a new customer.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req services.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateCustomer: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	customer, outcomes, err := h.customerService.CreateCustomer(req)
	if err != nil {
		utils.LogError(err, "CreateCustomer: Error from customerService.CreateCustomer")
		if errors.Is(err, services.ErrCustomerValidation) || errors.Is(err, services.ErrDateFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create customer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"customer":      customer,
		"notifications": outcomes,
	})
}

// GetCustomers handles fetching active customers, optionally filtered by type.
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	var customerType *string
	if t := c.Query("type"); t != "" {
		customerType = &t
	}

	customers, err := h.customerService.GetCustomers(customerType)
	if err != nil {
		utils.LogError(err, "GetCustomers: Error from customerService.GetCustomers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch customers.", "Internal error"))
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	c.JSON(http.StatusOK, customers)
}

// GetArchivedCustomers handles fetching archived customers.
func (h *CustomerHandler) GetArchivedCustomers(c *gin.Context) {
	oldestFirst := c.Query("sort") == "oldest"

	customers, err := h.customerService.GetArchivedCustomers(oldestFirst)
	if err != nil {
		utils.LogError(err, "GetArchivedCustomers: Error from customerService.GetArchivedCustomers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch archived customers.", "Internal error"))
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	c.JSON(http.StatusOK, customers)
}

// GetCustomerByID handles fetching a single customer by ID.
func (h *CustomerHandler) GetCustomerByID(c *gin.Context) {
	customerID, ok := parseIDParam(c)
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomerByID(customerID)
	if err != nil {
		utils.LogError(err, "GetCustomerByID: Error from customerService.GetCustomerByID")
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch customer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer handles updating a customer.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	customerID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateCustomer: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	customer, outcomes, err := h.customerService.UpdateCustomer(customerID, req)
	if err != nil {
		utils.LogError(err, "UpdateCustomer: Error from customerService.UpdateCustomer")
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found.", err.Error()))
		} else if errors.Is(err, services.ErrCustomerValidation) || errors.Is(err, services.ErrDateFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update customer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"customer":      customer,
		"notifications": outcomes,
	})
}

// ArchiveCustomer handles soft-deleting (archiving) a customer.
func (h *CustomerHandler) ArchiveCustomer(c *gin.Context) {
	customerID, ok := parseIDParam(c)
	if !ok {
		return
	}

	outcomes, err := h.customerService.ArchiveCustomer(customerID)
	if err != nil {
		utils.LogError(err, "ArchiveCustomer: Error from customerService.ArchiveCustomer")
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to archive customer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Customer archived successfully",
		"notifications": outcomes,
	})
}

// UnarchiveCustomer handles restoring an archived customer.
func (h *CustomerHandler) UnarchiveCustomer(c *gin.Context) {
	customerID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.customerService.UnarchiveCustomer(customerID); err != nil {
		utils.LogError(err, "UnarchiveCustomer: Error from customerService.UnarchiveCustomer")
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to unarchive customer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer restored successfully"})
}

// DeleteArchivedCustomer handles permanently deleting an archived customer.
func (h *CustomerHandler) DeleteArchivedCustomer(c *gin.Context) {
	customerID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.customerService.DeleteArchivedCustomer(customerID); err != nil {
		utils.LogError(err, "DeleteArchivedCustomer: Error from customerService.DeleteArchivedCustomer")
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found.", err.Error()))
		} else if errors.Is(err, services.ErrCustomerNotArchived) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Customer must be archived before permanent deletion.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete customer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer permanently deleted"})
}
