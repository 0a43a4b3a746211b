package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/daabouladam6/gymnastika-crm/internal/services"
	"github.com/daabouladam6/gymnastika-crm/pkg/utils"

	"github.com/gin-gonic/gin"
)

// BackupHandler serves full-database JSON exports.
type BackupHandler struct {
	backupService services.BackupService
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(bs services.BackupService) *BackupHandler {
	return &BackupHandler{backupService: bs}
}

// Export handles downloading the full data export as an attachment.
func (h *BackupHandler) Export(c *gin.Context) {
	data, err := h.backupService.Export()
	if err != nil {
		utils.LogError(err, "Export: Error from backupService.Export")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create backup", ""))
		return
	}

	filename := fmt.Sprintf("crm-backup-%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.JSON(http.StatusOK, data)
}

// Preview handles showing the export with row counts, without the download
// headers.
func (h *BackupHandler) Preview(c *gin.Context) {
	data, err := h.backupService.Export()
	if err != nil {
		utils.LogError(err, "Preview: Error from backupService.Export")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to preview backup", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"export_date": data.ExportDate,
		"summary":     data.Summary(),
		"data":        data,
	})
}
