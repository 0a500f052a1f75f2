package sessions

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"receiving/internal/reports"
	"receiving/internal/repository"
	"receiving/pkg/auditlog"
	custom_error "receiving/pkg/errors"
	"receiving/pkg/models"
	"receiving/pkg/security"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SessionHandler struct {
	service  *Service
	repo     *repository.Repository
	AuditLog *auditlog.Auditlog
}

func NewSessionHandler(service *Service, repo *repository.Repository, a *auditlog.Auditlog) *SessionHandler {
	return &SessionHandler{
		service:  service,
		repo:     repo,
		AuditLog: a,
	}
}

func (h *SessionHandler) RegisterRoutes(router *gin.Engine) {
	protectedRoutes := router.Group("")
	protectedRoutes.Use(security.JWTMiddleware())
	{
		protectedRoutes.GET("/sessions/active", h.ListActiveSessions)
		protectedRoutes.GET("/manifest/template", h.DownloadTemplate)
		protectedRoutes.GET("/reports/:gr/export", h.ExportReport)

		adminRoutes := protectedRoutes.Group("", security.Authorize("admin"))
		{
			adminRoutes.GET("/sessions/archived", h.ListArchivedSessions)
			adminRoutes.POST("/sessions/:gr/manifest", h.IngestManifest)
			adminRoutes.POST("/sessions/:gr/archive", h.ArchiveSession)
			adminRoutes.DELETE("/sessions/active", h.PurgeActiveLines)
		}
	}
}

func (h *SessionHandler) ListActiveSessions(c *gin.Context) {
	ids, err := h.service.ListActiveSessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to list active sessions", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": ids})
}

func (h *SessionHandler) ListArchivedSessions(c *gin.Context) {
	ids, err := h.service.ListArchivedSessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to list archived sessions", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": ids})
}

func (h *SessionHandler) IngestManifest(c *gin.Context) {
	grNumber := c.Param("gr")

	file, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Manifest file is required"})
		return
	}

	reader, err := file.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Unable to open manifest file", "details": err.Error()})
		return
	}
	defer reader.Close()

	rows, err := ParseManifest(reader)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inserted, err := h.service.IngestManifest(rows, grNumber)
	if err != nil {
		switch err.(type) {
		case *custom_error.ValidationError:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			// Prior chunks stay committed; report how far ingestion got.
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":    "Manifest ingestion failed",
				"inserted": inserted,
				"details":  err.Error(),
			})
		}
		return
	}

	go h.AuditLog.Log("manifest_ingest", map[string]interface{}{
		"gr_number": grNumber,
		"lines":     inserted,
	}, models.ManifestSession(grNumber))

	c.JSON(http.StatusCreated, gin.H{"session": grNumber, "inserted": inserted})
}

func (h *SessionHandler) ArchiveSession(c *gin.Context) {
	grNumber := c.Param("gr")

	if err := h.service.ArchiveSession(grNumber); err != nil {
		switch err.(type) {
		case *custom_error.ValidationError:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive session", "details": err.Error()})
		}
		return
	}

	go h.AuditLog.Log("archive", map[string]interface{}{
		"gr_number": grNumber,
	}, models.ManifestSession(grNumber))

	c.JSON(http.StatusOK, gin.H{"session": grNumber, "status": "archived"})
}

func (h *SessionHandler) PurgeActiveLines(c *gin.Context) {
	pin := os.Getenv("RESET_PIN")
	if pin == "" || c.GetHeader("X-Reset-Pin") != pin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid reset PIN"})
		return
	}

	deleted, err := h.service.PurgeActiveLines()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to purge active sessions", "details": err.Error()})
		return
	}

	go h.AuditLog.Log("purge", map[string]interface{}{
		"deleted": deleted,
	}, models.ManifestSession(""))

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *SessionHandler) DownloadTemplate(c *gin.Context) {
	data, err := MasterTemplate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to build template", "details": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="Template_Master_Receiving.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *SessionHandler) ExportReport(c *gin.Context) {
	grNumber := c.Param("gr")
	session := models.SessionFromStored(grNumber)

	lines, err := h.repo.SelectLines(&session, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch report data", "details": err.Error()})
		return
	}
	if len(lines) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("No lines recorded for session %q", grNumber)})
		return
	}

	data, err := reports.BuildReport(lines)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to build report", "details": err.Error()})
		return
	}

	filename := fmt.Sprintf("Report_GR_%s_%s.xlsx", grNumber, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
