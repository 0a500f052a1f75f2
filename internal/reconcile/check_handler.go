package reconcile

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"receiving/internal/repository"
	"receiving/pkg/auditlog"
	custom_error "receiving/pkg/errors"
	"receiving/pkg/models"
	"receiving/pkg/security"

	"github.com/gin-gonic/gin"
)

type CheckHandler struct {
	engine   *Engine
	repo     *repository.Repository
	AuditLog *auditlog.Auditlog
}

func NewCheckHandler(engine *Engine, repo *repository.Repository, a *auditlog.Auditlog) *CheckHandler {
	return &CheckHandler{
		engine:   engine,
		repo:     repo,
		AuditLog: a,
	}
}

func (h *CheckHandler) RegisterRoutes(router *gin.Engine) {
	protectedRoutes := router.Group("")
	protectedRoutes.Use(security.JWTMiddleware())
	{
		protectedRoutes.GET("/lines", h.ListLines)
		protectedRoutes.PUT("/lines/:id/check", h.CheckBulkLine)
		protectedRoutes.PUT("/lines/:id/serials", h.ReplaceSerials)
		protectedRoutes.POST("/lines/:id/serials", h.AddSerial)
		protectedRoutes.DELETE("/lines/:id/serials/:index", h.RemoveSerial)
		protectedRoutes.POST("/lines/:id/serials/batch", h.AddSerialBatch)
	}
}

func (h *CheckHandler) ListLines(c *gin.Context) {
	var ref *models.SessionRef
	if gr := c.Query("session"); gr != "" {
		session := models.SessionFromStored(gr)
		ref = &session
	}
	activeOnly := c.Query("all") != "true"

	lines, err := h.repo.SelectLines(ref, activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch lines", "details": err.Error()})
		return
	}

	if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
		filtered := make([]models.LineItem, 0, len(lines))
		for _, line := range lines {
			if strings.Contains(strings.ToLower(line.ItemName), search) ||
				strings.Contains(strings.ToLower(line.SKU), search) {
				filtered = append(filtered, line)
			}
		}
		lines = filtered
	}

	c.JSON(http.StatusOK, lines)
}

func (h *CheckHandler) CheckBulkLine(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line id"})
		return
	}

	var req models.BulkCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.GetActorFromToken(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to resolve checker identity"})
		return
	}

	result, err := h.engine.ApplyBulkUpdate(BulkUpdate{
		ItemID:     id,
		Qty:        req.Qty,
		Allocation: req.Allocation,
		Note:       req.Note,
		Actor:      actor,
		Snapshot:   req.Snapshot,
	})
	if err != nil {
		respondMutationError(c, err)
		return
	}

	if result.Updated > 0 {
		go h.AuditLog.Log("check", map[string]interface{}{
			"qty":        req.Qty,
			"allocation": req.Allocation,
			"actor":      actor,
		}, &models.LineItem{ID: id})
	}

	c.JSON(http.StatusOK, result)
}

func (h *CheckHandler) ReplaceSerials(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line id"})
		return
	}

	var req models.SerialCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.GetActorFromToken(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to resolve checker identity"})
		return
	}

	result, err := h.engine.ApplySerialUpdate(SerialUpdate{
		ItemID:     id,
		Serials:    req.Serials,
		Allocation: req.Allocation,
		Note:       req.Note,
		Actor:      actor,
		Snapshot:   req.Snapshot,
	})
	if err != nil {
		respondMutationError(c, err)
		return
	}

	if result.Updated > 0 {
		go h.AuditLog.Log("serial_update", map[string]interface{}{
			"serial_count": len(req.Serials),
			"actor":        actor,
		}, &models.LineItem{ID: id})
	}

	c.JSON(http.StatusOK, result)
}

func (h *CheckHandler) AddSerial(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line id"})
		return
	}

	var req models.AddSerialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.GetActorFromToken(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to resolve checker identity"})
		return
	}

	result, err := h.engine.AddSerial(id, req.Serial, actor, req.Snapshot)
	if err != nil {
		respondMutationError(c, err)
		return
	}

	if result.Updated > 0 {
		go h.AuditLog.Log("serial_add", map[string]interface{}{
			"serial": req.Serial,
			"actor":  actor,
		}, &models.LineItem{ID: id})
	}

	c.JSON(http.StatusOK, result)
}

func (h *CheckHandler) RemoveSerial(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line id"})
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid serial position"})
		return
	}

	snapshot, err := parseSnapshotQuery(c.Query("snapshot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid snapshot time", "details": err.Error()})
		return
	}

	actor, err := security.GetActorFromToken(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to resolve checker identity"})
		return
	}

	result, err := h.engine.RemoveSerialAt(id, index, actor, snapshot)
	if err != nil {
		respondMutationError(c, err)
		return
	}

	if result.Updated > 0 {
		go h.AuditLog.Log("serial_remove", map[string]interface{}{
			"position": index,
			"actor":    actor,
		}, &models.LineItem{ID: id})
	}

	c.JSON(http.StatusOK, result)
}

func (h *CheckHandler) AddSerialBatch(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line id"})
		return
	}

	var req models.BatchSerialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.GetActorFromToken(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to resolve checker identity"})
		return
	}

	result, err := h.engine.AddSerialBatch(id, req.Block, actor, req.Snapshot)
	if err != nil {
		respondMutationError(c, err)
		return
	}

	if result.Updated > 0 {
		go h.AuditLog.Log("serial_batch", map[string]interface{}{
			"added":   result.Updated,
			"skipped": len(result.Warnings),
			"actor":   actor,
		}, &models.LineItem{ID: id})
	}

	c.JSON(http.StatusOK, result)
}

func parseSnapshotQuery(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("snapshot query parameter is required")
	}
	return time.Parse(time.RFC3339, raw)
}

func respondMutationError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *custom_error.ValidationError:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": e.Error()})
	case *custom_error.ConflictError:
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":       "Line was modified by another checker, reload and retry",
			"modified_by": e.ModifiedBy,
			"modified_at": e.ModifiedAt,
		})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to save line", "details": err.Error()})
	}
}
