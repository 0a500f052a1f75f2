package inbound

import (
	"net/http"
	"strconv"

	"receiving/pkg/auditlog"
	custom_error "receiving/pkg/errors"
	"receiving/pkg/models"
	"receiving/pkg/security"

	"github.com/gin-gonic/gin"
)

type InboundHandler struct {
	tracker  *Tracker
	AuditLog *auditlog.Auditlog
}

func NewInboundHandler(tracker *Tracker, a *auditlog.Auditlog) *InboundHandler {
	return &InboundHandler{
		tracker:  tracker,
		AuditLog: a,
	}
}

func (h *InboundHandler) RegisterRoutes(router *gin.Engine) {
	protectedRoutes := router.Group("")
	protectedRoutes.Use(security.JWTMiddleware())
	{
		protectedRoutes.POST("/lines/:id/inbound", h.ConfirmInbound)
	}
}

func (h *InboundHandler) ConfirmInbound(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line id"})
		return
	}

	actor, err := security.GetActorFromToken(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to resolve checker identity"})
		return
	}

	if err := h.tracker.ConfirmInbound(id, actor); err != nil {
		switch err.(type) {
		case *custom_error.ValidationError:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm inbound", "details": err.Error()})
		}
		return
	}

	go h.AuditLog.Log("inbound_confirm", map[string]interface{}{
		"actor": actor,
	}, &models.LineItem{ID: id})

	c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
}
