package intake

import (
	"net/http"
	"strconv"

	"receiving/pkg/auditlog"
	custom_error "receiving/pkg/errors"
	"receiving/pkg/security"

	"github.com/gin-gonic/gin"

	"receiving/pkg/models"
)

type IntakeHandler struct {
	service  *Service
	AuditLog *auditlog.Auditlog
}

func NewIntakeHandler(service *Service, a *auditlog.Auditlog) *IntakeHandler {
	return &IntakeHandler{
		service:  service,
		AuditLog: a,
	}
}

func (h *IntakeHandler) RegisterRoutes(router *gin.Engine) {
	protectedRoutes := router.Group("")
	protectedRoutes.Use(security.JWTMiddleware())
	{
		protectedRoutes.POST("/intake", h.CreateAdHocItem)
		protectedRoutes.DELETE("/intake/:id", security.Authorize("admin"), h.DeleteAdHocItem)
	}
}

func (h *IntakeHandler) CreateAdHocItem(c *gin.Context) {
	var req models.AdHocIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.GetActorFromToken(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unable to resolve checker identity"})
		return
	}

	line, err := h.service.CreateAdHocItem(req, actor)
	if err != nil {
		switch err.(type) {
		case *custom_error.ValidationError:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to record ad-hoc intake", "details": err.Error()})
		}
		return
	}

	go h.AuditLog.Log("intake", map[string]interface{}{
		"sku":   line.SKU,
		"qty":   line.PhysicalQty,
		"actor": actor,
	}, line)

	c.JSON(http.StatusCreated, line)
}

func (h *IntakeHandler) DeleteAdHocItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line id"})
		return
	}

	if err := h.service.DeleteAdHocItem(id); err != nil {
		switch err.(type) {
		case *custom_error.ValidationError:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete ad-hoc line", "details": err.Error()})
		}
		return
	}

	go h.AuditLog.Log("intake_delete", map[string]interface{}{
		"line_id": id,
	}, &models.LineItem{ID: id})

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
