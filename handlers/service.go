package handlers

import (
	"net/http"

	"tajriba/middleware"
	"tajriba/models"
	"tajriba/services/catalog"
	"tajriba/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServiceHandler manages the host-facing catalog endpoints.
type ServiceHandler struct {
	Svc    catalog.CatalogService
	Logger *zap.Logger
}

func NewServiceHandler(svc catalog.CatalogService, logger *zap.Logger) *ServiceHandler {
	return &ServiceHandler{Svc: svc, Logger: logger}
}

// CreateServiceHandler handles POST /api/services.
func (h *ServiceHandler) CreateServiceHandler(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req catalog.UpsertServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid service payload", err.Error())
		return
	}

	svc, err := h.Svc.Create(c.Request.Context(), principal, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// UpdateServiceHandler handles PUT /api/services/:id.
func (h *ServiceHandler) UpdateServiceHandler(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req catalog.UpsertServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid service payload", err.Error())
		return
	}

	svc, err := h.Svc.Update(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// DeactivateServiceHandler handles DELETE /api/services/:id. Existing
// bookings are untouched; the service just stops accepting new ones.
func (h *ServiceHandler) DeactivateServiceHandler(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	if err := h.Svc.Deactivate(c.Request.Context(), principal, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "service deactivated"})
}

// GetServiceHandler handles GET /api/services/:id.
func (h *ServiceHandler) GetServiceHandler(c *gin.Context) {
	svc, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// ListServicesHandler handles GET /api/services with optional category
// and city filters.
func (h *ServiceHandler) ListServicesHandler(c *gin.Context) {
	category := models.ServiceCategory(c.Query("category"))
	city := c.Query("city")

	services, err := h.Svc.ListActive(c.Request.Context(), category, city)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// ListMyServicesHandler handles GET /api/users/me/services for hosts.
func (h *ServiceHandler) ListMyServicesHandler(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "authentication required", "")
		return
	}

	services, err := h.Svc.ListByHost(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}
