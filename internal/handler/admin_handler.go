package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gmdqs/attendance-admin-api/internal/models"
	"github.com/gmdqs/attendance-admin-api/internal/service"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
	"github.com/gmdqs/attendance-admin-api/pkg/response"
)

// AdminHandler manages per-user permission sets.
type AdminHandler struct {
	permissions *service.PermissionService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(permissions *service.PermissionService) *AdminHandler {
	return &AdminHandler{permissions: permissions}
}

// List returns every account with its permission flags.
func (h *AdminHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	admins, err := h.permissions.ListAdmins(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admins, nil)
}

// Permissions returns the caller's own resolved permission set. The UI uses
// it to decide which controls to render.
func (h *AdminHandler) Permissions(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	set, err := h.permissions.Load(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, set, nil)
}

// UpdatePermissions replaces the flags for a target user.
func (h *AdminHandler) UpdatePermissions(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	targetID := c.Param("id")
	if targetID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "user id required"))
		return
	}

	var req models.UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid permissions payload"))
		return
	}

	set, err := h.permissions.Update(c.Request.Context(), claims.UserID, targetID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, set, nil)
}

// RevokePermissions removes a target user's permission row.
func (h *AdminHandler) RevokePermissions(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	targetID := c.Param("id")
	if targetID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "user id required"))
		return
	}

	if err := h.permissions.Revoke(c.Request.Context(), claims.UserID, targetID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
