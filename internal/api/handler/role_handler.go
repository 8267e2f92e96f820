package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sign-identity/identity-api/internal/core/domain"
	"github.com/sign-identity/identity-api/internal/core/ports"
)

// RoleHandler handles HTTP requests for role operations.
type RoleHandler struct {
	roleService ports.RoleService
}

func NewRoleHandler(roleService ports.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// Create creates a named role.
//
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        body  body      createRoleRequest  true  "Role name"
// @Success      201   {object}  roleEnvelope
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /Role [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req createRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	if _, err := h.roleService.CreateRole(c.Request().Context(), req.RoleName); err != nil {
		if errors.Is(err, domain.ErrRoleExists) {
			return c.JSON(http.StatusConflict, errorResponse{Error: "role already exists"})
		}
		if errors.Is(err, domain.ErrValidation) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return err
	}

	return c.JSON(http.StatusCreated, roleEnvelope{
		Message:    "Role Created",
		IsSuccess:  true,
		StatusCode: http.StatusCreated,
	})
}

// GetAll lists every role.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   roleResponse
// @Failure      403  {object}  errorResponse
// @Router       /Role [get]
func (h *RoleHandler) GetAll(c echo.Context) error {
	roles, err := h.roleService.GetAllRoles(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]roleResponse, 0, len(roles))
	for i := range roles {
		resp = append(resp, toRoleResponse(&roles[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByName returns the role, or a null body when no role matches.
//
// @Summary      Get a role by name
// @Tags         roles
// @Produce      json
// @Param        roleName  path      string  true  "Role name"
// @Success      200       {object}  roleResponse
// @Router       /Role/{roleName} [get]
func (h *RoleHandler) GetByName(c echo.Context) error {
	role, err := h.roleService.GetRoleByName(c.Request().Context(), c.Param("roleName"))
	if err != nil {
		return err
	}
	if role == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, toRoleResponse(role))
}

// Delete removes a role by name. A missing role is a 404, never a silent
// success.
//
// @Summary      Delete a role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        roleName  path      string  true  "Role name"
// @Success      200       {object}  roleEnvelope
// @Failure      404       {object}  errorResponse
// @Router       /Role/{roleName} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	actorID, _ := c.Get("account_id").(string)

	if err := h.roleService.DeleteRole(c.Request().Context(), actorID, c.Param("roleName")); err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "role not found"})
		}
		return err
	}

	return c.JSON(http.StatusOK, roleEnvelope{
		Message:    "Role Deleted",
		IsSuccess:  true,
		StatusCode: http.StatusOK,
	})
}

// Rename renames a role in place; memberships follow the new name.
//
// @Summary      Rename a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        roleName  path      string             true  "Current role name"
// @Param        body      body      renameRoleRequest  true  "New role name"
// @Success      200       {object}  roleResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /Role/{roleName} [put]
func (h *RoleHandler) Rename(c echo.Context) error {
	var req renameRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	actorID, _ := c.Get("account_id").(string)

	renamed, err := h.roleService.RenameRole(c.Request().Context(), actorID, c.Param("roleName"), req.NewName)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "role not found"})
		}
		if errors.Is(err, domain.ErrRoleExists) {
			return c.JSON(http.StatusConflict, errorResponse{Error: "role already exists"})
		}
		if errors.Is(err, domain.ErrValidation) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return err
	}
	return c.JSON(http.StatusOK, toRoleResponse(renamed))
}
