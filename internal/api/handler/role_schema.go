package handler

import (
	"time"

	"github.com/sign-identity/identity-api/internal/core/domain"
)

// --- Request types ---

type createRoleRequest struct {
	RoleName string `json:"role_name" validate:"required"`
}

type renameRoleRequest struct {
	NewName string `json:"new_name" validate:"required"`
}

// --- Response types ---

// roleEnvelope mirrors the uniform response shape of the role endpoints:
// a short message, a success flag, and a status classification.
type roleEnvelope struct {
	Message    string `json:"message"`
	IsSuccess  bool   `json:"is_success"`
	StatusCode int    `json:"status_code"`
}

type roleResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toRoleResponse(r *domain.Role) roleResponse {
	return roleResponse{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
	}
}
