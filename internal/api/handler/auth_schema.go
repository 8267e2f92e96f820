package handler

import (
	"time"

	"github.com/sign-identity/identity-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type registerRequest struct {
	Email     string   `json:"email"      validate:"required,email"`
	Username  string   `json:"username"   validate:"required"`
	FirstName string   `json:"first_name" validate:"required"`
	LastName  string   `json:"last_name"  validate:"required"`
	Age       int      `json:"age"        validate:"gte=0"`
	Password  string   `json:"password"   validate:"required,min=8"`
	Roles     []string `json:"roles"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateAccountRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Age       int    `json:"age"        validate:"gte=0"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// internal service changes.

type accountResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Age        int        `json:"age"`
	Roles      []string   `json:"roles"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

func toAccountResponse(a *domain.Account) accountResponse {
	roles := a.Roles
	if roles == nil {
		roles = []string{}
	}
	return accountResponse{
		ID:         a.ID,
		Email:      a.Email,
		Username:   a.Username,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Age:        a.Age,
		Roles:      roles,
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt,
		ModifiedAt: a.ModifiedAt,
		DeletedAt:  a.DeletedAt,
	}
}

type registerResponse struct {
	Account     accountResponse `json:"account"`
	FailedRoles []string        `json:"failed_roles,omitempty"`
}

type loginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   accountResponse `json:"account"`
}

type messageResponse struct {
	Message string `json:"message"`
}
