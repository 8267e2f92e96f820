package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrRoleExists = errors.New("role already exists")
var ErrRoleNotFound = errors.New("role not found")

// Role is a named permission group. Membership is held on Account.Roles,
// not here.
type Role struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalized_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// NormalizeRoleName is the case-folding applied to role names before any
// uniqueness comparison or lookup.
func NormalizeRoleName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
