package domain

import "time"

// AuditAction identifies what happened to an account or role.
type AuditAction string

const (
	AuditRegister    AuditAction = "register"
	AuditLogin       AuditAction = "login"
	AuditLogout      AuditAction = "logout"
	AuditSoftDelete  AuditAction = "soft_delete"
	AuditUpdate      AuditAction = "update"
	AuditRoleCreate  AuditAction = "role_create"
	AuditRoleDelete  AuditAction = "role_delete"
	AuditRoleRename  AuditAction = "role_rename"
)

// AuditEvent records a single identity mutation or sign-in event.
type AuditEvent struct {
	Action    AuditAction
	ActorID   string
	SubjectID string
	Timestamp time.Time
	Detail    string
}
