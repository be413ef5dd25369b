package models

import "time"

// AuditAction labels auditable events.
type AuditAction string

const (
	AuditActionLogin    AuditAction = "LOGIN"
	AuditActionRegister AuditAction = "REGISTER"
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionUpdate   AuditAction = "UPDATE"
	AuditActionDelete   AuditAction = "DELETE"
	AuditActionImport   AuditAction = "IMPORT"
)

// AuditLog records who did what to which resource. Best-effort: failures
// to append are logged, never surfaced to the caller.
type AuditLog struct {
	ID         string      `db:"id" json:"id"`
	Username   string      `db:"username" json:"username"`
	Action     AuditAction `db:"action" json:"action"`
	Resource   string      `db:"resource" json:"resource"`
	ResourceID *string     `db:"resource_id" json:"resource_id,omitempty"`
	IPAddress  string      `db:"ip_address" json:"ip_address"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}
