package model

import "time"

// AuditLog is an append-only record of an administrative mutation.
// Entries are never updated or deleted.  This struct corresponds to
// a row in the `audit_logs` table.
//
// Fields:
//  ID          primary key identifier.
//  AdminID     id of the acting administrator.
//  AdminEmail  email of the acting administrator at the time of action.
//  Action      verb describing the mutation (e.g. "UPDATE", "DELETE").
//  TargetModel entity kind the action was applied to (e.g. "Request").
//  TargetID    identifier of the mutated entity, stored as text.
//  Timestamp   when the action occurred.
type AuditLog struct {
	ID          uint64    // audit_logs.id
	AdminID     uint64    // audit_logs.admin_id
	AdminEmail  string    // audit_logs.admin_email
	Action      string    // audit_logs.action
	TargetModel string    // audit_logs.target_model
	TargetID    string    // audit_logs.target_id
	Timestamp   time.Time // audit_logs.timestamp
}
