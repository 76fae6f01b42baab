package repository

import (
	"context"
	"database/sql"

	"github.com/lifelink/blood-donation-api/internal/model"
)

// AuditRepo appends to and reads the append-only 'audit_logs' table.
// There are deliberately no update or delete methods.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Append writes one audit entry.
func (r *AuditRepo) Append(ctx context.Context, e model.AuditLog) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO audit_logs (admin_id, admin_email, action, target_model, target_id) VALUES (?,?,?,?,?)",
		e.AdminID, e.AdminEmail, e.Action, e.TargetModel, e.TargetID)
	return err
}

// List returns the most recent entries, newest first, capped at limit.
func (r *AuditRepo) List(ctx context.Context, limit int) ([]model.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,admin_id,admin_email,action,target_model,target_id,timestamp"+
			" FROM audit_logs ORDER BY timestamp DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AuditLog, 0)
	for rows.Next() {
		var e model.AuditLog
		if err := rows.Scan(&e.ID, &e.AdminID, &e.AdminEmail, &e.Action,
			&e.TargetModel, &e.TargetID, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
