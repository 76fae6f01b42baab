// Package audit appends immutable log entries for administrative
// mutations. Failures are reported to the caller, which treats them
// as best-effort: an audit failure never aborts the operation it
// describes.
package audit

import (
	"context"

	"github.com/lifelink/blood-donation-api/internal/model"
	"github.com/lifelink/blood-donation-api/internal/repository"
)

// Recorder writes audit entries through the audit repository.
type Recorder struct {
	Repo *repository.AuditRepo
}

func NewRecorder(repo *repository.AuditRepo) *Recorder {
	if repo == nil {
		panic("nil repository passed to audit.NewRecorder")
	}
	return &Recorder{Repo: repo}
}

// Record appends one entry. Pure append, no validation.
func (r *Recorder) Record(ctx context.Context, adminID uint64, adminEmail, action, targetModel, targetID string) error {
	return r.Repo.Append(ctx, model.AuditLog{
		AdminID:     adminID,
		AdminEmail:  adminEmail,
		Action:      action,
		TargetModel: targetModel,
		TargetID:    targetID,
	})
}
