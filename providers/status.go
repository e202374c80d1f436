package providers

import "github.com/riberomr/ia-generated-video-mvp/models"

// canonicalStatuses is the single vendor-vocabulary mapping table.
// HeyGen reports pending/processing/completed/failed; Synthesia
// reports created/queued/in_progress/complete. Unrecognized values are
// deliberately absent: a status the table does not know leaves the
// persisted record unchanged rather than guessing.
var canonicalStatuses = map[string]models.RenderStatus{
	"created":     models.RenderPending,
	"queued":      models.RenderPending,
	"pending":     models.RenderPending,
	"in_progress": models.RenderProcessing,
	"processing":  models.RenderProcessing,
	"complete":    models.RenderCompleted,
	"completed":   models.RenderCompleted,
	"failed":      models.RenderFailed,
	"error":       models.RenderFailed,
}

// CanonicalStatus maps a raw vendor status onto the canonical
// vocabulary. ok is false for unrecognized values, which callers treat
// as a no-op.
func CanonicalStatus(raw string) (status models.RenderStatus, ok bool) {
	status, ok = canonicalStatuses[raw]
	return status, ok
}
