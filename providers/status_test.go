package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riberomr/ia-generated-video-mvp/models"
)

func TestCanonicalStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want models.RenderStatus
	}{
		{"created", models.RenderPending},
		{"queued", models.RenderPending},
		{"pending", models.RenderPending},
		{"in_progress", models.RenderProcessing},
		{"processing", models.RenderProcessing},
		{"complete", models.RenderCompleted},
		{"completed", models.RenderCompleted},
		{"failed", models.RenderFailed},
		{"error", models.RenderFailed},
	}

	for _, tc := range cases {
		got, ok := CanonicalStatus(tc.raw)
		assert.True(t, ok, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestCanonicalStatusUnknownValues(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "rendering", "done", "COMPLETE"} {
		_, ok := CanonicalStatus(raw)
		assert.False(t, ok, raw)
	}
}
