package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestReconcileReport_Changed tests change detection on the report
func TestReconcileReport_Changed(t *testing.T) {
	tests := []struct {
		name   string
		report ReconcileReport
		want   bool
	}{
		{"empty", ReconcileReport{}, false},
		{"created only", ReconcileReport{Created: 1}, true},
		{"updated only", ReconcileReport{Updated: 2}, true},
		{"deleted only", ReconcileReport{Deleted: 1}, true},
		{"failures only", ReconcileReport{Failures: []ReconcileFailure{{Path: "a.md"}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.report.Changed())
		})
	}
}

// TestReconcileReport_Failed tests the failure count
func TestReconcileReport_Failed(t *testing.T) {
	report := ReconcileReport{
		Failures: []ReconcileFailure{
			{Path: "a.md", Error: "embed: connection refused"},
			{Path: "b.md", Error: "upsert: timeout"},
		},
	}

	assert.Equal(t, 2, report.Failed())
	assert.Equal(t, "a.md", report.Failures[0].Path)
}
