package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunHealthChecks(t *testing.T) {
	status := RunHealthChecks(context.Background(), map[string]HealthCheck{
		"ok":   func(context.Context) error { return nil },
		"down": func(context.Context) error { return errors.New("refused") },
	})
	assert.True(t, status.Checks["ok"])
	assert.False(t, status.Checks["down"])
	assert.False(t, status.CheckedAt.IsZero())

	snapshot := GetHealthStatus()
	snapshot.Checks["ok"] = false
	assert.True(t, GetHealthStatus().Checks["ok"], "snapshots are copies")
}
