package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleTransitions(t *testing.T) {
	var lc Lifecycle
	assert.Equal(t, StatusIdle, lc.Status)
	assert.False(t, lc.Pending())
	assert.False(t, lc.Failed())

	lc.Begin()
	assert.True(t, lc.Pending())

	lc.Succeed()
	assert.Equal(t, StatusSucceeded, lc.Status)
	assert.Empty(t, lc.Err)

	lc.Fail("Insufficient stock available.")
	assert.True(t, lc.Failed())
	assert.Equal(t, "Insufficient stock available.", lc.Err)

	// Starting a new request clears the previous failure.
	lc.Begin()
	assert.True(t, lc.Pending())
	assert.Empty(t, lc.Err)

	lc.Reset()
	assert.Equal(t, StatusIdle, lc.Status)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "succeeded", StatusSucceeded.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", Status(99).String())
}
