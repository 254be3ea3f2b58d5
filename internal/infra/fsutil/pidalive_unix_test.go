//go:build !windows

package fsutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPidAlive_CurrentProcess(t *testing.T) {
	assert.True(t, pidAlive(os.Getpid()))
}

func TestPidAlive_ZeroOrNegative(t *testing.T) {
	assert.False(t, pidAlive(0))
	assert.False(t, pidAlive(-1))
}

func TestPidAlive_LikelyDeadPID(t *testing.T) {
	assert.False(t, pidAlive(999999))
}
