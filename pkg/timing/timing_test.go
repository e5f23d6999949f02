package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefault_Nonzero(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 300*time.Millisecond, cfg.ReadinessPollInterval)
	assert.Equal(t, 2*time.Second, cfg.TrustPromptDelay)
	assert.Equal(t, 60*time.Second, cfg.IdleSweepPeriod)
	assert.Equal(t, 24*time.Hour, cfg.TempCleanupPeriod)
}

func TestZero_AllZero(t *testing.T) {
	cfg := Zero()
	assert.Equal(t, time.Duration(0), cfg.ReadinessPollInterval)
	assert.Equal(t, time.Duration(0), cfg.TrustPromptDelay)
	assert.Equal(t, time.Duration(0), cfg.IdleSweepPeriod)
	assert.Equal(t, time.Duration(0), cfg.DownloadTimeout)
}
