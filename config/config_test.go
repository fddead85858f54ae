package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault_ProducesValidConfig(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
}

func TestValidate_RejectsNonPowerOfTwoBucketCount(t *testing.T) {
	c := Default()
	c.BucketCountKind = 100
	require.ErrorIs(t, c.Validate(), errNotPowerOfTwo)
}

func TestValidate_RejectsZeroBucketCount(t *testing.T) {
	c := Default()
	c.BucketCountID = 0
	require.ErrorIs(t, c.Validate(), errNotPowerOfTwo)
}

func TestApplyEnv_OverridesDataDir(t *testing.T) {
	t.Setenv("NOSTRDB_DATA_DIR", "/tmp/custom-nostrdb")
	c := Default()
	require.Equal(t, "/tmp/custom-nostrdb", c.DataDir)
}

func TestApplyEnv_OverridesBloomFlag(t *testing.T) {
	t.Setenv("NOSTRDB_BLOOM", "false")
	c := Default()
	require.False(t, c.BloomAccelerated)
}
