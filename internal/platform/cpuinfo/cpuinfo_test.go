package cpuinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCgroupV2(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		expected float64
		ok       bool
	}{
		{"four cpus", "400000 100000\n", 4.0, true},
		{"half cpu", "50000 100000", 0.5, true},
		{"unlimited", "max 100000", 0, false},
		{"malformed", "garbage", 0, false},
		{"zero period", "100000 0", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, dir, "cpu.max-"+tc.name, tc.content)
			cpus, ok := readCgroupV2(path)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.expected, cpus, 0.001)
			}
		})
	}
}

func TestReadCgroupV2_MissingFile(t *testing.T) {
	_, ok := readCgroupV2(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.False(t, ok)
}

func TestReadCgroupV1(t *testing.T) {
	dir := t.TempDir()

	t.Run("two cpus", func(t *testing.T) {
		quota := writeFile(t, dir, "quota", "200000\n")
		period := writeFile(t, dir, "period", "100000\n")
		cpus, ok := readCgroupV1(quota, period)
		require.True(t, ok)
		assert.InDelta(t, 2.0, cpus, 0.001)
	})

	t.Run("unlimited quota", func(t *testing.T) {
		quota := writeFile(t, dir, "quota-unlim", "-1")
		period := writeFile(t, dir, "period-unlim", "100000")
		_, ok := readCgroupV1(quota, period)
		assert.False(t, ok)
	})
}

func TestAvailableCPUs_AtLeastOne(t *testing.T) {
	assert.GreaterOrEqual(t, AvailableCPUs(), 1)
}
