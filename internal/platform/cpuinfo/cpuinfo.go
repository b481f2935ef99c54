// Package cpuinfo provides container-aware CPU count detection.
//
// In containerized environments (Docker/K8s), runtime.NumCPU reports the host
// CPU count, not the cgroup-enforced limit. This package reads the cgroup
// (v2 then v1) CPU quota so that auto-scaling parameters such as the worker
// pool size are calculated from the actual available capacity.
package cpuinfo

import (
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// cgroup filesystem paths, overridable in tests.
var (
	cgroupV2CPUMax = "/sys/fs/cgroup/cpu.max"
	cgroupV1Quota  = "/sys/fs/cgroup/cpu/cpu.cfs_quota_us"
	cgroupV1Period = "/sys/fs/cgroup/cpu/cpu.cfs_period_us"
)

// AvailableCPUs returns the number of CPUs available to this process.
//
// Resolution order:
//  1. cgroup v2 cpu.max
//  2. cgroup v1 cpu.cfs_quota_us / cpu.cfs_period_us
//  3. runtime.NumCPU fallback (host CPU count)
//
// The result is always >= 1.
func AvailableCPUs() int {
	if cpus, ok := readCgroupV2(cgroupV2CPUMax); ok {
		return max(1, int(math.Floor(cpus)))
	}
	if cpus, ok := readCgroupV1(cgroupV1Quota, cgroupV1Period); ok {
		return max(1, int(math.Floor(cpus)))
	}
	return max(1, runtime.NumCPU())
}

// readCgroupV2 parses a cgroup v2 cpu.max file. Format: "<quota> <period>",
// e.g. "400000 100000" means 4 CPUs; "max 100000" means unlimited.
func readCgroupV2(path string) (float64, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	parts := strings.Fields(strings.TrimSpace(string(raw)))
	if len(parts) != 2 || parts[0] == "max" {
		return 0, false
	}

	quota, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, false
	}
	period, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || period <= 0 || quota <= 0 {
		return 0, false
	}

	return quota / period, true
}

// readCgroupV1 parses cgroup v1 quota and period files. A quota of -1 means
// unlimited.
func readCgroupV1(quotaPath, periodPath string) (float64, bool) {
	quota, ok := readCgroupInt(quotaPath)
	if !ok || quota <= 0 {
		return 0, false
	}
	period, ok := readCgroupInt(periodPath)
	if !ok || period <= 0 {
		return 0, false
	}
	return float64(quota) / float64(period), true
}

func readCgroupInt(path string) (int64, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
