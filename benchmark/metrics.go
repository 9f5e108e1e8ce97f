// Package benchmark - Synthetic workloads for timing the post-processing pipeline.
package benchmark

import (
	"time"

	"github.com/nvr-ai/go-detect/profiler"
)

// PerformanceMetrics captures the outcome of one scenario.
type PerformanceMetrics struct {
	Scenario        Scenario         `json:"scenario"`
	Timestamp       time.Time        `json:"timestamp"`
	TotalDuration   time.Duration    `json:"total_duration"`
	Stages          []profiler.Stats `json:"stages"`
	FramesPerSecond float64          `json:"frames_per_second"`
	MemoryStats     MemoryMetrics    `json:"memory_stats"`
	CPUStats        CPUMetrics       `json:"cpu_stats"`
	DetectionCount  int              `json:"detection_count"`
	ErrorRate       float64          `json:"error_rate"`
}

// MemoryMetrics captures memory usage statistics.
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes    uint64 `json:"heap_sys_bytes"`
}

// CPUMetrics describes the CPUs available to the run.
type CPUMetrics struct {
	NumCPU     int `json:"num_cpu"`
	GOMAXPROCS int `json:"gomaxprocs"`
}
