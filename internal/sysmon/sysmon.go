// Package sysmon samples system-wide CPU and memory usage and caps memory
// budgets to what the host can hold.
package sysmon

import (
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// BudgetShare is the fraction of available memory a scratch budget may take.
const BudgetShare = 4

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
	Available  uint64  // bytes
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Returns zero values on error.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
		s.Available = vmem.Available
	}
	return s
}

// AvailableMemory returns the memory the system can give without swapping.
func AvailableMemory() (uint64, error) {
	vmem, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vmem.Available, nil
}

// CapBudget returns requested, lowered to a BudgetShare-th of available
// when available is known (non-zero).
func CapBudget(requested, available uint64) uint64 {
	if available == 0 {
		return requested
	}
	return min(requested, available/BudgetShare)
}
