package benchmark

import (
	"context"
	"errors"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// ResourceUsage is a point-in-time view of host utilization, both values in percent.
type ResourceUsage struct {
	CPUPercent    float64
	MemoryPercent float64
}

// ResourceSampler takes a ResourceUsage sample.
type ResourceSampler interface {
	Sample(ctx context.Context) (ResourceUsage, error)
}

const defaultCPUSampleInterval = time.Second

// HostSampler samples the host through gopsutil.
// CPU usage is measured over Interval, an Interval of 0 compares against the previous call.
type HostSampler struct {
	Interval time.Duration
}

// NewHostSampler creates a HostSampler measuring CPU usage over one second.
func NewHostSampler() HostSampler {
	return HostSampler{Interval: defaultCPUSampleInterval}
}

// Sample implements ResourceSampler.
func (s HostSampler) Sample(ctx context.Context) (ResourceUsage, error) {
	cpuPercents, err := cpu.PercentWithContext(ctx, s.Interval, false)
	if err != nil {
		return ResourceUsage{}, errors.Join(ErrSamplingFailed, err)
	}

	if len(cpuPercents) == 0 {
		return ResourceUsage{}, errors.Join(ErrSamplingFailed, errors.New("no cpu usage reported"))
	}

	memory, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return ResourceUsage{}, errors.Join(ErrSamplingFailed, err)
	}

	return ResourceUsage{CPUPercent: cpuPercents[0], MemoryPercent: memory.UsedPercent}, nil
}
