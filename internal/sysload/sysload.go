package sysload

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

// Mode selects how chunk transcription is dispatched.
type Mode string

const (
	Sequential Mode = "sequential"
	Parallel   Mode = "parallel"
)

// Decision is computed once at job start and held fixed for the job.
type Decision struct {
	Mode    Mode
	Workers int
}

// fallbackUtilization is assumed when the load sample is unavailable.
const fallbackUtilization = 50.0

// sampleWindow is how long the CPU utilization sample observes.
const sampleWindow = 200 * time.Millisecond

// SampleFunc returns current CPU utilization as a 0-100 percentage.
type SampleFunc func(ctx context.Context) (float64, error)

// Controller decides between sequential and parallel chunk dispatch based on
// CPU headroom. The speech engine already uses all cores for a single chunk,
// so fan-out under high load adds contention rather than throughput.
type Controller struct {
	sample    SampleFunc
	threshold float64
	logger    logger.Logger
}

func New(threshold float64, log logger.Logger) *Controller {
	return &Controller{
		sample:    sampleCPU,
		threshold: threshold,
		logger:    log,
	}
}

// NewWithSampler constructs a controller with an injected load sampler.
func NewWithSampler(threshold float64, sample SampleFunc, log logger.Logger) *Controller {
	return &Controller{
		sample:    sample,
		threshold: threshold,
		logger:    log,
	}
}

// Decide picks parallel dispatch only when utilization is strictly below the
// threshold and more than one worker was requested.
func (c *Controller) Decide(ctx context.Context, requestedWorkers int) Decision {
	if requestedWorkers < 1 {
		requestedWorkers = 1
	}

	util, err := c.sample(ctx)
	if err != nil {
		c.logger.Warn(ctx, "CPU sample unavailable, assuming %.0f%%: %v", fallbackUtilization, err)
		util = fallbackUtilization
	}

	if util < c.threshold && requestedWorkers > 1 {
		c.logger.Info(ctx, "CPU at %.1f%% (< %.0f%%): parallel transcription with %d workers", util, c.threshold, requestedWorkers)
		return Decision{Mode: Parallel, Workers: requestedWorkers}
	}

	c.logger.Info(ctx, "CPU at %.1f%%: sequential transcription", util)
	return Decision{Mode: Sequential, Workers: 1}
}

func sampleCPU(ctx context.Context) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, sampleWindow, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return fallbackUtilization, nil
	}
	return percents[0], nil
}
