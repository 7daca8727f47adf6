package sysload

import (
	"context"
	"errors"
	"testing"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

func fixedSample(util float64) SampleFunc {
	return func(ctx context.Context) (float64, error) {
		return util, nil
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		utilization float64
		workers     int
		wantMode    Mode
		wantWorkers int
	}{
		{"low load many workers", 20, 4, Parallel, 4},
		{"just below threshold", 69.9, 4, Parallel, 4},
		{"exactly at threshold", 70, 4, Sequential, 1},
		{"above threshold", 90, 4, Sequential, 1},
		{"low load single worker", 20, 1, Sequential, 1},
		{"zero workers clamped", 20, 0, Sequential, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewWithSampler(70, fixedSample(tt.utilization), logger.New("error"))
			d := c.Decide(context.Background(), tt.workers)

			if d.Mode != tt.wantMode {
				t.Errorf("mode = %s, want %s", d.Mode, tt.wantMode)
			}
			if d.Workers != tt.wantWorkers {
				t.Errorf("workers = %d, want %d", d.Workers, tt.wantWorkers)
			}
		})
	}
}

func TestDecideSamplerFailure(t *testing.T) {
	failing := func(ctx context.Context) (float64, error) {
		return 0, errors.New("no /proc")
	}

	// Fallback utilization is 50, below the threshold: parallel is allowed.
	c := NewWithSampler(70, failing, logger.New("error"))
	d := c.Decide(context.Background(), 4)
	if d.Mode != Parallel {
		t.Errorf("mode = %s, want parallel under fallback utilization", d.Mode)
	}

	// With a threshold at or below the fallback, sequential wins.
	c = NewWithSampler(40, failing, logger.New("error"))
	d = c.Decide(context.Background(), 4)
	if d.Mode != Sequential {
		t.Errorf("mode = %s, want sequential under fallback utilization", d.Mode)
	}
}
