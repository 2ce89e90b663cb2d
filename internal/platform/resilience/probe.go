package resilience

import (
	"context"
	"fmt"
)

// ProbeVerdict classifies a single probe result for a bounded walk.
type ProbeVerdict int

const (
	// ProbeHit marks the candidate as present and resets the miss counter.
	ProbeHit ProbeVerdict = iota
	// ProbeMiss counts toward the consecutive miss bound.
	ProbeMiss
	// ProbeFatal stops the walk and returns the probe error.
	ProbeFatal
)

// DescendingWalk probes integer candidates from Start downward until MaxMisses
// consecutive misses are observed or the candidate drops below Floor.
type DescendingWalk struct {
	Start     int
	Floor     int
	MaxMisses int
	Probe     func(ctx context.Context, candidate int) error
	// Classify maps a probe error to a verdict. A nil error is always a hit.
	Classify func(err error) ProbeVerdict
}

// WalkResult lists hits in probe order plus the number of probes issued.
type WalkResult struct {
	Hits   []int
	Probes int
	Misses int
}

func (w DescendingWalk) Run(ctx context.Context) (WalkResult, error) {
	if w.Probe == nil || w.Classify == nil {
		return WalkResult{}, fmt.Errorf("probe and classify functions are required")
	}
	if w.MaxMisses < 1 {
		return WalkResult{}, fmt.Errorf("max misses must be >= 1")
	}

	var out WalkResult
	consecutive := 0
	for candidate := w.Start; candidate >= w.Floor && consecutive < w.MaxMisses; candidate-- {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		err := w.Probe(ctx, candidate)
		out.Probes++
		if err == nil {
			out.Hits = append(out.Hits, candidate)
			consecutive = 0
			continue
		}

		switch w.Classify(err) {
		case ProbeHit:
			out.Hits = append(out.Hits, candidate)
			consecutive = 0
		case ProbeMiss:
			out.Misses++
			consecutive++
		default:
			return out, fmt.Errorf("probe %d: %w", candidate, err)
		}
	}

	return out, nil
}
