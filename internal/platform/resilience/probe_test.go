package resilience

import (
	"context"
	"errors"
	"testing"
)

var (
	errMissing = errors.New("missing")
	errDenied  = errors.New("denied")
)

func classifyTestProbe(err error) ProbeVerdict {
	if errors.Is(err, errDenied) {
		return ProbeFatal
	}
	return ProbeMiss
}

func TestDescendingWalk_StopsAfterConsecutiveMisses(t *testing.T) {
	t.Parallel()

	present := map[int]bool{2021: true, 2020: true, 2018: true}
	var probed []int
	walk := DescendingWalk{
		Start:     2023,
		Floor:     1990,
		MaxMisses: 4,
		Probe: func(_ context.Context, n int) error {
			probed = append(probed, n)
			if present[n] {
				return nil
			}
			return errMissing
		},
		Classify: classifyTestProbe,
	}

	res, err := walk.Run(context.Background())
	if err != nil {
		t.Fatalf("run walk: %v", err)
	}

	wantHits := []int{2021, 2020, 2018}
	if len(res.Hits) != len(wantHits) {
		t.Fatalf("unexpected hits: %v", res.Hits)
	}
	for i := range wantHits {
		if res.Hits[i] != wantHits[i] {
			t.Fatalf("hit %d: got %d want %d", i, res.Hits[i], wantHits[i])
		}
	}
	// 2023 2022 miss, 2021 2020 hit, 2019 miss, 2018 hit resets, then 2017..2014 miss.
	if last := probed[len(probed)-1]; last != 2014 {
		t.Fatalf("expected last probe at 2014, got %d (%v)", last, probed)
	}
	if res.Probes != 10 {
		t.Fatalf("expected 10 probes, got %d", res.Probes)
	}
}

func TestDescendingWalk_FatalAbortsImmediately(t *testing.T) {
	t.Parallel()

	calls := 0
	walk := DescendingWalk{
		Start:     2023,
		Floor:     1990,
		MaxMisses: 4,
		Probe: func(_ context.Context, n int) error {
			calls++
			if n == 2022 {
				return errDenied
			}
			return nil
		},
		Classify: classifyTestProbe,
	}

	res, err := walk.Run(context.Background())
	if !errors.Is(err, errDenied) {
		t.Fatalf("expected denied error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected two probes before abort, got %d", calls)
	}
	if len(res.Hits) != 1 || res.Hits[0] != 2023 {
		t.Fatalf("unexpected hits before abort: %v", res.Hits)
	}
}

func TestDescendingWalk_RespectsFloor(t *testing.T) {
	t.Parallel()

	walk := DescendingWalk{
		Start:     2003,
		Floor:     2001,
		MaxMisses: 4,
		Probe:     func(context.Context, int) error { return nil },
		Classify:  classifyTestProbe,
	}

	res, err := walk.Run(context.Background())
	if err != nil {
		t.Fatalf("run walk: %v", err)
	}
	if res.Probes != 3 {
		t.Fatalf("expected probes 2003..2001, got %d", res.Probes)
	}
}
