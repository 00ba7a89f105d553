package truncate

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		f    features
		want float64
	}{
		{name: "empty", f: features{}, want: 0.1},
		{name: "one line", f: features{lines: 1}, want: 0.11},
		{name: "size capped", f: features{lines: 1000}, want: 0.4},
		{name: "single control", f: features{lines: 1, control: 1, nesting: 1}, want: 0.51},
		{name: "control capped", f: features{control: 100, nesting: 1}, want: 0.8},
		{name: "nesting capped", f: features{control: 100, nesting: 10}, want: 1.1},
		{name: "single exception", f: features{exceptions: 1}, want: 0.35},
		{name: "exceptions capped", f: features{exceptions: 10}, want: 0.5},
		{name: "recursion", f: features{recursive: true}, want: 0.5},
		{name: "async marker", f: features{async: true}, want: 0.5},
		{name: "single concurrency construct", f: features{concurrency: 1}, want: 0.5},
		{name: "async with concurrency", f: features{async: true, concurrency: 2}, want: 0.6},
		{name: "single decorator", f: features{decorators: 1}, want: 0.5},
		{name: "decorators capped", f: features{decorators: 5}, want: 0.8},
		{name: "generic", f: features{generic: true}, want: 0.2},
		{name: "heavy capped", f: features{heavy: 10}, want: 0.55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := score(tt.f); got != tt.want {
				t.Errorf("score(%+v) = %v, want %v", tt.f, got, tt.want)
			}
		})
	}
}

func TestScore_Threshold(t *testing.T) {
	simple := features{lines: 5}
	if got := score(simple); got >= SimpleComplexityThreshold {
		t.Errorf("straight-line function scored %v, want < %v", got, SimpleComplexityThreshold)
	}

	lifting := map[string]features{
		"control":   {lines: 1, control: 1, nesting: 1},
		"decorator": {lines: 1, decorators: 1},
		"async":     {lines: 1, async: true},
		"recursion": {lines: 1, recursive: true},
	}
	for name, f := range lifting {
		if got := score(f); got < SimpleComplexityThreshold {
			t.Errorf("%s scored %v, want >= %v", name, got, SimpleComplexityThreshold)
		}
	}
}

func TestScore_Monotonic(t *testing.T) {
	base := features{lines: 10, control: 2, nesting: 1}
	more := base
	more.control = 3
	if score(more) < score(base) {
		t.Errorf("adding control lowered the score: %v < %v", score(more), score(base))
	}
	more = base
	more.exceptions = 1
	if score(more) <= score(base) {
		t.Errorf("adding an exception did not raise the score: %v <= %v", score(more), score(base))
	}
}
