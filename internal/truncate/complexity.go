package truncate

import "math"

// features are the structural signals a complexity score is computed from.
// Both the syntax tree path and the textual path fill the same struct.
type features struct {
	lines       int
	control     int // branching and looping constructs
	nesting     int // deepest control nesting, 1 for unnested control
	exceptions  int
	recursive   bool
	async       bool
	concurrency int
	decorators  int
	generic     bool
	heavy       int // pipelines, LINQ queries, macros
}

const (
	baseScore = 0.1

	controlScore     = 0.4
	controlStep      = 0.05
	controlStepCap   = 0.3
	nestingStep      = 0.1
	nestingCap       = 0.3
	exceptionScore   = 0.25
	exceptionStep    = 0.05
	exceptionStepCap = 0.15
	recursionScore   = 0.4
	asyncScore       = 0.4
	asyncStepCap     = 0.2
	decoratorScore   = 0.4
	decoratorStep    = 0.1
	decoratorStepCap = 0.3
	genericScore     = 0.1
	heavyStep        = 0.15
	heavyCap         = 0.45
	sizeStep         = 0.01
	sizeCap          = 0.3
)

// score turns features into a complexity estimate. It is always at least
// baseScore. One control structure, a decorator or an async marker each
// lift a function to SimpleComplexityThreshold or above on their own.
func score(f features) float64 {
	s := baseScore

	if f.control > 0 {
		s += controlScore + math.Min(controlStepCap, controlStep*float64(f.control-1))
	}
	if f.nesting > 1 {
		s += math.Min(nestingCap, nestingStep*float64(f.nesting-1))
	}
	if f.exceptions > 0 {
		s += exceptionScore + math.Min(exceptionStepCap, exceptionStep*float64(f.exceptions-1))
	}
	if f.recursive {
		s += recursionScore
	}
	if f.async || f.concurrency > 0 {
		extra := f.concurrency - 1
		if f.async {
			extra = f.concurrency
		}
		if extra < 0 {
			extra = 0
		}
		s += asyncScore + math.Min(asyncStepCap, controlStep*float64(extra))
	}
	if f.decorators > 0 {
		s += decoratorScore + math.Min(decoratorStepCap, decoratorStep*float64(f.decorators-1))
	}
	if f.generic {
		s += genericScore
	}
	s += math.Min(heavyCap, heavyStep*float64(f.heavy))
	s += math.Min(sizeCap, sizeStep*float64(f.lines))

	return math.Round(s*1000) / 1000
}
