package turbulence

import (
	"math"
	"math/rand/v2"
)

// Heuristic constants. These are demo values with no calibration behind them.
const (
	StandardPressureHPa = 1013.0 // sea-level reference for the pressure term
	windWeight          = 40.0   // score contributed by 100 kts of wind
	pressureWeight      = 0.5    // score per hPa below standard

	probabilityJitter = 5.0  // +/- jitter on the current probability
	forecastJitter    = 10.0 // +/- jitter on each forecast step

	mediumThreshold = 40.0
	highThreshold   = 70.0

	// ForecastSteps is the number of points in Next30Min (one per 3 minutes)
	ForecastSteps = 10

	minProbability = 0.0
	maxProbability = 100.0
)

// RandomSource supplies uniformly distributed values in [lo, hi]
type RandomSource interface {
	Uniform(lo, hi float64) float64
}

// RandomSourceFunc adapts a function to RandomSource
type RandomSourceFunc func(lo, hi float64) float64

func (f RandomSourceFunc) Uniform(lo, hi float64) float64 { return f(lo, hi) }

type globalSource struct{}

// Uniform draws from the math/rand/v2 global generator, which is safe for concurrent use
func (globalSource) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*rand.Float64()
}

// DefaultSource returns the process-wide random source
func DefaultSource() RandomSource {
	return globalSource{}
}

// Estimator turns flight samples into turbulence assessments
type Estimator struct {
	rnd RandomSource
}

// NewEstimator creates an estimator. A nil source falls back to DefaultSource.
func NewEstimator(rnd RandomSource) *Estimator {
	if rnd == nil {
		rnd = DefaultSource()
	}
	return &Estimator{rnd: rnd}
}

// BaseScore is the deterministic part of the estimate: stronger wind and
// lower pressure both raise it. It is not clamped.
func BaseScore(s FlightSample) float64 {
	return (s.WindSpeed/100)*windWeight + (StandardPressureHPa-s.Pressure)*pressureWeight
}

// Estimate produces an assessment for the sample. It never fails; it consumes
// 1+ForecastSteps draws from the random source.
func (e *Estimator) Estimate(s FlightSample) Assessment {
	p := BaseScore(s) + e.rnd.Uniform(-probabilityJitter, probabilityJitter)
	p = round2(Clamp(p, minProbability, maxProbability))

	level := RiskLevelFor(p)

	next := make([]float64, ForecastSteps)
	for i := range next {
		next[i] = Clamp(p+e.rnd.Uniform(-forecastJitter, forecastJitter), minProbability, maxProbability)
	}

	return Assessment{
		Probability: p,
		RiskLevel:   level,
		Suggestion:  SuggestionFor(level),
		Next30Min:   next,
	}
}

// Clamp limits v to [lo, hi]. NaN is mapped to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
