package agent

import "github.com/vogtryan/dbs3/rng"

// DistributionKind selects which of rng.Generator's three named
// distributions a Distribution samples from, matching the
// -speedUniform/-speedNormal/-speedLogNormal flag family of spec §6.
type DistributionKind int

const (
	// Uniform samples uniformly over [Min, Max].
	Uniform DistributionKind = iota
	// Normal samples from a normal distribution fit to [Min, Max].
	Normal
	// LogNormal samples from a log-normal distribution fit to [Min, Max].
	LogNormal
)

// Distribution is a named range a speed or pause duration is drawn
// from.
type Distribution struct {
	Kind     DistributionKind
	Min, Max float64
}

// Sample draws one value from the distribution using gen.
func (d Distribution) Sample(gen rng.Generator) float64 {
	switch d.Kind {
	case Normal:
		return gen.Normal(d.Min, d.Max)
	case LogNormal:
		return gen.LogNormal(d.Min, d.Max)
	default:
		return gen.Uniform(d.Min, d.Max)
	}
}

// DefaultSpeed is spec §6's default: normal, 0.83-2.21 m/s.
var DefaultSpeed = Distribution{Kind: Normal, Min: 0.83, Max: 2.21}
