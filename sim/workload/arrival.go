package workload

import (
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// ArrivalSampler generates inter-arrival times for an order flow.
type ArrivalSampler interface {
	// SampleIAT returns the next inter-arrival time. Always at least one second.
	SampleIAT(rng *rand.Rand) time.Duration
}

func secondsToIAT(s float64) time.Duration {
	iat := time.Duration(s * float64(time.Second)).Round(time.Second)
	if iat < time.Second {
		return time.Second
	}
	return iat
}

// PoissonSampler generates exponentially-distributed inter-arrival times (CV=1).
type PoissonSampler struct {
	ratePerSecond float64
}

func (s *PoissonSampler) SampleIAT(rng *rand.Rand) time.Duration {
	return secondsToIAT(rng.ExpFloat64() / s.ratePerSecond)
}

// GammaSampler generates Gamma-distributed inter-arrival times. CV > 1
// produces bursty arrivals, e.g. a shift change releasing many orders at once.
// Implemented using Marsaglia-Tsang's method for shape >= 1,
// with transformation for shape < 1.
type GammaSampler struct {
	shape float64 // 1/CV²
	scale float64 // CV²/rate, in seconds
}

func (s *GammaSampler) SampleIAT(rng *rand.Rand) time.Duration {
	return secondsToIAT(gammaRand(rng, s.shape, s.scale))
}

// gammaRand samples from Gamma(shape, scale) using Marsaglia-Tsang's method.
// For shape < 1: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()

		// Squeeze test
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// ConstantSampler releases orders at a fixed interval, like a conveyor
// emitting pallets on a timer.
type ConstantSampler struct {
	interval time.Duration
}

func (s *ConstantSampler) SampleIAT(_ *rand.Rand) time.Duration {
	return secondsToIAT(s.interval.Seconds())
}

// NewArrivalSampler creates an ArrivalSampler from a spec and a rate in orders per hour.
func NewArrivalSampler(spec ArrivalSpec, ordersPerHour float64) ArrivalSampler {
	ratePerSecond := ordersPerHour / 3600
	if ratePerSecond < 1e-9 {
		ratePerSecond = 1e-9
	}
	switch spec.Process {
	case "gamma":
		cv := 1.0
		if spec.CV != nil && *spec.CV > 0 {
			cv = *spec.CV
		}
		shape := 1.0 / (cv * cv)
		if shape < 0.01 {
			logrus.Warnf("Gamma shape %.4f (CV=%.1f) is very small; falling back to Poisson", shape, cv)
			return &PoissonSampler{ratePerSecond: ratePerSecond}
		}
		return &GammaSampler{shape: shape, scale: cv * cv / ratePerSecond}

	case "constant":
		return &ConstantSampler{interval: time.Duration(float64(time.Second) / ratePerSecond)}

	default:
		return &PoissonSampler{ratePerSecond: ratePerSecond}
	}
}
