package sim

import (
	"math"
	"math/rand"
)

// Rand wraps a privately seeded source with the draw shapes the trading
// strategies consume. Determinism of a run requires that every random
// number is drawn from this single stream at the moment a strategy acts,
// so replaying a seed reproduces the exact instruction sequence.
type Rand struct {
	src *rand.Rand
}

// NewRand creates a generator seeded with the given value.
func NewRand(seed int64) *Rand {
	return &Rand{src: rand.New(rand.NewSource(seed))}
}

// Float64 draws a uniform value in [0,1).
func (r *Rand) Float64() float64 {
	return r.src.Float64()
}

// Gaussian draws a standard normal value.
func (r *Rand) Gaussian() float64 {
	return r.src.NormFloat64()
}

// LogNormal draws exp(scale + shape·N(0,1)); always positive.
func (r *Rand) LogNormal(scale, shape float64) float64 {
	return math.Exp(scale + r.src.NormFloat64()*shape)
}

// Laplacian draws from a Laplace distribution with the given location
// and scale.
func (r *Rand) Laplacian(mu, sigma float64) float64 {
	u := r.src.Float64() - 0.5
	sign := 1.0
	if u < 0 {
		sign = -1.0
	} else if u == 0 {
		sign = 0
	}
	return mu - sign*sigma*math.Log(1.0-2.0*math.Abs(u))
}

// PositiveLaplacian redraws until the Laplacian sample is non-negative.
func (r *Rand) PositiveLaplacian(mu, sigma float64) float64 {
	for {
		if v := r.Laplacian(mu, sigma); v >= 0 {
			return v
		}
	}
}

// Exponential draws an integer waiting time with mean beta.
func (r *Rand) Exponential(beta float64) int {
	var u float64
	for {
		u = r.src.Float64()
		if u != 1 {
			break
		}
	}
	return int(math.Round(-beta * math.Log(1-u)))
}

// PowerLaw draws xmin·(1−u)^(−1/(1−beta)), the relative-price law used
// for off-spread order placement. With beta > 1 the exponent is
// positive, so xmin is the upper truncation point and draws fall in
// (0, xmin].
func (r *Rand) PowerLaw(beta, xmin float64) float64 {
	return xmin * math.Pow(1.0-r.src.Float64(), -1.0/(1.0-beta))
}

// GeometricSleep counts the Bernoulli trials until an action fires:
// starting at one tick, it adds a tick while a uniform draw stays below
// idleProb. Strategies use it to space their wake-ups.
func (r *Rand) GeometricSleep(idleProb float64) int {
	sleep := 1
	for r.src.Float64() < idleProb {
		sleep++
	}
	return sleep
}
