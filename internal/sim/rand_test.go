package sim

import "testing"

func TestRandSameSeedSameStream(t *testing.T) {
	a := NewRand(42)
	b := NewRand(42)

	for i := 0; i < 100; i++ {
		if av, bv := a.Float64(), b.Float64(); av != bv {
			t.Fatalf("draw %d diverged: %v vs %v", i, av, bv)
		}
	}
}

func TestRandDifferentSeedsDiverge(t *testing.T) {
	a := NewRand(1)
	b := NewRand(2)

	same := true
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			same = false
			break
		}
	}
	if same {
		t.Error("expected different seeds to produce different streams")
	}
}

func TestLogNormalIsPositive(t *testing.T) {
	r := NewRand(7)
	for i := 0; i < 1000; i++ {
		if v := r.LogNormal(7.5663, 1.3355); v <= 0 {
			t.Fatalf("draw %d: log-normal value %v not positive", i, v)
		}
	}
}

func TestPowerLawTruncatedAtXmin(t *testing.T) {
	r := NewRand(7)
	const xmin = 0.05
	for i := 0; i < 1000; i++ {
		if v := r.PowerLaw(1.7248, xmin); v <= 0 || v > xmin {
			t.Fatalf("draw %d: power-law value %v outside (0, %v]", i, v, xmin)
		}
	}
}

func TestPositiveLaplacianNonNegative(t *testing.T) {
	r := NewRand(7)
	for i := 0; i < 1000; i++ {
		if v := r.PositiveLaplacian(0, 1); v < 0 {
			t.Fatalf("draw %d: value %v negative", i, v)
		}
	}
}

func TestGeometricSleepAtLeastOne(t *testing.T) {
	r := NewRand(7)
	for i := 0; i < 1000; i++ {
		if v := r.GeometricSleep(0.9847); v < 1 {
			t.Fatalf("draw %d: sleep %d below one tick", i, v)
		}
	}
}

func TestExponentialNonNegative(t *testing.T) {
	r := NewRand(7)
	for i := 0; i < 1000; i++ {
		if v := r.Exponential(100); v < 0 {
			t.Fatalf("draw %d: waiting time %d negative", i, v)
		}
	}
}
