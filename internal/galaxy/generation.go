// Galaxy generation using simplex-noise star density over a square sector.
// Candidate sites are sampled on a jittered grid, kept where the density
// field is high enough, then planets and starlanes are derived.
package galaxy

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds galaxy generation parameters.
type GenConfig struct {
	Span          float64 // Side length of the square sector in map units
	GridStep      float64 // Candidate site spacing (smaller = denser galaxy)
	Seed          int64   // Random seed (0 = random)
	DensityFloor  float64 // Noise threshold below which no star forms (0.0–1.0)
	MaxPlanets    int     // Upper bound on planets per system
	LaneReach     float64 // Systems closer than this get a starlane
	SentinelLanes bool    // Leave lane distances at the import sentinel
}

// DefaultGenConfig returns the standard sector used by a fresh server.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Span:         200,
		GridStep:     12,
		Seed:         0,
		DensityFloor: 0.55,
		MaxPlanets:   5,
		LaneReach:    28,
	}
}

// SmallTestConfig returns a tiny sector for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Span:         60,
		GridStep:     15,
		Seed:         42,
		DensityFloor: 0.45,
		MaxPlanets:   3,
		LaneReach:    30,
	}
}

// Galaxy is the generated reference data set.
type Galaxy struct {
	Systems []System
	Planets []Planet
	Lanes   []Lane
}

// Generate creates a complete galaxy deterministically from the config seed.
func Generate(cfg GenConfig) *Galaxy {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	density := opensimplex.NewNormalized(seed)
	rng := rand.New(rand.NewSource(seed))

	g := &Galaxy{}
	var nextSystem SystemID = 1
	var nextPlanet PlanetID = 1

	// Jittered-grid sampling keeps systems apart without a relaxation pass.
	for gx := 0.0; gx < cfg.Span; gx += cfg.GridStep {
		for gy := 0.0; gy < cfg.Span; gy += cfg.GridStep {
			d := density.Eval2(gx*0.02, gy*0.02)
			if d < cfg.DensityFloor {
				continue
			}

			sys := System{
				ID:   nextSystem,
				Name: systemName(nextSystem, rng),
				X:    gx + rng.Float64()*cfg.GridStep*0.6,
				Y:    gy + rng.Float64()*cfg.GridStep*0.6,
			}
			nextSystem++
			g.Systems = append(g.Systems, sys)

			// Planet count scales with local density; rings are drawn
			// without replacement from 1–6.
			count := 1 + int(d*float64(cfg.MaxPlanets-1))
			rings := rng.Perm(RingOutermost)
			for p := 0; p < count && p < len(rings); p++ {
				g.Planets = append(g.Planets, Planet{
					ID:          nextPlanet,
					SystemID:    sys.ID,
					Name:        fmt.Sprintf("%s %s", sys.Name, romanNumeral(p+1)),
					OrbitalRing: rings[p] + 1,
				})
				nextPlanet++
			}
		}
	}

	// Lanes between nearby systems, each pair charted once.
	var nextLane LaneID = 1
	for i := range g.Systems {
		for j := i + 1; j < len(g.Systems); j++ {
			dist := Distance(g.Systems[i], g.Systems[j])
			if dist > cfg.LaneReach {
				continue
			}
			stored := dist
			if cfg.SentinelLanes {
				stored = LaneDistanceSentinel
			}
			g.Lanes = append(g.Lanes, Lane{
				ID:       nextLane,
				SystemA:  g.Systems[i].ID,
				SystemB:  g.Systems[j].ID,
				Distance: stored,
			})
			nextLane++
		}
	}

	return g
}

var namePrefixes = []string{
	"Auriga", "Cetus", "Draco", "Eridan", "Fornax", "Grus", "Hydrus",
	"Indus", "Lyra", "Mensa", "Norma", "Orion", "Pavo", "Ravus", "Scutum",
	"Talos", "Vela",
}

func systemName(id SystemID, rng *rand.Rand) string {
	prefix := namePrefixes[rng.Intn(len(namePrefixes))]
	return fmt.Sprintf("%s-%03d", prefix, id)
}

func romanNumeral(n int) string {
	numerals := []string{"I", "II", "III", "IV", "V", "VI"}
	if n < 1 || n > len(numerals) {
		return fmt.Sprintf("%d", n)
	}
	return numerals[n-1]
}

// Nearest returns the system closest to the given point, or nil for an
// empty galaxy.
func (g *Galaxy) Nearest(x, y float64) *System {
	var best *System
	bestDist := math.MaxFloat64
	for i := range g.Systems {
		s := &g.Systems[i]
		d := (s.X-x)*(s.X-x) + (s.Y-y)*(s.Y-y)
		if d < bestDist {
			bestDist = d
			best = s
		}
	}
	return best
}
