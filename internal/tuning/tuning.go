// Package tuning loads game-balance tunables from YAML. Every value has a
// default matching the shipped balance; a missing file means defaults.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the full tunable set.
type Tuning struct {
	Movement  Movement  `yaml:"movement"`
	Detection Detection `yaml:"detection"`
}

// Movement holds movement-rule tunables.
type Movement struct {
	MaxLocalMovesPerTurn     int     `yaml:"max_local_moves_per_turn"`
	StealthLocalMovesPerTurn int     `yaml:"stealth_local_moves_per_turn"`
	LongHaulRingSpan         int     `yaml:"long_haul_ring_span"`
	LongHaulEnergyPerShip    int     `yaml:"long_haul_energy_per_ship"`
	LaneShortHopDistance     float64 `yaml:"lane_short_hop_distance"`
	LaneSlowTicks            int     `yaml:"lane_slow_ticks"`
	LaneBoostEnergyPerShip   int     `yaml:"lane_boost_energy_per_ship"`
	WarpBaseTicks            int     `yaml:"warp_base_ticks"`
	WarpTickDistance         float64 `yaml:"warp_tick_distance"`
	WarpRangeLimit           float64 `yaml:"warp_range_limit"`
	GravityWellMultiplier    int     `yaml:"gravity_well_multiplier"`

	// The second local move in a tick sets the movement lock. When
	// LockOnOrbitChangeOnly is true (the shipped balance), only a move that
	// crosses an orbit boundary triggers it; when false, any second local
	// move does.
	LockOnOrbitChangeOnly bool `yaml:"lock_on_orbit_change_only"`
}

// Detection holds stealth/detection tunables.
type Detection struct {
	BaseMerit        int `yaml:"base_merit"`
	MeritPerMember   int `yaml:"merit_per_member"`
	OpenSpaceBonus   int `yaml:"open_space_bonus"`
	BaseDifficulty   int `yaml:"base_difficulty"`
	DifficultyFloor  int `yaml:"difficulty_floor"`
	AerospaceMod     int `yaml:"aerospace_mod"`
	InfantryMod      int `yaml:"infantry_mod"`
	ArmoredMod       int `yaml:"armored_mod"`
	MechMod          int `yaml:"mech_mod"`
	TransitMod       int `yaml:"transit_mod"`
	SmallGroupMod    int `yaml:"small_group_mod"` // Applied at <= SmallGroupSize members
	SmallGroupSize   int `yaml:"small_group_size"`
	LargeGroupMod    int `yaml:"large_group_mod"` // Applied at >= LargeGroupSize members
	LargeGroupSize   int `yaml:"large_group_size"`
	PassiveMod       int `yaml:"passive_mod"`
	ActiveMod        int `yaml:"active_mod"`
	InterdictionMod  int `yaml:"interdiction_mod"`
}

// Defaults returns the shipped balance.
func Defaults() Tuning {
	return Tuning{
		Movement: Movement{
			MaxLocalMovesPerTurn:     2,
			StealthLocalMovesPerTurn: 1,
			LongHaulRingSpan:         3,
			LongHaulEnergyPerShip:    2,
			LaneShortHopDistance:     15.0,
			LaneSlowTicks:            2,
			LaneBoostEnergyPerShip:   5,
			WarpBaseTicks:            3,
			WarpTickDistance:         10.0,
			WarpRangeLimit:           30.0,
			GravityWellMultiplier:    2,
			LockOnOrbitChangeOnly:    true,
		},
		Detection: Detection{
			BaseMerit:       30,
			MeritPerMember:  3,
			OpenSpaceBonus:  10,
			BaseDifficulty:  50,
			DifficultyFloor: 25,
			AerospaceMod:    15,
			InfantryMod:     5,
			ArmoredMod:      -10,
			MechMod:         -5,
			TransitMod:      10,
			SmallGroupMod:   10,
			SmallGroupSize:  2,
			LargeGroupMod:   -10,
			LargeGroupSize:  6,
			PassiveMod:      10,
			ActiveMod:       0,
			InterdictionMod: -15,
		},
	}
}

// Load reads tunables from a YAML file layered over the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}
