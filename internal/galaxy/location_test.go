package galaxy

import "testing"

func TestLocationSame(t *testing.T) {
	cases := []struct {
		name string
		a, b Location
		want bool
	}{
		{"deep space equal", DeepSpace(1), DeepSpace(1), true},
		{"different systems", DeepSpace(1), DeepSpace(2), false},
		{"different rings", AtRing(1, 2), AtRing(1, 3), false},
		{"ring vs planet on same ring", AtRing(1, 3), AtPlanet(1, 3, 10), false},
		{"same planet", AtPlanet(1, 3, 10), AtPlanet(1, 3, 10), true},
		{"same sector", AtSector(1, 3, 10, 5), AtSector(1, 3, 10, 5), true},
		{"different sectors", AtSector(1, 3, 10, 5), AtSector(1, 3, 10, 6), false},
		{"planet vs its sector", AtPlanet(1, 3, 10), AtSector(1, 3, 10, 5), false},
		{"same lane", OnLane(7, 1, 2), OnLane(7, 1, 2), true},
		{"same lane opposite direction", OnLane(7, 2, 1), OnLane(7, 1, 2), true},
		{"different lanes", OnLane(7, 1, 2), OnLane(8, 1, 2), false},
		{"transit vs settled", OnLane(7, 1, 2), DeepSpace(1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Same(tc.b); got != tc.want {
				t.Errorf("Same(%s, %s) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			if got := tc.b.Same(tc.a); got != tc.want {
				t.Errorf("Same is not symmetric for %s and %s", tc.a, tc.b)
			}
		})
	}
}

func TestLocationGroupKey(t *testing.T) {
	if DeepSpace(1).GroupKey() == DeepSpace(2).GroupKey() {
		t.Error("distinct systems share a group key")
	}
	if AtRing(1, 2).GroupKey() == AtRing(1, 3).GroupKey() {
		t.Error("distinct rings share a group key")
	}
	if AtSector(1, 3, 10, 1).GroupKey() == AtSector(1, 3, 10, 2).GroupKey() {
		t.Error("distinct sectors share a group key")
	}
	// Transiting units group by lane only, whichever way they travel.
	if OnLane(7, 1, 2).GroupKey() != OnLane(7, 2, 1).GroupKey() {
		t.Error("opposite directions on one lane must share a group key")
	}
	if OnLane(7, 1, 2).GroupKey() == OnLane(8, 1, 2).GroupKey() {
		t.Error("distinct lanes share a group key")
	}
	if OnLane(7, 1, 2).GroupKey() == AtRing(1, 2).GroupKey() {
		t.Error("transit and settled locations share a group key")
	}
}

func TestEffectiveLaneDistance(t *testing.T) {
	a := System{ID: 1, X: 0, Y: 0}
	b := System{ID: 2, X: 3, Y: 4}

	if got := EffectiveLaneDistance(Lane{Distance: 12.5}, a, b); got != 12.5 {
		t.Errorf("measured lane: got %v, want 12.5", got)
	}
	if got := EffectiveLaneDistance(Lane{Distance: LaneDistanceSentinel}, a, b); got != 5 {
		t.Errorf("sentinel lane: got %v, want Euclidean 5", got)
	}
	if got := EffectiveLaneDistance(Lane{Distance: 0}, a, b); got != 5 {
		t.Errorf("zero-distance lane: got %v, want Euclidean 5", got)
	}
}

func TestLaneConnects(t *testing.T) {
	l := Lane{SystemA: 1, SystemB: 2}
	if !l.Connects(1, 2) || !l.Connects(2, 1) {
		t.Error("lane must connect its endpoints in both directions")
	}
	if l.Connects(1, 3) {
		t.Error("lane connects a system it does not touch")
	}
}
