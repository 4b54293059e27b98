package units

import "fmt"

// AddMember appends a roster slot. Rejected while the unit is in transit,
// when the roster is full, or when the first member added is not a
// character (every crewed unit needs a leader-capable pool).
func (u *MobileUnit) AddMember(m Member) error {
	if u.Status == StatusTransit {
		return fmt.Errorf("unit %d is in transit; roster is sealed", u.ID)
	}
	if len(u.Members) >= MaxMembers {
		return fmt.Errorf("unit %d roster is full (%d slots)", u.ID, MaxMembers)
	}
	if len(u.Members) == 0 && m.Kind != MemberCharacter {
		return fmt.Errorf("unit %d needs a character before troops can board", u.ID)
	}
	u.Members = append(u.Members, m)
	return nil
}

// RemoveMember removes the roster slot at the given index. Rejected while
// in transit or when removal would leave troops aboard with no character.
func (u *MobileUnit) RemoveMember(idx int) error {
	if u.Status == StatusTransit {
		return fmt.Errorf("unit %d is in transit; roster is sealed", u.ID)
	}
	if idx < 0 || idx >= len(u.Members) {
		return fmt.Errorf("unit %d has no member slot %d", u.ID, idx)
	}
	removed := u.Members[idx]
	rest := make([]Member, 0, len(u.Members)-1)
	rest = append(rest, u.Members[:idx]...)
	rest = append(rest, u.Members[idx+1:]...)
	if removed.Kind == MemberCharacter && len(rest) > 0 && !hasCharacter(rest) {
		return fmt.Errorf("unit %d cannot lose its last character while troops remain", u.ID)
	}
	u.Members = rest
	return nil
}

// hasCharacter reports whether any slot holds a character. A crewed unit
// must keep at least one (the leader-capable pool).
func hasCharacter(members []Member) bool {
	for _, m := range members {
		if m.Kind == MemberCharacter {
			return true
		}
	}
	return false
}
