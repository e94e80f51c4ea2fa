package ledger

// SameEntity reports whether a and b describe the same person: equal mobile
// numbers, or equal emails when both have one. A recycled mobile number will
// therefore merge two different people, and so will two records without one.
func SameEntity(a, b Entity) bool {
	if a.Mobile == b.Mobile {
		return true
	}

	return a.Email != "" && b.Email != "" && a.Email == b.Email
}
