package ledger

// freeCoinsAvailable reports whether the cooldown started at freeCoinsAt has
// elapsed at now. The boundary is inclusive; an unset or zero stamp is
// always available.
func freeCoinsAvailable(freeCoinsAt *int64, after, now int64) bool {
	if freeCoinsAt == nil || *freeCoinsAt <= 0 {
		return true
	}

	return *freeCoinsAt+after <= now
}

// nextFreeCoinsAt returns now when a grant is available, otherwise the
// moment the cooldown ends.
func nextFreeCoinsAt(freeCoinsAt *int64, after, now int64) int64 {
	if freeCoinsAvailable(freeCoinsAt, after, now) {
		return now
	}

	return *freeCoinsAt + after
}
