package attendance

// NextAction decides whether the next accepted event for a key is a
// check-in or a check-out, and which sequence number it belongs to,
// given the latest ledger entry for that key (nil when the day's ledger
// is empty). Alternation is strict and always starts with check_in(1):
//
//	no entry          -> check_in, 1
//	check_out(n) last -> check_in, n+1
//	check_in(n) last  -> check_out, n
//
// The function is pure; callers read the latest entry and write the
// resulting row inside the same per-key critical section.
func NextAction(latest *LedgerEntry) (Action, int) {
	if latest == nil {
		return ActionCheckIn, 1
	}
	if latest.EntryType == ActionCheckOut {
		return ActionCheckIn, latest.Sequence + 1
	}
	return ActionCheckOut, latest.Sequence
}
