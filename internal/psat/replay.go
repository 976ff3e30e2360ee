package psat

// Replay feeds a most-recent-first log into Update oldest-first, starting from
// initial, and returns the final model. Triggers are discarded: every action
// they would have produced is already part of the log.
func Replay[PQ any, A comparable](initial Model[PQ, A], log []LogEntry[A]) Model[PQ, A] {
	m := initial
	for i := len(log) - 1; i >= 0; i-- {
		m, _ = Update(log[i].At, log[i].Action, m)
	}
	return m
}
