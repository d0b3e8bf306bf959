package solve

// sessionUpdateMsg is sent whenever the generation store signals an
// observable change.
type sessionUpdateMsg struct{}

// historyRecordedMsg confirms the created-record write.
type historyRecordedMsg struct {
	Err error
}
