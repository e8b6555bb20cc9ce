package chat

// State is the controller's position in its two-state machine.
type State string

const (
	StateIdle             State = "IDLE"
	StateAwaitingResponse State = "AWAITING_RESPONSE"
)

// Snapshot is a read-only view of one session handed to the presentation shell.
type Snapshot struct {
	SessionID    string    `json:"sessionId"`
	PersonaID    string    `json:"personaId"`
	State        State     `json:"state"`
	Awaiting     bool      `json:"awaiting"`
	PendingInput string    `json:"pendingInput"`
	Transcript   []Message `json:"transcript"`
}
