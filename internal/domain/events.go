package domain

// StateUpdated is the only message the notification bus ever carries.
const StateUpdated = "state_updated"

// StateSignal is the decoded form of a bus message. Source names the
// emitting instance and is used for logging only.
type StateSignal struct {
	Source string
}
