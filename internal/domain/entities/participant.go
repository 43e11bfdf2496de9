package entities

// Participant is a guild member taking part in a tournament phase.
// It is referenced by UserID everywhere; DisplayName is only used for rendering.
type Participant struct {
	UserID      string
	DisplayName string
}

// Label renders "name (id)" or the bare id when the member is unknown.
func (p Participant) Label() string {
	if p.DisplayName == "" {
		return p.UserID
	}
	return p.DisplayName + " (" + p.UserID + ")"
}

// Failure is a participant whose role change or confirmation failed.
type Failure struct {
	Participant Participant
	Err         error
}
