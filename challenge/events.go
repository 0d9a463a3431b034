package challenge

// Event is a lifecycle notification pushed to dashboard clients.
type Event struct {
	Type        string `json:"type"`
	ChallengeID uint   `json:"challengeId,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

const (
	EventChallengeStarted = "challenge.started"
	EventVotingStarted    = "challenge.voting_started"
	EventChallengeClosed  = "challenge.closed"
	EventChallengeUpdated = "challenge.updated"
	EventChallengeDeleted = "challenge.deleted"
	EventSubmission       = "submission.received"
	EventSubmissionGone   = "submission.deleted"
)

// EventSink receives lifecycle events. Publishing must never block
// the primary operation.
type EventSink interface {
	Publish(event Event)
}

type noopSink struct{}

func (noopSink) Publish(Event) {}
