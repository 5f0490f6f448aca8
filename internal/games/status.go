// internal/games/status.go

package games

// Status of a game session
type Status string

const (
	StatusPendingAcceptance Status = "pending_acceptance"
	StatusDeclined          Status = "declined"
	StatusExpired           Status = "expired"
	StatusAccepted          Status = "accepted"
	StatusAuthoring         Status = "authoring"
	StatusAnswering         Status = "answering"
	StatusCompleted         Status = "completed"
	StatusCancelled         Status = "cancelled"

	// real-time games only
	StatusStarting   Status = "starting"
	StatusPlaying    Status = "playing"
	StatusPaused     Status = "paused"
	StatusAbandoned  Status = "abandoned"
	StatusDiscussion Status = "discussion"
)

var transitions = map[Status][]Status{
	StatusPendingAcceptance: {StatusAccepted, StatusStarting, StatusDeclined, StatusExpired, StatusCancelled},
	StatusAccepted:          {StatusAuthoring, StatusAnswering, StatusCancelled},
	StatusAuthoring:         {StatusAnswering, StatusCancelled},
	StatusAnswering:         {StatusCompleted, StatusCancelled},
	StatusStarting:          {StatusPlaying, StatusPaused, StatusAbandoned, StatusCancelled},
	StatusPlaying:           {StatusPaused, StatusCompleted, StatusAbandoned, StatusCancelled},
	StatusPaused:            {StatusPlaying, StatusAbandoned, StatusCancelled},
	StatusCompleted:         {StatusDiscussion},
}

// CanTransition reports whether from -> to is allowed
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsActive reports whether the session still occupies the pair's slot for its game type
func (s Status) IsActive() bool {
	switch s {
	case StatusPendingAcceptance, StatusAccepted, StatusAuthoring, StatusAnswering,
		StatusStarting, StatusPlaying, StatusPaused:
		return true
	}
	return false
}

// IsFinished reports whether the session produced a result
func (s Status) IsFinished() bool {
	return s == StatusCompleted || s == StatusDiscussion
}

// ActiveStatuses lists every status for which IsActive holds
var ActiveStatuses = []Status{
	StatusPendingAcceptance, StatusAccepted, StatusAuthoring, StatusAnswering,
	StatusStarting, StatusPlaying, StatusPaused,
}
