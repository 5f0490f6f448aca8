// internal/matches/models.go
// Directional match records and the canonical couple pair

package matches

import (
	"fmt"
	"time"
)

// Status of one directional match record
type Status string

const (
	StatusPending    Status = "pending"
	StatusRevealed   Status = "revealed"
	StatusLiked      Status = "liked"
	StatusMutualLike Status = "mutual_like"
	StatusPassed     Status = "passed"
)

// Record is one side of a match: owner's view of other
type Record struct {
	ID                 int64     `json:"id" db:"id"`
	OwnerID            int64     `json:"owner_id" db:"owner_id"`
	OtherID            int64     `json:"other_id" db:"other_id"`
	Status             Status    `json:"status" db:"status"`
	InitialMessageSent bool      `json:"initial_message_sent" db:"initial_message_sent"`
	StartersUsed       bool      `json:"starters_used" db:"starters_used"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// Pair is the canonical ordered pair (low, high) used as the key of couple aggregates
type Pair struct {
	Low  int64 `json:"user_low"`
	High int64 `json:"user_high"`
}

// NewPair orders two user ids canonically
func NewPair(a, b int64) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{Low: a, High: b}
}

// Has reports whether userID is one of the two participants
func (p Pair) Has(userID int64) bool {
	return userID == p.Low || userID == p.High
}

// String renders the pair as "low:high" for cache keys
func (p Pair) String() string {
	return fmt.Sprintf("%d:%d", p.Low, p.High)
}

// Partner returns the other participant
func (p Pair) Partner(userID int64) int64 {
	if userID == p.Low {
		return p.High
	}
	return p.Low
}

// Couple is a resolved match as seen by a requester
type Couple struct {
	MatchID     int64     `json:"match_id"`
	Pair        Pair      `json:"pair"`
	RequesterID int64     `json:"requester_id"`
	PartnerID   int64     `json:"partner_id"`
	Records     []*Record `json:"-"`
}

// Signals are the interaction facts the readiness decider scores
type Signals struct {
	Status       Status `json:"status"`
	LowMessaged  bool   `json:"user_low_messaged"`
	HighMessaged bool   `json:"user_high_messaged"`
	StartersUsed bool   `json:"starters_used"`
}

// PairStatus derives the couple-level status from the two mirror records.
// mutual_like requires both records to agree; otherwise the strongest one-sided signal wins.
func PairStatus(records []*Record) Status {
	if len(records) == 0 {
		return StatusPending
	}
	mutual := len(records) == 2
	best := StatusPending
	for _, r := range records {
		if r.Status != StatusMutualLike {
			mutual = false
		}
		if rank(r.Status) > rank(best) {
			best = r.Status
		}
	}
	if mutual {
		return StatusMutualLike
	}
	if best == StatusMutualLike {
		return StatusLiked
	}
	return best
}

func rank(s Status) int {
	switch s {
	case StatusMutualLike:
		return 4
	case StatusLiked:
		return 3
	case StatusRevealed:
		return 2
	case StatusPending:
		return 1
	default:
		return 0
	}
}

// SignalsFor summarises the mirror records of a pair.
// Messaging flags that were never written default to false.
func SignalsFor(pair Pair, records []*Record) Signals {
	s := Signals{Status: PairStatus(records)}
	for _, r := range records {
		if r.OwnerID == pair.Low && r.InitialMessageSent {
			s.LowMessaged = true
		}
		if r.OwnerID == pair.High && r.InitialMessageSent {
			s.HighMessaged = true
		}
		if r.StartersUsed {
			s.StartersUsed = true
		}
	}
	return s
}
