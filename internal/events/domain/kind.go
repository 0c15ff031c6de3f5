package domain

import (
	"fmt"

	"github.com/squadline/squadline-backend/internal/docstore"
)

// Kind identifies an event type and the team-scoped collection holding it.
type Kind string

const (
	KindMatch      Kind = docstore.Matches
	KindTraining   Kind = docstore.Trainings
	KindRefereeing Kind = docstore.RefereeingAssignments
)

// Kinds lists every event kind.
var Kinds = []Kind{KindMatch, KindTraining, KindRefereeing}

// ParseKind accepts the collection name or the short route segment.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "matches", "match":
		return KindMatch, nil
	case "trainings", "training":
		return KindTraining, nil
	case "refereeingAssignments", "refereeing":
		return KindRefereeing, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

func (k Kind) String() string { return string(k) }

// Collection returns teams/{teamID}/{kind}.
func (k Kind) Collection(teamID string) string {
	return docstore.TeamCollection(teamID, string(k))
}

// Orderable reports whether admins can resequence the kind manually.
func (k Kind) Orderable() bool { return k == KindMatch }

// SupportsBulk reports whether weekly series can be created in one batch.
func (k Kind) SupportsBulk() bool { return k == KindTraining }
