// Package attendance renders and edits per-event attendance.
//
// The stored map only holds explicit entries. Every team member without one
// is shown as present, so the view is always built from the current roster
// merged with the stored map, and entries of members who left the team are
// ignored.
package attendance

import (
	"sort"
	"strings"

	"github.com/squadline/squadline-backend/internal/events/domain"
	teamdomain "github.com/squadline/squadline-backend/internal/teams/domain"
)

// Entry is one member's row on an attendance card.
type Entry struct {
	UID    string        `json:"uid"`
	Name   string        `json:"name"`
	Status domain.Status `json:"status"`
	// Recorded is false when Status is the default rather than stored.
	Recorded bool `json:"recorded"`
}

// MergedView lists every member with their stored status, or the default
// when none is stored, ordered by name.
func MergedView(members []teamdomain.Member, stored map[string]domain.Status) []Entry {
	view := make([]Entry, 0, len(members))
	for _, m := range members {
		e := Entry{UID: m.UID, Name: m.DisplayName(), Status: domain.DefaultStatus}
		if st, ok := stored[m.UID]; ok {
			e.Status = st
			e.Recorded = true
		}
		view = append(view, e)
	}
	sort.SliceStable(view, func(i, j int) bool {
		a, b := strings.ToLower(view[i].Name), strings.ToLower(view[j].Name)
		if a != b {
			return a < b
		}
		return view[i].UID < view[j].UID
	})
	return view
}

// PresentCount counts entries whose effective status is present.
func PresentCount(view []Entry) int {
	n := 0
	for _, e := range view {
		if e.Status == domain.StatusPresent {
			n++
		}
	}
	return n
}

// Card is what an attendance card shows for one event.
type Card struct {
	Kind         domain.Kind   `json:"kind"`
	Event        domain.Entity `json:"event"`
	Entries      []Entry       `json:"entries"`
	PresentCount int           `json:"presentCount"`
}

func newCard(kind domain.Kind, event domain.Entity, members []teamdomain.Member) *Card {
	view := MergedView(members, event.Shape().Attendance)
	return &Card{Kind: kind, Event: event, Entries: view, PresentCount: PresentCount(view)}
}

func (c Card) clone() Card {
	c.Entries = append([]Entry(nil), c.Entries...)
	return c
}
