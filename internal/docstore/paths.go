package docstore

import "strings"

// Collection names.
const (
	Teams                 = "teams"
	Users                 = "users"
	Tickets               = "tickets"
	Matches               = "matches"
	Trainings             = "trainings"
	RefereeingAssignments = "refereeingAssignments"
	Messages              = "messages"
	Locations             = "locations"
)

// TeamCollection returns the team-scoped collection path
// teams/{teamID}/{name}.
func TeamCollection(teamID, name string) string {
	return Teams + "/" + teamID + "/" + name
}

// CollectionName returns the last segment of a collection path.
func CollectionName(collection string) string {
	if i := strings.LastIndexByte(collection, '/'); i >= 0 {
		return collection[i+1:]
	}
	return collection
}

// validCollection reports whether path has an odd number of non-empty
// segments, which is what a collection (not a document) path looks like.
func validCollection(path string) bool {
	if path == "" {
		return false
	}
	segs := strings.Split(path, "/")
	if len(segs)%2 == 0 {
		return false
	}
	for _, s := range segs {
		if s == "" {
			return false
		}
	}
	return true
}

func splitPath(path string) []string {
	return strings.Split(path, ".")
}
