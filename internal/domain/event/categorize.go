package event

import "time"

// Buckets is the partition of an event set for one user at one instant.
// Every event lands in exactly one of Hosted, Attending or Passed, or is a
// nearby candidate (a future event the user neither hosts nor attends,
// eligible for distance filtering).
type Buckets struct {
	Hosted           []*Event `json:"hosted"`
	Attending        []*Event `json:"attending"`
	Passed           []*Event `json:"passed"`
	NearbyCandidates []*Event `json:"nearby_candidates"`
}

// Categorize partitions events for the given user. The precedence order
// matters: an event the user hosts that has already started must land in
// Passed, not Hosted.
func Categorize(events []*Event, userID string, now time.Time) Buckets {
	var b Buckets
	for _, e := range events {
		switch {
		case e.HasPassed(now):
			b.Passed = append(b.Passed, e)
		case e.IsCreator(userID):
			b.Hosted = append(b.Hosted, e)
		case e.IsAttending(userID):
			b.Attending = append(b.Attending, e)
		default:
			b.NearbyCandidates = append(b.NearbyCandidates, e)
		}
	}
	return b
}
