package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Parse Phase = iota
	Aggregate
	Fetch
	Match
	Merge
	Lookup
	Write
)

func (p Phase) String() string {
	switch p {
	case Parse:
		return "parse"
	case Aggregate:
		return "aggregate"
	case Fetch:
		return "fetch"
	case Match:
		return "match"
	case Merge:
		return "merge"
	case Lookup:
		return "lookup"
	case Write:
		return "write"
	default:
		return ""
	}
}

func aggregateUpdate(events int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Aggregate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Aggregating %d play events into album sessions...", events),
	}
}

func fetchActivitiesUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Fetch,
		Step:    1,
		Total:   1,
		Message: "Fetching activities from Strava...",
	}
}

func fetchedActivitiesUpdate(total, runs int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Fetch,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %d activities (%d runs)", total, runs),
	}
}

func matchUpdate(records, runs int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Match,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Matching %d album sessions against %d runs...", records, runs),
	}
}

func mergeUpdate(existing, computed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Merge,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Merging %d computed records into %d existing...", computed, existing),
	}
}

func lookupUpdate(step, total int, album string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Lookup,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Looking up artist: %s", step, total, album),
	}
}

func lookupResultUpdate(step, total int, album, artist string) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✗ %s: not found", step, total, album)
	if artist != "" {
		msg = fmt.Sprintf("[%d/%d] ✓ %s: %s", step, total, album, artist)
	}
	return ProgressUpdate{
		Phase:   Lookup,
		Step:    step,
		Total:   total,
		Message: msg,
	}
}
