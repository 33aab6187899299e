package chat

import "strings"

// ActionMarker is the literal a model appends when the conversation produced a change the
// user may want applied to the document. It is never shown to the user.
const ActionMarker = "[[APPLY_TO_DOCUMENT]]"

const markerInstruction = "When the user has agreed on a concrete change to the document, end your reply with the exact token " +
	ActionMarker + " on its own line. Never use that token otherwise and never mention it."

// Action is the typed result of marker detection.
type Action struct {
	// Text is the reply with every marker removed.
	Text string
	// Apply reports whether the reply carried the marker.
	Apply bool
}

// ExtractAction strips every occurrence of ActionMarker from reply.
func ExtractAction(reply string) Action {
	if !strings.Contains(reply, ActionMarker) {
		return Action{Text: strings.TrimSpace(reply)}
	}
	return Action{Text: strings.TrimSpace(strings.ReplaceAll(reply, ActionMarker, "")), Apply: true}
}
