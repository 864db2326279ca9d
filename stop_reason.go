package glint

// StopReason indicates why the assistant stopped generating.
type StopReason string

const (
	StopEndTurn StopReason = "end_turn"
	StopLength  StopReason = "max_tokens"
	StopToolUse StopReason = "tool_use"
	StopUnknown StopReason = "unknown"
)

// ParseStopReason maps a raw wire value to a StopReason. Unrecognized
// values map to StopUnknown rather than failing.
func ParseStopReason(raw string) StopReason {
	switch raw {
	case "end_turn":
		return StopEndTurn
	case "max_tokens":
		return StopLength
	case "tool_use":
		return StopToolUse
	default:
		return StopUnknown
	}
}
