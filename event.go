package glint

// Event is a sealed interface representing one decoded stream event.
// Events are purely semantic: a line that cannot be decoded becomes
// Unknown rather than an error, so event application never fails.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// MessageStart signals the beginning of a new assistant message.
type MessageStart struct {
	ID    string
	Model string
}

func (MessageStart) event() {}

// ContentBlockStart opens a new content block at the given index.
type ContentBlockStart struct {
	Index int
	Block BlockInfo
}

func (ContentBlockStart) event() {}

// ContentBlockDelta carries an incremental update for the block at Index.
type ContentBlockDelta struct {
	Index int
	Delta Delta
}

func (ContentBlockDelta) event() {}

// ContentBlockStop closes the block at Index. State is maintained
// incrementally, so applying it is a no-op.
type ContentBlockStop struct {
	Index int
}

func (ContentBlockStop) event() {}

// MessageDelta carries end-of-message bookkeeping such as the stop reason.
type MessageDelta struct {
	StopReason string
}

func (MessageDelta) event() {}

// MessageStop signals the end of the current assistant message.
type MessageStop struct{}

func (MessageStop) event() {}

// Unknown preserves a line that could not be decoded. The raw bytes are
// kept verbatim so callers can log or inspect them.
type Unknown struct {
	Raw string
}

func (Unknown) event() {}

// BlockKind identifies the kind of content block opened by a
// ContentBlockStart event.
type BlockKind int

const (
	KindText BlockKind = iota
	KindToolUse
	KindThinking
)

// BlockInfo describes the block opened by a ContentBlockStart event.
// ID and Name are set only for tool use blocks.
type BlockInfo struct {
	Kind BlockKind
	ID   string
	Name string
}

// Delta is a sealed interface over the incremental update variants carried
// by ContentBlockDelta.
type Delta interface {
	delta()
}

// TextDelta appends text to a text block.
type TextDelta struct {
	Text string
}

func (TextDelta) delta() {}

// InputJSONDelta appends a fragment of the tool input JSON. Fragments are
// not valid JSON on their own; they accumulate until the block stops.
type InputJSONDelta struct {
	Partial string
}

func (InputJSONDelta) delta() {}

// ThinkingDelta appends text to a thinking block.
type ThinkingDelta struct {
	Thinking string
}

func (ThinkingDelta) delta() {}

// Interface compliance checks.
var (
	_ Event = MessageStart{}
	_ Event = ContentBlockStart{}
	_ Event = ContentBlockDelta{}
	_ Event = ContentBlockStop{}
	_ Event = MessageDelta{}
	_ Event = MessageStop{}
	_ Event = Unknown{}

	_ Delta = TextDelta{}
	_ Delta = InputJSONDelta{}
	_ Delta = ThinkingDelta{}
)
