package glint

// Message is one turn of the conversation: an ordered sequence of content
// blocks attributed to a role.
type Message struct {
	Role    Role
	Content []ContentBlock
}

// ContentBlock is a sealed interface representing a block of message
// content. The unexported marker method prevents external implementations,
// so case analysis over the variants is exhaustive.
type ContentBlock interface {
	contentBlock()
}

// TextBlock contains text content.
type TextBlock struct {
	Text string
}

func (TextBlock) contentBlock() {}

// ToolUseBlock represents a tool invocation by the assistant. Input holds
// the accumulated raw argument JSON; while the block is streaming it may be
// an invalid prefix of a JSON document, which is intentional so previews
// can observe it mid-stream. Callers must not parse it as JSON until the
// block is finalized.
type ToolUseBlock struct {
	ID    string
	Name  string
	Input string
}

func (ToolUseBlock) contentBlock() {}

// ToolResultBlock carries the outcome of a tool invocation, correlated to
// its ToolUseBlock by ToolUseID.
type ToolResultBlock struct {
	ToolUseID string
	Content   string
	IsError   bool
	Collapsed bool
}

func (ToolResultBlock) contentBlock() {}

// ThinkingBlock contains reasoning content.
type ThinkingBlock struct {
	Thinking string
}

func (ThinkingBlock) contentBlock() {}

// ImageBlock is a media reference rendered as a placeholder.
type ImageBlock struct {
	MediaType string
}

func (ImageBlock) contentBlock() {}

// DocumentBlock is a document reference rendered as a placeholder.
type DocumentBlock struct {
	DocType string
}

func (DocumentBlock) contentBlock() {}

// Interface compliance checks.
var (
	_ ContentBlock = TextBlock{}
	_ ContentBlock = ToolUseBlock{}
	_ ContentBlock = ToolResultBlock{}
	_ ContentBlock = ThinkingBlock{}
	_ ContentBlock = ImageBlock{}
	_ ContentBlock = DocumentBlock{}
)
