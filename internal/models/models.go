package models

// Role tags a message for the completion service.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message represents a single role-tagged prompt message.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is the provider-neutral shape of one completion call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// JSONMode asks the provider to return a single JSON object.
	JSONMode bool
}

// CompletionResult carries the first choice's text. The remaining fields
// are informational and only used for logging.
type CompletionResult struct {
	Text         string
	ID           string
	FinishReason string
	Usage        Usage
}

// Usage records token accounting information.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
