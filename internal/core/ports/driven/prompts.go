package driven

// PromptStore provides access to system instructions sent to the generation oracle.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt for the given name.
	// Unknown names return an error; known names fall back to a built-in default.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnswerSystem is the system instruction for answering from context.
	PromptAnswerSystem = "answer_system"

	// PromptSummariseSystem is the system instruction for document summaries.
	PromptSummariseSystem = "summarise_system"
)
