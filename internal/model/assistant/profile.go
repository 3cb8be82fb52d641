package assistant

// DefaultID names the profile used when a session does not pick one.
const DefaultID = "helpful-assistant"

// Profile describes an assistant whose system prompt is injected into every request.
type Profile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SystemPrompt string `json:"systemPrompt"`
	Greeting     string `json:"greeting,omitempty"` // shown on an empty transcript
}

// Seed provides the built-in profiles. The first entry is the default.
func Seed() []Profile {
	return []Profile{
		{
			ID:           DefaultID,
			Name:         "AI Q&A Bot",
			SystemPrompt: "You are a helpful assistant.",
			Greeting:     "Ask me anything and I'll try to help",
		},
		{
			ID:           "concise",
			Name:         "Concise Answers",
			SystemPrompt: "You are a helpful assistant. Answer in at most three sentences.",
			Greeting:     "Short questions, short answers.",
		},
		{
			ID:           "tutor",
			Name:         "Patient Tutor",
			SystemPrompt: "You are a patient tutor. Explain step by step and check the user's understanding.",
			Greeting:     "What would you like to learn today?",
		},
	}
}
