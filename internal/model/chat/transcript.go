package chat

// Transcript holds the ordered user/assistant history of one session.
// The system prompt never lives here; it is injected by BuildRequest.
//
// A Transcript is owned by exactly one session and is not safe for
// concurrent use on its own.
type Transcript struct {
	messages []Message
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{messages: make([]Message, 0, 16)}
}

// Append adds msg to the end of the transcript. System messages are dropped.
func (t *Transcript) Append(msg Message) {
	if msg.Role == RoleSystem {
		return
	}
	t.messages = append(t.messages, msg)
}

// Clear empties the transcript.
func (t *Transcript) Clear() {
	t.messages = t.messages[:0:0]
}

// Len reports the number of stored messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Messages returns a copy of the stored messages in insertion order.
func (t *Transcript) Messages() []Message {
	copied := make([]Message, len(t.messages))
	copy(copied, t.messages)
	return copied
}

// BuildRequest returns [system] ++ transcript ++ [user:newUserMessage].
// The stored state is left untouched; callers append the user message themselves.
func (t *Transcript) BuildRequest(systemPrompt, newUserMessage string) []Message {
	out := make([]Message, 0, len(t.messages)+2)
	out = append(out, SystemMessage(systemPrompt))
	out = append(out, t.messages...)
	out = append(out, UserMessage(newUserMessage))
	return out
}
