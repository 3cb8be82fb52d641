package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptAppendKeepsOrder(t *testing.T) {
	tr := NewTranscript()
	tr.Append(UserMessage("a"))
	tr.Append(AssistantMessage("b"))
	tr.Append(UserMessage("c"))

	require.Equal(t, []Message{UserMessage("a"), AssistantMessage("b"), UserMessage("c")}, tr.Messages())
	assert.Equal(t, 3, tr.Len())
}

func TestTranscriptIgnoresSystemMessages(t *testing.T) {
	tr := NewTranscript()
	tr.Append(SystemMessage("be nice"))
	tr.Append(UserMessage("hello"))

	require.Equal(t, []Message{UserMessage("hello")}, tr.Messages())
}

func TestTranscriptClearAfterAnySequence(t *testing.T) {
	for n := 0; n < 5; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			tr := NewTranscript()
			for i := 0; i < n; i++ {
				tr.Append(UserMessage(fmt.Sprint(i)))
				tr.Append(AssistantMessage(fmt.Sprint(i)))
			}
			tr.Clear()
			assert.Empty(t, tr.Messages())
			assert.Zero(t, tr.Len())
		})
	}
}

func TestTranscriptMessagesReturnsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.Append(UserMessage("hello"))

	got := tr.Messages()
	got[0] = AssistantMessage("tampered")

	require.Equal(t, UserMessage("hello"), tr.Messages()[0])
}

func TestBuildRequestWrapsTranscript(t *testing.T) {
	tr := NewTranscript()
	tr.Append(UserMessage("a"))
	tr.Append(AssistantMessage("b"))

	req := tr.BuildRequest("You are a helpful assistant.", "c")

	require.Len(t, req, tr.Len()+2)
	assert.Equal(t, []Message{
		SystemMessage("You are a helpful assistant."),
		UserMessage("a"),
		AssistantMessage("b"),
		UserMessage("c"),
	}, req)
	assert.Equal(t, 2, tr.Len(), "BuildRequest must not mutate the transcript")
}

func TestBuildRequestAfterClear(t *testing.T) {
	tr := NewTranscript()
	tr.Append(UserMessage("a"))
	tr.Append(AssistantMessage("b"))
	tr.Clear()

	req := tr.BuildRequest("sys", "new")
	require.Equal(t, []Message{SystemMessage("sys"), UserMessage("new")}, req)
}

func TestBuildRequestDoesNotAliasStorage(t *testing.T) {
	tr := NewTranscript()
	tr.Append(UserMessage("a"))

	req := tr.BuildRequest("sys", "b")
	req[1] = AssistantMessage("tampered")

	require.Equal(t, UserMessage("a"), tr.Messages()[0])
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" Assistant ")
	require.True(t, ok)
	assert.Equal(t, RoleAssistant, role)

	_, ok = ParseRole("tool")
	assert.False(t, ok)
}
