package prompt

import (
	"strings"

	"github.com/julianshen/codefsm/internal/workspace"
)

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "User"
	RoleAssistant Role = "Assistant"
)

// Message is one entry of an interactive conversation.
type Message struct {
	Role Role
	Text string
}

// BuildChat renders the prompt for one interactive turn: the file context,
// the conversation so far, and the new user message.
func BuildChat(files []workspace.FileRecord, transcript []Message, message string) string {
	var b strings.Builder
	b.WriteString("You are helping a developer understand the state machine logic in their codebase.\n")
	b.WriteString("When you describe a state machine, include a Mermaid stateDiagram-v2 block.\n\n")

	if len(files) > 0 {
		b.WriteString("Here are the relevant files from the project:\n\n")
		b.WriteString(formatFiles(files))
		b.WriteString("\n")
	}

	if len(transcript) > 0 {
		b.WriteString("Conversation so far:\n\n")
		for _, m := range transcript {
			b.WriteString(string(m.Role))
			b.WriteString(": ")
			b.WriteString(m.Text)
			b.WriteString("\n\n")
		}
	}

	b.WriteString(string(RoleUser))
	b.WriteString(": ")
	b.WriteString(message)
	b.WriteString("\n\n")
	b.WriteString(string(RoleAssistant))
	b.WriteString(":")
	return b.String()
}
