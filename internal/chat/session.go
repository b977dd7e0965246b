// Package chat runs a free-form conversation with the oracle about a fixed
// set of workspace files.
package chat

import (
	"context"
	"fmt"

	"github.com/julianshen/codefsm/internal/diagram"
	"github.com/julianshen/codefsm/internal/oracle"
	"github.com/julianshen/codefsm/internal/prompt"
	"github.com/julianshen/codefsm/internal/workspace"
)

// Session holds the in-memory transcript of one conversation.
type Session struct {
	Oracle oracle.Oracle
	Files  []workspace.FileRecord

	transcript []prompt.Message
	last       *diagram.Match
}

// NewSession starts an empty conversation about files.
func NewSession(o oracle.Oracle, files []workspace.FileRecord) *Session {
	return &Session{Oracle: o, Files: files}
}

// Turn sends message together with the file context and the transcript so
// far, and records both sides on success. A failed turn leaves the
// transcript unchanged.
func (s *Session) Turn(ctx context.Context, message string) (string, error) {
	text := prompt.BuildChat(s.Files, s.transcript, message)
	reply, err := s.Oracle.Infer(ctx, text)
	if err != nil {
		return "", fmt.Errorf("chat turn: %w", err)
	}

	s.transcript = append(s.transcript,
		prompt.Message{Role: prompt.RoleUser, Text: message},
		prompt.Message{Role: prompt.RoleAssistant, Text: reply},
	)
	if m, err := diagram.Extract(reply); err == nil && !m.Lenient() {
		s.last = &m
	}
	return reply, nil
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []prompt.Message {
	return append([]prompt.Message(nil), s.transcript...)
}

// LastDiagram returns the most recent diagram block found in a reply.
func (s *Session) LastDiagram() (diagram.Match, bool) {
	if s.last == nil {
		return diagram.Match{}, false
	}
	return *s.last, true
}

// Reset forgets the transcript and the remembered diagram.
func (s *Session) Reset() {
	s.transcript = nil
	s.last = nil
}

// Paths returns the workspace-relative paths of the session's files.
func (s *Session) Paths() []string {
	paths := make([]string, 0, len(s.Files))
	for _, f := range s.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// LastReply returns the most recent oracle reply.
func (s *Session) LastReply() string {
	for i := len(s.transcript) - 1; i >= 0; i-- {
		if s.transcript[i].Role == prompt.RoleAssistant {
			return s.transcript[i].Text
		}
	}
	return ""
}
