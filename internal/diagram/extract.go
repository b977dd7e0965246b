// Package diagram recovers Mermaid stateDiagram-v2 text from free-form
// oracle replies and parses it into a state machine model.
package diagram

import (
	"errors"
	"regexp"
	"strings"
)

// Keyword is the header line every state diagram starts with.
const Keyword = "stateDiagram-v2"

// Strategy names, in the order Extract tries them.
const (
	StrategyKeywordBlock  = "keyword-block"
	StrategyFencedMermaid = "fenced-mermaid"
	StrategyWholeReply    = "whole-reply"
)

// ErrDiagramNotFound is returned when no strategy recovers a diagram.
var ErrDiagramNotFound = errors.New("no state diagram found in oracle reply")

// Match is a recovered diagram together with the strategy that found it.
type Match struct {
	Text     string
	Strategy string
}

// Lenient reports whether the diagram was taken from the reply wholesale.
func (m Match) Lenient() bool { return m.Strategy == StrategyWholeReply }

type strategy struct {
	name string
	find func(reply string) (string, bool)
}

// strategies run strict to lenient; the first non-empty result wins.
var strategies = []strategy{
	{StrategyKeywordBlock, keywordBlock},
	{StrategyFencedMermaid, fencedMermaid},
	{StrategyWholeReply, wholeReply},
}

var (
	// The keyword at a line start, then the shortest run up to a blank line,
	// a closing fence or the end of the reply.
	keywordBlockRe = regexp.MustCompile("(?m)^[ \\t]*(" + Keyword + "[\\s\\S]*?)(?:\\n\\n|\\n```|\\z)")
	fencedRe       = regexp.MustCompile("```mermaid[ \\t]*\\r?\\n([\\s\\S]*?)```")
)

// Extract returns the diagram embedded in reply. CRLF line endings are
// normalized first, so the returned text always uses "\n".
func Extract(reply string) (Match, error) {
	reply = strings.ReplaceAll(reply, "\r\n", "\n")
	for _, s := range strategies {
		if text, ok := s.find(reply); ok {
			return Match{Text: text, Strategy: s.name}, nil
		}
	}
	return Match{}, ErrDiagramNotFound
}

func keywordBlock(reply string) (string, bool) {
	m := keywordBlockRe.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}
	return nonEmpty(strings.TrimSpace(m[1]))
}

func fencedMermaid(reply string) (string, bool) {
	m := fencedRe.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}
	return nonEmpty(strings.TrimSpace(m[1]))
}

func wholeReply(reply string) (string, bool) {
	if !strings.Contains(reply, Keyword) {
		return "", false
	}
	return reply, true
}

func nonEmpty(s string) (string, bool) {
	return s, s != ""
}
