// Package model provides the types shared by the formatter, the conversation and the relay.
package model

import "strings"

// Kind identifies which formatting stage produced a block.
type Kind string

const (
	// KindCode is a reply rendered from its first fenced code region.
	KindCode Kind = "code"
	// KindTable is a reply rendered from its first run of pipe-delimited rows.
	KindTable Kind = "table"
	// KindProse is everything else.
	KindProse Kind = "prose"
)

// ParseKind maps a user-supplied name onto a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindCode:
		return KindCode, true
	case KindTable:
		return KindTable, true
	case KindProse:
		return KindProse, true
	}
	return "", false
}

// RawReply is the unprocessed text of one model response.
type RawReply string

// CodeBlock is the first fenced region of a reply.
type CodeBlock struct {
	Language string `json:"language"`
	Body     string `json:"body"`
}

// Label returns the uppercased language tag, or CODE when the fence had none.
func (c CodeBlock) Label() string {
	if c.Language == "" {
		return "CODE"
	}
	return strings.ToUpper(c.Language)
}

// TableRows is the first block of pipe-delimited lines in a reply.
// Rows may have a different cell count than Headers.
type TableRows struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Block is the formatted output for one RawReply.
type Block struct {
	Kind  Kind       `json:"kind"`
	HTML  string     `json:"html"`
	Code  *CodeBlock `json:"code,omitempty"`
	Table *TableRows `json:"table,omitempty"`
}
