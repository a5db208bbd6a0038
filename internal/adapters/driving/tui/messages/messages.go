// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"github.com/custodia-labs/docask/internal/core/domain"
)

// AnswerCompleted carries the result of an ask or summarize request.
// Seq identifies the request so answers to cancelled requests can be dropped.
type AnswerCompleted struct {
	Seq    int
	Answer domain.Answer
	Err    error
}

// LibraryLoaded carries store statistics for the status bar.
type LibraryLoaded struct {
	Stats domain.Statistics
	Err   error
}
