package events

import "time"

// Editor, history and persistence events. These are raised by the session,
// not by the document aggregate.

// SelectionChanged is raised after any selection transition
type SelectionChanged struct {
	BaseEvent
	Selected []string `json:"selected"`
}

// NewSelectionChanged creates a SelectionChanged event
func NewSelectionChanged(board string, selected []string, at time.Time) SelectionChanged {
	return SelectionChanged{BaseEvent: newBase(board, TypeSelectionChanged, 1, at), Selected: selected}
}

// NoticeRaised carries a non-blocking user-facing message
type NoticeRaised struct {
	BaseEvent
	Code    string `json:"code"`
	Message string `json:"message"`
	Command string `json:"command"`
}

// NewNoticeRaised creates a NoticeRaised event
func NewNoticeRaised(board, command, code, message string, at time.Time) NoticeRaised {
	return NoticeRaised{
		BaseEvent: newBase(board, TypeNoticeRaised, 1, at),
		Code:      code,
		Message:   message,
		Command:   command,
	}
}

// HistoryRecorded is raised when a settled snapshot is pushed
type HistoryRecorded struct {
	BaseEvent
	Index   int `json:"index"`
	Depth   int `json:"depth"`
	Evicted int `json:"evicted"`
}

// NewHistoryRecorded creates a HistoryRecorded event
func NewHistoryRecorded(board string, index, depth, evicted int, at time.Time) HistoryRecorded {
	return HistoryRecorded{
		BaseEvent: newBase(board, TypeHistoryRecorded, 1, at),
		Index:     index,
		Depth:     depth,
		Evicted:   evicted,
	}
}

// HistoryReplayed is raised after undo or redo replaces the live document
type HistoryReplayed struct {
	BaseEvent
	Direction string `json:"direction"`
	Index     int    `json:"index"`
}

// NewHistoryReplayed creates a HistoryReplayed event
func NewHistoryReplayed(board, direction string, index int, at time.Time) HistoryReplayed {
	return HistoryReplayed{BaseEvent: newBase(board, TypeHistoryReplayed, 1, at), Direction: direction, Index: index}
}

// DocumentSaved is raised after a successful store write
type DocumentSaved struct {
	BaseEvent
	Key      string        `json:"key"`
	Duration time.Duration `json:"duration"`
}

// NewDocumentSaved creates a DocumentSaved event
func NewDocumentSaved(board, key string, took time.Duration, at time.Time) DocumentSaved {
	return DocumentSaved{BaseEvent: newBase(board, TypeDocumentSaved, 1, at), Key: key, Duration: took}
}

// PersistFailed is raised when a store write fails. It is never shown to the user.
type PersistFailed struct {
	BaseEvent
	Key   string `json:"key"`
	Error string `json:"error"`
}

// NewPersistFailed creates a PersistFailed event
func NewPersistFailed(board, key string, err error, at time.Time) PersistFailed {
	return PersistFailed{BaseEvent: newBase(board, TypePersistFailed, 1, at), Key: key, Error: err.Error()}
}
