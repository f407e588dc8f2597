package ports

import (
	"context"

	"flowboard/domain/core/aggregates"
	"flowboard/domain/core/valueobjects"
	"flowboard/domain/services/layout"
)

// DocumentStore is the key-value persistence capability for boards
// This is a port in hexagonal architecture - the editor doesn't know about the implementation
type DocumentStore interface {
	// Load returns the stored document, or nil with no error when the key is absent
	Load(ctx context.Context, key string) (*aggregates.DocumentState, error)

	// Save replaces the stored document
	Save(ctx context.Context, key string, state aggregates.DocumentState) error
}

// ClosableStore is a DocumentStore holding connections or files
type ClosableStore interface {
	DocumentStore
	Close() error
}

// TextMeasurer measures rendered text; see layout.TextMeasurer
type TextMeasurer = layout.TextMeasurer

// Surface is the rendering surface the editor draws onto. The editor only
// asks it for its visible extent; pointer and key events flow the other way
// as commands.
type Surface interface {
	// ScreenSize returns the visible canvas extent in screen units
	ScreenSize() valueobjects.Size
}

// FixedSurface is a Surface of constant size, used when no renderer is attached
type FixedSurface valueobjects.Size

// ScreenSize implements Surface
func (s FixedSurface) ScreenSize() valueobjects.Size {
	return valueobjects.Size(s)
}
