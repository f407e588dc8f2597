package config

import "time"

// FontSpec describes how a block of text is set
type FontSpec struct {
	Family     string
	Weight     int
	Size       float64
	LineHeight float64
	// WrapWidth is the line box width; zero means lines never wrap
	WrapWidth float64
}

// LayoutConfig holds the sizing constants for each node kind
type LayoutConfig struct {
	// Content nodes
	ContentTitleFont       FontSpec
	ContentDescriptionFont FontSpec
	ContentPadding         float64
	ContentMinWidth        float64

	// Label nodes
	LabelFont    FontSpec
	LabelWidth   float64
	LabelPadding float64

	// Group nodes
	GroupHeaderHeight float64
	GroupPadding      float64

	// Fallback box for members that have not been measured yet
	DefaultMemberWidth  float64
	DefaultMemberHeight float64
}

// EditorConfig holds interaction rules and timing
type EditorConfig struct {
	// Selection
	MaxClickSelection int

	// History
	HistoryLimit     int
	SnapshotDebounce time.Duration

	// Derived geometry and persistence
	LayoutDebounce  time.Duration
	PersistDebounce time.Duration
	SaveTimeout     time.Duration

	// Viewport
	MinZoom float64
	MaxZoom float64

	// New content nodes are centered on the viewport by this offset
	NewNodeOffsetX float64
	NewNodeOffsetY float64

	// Placeholders
	NewNodeTitle       string
	NewNodeDescription string
	NewLabelText       string
	NewGroupTitle      string
}

// DomainConfig bundles all configurable business rules
type DomainConfig struct {
	Layout LayoutConfig
	Editor EditorConfig
}

// DefaultLayoutConfig returns the measurements the canvas renderer draws with
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		ContentTitleFont: FontSpec{
			Family:     "Altone",
			Weight:     800,
			Size:       26,
			LineHeight: 32,
		},
		ContentDescriptionFont: FontSpec{
			Family:     "Altone",
			Weight:     400,
			Size:       19,
			LineHeight: 26,
		},
		ContentPadding:  80,
		ContentMinWidth: 230,

		LabelFont: FontSpec{
			Family:     "Altone",
			Weight:     400,
			Size:       18,
			LineHeight: 24,
			WrapWidth:  170,
		},
		LabelWidth:   190,
		LabelPadding: 30,

		GroupHeaderHeight: 64,
		GroupPadding:      24,

		DefaultMemberWidth:  200,
		DefaultMemberHeight: 100,
	}
}

// DefaultEditorConfig returns the default interaction rules
func DefaultEditorConfig() EditorConfig {
	return EditorConfig{
		MaxClickSelection: 2,

		HistoryLimit:     50,
		SnapshotDebounce: 300 * time.Millisecond,

		LayoutDebounce:  16 * time.Millisecond,
		PersistDebounce: 100 * time.Millisecond,
		SaveTimeout:     5 * time.Second,

		MinZoom: 0.2,
		MaxZoom: 2,

		NewNodeOffsetX: 100,
		NewNodeOffsetY: 50,

		NewNodeTitle:       "New Node",
		NewNodeDescription: "...",
		NewLabelText:       "Label...",
		NewGroupTitle:      "Group",
	}
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		Layout: DefaultLayoutConfig(),
		Editor: DefaultEditorConfig(),
	}
}
