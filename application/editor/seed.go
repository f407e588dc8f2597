package editor

import (
	"flowboard/domain/core/aggregates"
	"flowboard/domain/core/entities"
	"flowboard/domain/core/valueobjects"
)

// DefaultBoardKey is the store key boards use unless configured otherwise
const DefaultBoardKey = "flowcanvas-v1"

// SeedDocument returns the starter flow shown on a fresh board
func SeedDocument(key string) *aggregates.Document {
	state := aggregates.DocumentState{
		Nodes: []*entities.Node{
			{
				ID:       "n1",
				Kind:     valueobjects.KindContent,
				Position: valueobjects.Position{X: 200, Y: 100},
				Data:     entities.ContentData("Start", "..."),
			},
			{
				ID:       "lbl1",
				Kind:     valueobjects.KindLabel,
				Position: valueobjects.Position{X: 260, Y: 190},
				Data:     entities.LabelData("Connects with"),
			},
			{
				ID:       "n2",
				Kind:     valueobjects.KindContent,
				Position: valueobjects.Position{X: 200, Y: 300},
				Data:     entities.ContentData("Upsell Agent", "..."),
			},
		},
		Edges: []*entities.Edge{
			{ID: "e1", Source: "n1", Target: "lbl1", Type: entities.EdgeTypeSmoothStep, Style: entities.SeedEdgeStyle},
			{ID: "e2", Source: "lbl1", Target: "n2", Type: entities.EdgeTypeSmoothStep, Style: entities.SeedEdgeStyle},
		},
		Viewport: valueobjects.DefaultViewport(),
	}
	doc, err := aggregates.ReconstructDocument(key, state)
	if err != nil {
		// the literal above satisfies every invariant
		panic(err)
	}
	return doc
}
