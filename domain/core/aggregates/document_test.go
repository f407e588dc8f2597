package aggregates

import (
	"encoding/json"
	"testing"

	"flowboard/domain/core/entities"
	"flowboard/domain/core/valueobjects"
	"flowboard/domain/events"
	pkgerrors "flowboard/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(x, y float64) valueobjects.Position {
	return valueobjects.Position{X: x, Y: y}
}

func strPtr(s string) *string { return &s }

func TestDocument_AddNode(t *testing.T) {
	doc := NewDocument("board")

	a := doc.AddNode(valueobjects.KindContent, pos(0, 0), entities.ContentData("A", "..."))
	b := doc.AddNode(valueobjects.KindContent, pos(100, 0), entities.ContentData("B", "..."))

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, doc.NodeCount())
	assert.True(t, doc.HasNode(a.ID))

	evts := doc.GetUncommittedEvents()
	require.Len(t, evts, 2)
	assert.Equal(t, events.TypeNodeAdded, evts[0].GetEventType())

	doc.MarkEventsAsCommitted()
	assert.Empty(t, doc.GetUncommittedEvents())
}

func TestDocument_AddEdge(t *testing.T) {
	doc := NewDocument("board")
	a := doc.AddNode(valueobjects.KindContent, pos(0, 0), entities.ContentData("A", ""))
	lbl := doc.AddNode(valueobjects.KindLabel, pos(0, 0), entities.LabelData("x"))
	grp := doc.AddNode(valueobjects.KindGroup, pos(0, 0), entities.GroupData("G", valueobjects.ColorBlue))

	tests := []struct {
		name    string
		source  string
		target  string
		wantErr bool
	}{
		{"content to label", a.ID, lbl.ID, false},
		{"self loop", a.ID, a.ID, false},
		{"group source", grp.ID, a.ID, true},
		{"group target", a.ID, grp.ID, true},
		{"unknown target", a.ID, "missing", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := doc.EdgeCount()
			edge, err := doc.AddEdge(tt.source, tt.target, entities.ConnectEdgeStyle)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsInvalidEndpoint(err))
				assert.Equal(t, before, doc.EdgeCount())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.source, edge.Source)
			assert.Equal(t, tt.target, edge.Target)
			assert.Equal(t, before+1, doc.EdgeCount())
		})
	}
	assert.NoError(t, doc.Validate())
}

func TestDocument_UpdateNodeData(t *testing.T) {
	doc := NewDocument("board")
	n := doc.AddNode(valueobjects.KindContent, pos(0, 0), entities.ContentData("A", "desc"))
	v := doc.Version()

	assert.True(t, doc.UpdateNodeData(n.ID, entities.DataPatch{Title: strPtr("B")}))
	got, _ := doc.Node(n.ID)
	assert.Equal(t, "B", got.Data.Title)
	assert.Equal(t, "desc", got.Data.Description)
	assert.Greater(t, doc.Version(), v)

	v = doc.Version()
	assert.False(t, doc.UpdateNodeData("missing", entities.DataPatch{Title: strPtr("C")}))
	assert.False(t, doc.UpdateNodeData(n.ID, entities.DataPatch{Title: strPtr("B")}), "unchanged data is not a mutation")
	assert.Equal(t, v, doc.Version())
}

func TestDocument_RemoveNodes(t *testing.T) {
	doc := NewDocument("board")
	a := doc.AddNode(valueobjects.KindContent, pos(0, 0), entities.ContentData("A", ""))
	b := doc.AddNode(valueobjects.KindContent, pos(0, 0), entities.ContentData("B", ""))
	c := doc.AddNode(valueobjects.KindContent, pos(0, 0), entities.ContentData("C", ""))
	_, err := doc.AddEdge(a.ID, b.ID, entities.ConnectEdgeStyle)
	require.NoError(t, err)
	bc, err := doc.AddEdge(b.ID, c.ID, entities.ConnectEdgeStyle)
	require.NoError(t, err)
	_, err = doc.AddEdge(a.ID, c.ID, entities.ConnectEdgeStyle)
	require.NoError(t, err)

	nodes, edges := doc.RemoveNodes([]string{a.ID, "missing"})
	assert.Equal(t, []string{a.ID}, nodes)
	assert.Len(t, edges, 2)
	assert.Equal(t, 2, doc.NodeCount())
	require.Equal(t, 1, doc.EdgeCount())
	assert.Equal(t, bc.ID, doc.Edges()[0].ID)
	assert.NoError(t, doc.Validate())

	nodes, edges = doc.RemoveNodes([]string{"missing"})
	assert.Nil(t, nodes)
	assert.Nil(t, edges)
}

func TestDocument_RemoveGroupReleasesMembers(t *testing.T) {
	doc := NewDocument("board")
	grp := doc.AddNode(valueobjects.KindGroup, pos(0, 0), entities.GroupData("G", valueobjects.ColorBlue))
	child := doc.AddNode(valueobjects.KindContent, pos(10, 10), entities.ContentData("A", ""))
	require.NoError(t, doc.SetParent(child.ID, grp.ID))
	doc.SetNodeVisibility(child.ID, true, false)

	doc.RemoveNodes([]string{grp.ID})

	got, ok := doc.Node(child.ID)
	require.True(t, ok, "children are not cascade-deleted")
	assert.Empty(t, got.ParentID)
	assert.False(t, got.Hidden)
	assert.True(t, got.IsDraggable())
	assert.NoError(t, doc.Validate())
}

func TestDocument_ResolveParent(t *testing.T) {
	doc := NewDocument("board")
	grp := doc.AddNode(valueobjects.KindGroup, pos(0, 0), entities.GroupData("G", valueobjects.ColorBlue))
	child := doc.AddNode(valueobjects.KindContent, pos(0, 0), entities.ContentData("A", ""))
	loose := doc.AddNode(valueobjects.KindLabel, pos(0, 0), entities.LabelData("l"))

	require.NoError(t, doc.SetParent(child.ID, grp.ID))
	assert.Equal(t, grp.ID, doc.ResolveParent(child.ID).ID)
	assert.Nil(t, doc.ResolveParent(loose.ID))
	assert.Nil(t, doc.ResolveParent("missing"))

	assert.Error(t, doc.SetParent(child.ID, loose.ID), "parent must be a group")
	assert.Error(t, doc.SetParent(grp.ID, grp.ID), "groups do not nest")
	assert.Len(t, doc.Children(grp.ID), 1)
}

func TestDocument_SendToBack(t *testing.T) {
	doc := NewDocument("board")
	a := doc.AddNode(valueobjects.KindContent, pos(0, 0), entities.ContentData("A", ""))
	b := doc.AddNode(valueobjects.KindContent, pos(0, 0), entities.ContentData("B", ""))
	g := doc.AddNode(valueobjects.KindGroup, pos(0, 0), entities.GroupData("G", valueobjects.ColorBlue))

	assert.True(t, doc.SendToBack(g.ID))
	ids := []string{}
	for _, n := range doc.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{g.ID, a.ID, b.ID}, ids)
	assert.False(t, doc.SendToBack(g.ID))
}

func TestDocument_RemoveEdgesBetween(t *testing.T) {
	doc := NewDocument("board")
	a := doc.AddNode(valueobjects.KindContent, pos(0, 0), entities.ContentData("A", ""))
	b := doc.AddNode(valueobjects.KindContent, pos(0, 0), entities.ContentData("B", ""))
	_, _ = doc.AddEdge(a.ID, b.ID, entities.ConnectEdgeStyle)
	_, _ = doc.AddEdge(b.ID, a.ID, entities.ConnectEdgeStyle)
	_, _ = doc.AddEdge(a.ID, a.ID, entities.ConnectEdgeStyle)

	removed := doc.RemoveEdgesBetween(a.ID, b.ID)
	assert.Len(t, removed, 2)
	assert.Equal(t, 1, doc.EdgeCount())
}

func TestDocument_NodesAreCopies(t *testing.T) {
	doc := NewDocument("board")
	a := doc.AddNode(valueobjects.KindContent, pos(0, 0), entities.ContentData("A", ""))

	nodes := doc.Nodes()
	nodes[0].Data.Title = "mutated"

	got, _ := doc.Node(a.ID)
	assert.Equal(t, "A", got.Data.Title)
}

func TestDocument_ReplaceAndClone(t *testing.T) {
	doc := NewDocument("board")
	a := doc.AddNode(valueobjects.KindContent, pos(0, 0), entities.ContentData("A", ""))
	snap := doc.Graph()

	doc.AddNode(valueobjects.KindContent, pos(0, 0), entities.ContentData("B", ""))
	doc.SetViewport(valueobjects.Viewport{X: 5, Y: 5, Zoom: 1.5})
	clone := doc.Clone()

	require.NoError(t, doc.Replace(snap, "undo"))
	assert.Equal(t, 1, doc.NodeCount())
	assert.True(t, doc.HasNode(a.ID))
	assert.Equal(t, 1.5, doc.Viewport().Zoom, "viewport is not part of graph state")
	assert.Equal(t, 2, clone.NodeCount())

	bad := GraphState{Edges: []*entities.Edge{{ID: "e", Source: "x", Target: "y"}}}
	assert.Error(t, doc.Replace(bad, "undo"))
	assert.Equal(t, 1, doc.NodeCount())
}

func TestReconstructDocument_Invariants(t *testing.T) {
	group := &entities.Node{ID: "g", Kind: valueobjects.KindGroup}
	content := &entities.Node{ID: "n", Kind: valueobjects.KindContent}

	tests := []struct {
		name  string
		state DocumentState
	}{
		{"duplicate node", DocumentState{Nodes: []*entities.Node{content, content}}},
		{"group endpoint", DocumentState{
			Nodes: []*entities.Node{group, content},
			Edges: []*entities.Edge{{ID: "e", Source: "n", Target: "g"}},
		}},
		{"dangling parent", DocumentState{Nodes: []*entities.Node{{ID: "c", Kind: valueobjects.KindContent, ParentID: "nope"}}}},
		{"duplicate edge", DocumentState{
			Nodes: []*entities.Node{content},
			Edges: []*entities.Edge{{ID: "e", Source: "n", Target: "n"}, {ID: "e", Source: "n", Target: "n"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReconstructDocument("board", tt.state)
			assert.Error(t, err)
		})
	}
}

func TestDocumentState_JSONRoundTrip(t *testing.T) {
	raw := `{
		"nodes":[
			{"id":"g","type":"group","position":{"x":0,"y":0},"style":{"width":300,"height":200},"data":{"title":"G","color":"rgba(59,130,246,0.15)","collapsed":true}},
			{"id":"n1","type":"glass","position":{"x":200,"y":100},"style":{},"data":{"title":"Start","desc":"..."},"parentId":"g","hidden":true,"draggable":false},
			{"id":"lbl1","type":"label","position":{"x":260,"y":190},"style":{"width":190,"height":54},"data":{"text":"Connects with"}}
		],
		"edges":[{"id":"e1","source":"n1","target":"lbl1","type":"smoothstep","animated":false,"style":{"stroke":"white","opacity":0.4}}],
		"viewport":{"x":10,"y":-20,"zoom":0.8}
	}`
	var state DocumentState
	require.NoError(t, json.Unmarshal([]byte(raw), &state))

	doc, err := ReconstructDocument("board", state)
	require.NoError(t, err)
	n1, _ := doc.Node("n1")
	assert.Equal(t, valueobjects.KindContent, n1.Kind)
	assert.False(t, n1.IsDraggable())
	assert.Equal(t, valueobjects.Viewport{X: 10, Y: -20, Zoom: 0.8}, doc.Viewport())

	out, err := json.Marshal(doc.State())
	require.NoError(t, err)
	var again DocumentState
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, state.Viewport, again.Viewport)
	assert.Equal(t, state.Edges, again.Edges)
	require.Len(t, again.Nodes, 3)
	for i := range state.Nodes {
		assert.Equal(t, *state.Nodes[i], *again.Nodes[i])
	}
}
