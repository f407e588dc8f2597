package editor

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	appevents "flowboard/application/events"
	"flowboard/application/ports"
	"flowboard/domain/config"
	"flowboard/domain/core/entities"
	"flowboard/domain/core/valueobjects"
	"flowboard/domain/events"
	"flowboard/domain/services/layout"
	"flowboard/internal/testutil"
	pkgerrors "flowboard/pkg/errors"
	"flowboard/pkg/debounce"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type harness struct {
	s     *Session
	clock *debounce.ManualClock
	store *testutil.RecordingStore
}

func openSession(t *testing.T, store *testutil.RecordingStore, mutate ...func(*Options)) *harness {
	t.Helper()
	clock := debounce.NewManualClock()
	opts := Options{
		BoardKey: "test-board",
		Config:   config.DefaultEditorConfig(),
		Layout:   layout.NewEngine(config.DefaultLayoutConfig(), testutil.GridMeasurer{}),
		Store:    store,
		Clock:    clock,
		Logger:   zap.NewNop(),
		Seed:     true,
		Rand:     rand.New(rand.NewPCG(1, 2)),
	}
	for _, m := range mutate {
		m(&opts)
	}
	s, err := Open(context.Background(), opts)
	require.NoError(t, err)
	return &harness{s: s, clock: clock, store: store}
}

// openWith stores state under the board key and opens a session on it
func openWith(t *testing.T, b *testutil.DocumentBuilder, mutate ...func(*Options)) *harness {
	t.Helper()
	store := testutil.NewRecordingStore()
	store.Put("test-board", b.State())
	return openSession(t, store, mutate...)
}

func (h *harness) node(t *testing.T, id string) *entities.Node {
	t.Helper()
	for _, n := range h.s.Snapshot().Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %s not found", id)
	return nil
}

func (h *harness) settle() {
	h.clock.Advance(time.Second)
}

func twoNodes() *testutil.DocumentBuilder {
	return testutil.NewDocumentBuilder().
		WithContent("a", 0, 0, "A").
		WithContent("b", 200, 400, "B")
}

func TestOpen_SeedsEmptyStore(t *testing.T) {
	h := openSession(t, testutil.NewRecordingStore())
	state := h.s.Snapshot()

	require.Len(t, state.Nodes, 3)
	require.Len(t, state.Edges, 2)
	assert.Equal(t, valueobjects.Size{Width: 230, Height: 138}, h.node(t, "n1").Size)
	assert.Equal(t, valueobjects.Size{Width: 190, Height: 54}, h.node(t, "lbl1").Size)

	current, total := h.s.HistoryStats()
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, total)
	assert.False(t, h.s.CanUndo())
}

func TestOpen_WithoutSeed(t *testing.T) {
	h := openSession(t, testutil.NewRecordingStore(), func(o *Options) { o.Seed = false })
	assert.Empty(t, h.s.Snapshot().Nodes)
}

func TestOpen_LoadFailureFallsBackToSeed(t *testing.T) {
	store := testutil.NewRecordingStore()
	store.LoadErr = errors.New("connection refused")

	h := openSession(t, store)
	assert.Len(t, h.s.Snapshot().Nodes, 3)
}

func TestOpen_InvalidStoredBoardFallsBackToSeed(t *testing.T) {
	h := openWith(t, testutil.NewDocumentBuilder().
		WithContent("a", 0, 0, "A").
		WithEdge("e1", "a", "missing"))

	assert.Len(t, h.s.Snapshot().Nodes, 3)
}

func TestOpen_UsesMockStore(t *testing.T) {
	store := new(testutil.MockDocumentStore)
	state := twoNodes().State()
	store.On("Load", mock.Anything, "test-board").Return(&state, nil)
	store.On("Save", mock.Anything, "test-board", mock.Anything).Return(nil)

	clock := debounce.NewManualClock()
	s, err := Open(context.Background(), Options{
		BoardKey: "test-board",
		Store:    store,
		Clock:    clock,
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)
	assert.Len(t, s.Snapshot().Nodes, 2)

	require.NoError(t, s.MoveNode("a", valueobjects.Position{X: 5, Y: 5}))
	clock.Advance(time.Second)
	store.AssertNumberOfCalls(t, "Save", 1)
	store.AssertExpectations(t)
}

func TestConnect(t *testing.T) {
	h := openSession(t, testutil.NewRecordingStore())

	h.s.Click("n1")
	h.s.Click("n2")
	edge, err := h.s.Connect()
	require.NoError(t, err)

	assert.Equal(t, "n1", edge.Source)
	assert.Equal(t, "n2", edge.Target)
	assert.Equal(t, entities.EdgeTypeSmoothStep, edge.Type)
	assert.Equal(t, entities.ConnectEdgeStyle, edge.Style)
	assert.Empty(t, h.s.Selection())
	assert.Len(t, h.s.Snapshot().Edges, 3)
}

func TestConnect_RequiresExactlyTwo(t *testing.T) {
	h := openSession(t, testutil.NewRecordingStore())

	var notices []events.NoticeRaised
	appevents.Subscribe(h.s.Bus(), func(e events.NoticeRaised) { notices = append(notices, e) })

	h.s.Click("n1")
	edge, err := h.s.Connect()

	assert.Nil(t, edge)
	assert.True(t, pkgerrors.IsInvalidSelection(err))
	assert.Equal(t, []string{"n1"}, h.s.Selection(), "a refused command keeps the selection")
	assert.Len(t, h.s.Snapshot().Edges, 2)
	require.Len(t, notices, 1)
	assert.Equal(t, "connect", notices[0].Command)
	assert.Equal(t, pkgerrors.CodeInvalidSelection, notices[0].Code)
}

func TestConnect_RejectsGroups(t *testing.T) {
	h := openWith(t, twoNodes().WithGroup("g", "a"))

	h.s.Click("g")
	h.s.Click("b")
	_, err := h.s.Connect()
	assert.True(t, pkgerrors.IsInvalidSelection(err))

	_, err = h.s.ConnectNodes("b", "g")
	assert.True(t, pkgerrors.IsInvalidSelection(err))
	assert.Empty(t, h.s.Snapshot().Edges)
}

func TestConnectNodes_AllowsSelfLoop(t *testing.T) {
	h := openWith(t, twoNodes())

	edge, err := h.s.ConnectNodes("a", "a")
	require.NoError(t, err)
	assert.Equal(t, edge.Source, edge.Target)
}

func TestClick_CapAndUnknown(t *testing.T) {
	h := openSession(t, testutil.NewRecordingStore())

	h.s.Click("missing")
	assert.Empty(t, h.s.Selection())

	h.s.Click("n1")
	h.s.Click("lbl1")
	h.s.Click("n2")
	assert.Equal(t, []string{"n1", "lbl1"}, h.s.Selection())

	h.s.Click("n1")
	assert.Equal(t, []string{"lbl1"}, h.s.Selection())
}

func TestClick_IgnoresCollapsedMembers(t *testing.T) {
	h := openWith(t, groupable().WithGroup("g", "a", "b"))

	h.s.Click("a")
	h.s.Click("g")
	h.s.ToggleCollapse("g")
	assert.Equal(t, []string{"g"}, h.s.Selection(), "folded members leave the selection")

	h.s.Click("b")
	assert.Equal(t, []string{"g"}, h.s.Selection())

	h.s.ToggleCollapse("g")
	h.s.Click("b")
	assert.Equal(t, []string{"g", "b"}, h.s.Selection())
}

func TestSelectAllAndArea(t *testing.T) {
	h := openSession(t, testutil.NewRecordingStore())

	h.s.SelectAll()
	assert.ElementsMatch(t, []string{"n1", "lbl1", "n2"}, h.s.Selection())

	// n1 spans (200,100)-(430,238); lbl1 reaches x=450
	h.s.SelectArea(valueobjects.RectBetween(valueobjects.Position{X: 190, Y: 90}, valueobjects.Position{X: 440, Y: 250}))
	assert.Equal(t, []string{"n1"}, h.s.Selection())

	h.s.ClearSelection()
	assert.Empty(t, h.s.Selection())
}

func TestInsertLabelBetween(t *testing.T) {
	h := openWith(t, twoNodes().WithEdge("e1", "a", "b"))

	h.s.Click("a")
	h.s.Click("b")
	label, err := h.s.InsertLabelBetween()
	require.NoError(t, err)

	assert.Equal(t, valueobjects.KindLabel, label.Kind)
	assert.Equal(t, "Label...", label.Data.Text)
	assert.Equal(t, valueobjects.Position{X: 100, Y: 200}, label.Position)
	assert.Equal(t, 190.0, label.Size.Width)

	edges := h.s.Snapshot().Edges
	require.Len(t, edges, 2)
	assert.Equal(t, "a", edges[0].Source)
	assert.Equal(t, label.ID, edges[0].Target)
	assert.Equal(t, label.ID, edges[1].Source)
	assert.Equal(t, "b", edges[1].Target)
	for _, e := range edges {
		assert.Equal(t, entities.LabelEdgeStyle, e.Style)
	}
	assert.Empty(t, h.s.Selection())
}

func TestInsertLabelBetween_RejectsLabels(t *testing.T) {
	h := openSession(t, testutil.NewRecordingStore())

	h.s.Click("n1")
	h.s.Click("lbl1")
	_, err := h.s.InsertLabelBetween()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidSelection(err))
	assert.Contains(t, err.Error(), "cannot add label between label nodes")
	assert.Len(t, h.s.Snapshot().Nodes, 3)
}

func groupable() *testutil.DocumentBuilder {
	return testutil.NewDocumentBuilder().
		WithContent("a", 0, 0, "A").WithSize("a", 300, 200).
		WithContent("b", 400, 0, "B").WithSize("b", 300, 200)
}

func TestCreateGroup(t *testing.T) {
	h := openWith(t, groupable())

	h.s.Click("a")
	h.s.Click("b")
	group, err := h.s.CreateGroup()
	require.NoError(t, err)

	assert.Equal(t, valueobjects.Position{X: -24, Y: -88}, group.Position)
	assert.Equal(t, valueobjects.Size{Width: 748, Height: 312}, group.Size)
	assert.Equal(t, "Group", group.Data.Title)
	assert.Contains(t, valueobjects.GroupPalette, group.Data.Color)

	state := h.s.Snapshot()
	assert.Equal(t, group.ID, state.Nodes[0].ID, "groups draw behind everything")
	assert.Equal(t, group.ID, h.node(t, "a").ParentID)
	assert.Equal(t, group.ID, h.node(t, "b").ParentID)
	assert.Empty(t, h.s.Selection())
}

func TestCreateGroup_ShowsMembersOfCollapsedGroup(t *testing.T) {
	h := openWith(t, groupable().WithGroup("g", "a", "b").WithContent("c", 0, 600, "C"))
	h.s.ToggleCollapse("g")
	h.settle()

	h.s.SelectAll()
	group, err := h.s.CreateGroup()
	require.NoError(t, err)
	assert.False(t, group.Data.Collapsed)

	for _, id := range []string{"a", "b", "c"} {
		n := h.node(t, id)
		assert.Equal(t, group.ID, n.ParentID, id)
		assert.False(t, n.Hidden, id)
		assert.True(t, n.IsDraggable(), id)
	}
}

func TestCreateGroup_InsufficientSelection(t *testing.T) {
	h := openWith(t, groupable())

	h.s.Click("a")
	_, err := h.s.CreateGroup()
	assert.True(t, pkgerrors.IsInsufficientSelection(err))
	assert.Len(t, h.s.Snapshot().Nodes, 2)
}

func TestGroup_AutoFitsAfterMemberMove(t *testing.T) {
	h := openWith(t, groupable().WithGroup("g", "a", "b"))
	require.Equal(t, valueobjects.Size{Width: 748, Height: 312}, h.node(t, "g").Size)

	require.NoError(t, h.s.MoveNode("a", valueobjects.Position{X: 0, Y: 100}))
	h.clock.Advance(16 * time.Millisecond)

	g := h.node(t, "g")
	assert.Equal(t, valueobjects.Position{X: -24, Y: -88}, g.Position)
	assert.Equal(t, valueobjects.Size{Width: 748, Height: 412}, g.Size)
}

func TestGroup_MoveCarriesMembers(t *testing.T) {
	h := openWith(t, groupable().WithGroup("g", "a", "b"))

	require.NoError(t, h.s.MoveNode("g", valueobjects.Position{X: -14, Y: -78}))
	assert.Equal(t, valueobjects.Position{X: 10, Y: 10}, h.node(t, "a").Position)
	assert.Equal(t, valueobjects.Position{X: 410, Y: 10}, h.node(t, "b").Position)

	h.settle()
	assert.Equal(t, valueobjects.Position{X: -14, Y: -78}, h.node(t, "g").Position)
}

func TestToggleCollapse(t *testing.T) {
	h := openWith(t, groupable().WithGroup("g", "a", "b"))

	var collapsed []events.GroupCollapsed
	appevents.Subscribe(h.s.Bus(), func(e events.GroupCollapsed) { collapsed = append(collapsed, e) })

	h.s.ToggleCollapse("g")
	h.settle()

	assert.Equal(t, 64.0, h.node(t, "g").Size.Height)
	for _, id := range []string{"a", "b"} {
		n := h.node(t, id)
		assert.True(t, n.Hidden)
		assert.False(t, n.IsDraggable())
	}
	require.NoError(t, h.s.MoveNode("a", valueobjects.Position{X: 999, Y: 999}))
	assert.Equal(t, valueobjects.Position{}, h.node(t, "a").Position, "members of a collapsed group stay put")

	h.s.ToggleCollapse("g")
	h.clock.Advance(16 * time.Millisecond)

	assert.Equal(t, valueobjects.Size{Width: 748, Height: 312}, h.node(t, "g").Size)
	assert.False(t, h.node(t, "a").Hidden)
	assert.True(t, h.node(t, "a").IsDraggable())

	require.Len(t, collapsed, 2)
	assert.True(t, collapsed[0].Collapsed)
	assert.ElementsMatch(t, []string{"a", "b"}, collapsed[0].MemberIDs)
	assert.False(t, collapsed[1].Collapsed)
}

func TestUpdateNodeData_CollapsedFlagFolds(t *testing.T) {
	h := openWith(t, groupable().WithGroup("g", "a", "b"))

	yes := true
	h.s.UpdateNodeData("g", entities.DataPatch{Collapsed: &yes})
	assert.True(t, h.node(t, "g").Data.Collapsed)
	assert.True(t, h.node(t, "a").Hidden)
}

func TestUpdateNodeData_GrowsNode(t *testing.T) {
	h := openWith(t, twoNodes())

	title := "A considerably longer title"
	h.s.UpdateNodeData("a", entities.DataPatch{Title: &title})
	assert.Equal(t, 350.0, h.node(t, "a").Size.Width)

	short := "A"
	h.s.UpdateNodeData("a", entities.DataPatch{Title: &short})
	assert.Equal(t, 350.0, h.node(t, "a").Size.Width, "nodes never shrink")
}

func TestDeleteSelected_ReleasesGroupMembers(t *testing.T) {
	h := openWith(t, groupable().WithGroup("g", "a", "b").WithEdge("e1", "a", "b"))

	h.s.Click("g")
	removed := h.s.DeleteSelected()
	assert.Equal(t, []string{"g"}, removed)

	state := h.s.Snapshot()
	assert.Len(t, state.Nodes, 2)
	assert.Len(t, state.Edges, 1)
	assert.Empty(t, h.node(t, "a").ParentID)

	h.s.Click("a")
	h.s.DeleteSelected()
	assert.Empty(t, h.s.Snapshot().Edges)

	assert.Nil(t, h.s.DeleteSelected(), "empty selection deletes nothing")
}

func TestDeleteEdge(t *testing.T) {
	h := openSession(t, testutil.NewRecordingStore())
	assert.True(t, h.s.DeleteEdge("e1"))
	assert.False(t, h.s.DeleteEdge("e1"))
	assert.Len(t, h.s.Snapshot().Edges, 1)
}

func TestAddNode_CentersOnViewport(t *testing.T) {
	h := openSession(t, testutil.NewRecordingStore(), func(o *Options) { o.Seed = false })

	n := h.s.AddNode()
	assert.Equal(t, valueobjects.Position{X: 540, Y: 310}, n.Position)
	assert.Equal(t, "New Node", n.Data.Title)
	assert.Equal(t, "...", n.Data.Description)
	assert.Equal(t, valueobjects.Size{Width: 230, Height: 138}, n.Size)

	h.s.SetViewport(valueobjects.Viewport{X: 40, Y: 60, Zoom: 2})
	n = h.s.AddNode()
	assert.Equal(t, valueobjects.Position{X: 200, Y: 100}, n.Position)
}

func TestResizeNode(t *testing.T) {
	h := openWith(t, twoNodes())

	require.NoError(t, h.s.ResizeNode("a", valueobjects.Size{Width: 400, Height: 300}))
	assert.Equal(t, valueobjects.Size{Width: 400, Height: 300}, h.node(t, "a").Size)

	err := h.s.ResizeNode("a", valueobjects.Size{Width: -1, Height: 10})
	assert.Error(t, err)
}

func TestSetViewport_ClampsAndSkipsHistory(t *testing.T) {
	store := testutil.NewRecordingStore()
	h := openSession(t, store)

	applied := h.s.SetViewport(valueobjects.Viewport{X: 10, Y: 20, Zoom: 5})
	assert.Equal(t, 2.0, applied.Zoom)
	h.settle()

	_, total := h.s.HistoryStats()
	assert.Equal(t, 1, total)
	saved, ok := store.Saved("test-board")
	require.True(t, ok)
	assert.Equal(t, applied, saved.Viewport)
}

func TestUndoRedo_WalksEveryEdit(t *testing.T) {
	h := openWith(t, twoNodes())
	initial := h.s.Snapshot().Nodes

	for i := 1; i <= 5; i++ {
		require.NoError(t, h.s.MoveNode("a", valueobjects.Position{X: float64(i * 10)}))
		h.settle()
	}
	current, total := h.s.HistoryStats()
	require.Equal(t, 6, current)
	require.Equal(t, 6, total)

	for i := 0; i < 5; i++ {
		assert.True(t, h.s.Undo())
	}
	assert.Equal(t, initial, h.s.Snapshot().Nodes)
	assert.False(t, h.s.Undo(), "oldest entry reached")
	assert.Equal(t, initial, h.s.Snapshot().Nodes)

	assert.True(t, h.s.Redo())
	assert.Equal(t, valueobjects.Position{X: 10}, h.node(t, "a").Position)
}

func TestUndo_ReplayIsNotRecorded(t *testing.T) {
	h := openWith(t, twoNodes())

	require.NoError(t, h.s.MoveNode("a", valueobjects.Position{X: 50, Y: 50}))
	h.settle()
	require.True(t, h.s.Undo())
	h.settle()

	current, total := h.s.HistoryStats()
	assert.Equal(t, 1, current)
	assert.Equal(t, 2, total)
	assert.True(t, h.s.CanRedo())
}

func TestUndo_FlushesPendingEdit(t *testing.T) {
	h := openWith(t, twoNodes())
	initial := h.s.Snapshot().Nodes

	require.NoError(t, h.s.MoveNode("a", valueobjects.Position{X: 50, Y: 50}))
	assert.True(t, h.s.CanUndo())
	require.True(t, h.s.Undo())
	assert.Equal(t, initial, h.s.Snapshot().Nodes)

	require.True(t, h.s.Redo())
	assert.Equal(t, valueobjects.Position{X: 50, Y: 50}, h.node(t, "a").Position)
}

func TestUndo_RecordsEditWhoseTimerAlreadyFired(t *testing.T) {
	h := openWith(t, twoNodes())
	initial := h.node(t, "a").Position

	require.NoError(t, h.s.MoveNode("a", valueobjects.Position{X: 50, Y: 50}))
	// the timers have fired but their callbacks are still waiting for the mutex
	h.s.layoutTimer.Cancel()
	h.s.snapshotTimer.Cancel()
	assert.True(t, h.s.CanUndo())

	require.True(t, h.s.Undo())
	assert.Equal(t, initial, h.node(t, "a").Position)

	h.s.locked(h.s.layoutDueLocked)
	h.s.locked(h.s.snapshotDueLocked)
	current, total := h.s.HistoryStats()
	assert.Equal(t, 1, current)
	assert.Equal(t, 2, total, "late callback records nothing")

	require.True(t, h.s.Redo())
	assert.Equal(t, valueobjects.Position{X: 50, Y: 50}, h.node(t, "a").Position)
}

func TestUndo_BranchDropsRedo(t *testing.T) {
	h := openWith(t, twoNodes())

	require.NoError(t, h.s.MoveNode("a", valueobjects.Position{X: 50}))
	h.settle()
	h.s.Undo()
	require.NoError(t, h.s.MoveNode("b", valueobjects.Position{X: 70}))
	h.settle()

	assert.False(t, h.s.CanRedo())
	_, total := h.s.HistoryStats()
	assert.Equal(t, 2, total)
}

func TestHistory_CapEvictsOldest(t *testing.T) {
	h := openWith(t, twoNodes(), func(o *Options) {
		o.Config = config.DefaultEditorConfig()
		o.Config.HistoryLimit = 5
	})

	for i := 1; i <= 8; i++ {
		require.NoError(t, h.s.MoveNode("a", valueobjects.Position{X: float64(i)}))
		h.settle()
	}
	for h.s.Undo() {
	}
	assert.Equal(t, valueobjects.Position{X: 4}, h.node(t, "a").Position)
}

func TestSnapshot_DebounceCoalescesBurst(t *testing.T) {
	store := testutil.NewRecordingStore()
	h := openSession(t, store)

	var recorded int
	appevents.Subscribe(h.s.Bus(), func(events.HistoryRecorded) { recorded++ })

	for i := 0; i < 3; i++ {
		require.NoError(t, h.s.MoveNode("n1", valueobjects.Position{X: float64(i), Y: 0}))
		h.clock.Advance(50 * time.Millisecond)
	}
	assert.Zero(t, recorded)
	assert.Zero(t, store.Saves())

	h.clock.Advance(300 * time.Millisecond)
	assert.Equal(t, 1, recorded)
	assert.Equal(t, 1, store.Saves())

	_, total := h.s.HistoryStats()
	assert.Equal(t, 2, total)
}

func TestPersist_FailureIsLoggedNotReturned(t *testing.T) {
	store := testutil.NewRecordingStore()
	store.SaveErr = errors.New("disk full")
	h := openSession(t, store)

	var failures []events.PersistFailed
	appevents.Subscribe(h.s.Bus(), func(e events.PersistFailed) { failures = append(failures, e) })

	require.NoError(t, h.s.MoveNode("n1", valueobjects.Position{X: 1, Y: 1}))
	h.settle()

	require.Len(t, failures, 1)
	assert.Equal(t, valueobjects.Position{X: 1, Y: 1}, h.node(t, "n1").Position, "memory stays authoritative")
	assert.Error(t, h.s.Flush(context.Background()))
}

func TestPersist_WritesLatestState(t *testing.T) {
	store := testutil.NewRecordingStore()
	h := openSession(t, store)

	var saved int
	appevents.Subscribe(h.s.Bus(), func(events.DocumentSaved) { saved++ })

	h.s.Reset()
	h.settle()

	state, ok := store.Saved("test-board")
	require.True(t, ok)
	assert.Empty(t, state.Nodes)
	assert.Equal(t, 1, saved)

	require.True(t, h.s.Undo())
	assert.Len(t, h.s.Snapshot().Nodes, 3)
}

func TestClose_FlushesPendingWork(t *testing.T) {
	store := testutil.NewRecordingStore()
	h := openSession(t, store)

	require.NoError(t, h.s.MoveNode("n1", valueobjects.Position{X: 7, Y: 7}))
	require.NoError(t, h.s.Close(context.Background()))

	state, ok := store.Saved("test-board")
	require.True(t, ok)
	for _, n := range state.Nodes {
		if n.ID == "n1" {
			assert.Equal(t, valueobjects.Position{X: 7, Y: 7}, n.Position)
		}
	}
	assert.Zero(t, h.clock.Pending())

	h.s.Click("n1")
	assert.Empty(t, h.s.Selection(), "closed sessions ignore commands")
}

func TestClose_DropsLateStoreWrite(t *testing.T) {
	store := testutil.NewRecordingStore()
	h := openSession(t, store)

	require.NoError(t, h.s.MoveNode("n1", valueobjects.Position{X: 7, Y: 7}))
	require.NoError(t, h.s.Close(context.Background()))
	saves := store.Saves()
	require.Equal(t, 1, saves)

	// a persist timer that fired just before Close took the mutex
	h.s.persistInBackground()
	assert.NoError(t, h.s.Flush(context.Background()))
	assert.Equal(t, saves, store.Saves())
}

func TestSetSurface(t *testing.T) {
	h := openSession(t, testutil.NewRecordingStore(), func(o *Options) { o.Seed = false })
	h.s.SetSurface(ports.FixedSurface{Width: 200, Height: 100})

	n := h.s.AddNode()
	assert.Equal(t, valueobjects.Position{X: 0, Y: 0}, n.Position)
}
