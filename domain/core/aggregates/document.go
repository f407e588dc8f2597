package aggregates

import (
	"fmt"
	"time"

	"flowboard/domain/core/entities"
	"flowboard/domain/core/valueobjects"
	"flowboard/domain/events"
	pkgerrors "flowboard/pkg/errors"
)

// GraphState is the node/edge content of a document. History entries are GraphStates.
type GraphState struct {
	Nodes []*entities.Node `json:"nodes"`
	Edges []*entities.Edge `json:"edges"`
}

// Clone returns a deep copy
func (s GraphState) Clone() GraphState {
	c := GraphState{
		Nodes: make([]*entities.Node, len(s.Nodes)),
		Edges: make([]*entities.Edge, len(s.Edges)),
	}
	for i, n := range s.Nodes {
		c.Nodes[i] = n.Clone()
	}
	for i, e := range s.Edges {
		c.Edges[i] = e.Clone()
	}
	return c
}

// DocumentState is the persisted document shape
type DocumentState struct {
	Nodes    []*entities.Node      `json:"nodes"`
	Edges    []*entities.Edge      `json:"edges"`
	Viewport valueobjects.Viewport `json:"viewport"`
}

// Document is the aggregate root for a board: its nodes, edges and viewport.
// Node order is z-order, first drawn first.
type Document struct {
	id       string
	nodes    []*entities.Node
	byID     map[string]*entities.Node
	edges    []*entities.Edge
	viewport valueobjects.Viewport
	version  int
	events   []events.DomainEvent
	now      func() time.Time
}

// NewDocument creates an empty document
func NewDocument(id string) *Document {
	return &Document{
		id:       id,
		byID:     make(map[string]*entities.Node),
		viewport: valueobjects.DefaultViewport(),
		version:  1,
		now:      time.Now,
	}
}

// ReconstructDocument recreates a document from stored state, enforcing graph invariants
func ReconstructDocument(id string, state DocumentState) (*Document, error) {
	d := NewDocument(id)
	if err := d.load(GraphState{Nodes: state.Nodes, Edges: state.Edges}); err != nil {
		return nil, err
	}
	if state.Viewport.Zoom != 0 {
		d.viewport = state.Viewport
	}
	return d, nil
}

// ID returns the document's identifier
func (d *Document) ID() string {
	return d.id
}

// Version increments on every mutation
func (d *Document) Version() int {
	return d.version
}

// Viewport returns the stored pan/zoom
func (d *Document) Viewport() valueobjects.Viewport {
	return d.viewport
}

// SetViewport stores pan/zoom. Viewport changes are not graph mutations.
func (d *Document) SetViewport(vp valueobjects.Viewport) {
	if vp == d.viewport {
		return
	}
	d.viewport = vp
	d.addEvent(events.NewViewportChanged(d.id, vp, d.version, d.now()))
}

// NodeCount returns the number of nodes
func (d *Document) NodeCount() int {
	return len(d.nodes)
}

// EdgeCount returns the number of edges
func (d *Document) EdgeCount() int {
	return len(d.edges)
}

// Nodes returns copies of all nodes in z-order
func (d *Document) Nodes() []*entities.Node {
	nodes := make([]*entities.Node, len(d.nodes))
	for i, n := range d.nodes {
		nodes[i] = n.Clone()
	}
	return nodes
}

// Edges returns copies of all edges
func (d *Document) Edges() []*entities.Edge {
	edges := make([]*entities.Edge, len(d.edges))
	for i, e := range d.edges {
		edges[i] = e.Clone()
	}
	return edges
}

// Node returns a copy of the node with the given id
func (d *Document) Node(id string) (*entities.Node, bool) {
	n, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// HasNode checks if a node exists without copying it
func (d *Document) HasNode(id string) bool {
	_, ok := d.byID[id]
	return ok
}

// Edge returns a copy of the edge with the given id
func (d *Document) Edge(id string) (*entities.Edge, bool) {
	for _, e := range d.edges {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return nil, false
}

// AddNode appends a node with a fresh id. It always succeeds.
func (d *Document) AddNode(kind valueobjects.NodeKind, position valueobjects.Position, data entities.NodeData) *entities.Node {
	node := entities.NewNode(kind, position, data)
	d.nodes = append(d.nodes, node)
	d.byID[node.ID] = node
	d.touch()
	d.addEvent(events.NewNodeAdded(d.id, node.ID, kind, d.version, d.now()))
	return node.Clone()
}

// AddEdge connects source to target. Both must resolve to non-group nodes.
func (d *Document) AddEdge(source, target string, style entities.EdgeStyle) (*entities.Edge, error) {
	if err := d.checkEndpoint(source); err != nil {
		return nil, err
	}
	if err := d.checkEndpoint(target); err != nil {
		return nil, err
	}

	edge := entities.NewEdge(source, target, style)
	d.edges = append(d.edges, edge)
	d.touch()
	d.addEvent(events.NewEdgeAdded(d.id, edge.ID, source, target, d.version, d.now()))
	return edge.Clone(), nil
}

// RemoveEdge deletes one edge by id and reports whether it existed
func (d *Document) RemoveEdge(id string) bool {
	for i, e := range d.edges {
		if e.ID == id {
			d.edges = append(d.edges[:i], d.edges[i+1:]...)
			d.touch()
			d.addEvent(events.NewEdgeRemoved(d.id, id, d.version, d.now()))
			return true
		}
	}
	return false
}

// RemoveEdgesBetween deletes every direct edge between a and b, in either direction
func (d *Document) RemoveEdgesBetween(a, b string) []string {
	var removed []string
	kept := d.edges[:0]
	for _, e := range d.edges {
		if e.Joins(a, b) {
			removed = append(removed, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	d.edges = kept
	if len(removed) == 0 {
		return nil
	}
	d.touch()
	for _, id := range removed {
		d.addEvent(events.NewEdgeRemoved(d.id, id, d.version, d.now()))
	}
	return removed
}

// UpdateNodeData merges patch into the node's payload. Unknown ids are a no-op.
func (d *Document) UpdateNodeData(id string, patch entities.DataPatch) bool {
	n, ok := d.byID[id]
	if !ok || patch.IsEmpty() {
		return false
	}
	updated := patch.Apply(n.Data)
	if updated == n.Data {
		return false
	}
	n.Data = updated
	d.touch()
	d.addEvent(events.NewNodeDataUpdated(d.id, id, d.version, d.now()))
	return true
}

// MoveNode sets a node's position. Unknown ids are a no-op.
func (d *Document) MoveNode(id string, position valueobjects.Position) bool {
	n, ok := d.byID[id]
	if !ok || n.Position == position {
		return false
	}
	from := n.Position
	n.Position = position
	d.touch()
	d.addEvent(events.NewNodeMoved(d.id, id, from, position, d.version, d.now()))
	return true
}

// SetNodeSize sets a node's box. Unknown ids are a no-op.
func (d *Document) SetNodeSize(id string, size valueobjects.Size) bool {
	n, ok := d.byID[id]
	if !ok || n.Size == size {
		return false
	}
	n.Size = size
	d.touch()
	d.addEvent(events.NewNodeResized(d.id, id, size, d.version, d.now()))
	return true
}

// SetNodeVisibility sets the hidden and draggable flags used by collapsed groups
func (d *Document) SetNodeVisibility(id string, hidden, draggable bool) bool {
	n, ok := d.byID[id]
	if !ok || (n.Hidden == hidden && n.IsDraggable() == draggable) {
		return false
	}
	n.Hidden = hidden
	n.SetDraggable(draggable)
	d.touch()
	return true
}

// SetParent places a node inside a group, or releases it when parentID is empty
func (d *Document) SetParent(id, parentID string) error {
	n, ok := d.byID[id]
	if !ok {
		return pkgerrors.NodeNotFound(id)
	}
	if parentID != "" {
		parent, ok := d.byID[parentID]
		if !ok || !parent.IsGroup() {
			return pkgerrors.InvalidDocument("parent must be an existing group").WithDetail("parent_id", parentID)
		}
		if n.IsGroup() {
			return pkgerrors.InvalidDocument("groups cannot be nested").WithDetail("node_id", id)
		}
	}
	if n.ParentID == parentID {
		return nil
	}
	n.ParentID = parentID
	d.touch()
	return nil
}

// SendToBack moves a node to the lowest z-order
func (d *Document) SendToBack(id string) bool {
	for i, n := range d.nodes {
		if n.ID != id {
			continue
		}
		if i == 0 {
			return false
		}
		copy(d.nodes[1:i+1], d.nodes[:i])
		d.nodes[0] = n
		d.touch()
		return true
	}
	return false
}

// RemoveNodes deletes the given nodes and every edge touching them. Members of a
// removed group are released rather than deleted. Unknown ids are skipped.
func (d *Document) RemoveNodes(ids []string) (removedNodes, removedEdges []string) {
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := d.byID[id]; ok {
			doomed[id] = true
		}
	}
	if len(doomed) == 0 {
		return nil, nil
	}

	keptNodes := make([]*entities.Node, 0, len(d.nodes))
	for _, n := range d.nodes {
		if doomed[n.ID] {
			removedNodes = append(removedNodes, n.ID)
			delete(d.byID, n.ID)
			continue
		}
		keptNodes = append(keptNodes, n)
	}
	for _, n := range keptNodes {
		if n.ParentID != "" && doomed[n.ParentID] {
			n.ParentID = ""
			n.Hidden = false
			n.SetDraggable(true)
		}
	}
	d.nodes = keptNodes

	keptEdges := make([]*entities.Edge, 0, len(d.edges))
	for _, e := range d.edges {
		if doomed[e.Source] || doomed[e.Target] {
			removedEdges = append(removedEdges, e.ID)
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	d.edges = keptEdges

	d.touch()
	d.addEvent(events.NewNodesRemoved(d.id, removedNodes, removedEdges, d.version, d.now()))
	return removedNodes, removedEdges
}

// ResolveParent returns a copy of the node's group, or nil
func (d *Document) ResolveParent(id string) *entities.Node {
	n, ok := d.byID[id]
	if !ok || n.ParentID == "" {
		return nil
	}
	parent, ok := d.byID[n.ParentID]
	if !ok {
		return nil
	}
	return parent.Clone()
}

// Children returns copies of the nodes whose parent is groupID
func (d *Document) Children(groupID string) []*entities.Node {
	var children []*entities.Node
	for _, n := range d.nodes {
		if n.ParentID == groupID {
			children = append(children, n.Clone())
		}
	}
	return children
}

// Groups returns copies of all group nodes
func (d *Document) Groups() []*entities.Node {
	var groups []*entities.Node
	for _, n := range d.nodes {
		if n.IsGroup() {
			groups = append(groups, n.Clone())
		}
	}
	return groups
}

// Graph returns a deep copy of the node/edge content
func (d *Document) Graph() GraphState {
	return GraphState{Nodes: d.Nodes(), Edges: d.Edges()}
}

// State returns a deep copy of the persisted shape
func (d *Document) State() DocumentState {
	return DocumentState{Nodes: d.Nodes(), Edges: d.Edges(), Viewport: d.viewport}
}

// Replace swaps the whole node/edge content, keeping the viewport
func (d *Document) Replace(state GraphState, reason string) error {
	if err := d.load(state.Clone()); err != nil {
		return err
	}
	d.touch()
	d.addEvent(events.NewDocumentReplaced(d.id, reason, len(d.nodes), len(d.edges), d.version, d.now()))
	return nil
}

// Clone returns an independent copy without pending events
func (d *Document) Clone() *Document {
	c := NewDocument(d.id)
	_ = c.load(d.Graph())
	c.viewport = d.viewport
	c.version = d.version
	c.now = d.now
	return c
}

// Validate checks the graph invariants
func (d *Document) Validate() error {
	return validateGraph(d.nodes, d.edges)
}

// GetUncommittedEvents returns events raised since the last MarkEventsAsCommitted
func (d *Document) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(d.events))
	copy(out, d.events)
	return out
}

// MarkEventsAsCommitted clears pending events
func (d *Document) MarkEventsAsCommitted() {
	d.events = nil
}

// SetClock overrides the event timestamp source
func (d *Document) SetClock(now func() time.Time) {
	d.now = now
}

func (d *Document) load(state GraphState) error {
	if err := validateGraph(state.Nodes, state.Edges); err != nil {
		return err
	}
	byID := make(map[string]*entities.Node, len(state.Nodes))
	nodes := make([]*entities.Node, len(state.Nodes))
	for i, n := range state.Nodes {
		c := n.Clone()
		nodes[i] = c
		byID[c.ID] = c
	}
	edges := make([]*entities.Edge, len(state.Edges))
	for i, e := range state.Edges {
		edges[i] = e.Clone()
	}
	d.nodes, d.byID, d.edges = nodes, byID, edges
	return nil
}

func (d *Document) checkEndpoint(id string) error {
	n, ok := d.byID[id]
	if !ok || !n.Kind.CanConnect() {
		return pkgerrors.InvalidEndpoint(id)
	}
	return nil
}

func (d *Document) touch() {
	d.version++
}

func (d *Document) addEvent(event events.DomainEvent) {
	d.events = append(d.events, event)
}

func validateGraph(nodes []*entities.Node, edges []*entities.Edge) error {
	byID := make(map[string]*entities.Node, len(nodes))
	for _, n := range nodes {
		if n == nil || n.ID == "" {
			return pkgerrors.InvalidDocument("node id required")
		}
		if !n.Kind.IsValid() {
			return pkgerrors.InvalidDocument(fmt.Sprintf("node %s has unknown kind %q", n.ID, n.Kind))
		}
		if _, dup := byID[n.ID]; dup {
			return pkgerrors.InvalidDocument("duplicate node id").WithDetail("node_id", n.ID)
		}
		byID[n.ID] = n
	}
	for _, n := range nodes {
		if n.ParentID == "" {
			continue
		}
		parent, ok := byID[n.ParentID]
		if !ok || !parent.IsGroup() || n.IsGroup() {
			return pkgerrors.InvalidDocument("parent must reference an existing group").
				WithDetail("node_id", n.ID).
				WithDetail("parent_id", n.ParentID)
		}
	}

	edgeIDs := make(map[string]bool, len(edges))
	for _, e := range edges {
		if e == nil || e.ID == "" {
			return pkgerrors.InvalidDocument("edge id required")
		}
		if edgeIDs[e.ID] {
			return pkgerrors.InvalidDocument("duplicate edge id").WithDetail("edge_id", e.ID)
		}
		edgeIDs[e.ID] = true
		for _, end := range []string{e.Source, e.Target} {
			n, ok := byID[end]
			if !ok || !n.Kind.CanConnect() {
				return pkgerrors.InvalidEndpoint(end).WithDetail("edge_id", e.ID)
			}
		}
	}
	return nil
}
