package events

import (
	"time"

	"flowboard/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(aggregateID, eventType string, version int, at time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   at,
		Version:     version,
	}
}

// Event type names
const (
	TypeNodeAdded        = "document.node_added"
	TypeNodesRemoved     = "document.nodes_removed"
	TypeNodeDataUpdated  = "document.node_data_updated"
	TypeNodeMoved        = "document.node_moved"
	TypeNodeResized      = "document.node_resized"
	TypeEdgeAdded        = "document.edge_added"
	TypeEdgeRemoved      = "document.edge_removed"
	TypeGroupCollapsed   = "document.group_collapsed"
	TypeDocumentReplaced = "document.replaced"
	TypeViewportChanged  = "document.viewport_changed"

	TypeSelectionChanged = "editor.selection_changed"
	TypeNoticeRaised     = "editor.notice_raised"
	TypeHistoryRecorded  = "history.recorded"
	TypeHistoryReplayed  = "history.replayed"
	TypeDocumentSaved    = "persistence.saved"
	TypePersistFailed    = "persistence.failed"
)

// Document events

// NodeAdded is raised when a node joins the document
type NodeAdded struct {
	BaseEvent
	NodeID string                `json:"node_id"`
	Kind   valueobjects.NodeKind `json:"kind"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(docID, nodeID string, kind valueobjects.NodeKind, version int, at time.Time) NodeAdded {
	return NodeAdded{BaseEvent: newBase(docID, TypeNodeAdded, version, at), NodeID: nodeID, Kind: kind}
}

// NodesRemoved is raised when nodes and their incident edges are removed
type NodesRemoved struct {
	BaseEvent
	NodeIDs []string `json:"node_ids"`
	EdgeIDs []string `json:"edge_ids"`
}

// NewNodesRemoved creates a NodesRemoved event
func NewNodesRemoved(docID string, nodeIDs, edgeIDs []string, version int, at time.Time) NodesRemoved {
	return NodesRemoved{BaseEvent: newBase(docID, TypeNodesRemoved, version, at), NodeIDs: nodeIDs, EdgeIDs: edgeIDs}
}

// NodeDataUpdated is raised when a node's payload changes
type NodeDataUpdated struct {
	BaseEvent
	NodeID string `json:"node_id"`
}

// NewNodeDataUpdated creates a NodeDataUpdated event
func NewNodeDataUpdated(docID, nodeID string, version int, at time.Time) NodeDataUpdated {
	return NodeDataUpdated{BaseEvent: newBase(docID, TypeNodeDataUpdated, version, at), NodeID: nodeID}
}

// NodeMoved is raised when a node is moved to a new position
type NodeMoved struct {
	BaseEvent
	NodeID      string                `json:"node_id"`
	OldPosition valueobjects.Position `json:"old_position"`
	NewPosition valueobjects.Position `json:"new_position"`
}

// NewNodeMoved creates a NodeMoved event
func NewNodeMoved(docID, nodeID string, from, to valueobjects.Position, version int, at time.Time) NodeMoved {
	return NodeMoved{BaseEvent: newBase(docID, TypeNodeMoved, version, at), NodeID: nodeID, OldPosition: from, NewPosition: to}
}

// NodeResized is raised when a node's box changes, by the user or by layout
type NodeResized struct {
	BaseEvent
	NodeID string            `json:"node_id"`
	Size   valueobjects.Size `json:"size"`
}

// NewNodeResized creates a NodeResized event
func NewNodeResized(docID, nodeID string, size valueobjects.Size, version int, at time.Time) NodeResized {
	return NodeResized{BaseEvent: newBase(docID, TypeNodeResized, version, at), NodeID: nodeID, Size: size}
}

// EdgeAdded is raised when two nodes are connected
type EdgeAdded struct {
	BaseEvent
	EdgeID string `json:"edge_id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// NewEdgeAdded creates an EdgeAdded event
func NewEdgeAdded(docID, edgeID, source, target string, version int, at time.Time) EdgeAdded {
	return EdgeAdded{BaseEvent: newBase(docID, TypeEdgeAdded, version, at), EdgeID: edgeID, Source: source, Target: target}
}

// EdgeRemoved is raised when a single edge is deleted
type EdgeRemoved struct {
	BaseEvent
	EdgeID string `json:"edge_id"`
}

// NewEdgeRemoved creates an EdgeRemoved event
func NewEdgeRemoved(docID, edgeID string, version int, at time.Time) EdgeRemoved {
	return EdgeRemoved{BaseEvent: newBase(docID, TypeEdgeRemoved, version, at), EdgeID: edgeID}
}

// GroupCollapsed is raised when a group folds or unfolds
type GroupCollapsed struct {
	BaseEvent
	GroupID   string   `json:"group_id"`
	Collapsed bool     `json:"collapsed"`
	MemberIDs []string `json:"member_ids"`
}

// NewGroupCollapsed creates a GroupCollapsed event
func NewGroupCollapsed(docID, groupID string, collapsed bool, members []string, version int, at time.Time) GroupCollapsed {
	return GroupCollapsed{
		BaseEvent: newBase(docID, TypeGroupCollapsed, version, at),
		GroupID:   groupID,
		Collapsed: collapsed,
		MemberIDs: members,
	}
}

// DocumentReplaced is raised when the whole node/edge set is swapped, by load, reset or history replay
type DocumentReplaced struct {
	BaseEvent
	Reason    string `json:"reason"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

// NewDocumentReplaced creates a DocumentReplaced event
func NewDocumentReplaced(docID, reason string, nodes, edges, version int, at time.Time) DocumentReplaced {
	return DocumentReplaced{
		BaseEvent: newBase(docID, TypeDocumentReplaced, version, at),
		Reason:    reason,
		NodeCount: nodes,
		EdgeCount: edges,
	}
}

// ViewportChanged is raised when pan or zoom changes
type ViewportChanged struct {
	BaseEvent
	Viewport valueobjects.Viewport `json:"viewport"`
}

// NewViewportChanged creates a ViewportChanged event
func NewViewportChanged(docID string, vp valueobjects.Viewport, version int, at time.Time) ViewportChanged {
	return ViewportChanged{BaseEvent: newBase(docID, TypeViewportChanged, version, at), Viewport: vp}
}
