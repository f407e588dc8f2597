package handlers

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"flowboard/application/commands"
	"flowboard/application/commands/bus"
	"flowboard/domain/core/aggregates"
	"flowboard/domain/core/entities"
	"flowboard/domain/core/valueobjects"
	"flowboard/pkg/common"
	pkgerrors "flowboard/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Board is the read side of the live editing session
type Board interface {
	Key() string
	Version() int
	Snapshot() aggregates.DocumentState
	Selection() []string
	HistoryStats() (current, total int)
	CanUndo() bool
	CanRedo() bool
}

// Exporter renders a board image
type Exporter interface {
	WritePNG(w io.Writer, state aggregates.DocumentState) error
}

// BoardHandler handles board HTTP requests
type BoardHandler struct {
	commandBus *bus.CommandBus
	board      Board
	exporter   Exporter
	logger     *zap.Logger
}

// NewBoardHandler creates a new board handler. exporter may be nil.
func NewBoardHandler(commandBus *bus.CommandBus, board Board, exporter Exporter, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		commandBus: commandBus,
		board:      board,
		exporter:   exporter,
		logger:     logger,
	}
}

// HistoryView reports the undo stack position
type HistoryView struct {
	Current int  `json:"current"`
	Total   int  `json:"total"`
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

// BoardView is the board as served to clients
type BoardView struct {
	Key       string                `json:"key"`
	Version   int                   `json:"version"`
	Nodes     []*entities.Node      `json:"nodes"`
	Edges     []*entities.Edge      `json:"edges"`
	Viewport  valueobjects.Viewport `json:"viewport"`
	Selection []string              `json:"selection"`
	History   HistoryView           `json:"history"`
}

// CommandResponse pairs a command's result with the board it left behind
type CommandResponse struct {
	Result interface{} `json:"result,omitempty"`
	Board  BoardView   `json:"board"`
}

// GetBoard handles GET /board
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	view := h.view()
	common.RespondWithMeta(w, http.StatusOK, view, common.NewMeta(r, view.Version))
}

// AddNode handles POST /board/nodes
func (h *BoardHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	var req AddNodeRequest
	if !h.decode(w, r, &req, true) {
		return
	}
	var at *valueobjects.Position
	if req.Position != nil {
		p := *req.Position
		at = &p
	}
	h.send(w, r, http.StatusCreated, commands.AddNode{At: at})
}

// Connect handles POST /board/edges
func (h *BoardHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	h.send(w, r, http.StatusCreated, commands.ConnectNodes{Source: req.Source, Target: req.Target})
}

// Select handles POST /board/selection
func (h *BoardHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	var cmd bus.Command
	switch req.Mode {
	case SelectClick:
		cmd = commands.ClickNode{NodeID: req.NodeID}
	case SelectAll:
		cmd = commands.SelectAll{}
	case SelectArea:
		cmd = commands.SelectArea{From: *req.From, To: *req.To}
	default:
		cmd = commands.ClearSelection{}
	}
	h.send(w, r, http.StatusOK, cmd)
}

// RunCommand handles POST /board/commands/{name} for argument-free commands
func (h *BoardHandler) RunCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	cmd, ok := commands.Simple(name)
	if !ok {
		common.RespondErrorWithDetails(w, http.StatusNotFound, CodeUnknownCommand, "unknown command",
			map[string]interface{}{"command": name})
		return
	}
	h.send(w, r, http.StatusOK, cmd)
}

// UpdateNode handles PATCH /board/nodes/{nodeID}. Data, position and size
// are applied in that order; the first refusal stops the rest.
func (h *BoardHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	var req UpdateNodeRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	if !h.hasNode(nodeID) {
		h.fail(w, r, pkgerrors.NodeNotFound(nodeID))
		return
	}

	var cmds []bus.Command
	if patch := req.patch(); !patch.IsEmpty() {
		cmds = append(cmds, commands.UpdateNodeData{NodeID: nodeID, Patch: patch})
	}
	if req.Position != nil {
		cmds = append(cmds, commands.MoveNode{NodeID: nodeID, Position: *req.Position})
	}
	if req.Width != nil {
		cmds = append(cmds, commands.ResizeNode{NodeID: nodeID, Width: *req.Width, Height: *req.Height})
	}
	for _, cmd := range cmds {
		if _, err := h.commandBus.Send(r.Context(), cmd); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	h.respond(w, r, http.StatusOK, nil)
}

// DeleteEdge handles DELETE /board/edges/{edgeID}
func (h *BoardHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	edgeID := chi.URLParam(r, "edgeID")
	result, err := h.commandBus.Send(r.Context(), commands.DeleteEdge{EdgeID: edgeID})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if removed, _ := result.Data.(bool); !removed {
		h.fail(w, r, pkgerrors.EdgeNotFound(edgeID))
		return
	}
	h.respond(w, r, http.StatusOK, nil)
}

// Undo handles POST /board/undo
func (h *BoardHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, http.StatusOK, commands.Undo{})
}

// Redo handles POST /board/redo
func (h *BoardHandler) Redo(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, http.StatusOK, commands.Redo{})
}

// SetViewport handles PUT /board/viewport
func (h *BoardHandler) SetViewport(w http.ResponseWriter, r *http.Request) {
	var req ViewportRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	h.send(w, r, http.StatusOK, commands.SetViewport{Viewport: valueobjects.Viewport{X: req.X, Y: req.Y, Zoom: req.Zoom}})
}

// Export handles GET /board/export.png
func (h *BoardHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		common.RespondError(w, http.StatusNotImplemented, CodeExportDisabled, "export needs the font measurer")
		return
	}
	var buf bytes.Buffer
	if err := h.exporter.WritePNG(&buf, h.board.Snapshot()); err != nil {
		h.logger.Warn("Export failed", zap.Error(err))
		common.RespondError(w, http.StatusUnprocessableEntity, CodeExportFailed, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *BoardHandler) send(w http.ResponseWriter, r *http.Request, status int, cmd bus.Command) {
	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, status, result.Data)
}

func (h *BoardHandler) respond(w http.ResponseWriter, r *http.Request, status int, result interface{}) {
	view := h.view()
	common.RespondWithMeta(w, status, CommandResponse{Result: result, Board: view}, common.NewMeta(r, view.Version))
}

func (h *BoardHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := pkgerrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Board request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", common.ExtractRequestID(r)),
			zap.Error(err))
	}
	common.RespondDomainError(w, err)
}

// decode reads and validates a JSON body. An empty body is accepted when optional.
func (h *BoardHandler) decode(w http.ResponseWriter, r *http.Request, req interface{}, optional bool) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if !(optional && stderrors.Is(err, io.EOF)) {
			h.fail(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
			return false
		}
	}
	if err := ValidateStruct(req); err != nil {
		h.fail(w, r, err)
		return false
	}
	if v, ok := req.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			h.fail(w, r, err)
			return false
		}
	}
	return true
}

func (h *BoardHandler) hasNode(id string) bool {
	for _, n := range h.board.Snapshot().Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func (h *BoardHandler) view() BoardView {
	state := h.board.Snapshot()
	current, total := h.board.HistoryStats()
	selection := h.board.Selection()
	if selection == nil {
		selection = []string{}
	}
	return BoardView{
		Key:       h.board.Key(),
		Version:   h.board.Version(),
		Nodes:     state.Nodes,
		Edges:     state.Edges,
		Viewport:  state.Viewport,
		Selection: selection,
		History: HistoryView{
			Current: current,
			Total:   total,
			CanUndo: h.board.CanUndo(),
			CanRedo: h.board.CanRedo(),
		},
	}
}
