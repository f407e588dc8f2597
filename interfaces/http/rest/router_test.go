package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flowboard/application/commands"
	"flowboard/application/commands/bus"
	"flowboard/application/editor"
	domainconfig "flowboard/domain/config"
	"flowboard/domain/core/aggregates"
	"flowboard/domain/services/layout"
	"flowboard/infrastructure/config"
	"flowboard/infrastructure/observability"
	"flowboard/interfaces/http/rest/handlers"
	"flowboard/internal/testutil"
	"flowboard/pkg/debounce"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool `json:"success"`
	Data    struct {
		Result json.RawMessage    `json:"result"`
		Board  handlers.BoardView `json:"board"`
	} `json:"data"`
	Error *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
	Meta *struct {
		RequestID string `json:"request_id"`
		Version   int    `json:"version"`
	} `json:"meta"`
}

type stubExporter struct{ err error }

func (s stubExporter) WritePNG(w io.Writer, _ aggregates.DocumentState) error {
	if s.err != nil {
		return s.err
	}
	_, err := w.Write([]byte("\x89PNG"))
	return err
}

type fixture struct {
	handler http.Handler
	session *editor.Session
}

func newFixture(t *testing.T, exporter handlers.Exporter) *fixture {
	t.Helper()
	session, err := editor.Open(context.Background(), editor.Options{
		Layout: layout.NewEngine(domainconfig.DefaultLayoutConfig(), testutil.GridMeasurer{}),
		Store:  testutil.NewRecordingStore(),
		Clock:  debounce.NewManualClock(),
		Logger: zap.NewNop(),
		Seed:   true,
	})
	require.NoError(t, err)

	b := bus.NewCommandBus(bus.ValidationMiddleware())
	require.NoError(t, commands.NewHandlers(session).Register(b))

	router := NewRouter(b, session, exporter, observability.NewCollector("flowboard_test"), nil,
		config.Default().Server, zap.NewNop())
	return &fixture{handler: router.Setup(), session: session}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") && path != "/health" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	rec, _ := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestGetBoard(t *testing.T) {
	f := newFixture(t, nil)
	rec, _ := f.do(t, http.MethodGet, "/api/v1/board", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool               `json:"success"`
		Data    handlers.BoardView `json:"data"`
		Meta    struct {
			RequestID string `json:"request_id"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Len(t, env.Data.Nodes, 3)
	assert.Len(t, env.Data.Edges, 2)
	assert.Equal(t, editor.DefaultBoardKey, env.Data.Key)
	assert.Empty(t, env.Data.Selection)
	assert.False(t, env.Data.History.CanUndo)
	assert.NotEmpty(t, env.Meta.RequestID)
}

func TestAddNode(t *testing.T) {
	f := newFixture(t, nil)

	rec, env := f.do(t, http.MethodPost, "/api/v1/board/nodes", `{"position":{"x":10,"y":20}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, env.Data.Board.Nodes, 4)
	added := env.Data.Board.Nodes[3]
	assert.Equal(t, 10.0, added.Position.X)
	assert.Equal(t, 20.0, added.Position.Y)

	rec, env = f.do(t, http.MethodPost, "/api/v1/board/nodes", "")
	require.Equal(t, http.StatusCreated, rec.Code, "empty body places the node at the viewport center")
	assert.Len(t, env.Data.Board.Nodes, 5)

	rec, env = f.do(t, http.MethodPost, "/api/v1/board/nodes", `{"position":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestSelectAndConnect(t *testing.T) {
	f := newFixture(t, nil)

	_, env := f.do(t, http.MethodPost, "/api/v1/board/selection", `{"mode":"click","node_id":"n1"}`)
	assert.Equal(t, []string{"n1"}, env.Data.Board.Selection)
	_, env = f.do(t, http.MethodPost, "/api/v1/board/selection", `{"mode":"click","node_id":"n2"}`)
	assert.Equal(t, []string{"n1", "n2"}, env.Data.Board.Selection)

	rec, env := f.do(t, http.MethodPost, "/api/v1/board/commands/connect", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.Data.Board.Edges, 3)
	assert.Empty(t, env.Data.Board.Selection, "connect clears the selection")
}

func TestSelectionModes(t *testing.T) {
	f := newFixture(t, nil)

	_, env := f.do(t, http.MethodPost, "/api/v1/board/selection", `{"mode":"all"}`)
	assert.Len(t, env.Data.Board.Selection, 3)

	_, env = f.do(t, http.MethodPost, "/api/v1/board/selection", `{"mode":"clear"}`)
	assert.Empty(t, env.Data.Board.Selection)

	rec, env := f.do(t, http.MethodPost, "/api/v1/board/selection", `{"mode":"area"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "area needs both corners")
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/board/selection", `{"mode":"lasso"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunCommand_Refusals(t *testing.T) {
	f := newFixture(t, nil)

	rec, env := f.do(t, http.MethodPost, "/api/v1/board/commands/connect", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_SELECTION", env.Error.Code)
	assert.False(t, env.Success)

	rec, env = f.do(t, http.MethodPost, "/api/v1/board/commands/create-group", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INSUFFICIENT_SELECTION", env.Error.Code)

	rec, env = f.do(t, http.MethodPost, "/api/v1/board/commands/teleport", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, handlers.CodeUnknownCommand, env.Error.Code)
	assert.Equal(t, "teleport", env.Error.Details["command"])
}

func TestUpdateNode(t *testing.T) {
	f := newFixture(t, nil)

	rec, env := f.do(t, http.MethodPatch, "/api/v1/board/nodes/n1",
		`{"title":"Hello","position":{"x":5,"y":6},"width":400,"height":300}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var found bool
	for _, n := range env.Data.Board.Nodes {
		if n.ID == "n1" {
			found = true
			assert.Equal(t, "Hello", n.Data.Title)
			assert.Equal(t, 5.0, n.Position.X)
			assert.GreaterOrEqual(t, n.Size.Width, 400.0)
		}
	}
	assert.True(t, found)
}

func TestUpdateNode_Errors(t *testing.T) {
	f := newFixture(t, nil)

	rec, env := f.do(t, http.MethodPatch, "/api/v1/board/nodes/ghost", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NODE_NOT_FOUND", env.Error.Code)
	assert.Equal(t, "ghost", env.Error.Details["node_id"])

	rec, _ = f.do(t, http.MethodPatch, "/api/v1/board/nodes/n1", `{"width":100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "width without height")

	rec, _ = f.do(t, http.MethodPatch, "/api/v1/board/nodes/n1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "nothing to update")

	rec, _ = f.do(t, http.MethodPatch, "/api/v1/board/nodes/n1", `{"color":"plaid"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteEdge(t *testing.T) {
	f := newFixture(t, nil)

	rec, env := f.do(t, http.MethodDelete, "/api/v1/board/edges/e1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.Data.Board.Edges, 1)

	rec, env = f.do(t, http.MethodDelete, "/api/v1/board/edges/e1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "EDGE_NOT_FOUND", env.Error.Code)
}

func TestConnectNodes(t *testing.T) {
	f := newFixture(t, nil)

	rec, env := f.do(t, http.MethodPost, "/api/v1/board/edges", `{"source":"n2","target":"n1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, env.Data.Board.Edges, 3)

	rec, env = f.do(t, http.MethodPost, "/api/v1/board/edges", `{"source":"n2","target":"nowhere"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_ENDPOINT", env.Error.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/board/edges", `{"source":"n2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUndoRedo(t *testing.T) {
	f := newFixture(t, nil)

	f.do(t, http.MethodPost, "/api/v1/board/nodes", "")

	rec, env := f.do(t, http.MethodPost, "/api/v1/board/undo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "true", string(env.Data.Result))
	assert.Len(t, env.Data.Board.Nodes, 3)
	assert.True(t, env.Data.Board.History.CanRedo)

	_, env = f.do(t, http.MethodPost, "/api/v1/board/redo", "")
	assert.JSONEq(t, "true", string(env.Data.Result))
	assert.Len(t, env.Data.Board.Nodes, 4)

	_, env = f.do(t, http.MethodPost, "/api/v1/board/redo", "")
	assert.JSONEq(t, "false", string(env.Data.Result), "nothing left to redo")
}

func TestSetViewport(t *testing.T) {
	f := newFixture(t, nil)

	rec, env := f.do(t, http.MethodPut, "/api/v1/board/viewport", `{"x":10,"y":5,"zoom":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, env.Data.Board.Viewport.Zoom, "zoom is clamped")
	assert.Equal(t, 10.0, env.Data.Board.Viewport.X)

	rec, _ = f.do(t, http.MethodPut, "/api/v1/board/viewport", `{"x":10,"y":5,"zoom":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport(t *testing.T) {
	rec, env := newFixture(t, nil).do(t, http.MethodGet, "/api/v1/board/export.png", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, handlers.CodeExportDisabled, env.Error.Code)

	rec, _ = newFixture(t, stubExporter{}).do(t, http.MethodGet, "/api/v1/board/export.png", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec, env = newFixture(t, stubExporter{err: errors.New("nothing to export")}).
		do(t, http.MethodGet, "/api/v1/board/export.png", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, handlers.CodeExportFailed, env.Error.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodGet, "/api/v1/board", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "flowboard_test_http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/board/nodes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
