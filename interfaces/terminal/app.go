// Package terminal is a full-screen terminal front end for a board session.
// Nodes are drawn as boxes on a character grid; the mouse selects and drags,
// and single keys run the board commands.
package terminal

import (
	"context"
	stderrors "errors"
	"sync"

	"flowboard/application/commands/bus"
	appevents "flowboard/application/events"
	"flowboard/application/ports"
	"flowboard/domain/core/aggregates"
	"flowboard/domain/core/valueobjects"
	"flowboard/domain/events"
	pkgerrors "flowboard/pkg/errors"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

// Session is the board state the terminal draws
type Session interface {
	Key() string
	Snapshot() aggregates.DocumentState
	Selection() []string
	HistoryStats() (current, total int)
	SetSurface(surface ports.Surface)
	Bus() *appevents.Bus
}

// Options controls how document units map onto the character grid
type Options struct {
	// CellWidth and CellHeight are the document units covered by one cell
	CellWidth  float64
	CellHeight float64
	// Fallback box for nodes that have not been measured yet
	Fallback valueobjects.Size
}

// DefaultOptions maps a 10x20 unit block to each cell
func DefaultOptions() Options {
	return Options{
		CellWidth:  10,
		CellHeight: 20,
		Fallback:   valueobjects.Size{Width: 200, Height: 100},
	}
}

// quitSignal is posted as interrupt data to stop Run
type quitSignal struct{}

// App runs the terminal editor
type App struct {
	screen   tcell.Screen
	session  Session
	commands *bus.CommandBus
	logger   *zap.Logger
	opts     Options

	// pointer state
	drag *drag

	mu     sync.Mutex
	status string
}

// NewApp creates the terminal editor. The screen is initialized by Run.
func NewApp(screen tcell.Screen, session Session, commands *bus.CommandBus, logger *zap.Logger, opts Options) *App {
	if opts.CellWidth <= 0 || opts.CellHeight <= 0 {
		opts = DefaultOptions()
	}
	if opts.Fallback.IsZero() {
		opts.Fallback = DefaultOptions().Fallback
	}
	return &App{
		screen:   screen,
		session:  session,
		commands: commands,
		logger:   logger,
		opts:     opts,
	}
}

// ScreenSize implements ports.Surface. The status row is not canvas.
func (a *App) ScreenSize() valueobjects.Size {
	w, h := a.screen.Size()
	if h > 1 {
		h--
	}
	return valueobjects.Size{Width: float64(w) * a.opts.CellWidth, Height: float64(h) * a.opts.CellHeight}
}

// Run takes over the terminal until the user quits or ctx is done
func (a *App) Run(ctx context.Context) error {
	if err := a.screen.Init(); err != nil {
		return err
	}
	defer a.screen.Fini()
	a.screen.EnableMouse()
	a.screen.HideCursor()

	a.session.SetSurface(a)
	defer a.session.SetSurface(nil)
	detach := a.Attach()
	defer detach()

	stop := context.AfterFunc(ctx, func() {
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(quitSignal{}))
	})
	defer stop()

	for {
		a.Draw()
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if a.HandleEvent(ev) {
			return nil
		}
	}
}

// Attach subscribes to the session's events: any event schedules a redraw and
// notices land in the status line.
func (a *App) Attach() func() {
	b := a.session.Bus()
	unsubs := []appevents.Unsubscribe{
		appevents.Subscribe(b, func(e events.NoticeRaised) {
			a.setStatus(e.Message)
		}),
		appevents.Subscribe(b, func(e events.PersistFailed) {
			a.setStatus("save failed: " + e.Error)
		}),
		b.SubscribeAll(func(events.DomainEvent) {
			_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// HandleEvent applies one terminal event and reports whether to quit
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventInterrupt:
		_, quit := ev.Data().(quitSignal)
		return quit
	}
	return false
}

// Status returns the status line message
func (a *App) Status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *App) setStatus(msg string) {
	a.mu.Lock()
	a.status = msg
	a.mu.Unlock()
}

// send dispatches cmd. Refusals become the status message; anything else is logged.
func (a *App) send(cmd bus.Command) (bus.CommandResult, bool) {
	result, err := a.commands.Send(context.Background(), cmd)
	if err == nil {
		return result, true
	}
	var de *pkgerrors.DomainError
	if stderrors.As(err, &de) {
		a.setStatus(de.Message)
	} else {
		a.setStatus(err.Error())
	}
	if !pkgerrors.IsUserFacing(err) {
		a.logger.Warn("Terminal command failed", zap.String("command", bus.NameOf(cmd)), zap.Error(err))
	}
	return result, false
}
