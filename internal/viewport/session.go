package viewport

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mleroi/dicomstack/internal/config"
	"github.com/mleroi/dicomstack/internal/display"
	"github.com/mleroi/dicomstack/internal/obs"
	"github.com/mleroi/dicomstack/internal/resource"
	"github.com/mleroi/dicomstack/internal/series"
)

// State is the lifecycle phase of a session.
type State int

const (
	StateEmpty State = iota
	StateAttaching
	StateReady
	StateLoading
	StateDisplayed
	StateError
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAttaching:
		return "attaching"
	case StateReady:
		return "ready"
	case StateLoading:
		return "loading"
	case StateDisplayed:
		return "displayed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// View is the presentation geometry of the current frame.
type View struct {
	Zoom        float64
	PanX, PanY  float64
	WindowLevel display.WindowLevel
	Fit         Rect
}

// Session drives one display surface. All mutating calls are safe for
// concurrent use; loads run in their own goroutine and report back
// through a generation check so a superseded load can never overwrite a
// newer one.
type Session struct {
	factory  EngineFactory
	settings config.Settings
	logger   zerolog.Logger
	metrics  *obs.Metrics
	ledger   *resource.Ledger

	mu         sync.Mutex
	state      State
	engine     Engine
	batch      *series.Batch
	current    *series.Series
	index      int
	tool       Tool
	view       View
	surfaceW   int
	surfaceH   int
	generation uint64
	lastErr    error

	loads sync.WaitGroup
}

// NewSession creates a detached session. Attach must succeed before any
// series can be displayed.
func NewSession(factory EngineFactory, settings config.Settings, ledger *resource.Ledger, logger zerolog.Logger, metrics *obs.Metrics) *Session {
	return &Session{
		factory:  factory,
		settings: settings,
		ledger:   ledger,
		logger:   logger,
		metrics:  metrics,
		tool:     ToolPan,
		view:     View{Zoom: settings.DefaultZoom},
	}
}

// Attach creates the rendering engine for a (re)mounted surface. An
// engine left over from a previous surface is destroyed first.
func (s *Session) Attach(width, height int) error {
	s.mu.Lock()
	if s.engine != nil {
		s.engine.Destroy()
		s.engine = nil
	}
	s.state = StateAttaching
	s.surfaceW = width
	s.surfaceH = height
	s.mu.Unlock()

	eng, err := s.factory()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateError
		s.lastErr = &InitializationError{Err: err}
		s.logger.Error().Err(err).Msg("engine initialization failed")
		return s.lastErr
	}
	s.engine = eng
	s.state = StateReady
	s.logger.Debug().Int("width", width).Int("height", height).Msg("surface attached")
	return nil
}

// SetBatch installs the series of a processed upload and resets the
// selection. The previous batch's resources stay owned by the ledger and
// are released by the caller when it swaps ledgers.
func (s *Session) SetBatch(batch *series.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++ // invalidate in-flight loads against the old batch
	s.batch = batch
	s.current = nil
	s.index = 0
	s.lastErr = nil
	if s.engine != nil {
		s.state = StateReady
	}
}

// SelectSeries starts loading the named series at its first slice.
func (s *Session) SelectSeries(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return &InitializationError{}
	}
	if s.batch == nil {
		return &InvalidSeriesError{Key: key}
	}
	sr := s.batch.FindSeries(key)
	if sr == nil || sr.Len() == 0 {
		return &InvalidSeriesError{Key: key}
	}
	s.current = sr
	// A fresh stack starts from the default view; navigation within the
	// stack keeps whatever the user set.
	s.view.Zoom = s.settings.DefaultZoom
	s.view.PanX, s.view.PanY = 0, 0
	s.startLoadLocked(sr, 0)
	return nil
}

// SetIndex jumps to a slice of the current series. Out-of-range indices
// clamp to the valid range; requesting the already displayed slice does
// not re-issue a decode.
func (s *Session) SetIndex(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.engine == nil {
		return
	}
	index = clampIndex(index, s.current.Len())
	if index == s.index && s.state == StateDisplayed {
		return
	}
	s.startLoadLocked(s.current, index)
}

// NavigateRelative moves by delta slices within the current series,
// clamped at both ends. Landing on the already displayed slice is a
// no-op.
func (s *Session) NavigateRelative(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.engine == nil {
		return
	}
	next := clampIndex(s.index+delta, s.current.Len())
	if next == s.index && s.state == StateDisplayed {
		return
	}
	s.startLoadLocked(s.current, next)
}

// ActivateTool switches the interaction mode. The displayed frame is
// re-asserted so the surface reflects the new tool immediately, without
// passing through the loading state.
func (s *Session) ActivateTool(t Tool) {
	s.mu.Lock()
	s.tool = t
	reassert := s.state == StateDisplayed && s.current != nil && s.engine != nil
	var (
		engine Engine
		cur    *series.Series
		idx    int
		gen    uint64
	)
	if reassert {
		engine = s.engine
		cur = s.current
		idx = s.index
		gen = s.generation
	}
	s.mu.Unlock()

	if !reassert {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.settings.LoadTimeout)
	defer cancel()
	if _, err := engine.Display(ctx, cur.Images[idx]); err != nil {
		s.logger.Warn().Err(err).Msg("tool activation redisplay failed")
		return
	}
	s.mu.Lock()
	if gen == s.generation {
		s.state = StateDisplayed
	}
	s.mu.Unlock()
}

// Resize records the new surface geometry and refits the current image.
// It never triggers a reload; calling it twice with the same size leaves
// the view unchanged.
func (s *Session) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surfaceW = width
	s.surfaceH = height
	s.refitLocked()
}

// ZoomBy steps the zoom and clamps it to the supported range.
func (s *Session) ZoomBy(steps int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Zoom = StepZoom(s.view.Zoom, steps)
}

// PanBy offsets the image within the surface.
func (s *Session) PanBy(dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.PanX += dx
	s.view.PanY += dy
}

// SetWindowLevel overrides the displayed window.
func (s *Session) SetWindowLevel(wl display.WindowLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.WindowLevel = wl
}

// ApplyPreset sets the window from a named preset.
func (s *Session) ApplyPreset(name string) error {
	wl, ok := display.PresetByName(name)
	if !ok {
		return fmt.Errorf("unknown window preset %q", name)
	}
	s.SetWindowLevel(wl)
	return nil
}

// Teardown destroys the engine, invalidates in-flight loads and releases
// every resource of the current batch.
func (s *Session) Teardown() {
	s.mu.Lock()
	s.generation++
	eng := s.engine
	s.engine = nil
	s.batch = nil
	s.current = nil
	s.index = 0
	s.state = StateEmpty
	s.lastErr = nil
	s.mu.Unlock()

	if eng != nil {
		eng.Destroy()
	}
	if s.ledger != nil {
		s.ledger.ReleaseAll()
	}
	s.logger.Debug().Msg("session torn down")
}

// WaitIdle blocks until every in-flight load has finished. Results of
// superseded loads are still suppressed; this only drains goroutines.
func (s *Session) WaitIdle() { s.loads.Wait() }

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentSeries returns the selected series, or nil.
func (s *Session) CurrentSeries() *series.Series {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Index returns the displayed slice index within the current series.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// ActiveTool returns the current interaction tool.
func (s *Session) ActiveTool() Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool
}

// View returns a copy of the presentation geometry.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Err returns the error behind an error state, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// startLoadLocked kicks off an asynchronous load. Callers hold s.mu.
func (s *Session) startLoadLocked(sr *series.Series, index int) {
	s.generation++
	gen := s.generation
	s.state = StateLoading
	if s.metrics != nil {
		s.metrics.LoadsStarted.Inc()
	}
	eng := s.engine
	s.loads.Add(1)
	go s.runLoad(eng, gen, sr, index)
}

// runLoad displays one slice, falling back to the following slices of
// the stack when the requested one fails to decode. Whatever the
// outcome, it only takes effect if no newer load has started since.
func (s *Session) runLoad(eng Engine, gen uint64, sr *series.Series, index int) {
	defer s.loads.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.settings.LoadTimeout)
	defer cancel()

	var (
		frame     Frame
		displayed = -1
		lastErr   error
	)
	for attempt := 0; attempt < sr.Len(); attempt++ {
		i := (index + attempt) % sr.Len()
		f, err := eng.Display(ctx, sr.Images[i])
		if err == nil {
			frame = f
			displayed = i
			break
		}
		lastErr = err
		s.logger.Warn().
			Str("series", sr.Key).
			Int("slice", i).
			Err(err).
			Msg("slice failed to display, trying next")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		if s.metrics != nil {
			s.metrics.LoadsStale.Inc()
		}
		s.logger.Debug().Str("series", sr.Key).Msg("stale load suppressed")
		return
	}

	if displayed < 0 {
		s.state = StateError
		s.lastErr = &DecodeError{Series: sr.Key, Index: index, Err: lastErr}
		if s.metrics != nil {
			s.metrics.LoadsFailed.Inc()
		}
		s.logger.Error().Str("series", sr.Key).Err(lastErr).Msg("no slice of the stack could be displayed")
		return
	}

	s.index = displayed
	s.state = StateDisplayed
	s.lastErr = nil
	s.view.WindowLevel = frame.WindowLevel
	s.refitLocked()
	if s.metrics != nil {
		s.metrics.LoadsDisplayed.Inc()
	}
	s.logger.Info().
		Str("series", sr.Key).
		Int("slice", displayed).
		Msg("slice displayed")
}

// refitLocked recomputes the fitted rect from the displayed record's
// aspect ratio. Callers hold s.mu.
func (s *Session) refitLocked() {
	if s.current == nil || s.index >= s.current.Len() {
		s.view.Fit = FitRect(1, s.surfaceW, s.surfaceH, s.settings.Occupancy)
		return
	}
	aspect := s.current.Images[s.index].AspectRatio()
	s.view.Fit = FitRect(aspect, s.surfaceW, s.surfaceH, s.settings.Occupancy)
}

func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i >= length {
		return length - 1
	}
	return i
}
