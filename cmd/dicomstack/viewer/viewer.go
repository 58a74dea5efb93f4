// Package viewer is the interactive terminal surface over a viewport
// session: series selection, stack navigation, tools, presets and
// annotated export.
package viewer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mleroi/dicomstack/internal/config"
	"github.com/mleroi/dicomstack/internal/export"
	"github.com/mleroi/dicomstack/internal/nav"
	"github.com/mleroi/dicomstack/internal/obs"
	"github.com/mleroi/dicomstack/internal/render"
	"github.com/mleroi/dicomstack/internal/resource"
	"github.com/mleroi/dicomstack/internal/series"
	"github.com/mleroi/dicomstack/internal/upload"
	"github.com/mleroi/dicomstack/internal/viewport"
)

// Run loads the given path and starts the interactive viewer. An empty
// path opens a form asking for one.
func Run(input string) error {
	if input == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("DICOM file or folder").
					Description("Path to a single file, a series folder or a study folder").
					Value(&input).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("a path is required")
						}
						if _, err := os.Stat(s); err != nil {
							return fmt.Errorf("cannot open %s", s)
						}
						return nil
					}),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
	}

	settings := config.Load()
	logger := obs.NewLogger(nil)
	metrics := obs.NewMetrics(prometheus.NewRegistry())
	ledger := resource.NewLedger()
	ledger.SetObserver(func(open int) { metrics.OpenHandles.Set(float64(open)) })

	files, shape, err := upload.ReadPath(input)
	if err != nil {
		return err
	}

	batch := series.ProcessUpload(context.Background(), files, shape, ledger, logger, metrics)
	if !batch.Valid() {
		return fmt.Errorf("no readable DICOM file in %s", input)
	}

	// One engine serves display, thumbnails and export; the model reads
	// its current frame to draw the raster panel.
	engine := render.NewEngine(ledger, logger)
	sess := viewport.NewSession(
		func() (viewport.Engine, error) { return engine, nil },
		settings, ledger, logger, metrics,
	)
	if err := sess.Attach(0, 0); err != nil {
		return err
	}
	sess.SetBatch(batch)

	render.AttachThumbnails(context.Background(), batch, engine, settings.ThumbnailEdge)

	m := newModel(batch, sess, engine, settings)
	defer sess.Teardown()

	if err := m.selectSeries(0); err != nil {
		return err
	}

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// refreshMsg asks the model to re-read the session state.
type refreshMsg struct{}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

type model struct {
	batch    *series.Batch
	sess     *viewport.Session
	engine   *render.Engine
	wheel    *nav.Controller
	settings config.Settings

	activeSeries int
	status       string
	width        int
	height       int
}

func newModel(batch *series.Batch, sess *viewport.Session, engine *render.Engine, settings config.Settings) *model {
	return &model{
		batch:    batch,
		sess:     sess,
		engine:   engine,
		wheel:    nav.New(sess, settings.WheelThrottle),
		settings: settings,
	}
}

func (m *model) selectSeries(i int) error {
	if i < 0 || i >= len(m.batch.Series) {
		return nil
	}
	m.activeSeries = i
	return m.sess.SelectSeries(m.batch.Series[i].Key)
}

// Init implements tea.Model.
func (m *model) Init() tea.Cmd {
	return scheduleRefresh()
}

// Update implements tea.Model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sess.Resize(msg.Width, msg.Height)
		return m, nil

	case refreshMsg:
		return m, scheduleRefresh()

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.wheel.Wheel(-1)
		case tea.MouseButtonWheelDown:
			m.wheel.Wheel(1)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		m.wheel.Key(-1)
	case "down", "j":
		m.wheel.Key(1)
	case "pgup":
		m.wheel.Key(-10)
	case "pgdown":
		m.wheel.Key(10)
	case "home":
		m.sess.SetIndex(0)
	case "end":
		if s := m.sess.CurrentSeries(); s != nil {
			m.sess.SetIndex(s.Len() - 1)
		}

	case "tab", "right", "l":
		if err := m.selectSeries((m.activeSeries + 1) % len(m.batch.Series)); err != nil {
			m.status = err.Error()
		}
	case "shift+tab", "left", "h":
		next := (m.activeSeries - 1 + len(m.batch.Series)) % len(m.batch.Series)
		if err := m.selectSeries(next); err != nil {
			m.status = err.Error()
		}

	case "1":
		m.sess.ActivateTool(viewport.ToolPan)
	case "2":
		m.sess.ActivateTool(viewport.ToolZoom)
	case "3":
		m.sess.ActivateTool(viewport.ToolWindowLevel)
	case "4":
		m.sess.ActivateTool(viewport.ToolMeasure)

	case "+", "=":
		m.sess.ZoomBy(1)
	case "-":
		m.sess.ZoomBy(-1)

	case "e":
		m.exportCurrent()
	}
	return m, nil
}

func (m *model) exportCurrent() {
	s := m.sess.CurrentSeries()
	if s == nil || m.sess.State() != viewport.StateDisplayed {
		m.status = errorStyle.Render((&export.NothingToExportError{}).Error())
		return
	}
	data, name, err := export.Snapshot(context.Background(), m.engine, s, m.sess.Index(), m.sess.View())
	if err != nil {
		m.status = errorStyle.Render(err.Error())
		return
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		m.status = errorStyle.Render(err.Error())
		return
	}
	m.status = "exported " + name
}

// View implements tea.Model.
func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("dicomstack"))
	b.WriteString("\n")

	// Series list.
	var list strings.Builder
	for i, s := range m.batch.Series {
		line := fmt.Sprintf("[%d] %s  (%s, %d slices)", s.Number, s.Key, s.Modality, s.Len())
		if i == m.activeSeries {
			line = activeSeriesStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		list.WriteString(line)
		list.WriteString("\n")
	}
	b.WriteString(panelStyle.Render(strings.TrimRight(list.String(), "\n")))
	b.WriteString("\n")

	// Rendered frame.
	if raster := renderRaster(m.engine.Current(), m.width-4, m.height-14); raster != "" {
		b.WriteString(panelStyle.Render(raster))
		b.WriteString("\n")
	}

	// Current slice panel.
	b.WriteString(panelStyle.Render(m.slicePanel()))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(
		"↑/↓ slice · ←/→ series · 1-4 tool · +/- zoom · e export · q quit"))
	return b.String()
}

func (m *model) slicePanel() string {
	s := m.sess.CurrentSeries()
	if s == nil {
		return subtitleStyle.Render("no series selected")
	}

	state := m.sess.State()
	if state == viewport.StateError {
		return errorStyle.Render(fmt.Sprintf("load failed: %v", m.sess.Err()))
	}

	idx := m.sess.Index()
	rec := s.Images[idx]
	view := m.sess.View()

	var b strings.Builder
	fmt.Fprintf(&b, "%s — slice %d/%d", s.Description, idx+1, s.Len())
	if state == viewport.StateLoading {
		b.WriteString("  (loading…)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Patient: %s (%s)   Date: %s\n", rec.PatientName, rec.PatientID, rec.StudyDate)
	fmt.Fprintf(&b, "Size: %dx%d   C/W: %.0f/%.0f   Zoom: %.0f%%   Tool: %s",
		rec.Columns, rec.Rows,
		view.WindowLevel.Center, view.WindowLevel.Width,
		view.Zoom, m.sess.ActiveTool())
	return b.String()
}
