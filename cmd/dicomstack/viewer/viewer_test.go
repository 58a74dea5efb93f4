package viewer

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mleroi/dicomstack/internal/config"
	"github.com/mleroi/dicomstack/internal/dicomcore"
	"github.com/mleroi/dicomstack/internal/obs"
	"github.com/mleroi/dicomstack/internal/render"
	"github.com/mleroi/dicomstack/internal/resource"
	"github.com/mleroi/dicomstack/internal/series"
	"github.com/mleroi/dicomstack/internal/viewport"
)

func newViewerModel(t *testing.T, batch *series.Batch) *model {
	t.Helper()
	settings := config.Defaults()
	ledger := resource.NewLedger()
	engine := render.NewEngine(ledger, obs.NopLogger())
	sess := viewport.NewSession(
		func() (viewport.Engine, error) { return engine, nil },
		settings, ledger, obs.NopLogger(), obs.NewMetrics(prometheus.NewRegistry()),
	)
	if err := sess.Attach(80, 24); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	sess.SetBatch(batch)
	t.Cleanup(sess.Teardown)
	return newModel(batch, sess, engine, settings)
}

func TestExportCurrent_RequiresDisplayedState(t *testing.T) {
	// A record whose source handle is unknown to the ledger cannot be
	// decoded, so the load lands in the error state.
	batch := &series.Batch{
		Shape: series.SeriesFolder,
		Series: []*series.Series{{
			Key:      "broken",
			Modality: "CT",
			Images: []*dicomcore.ImageRecord{{
				Name: "gone.dcm", Source: "no-such-handle", Rows: 16, Columns: 16,
			}},
		}},
	}

	m := newViewerModel(t, batch)
	if err := m.selectSeries(0); err != nil {
		t.Fatal(err)
	}
	m.sess.WaitIdle()
	if m.sess.State() != viewport.StateError {
		t.Fatalf("state = %v, want error", m.sess.State())
	}

	m.exportCurrent()
	if !strings.Contains(m.status, "nothing to export") {
		t.Errorf("status = %q, want a nothing-to-export message", m.status)
	}
}

func TestExportCurrent_NoSeriesSelected(t *testing.T) {
	m := newViewerModel(t, &series.Batch{Shape: series.SeriesFolder})
	m.exportCurrent()
	if !strings.Contains(m.status, "nothing to export") {
		t.Errorf("status = %q, want a nothing-to-export message", m.status)
	}
}
