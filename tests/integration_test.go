package tests

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mleroi/dicomstack/internal/config"
	"github.com/mleroi/dicomstack/internal/dicomtest"
	"github.com/mleroi/dicomstack/internal/export"
	"github.com/mleroi/dicomstack/internal/obs"
	"github.com/mleroi/dicomstack/internal/render"
	"github.com/mleroi/dicomstack/internal/resource"
	"github.com/mleroi/dicomstack/internal/series"
	"github.com/mleroi/dicomstack/internal/upload"
	"github.com/mleroi/dicomstack/internal/viewport"
)

func writeSeries(t *testing.T, dir string, count int) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	// Instance numbers deliberately out of filename order.
	order := make([]int, count)
	for i := range order {
		order[i] = count - i
	}
	for i, instance := range order {
		name := filepath.Base(dir) + "_" + string(rune('a'+i)) + ".dcm"
		if _, err := dicomtest.WriteFile(dir, name, dicomtest.Spec{InstanceNumber: instance}); err != nil {
			t.Fatal(err)
		}
	}
}

func loadBatch(t *testing.T, path string) (*series.Batch, *resource.Ledger) {
	t.Helper()
	ledger := resource.NewLedger()
	metrics := obs.NewMetrics(prometheus.NewRegistry())
	files, shape, err := upload.ReadPath(path)
	if err != nil {
		t.Fatalf("ReadPath: %v", err)
	}
	batch := series.ProcessUpload(context.Background(), files, shape, ledger, obs.NopLogger(), metrics)
	return batch, ledger
}

func TestPipeline_SeriesFolderOrdering(t *testing.T) {
	root := filepath.Join(t.TempDir(), "brain")
	writeSeries(t, root, 3)

	batch, _ := loadBatch(t, root)
	if batch.Shape != series.SeriesFolder {
		t.Fatalf("shape = %v, want series-folder", batch.Shape)
	}
	if len(batch.Series) != 1 {
		t.Fatalf("got %d series, want 1", len(batch.Series))
	}
	s := batch.Series[0]
	for i := 0; i < s.Len(); i++ {
		if s.Images[i].InstanceNumber != i+1 {
			t.Errorf("slice %d has instance %d, want %d", i, s.Images[i].InstanceNumber, i+1)
		}
	}
}

func TestPipeline_StudyFolderSplitsSeries(t *testing.T) {
	root := filepath.Join(t.TempDir(), "study")
	writeSeries(t, filepath.Join(root, "axial"), 2)
	writeSeries(t, filepath.Join(root, "coronal"), 2)

	batch, _ := loadBatch(t, root)
	if batch.Shape != series.StudyFolder {
		t.Fatalf("shape = %v, want study-folder", batch.Shape)
	}
	if len(batch.Series) != 2 {
		t.Fatalf("got %d series, want 2", len(batch.Series))
	}
	if batch.FindSeries("axial") == nil || batch.FindSeries("coronal") == nil {
		t.Errorf("missing expected series keys, got %q and %q", batch.Series[0].Key, batch.Series[1].Key)
	}
}

func TestPipeline_CorruptFileIsReportedNotFatal(t *testing.T) {
	root := filepath.Join(t.TempDir(), "mixed")
	writeSeries(t, root, 1)
	if err := os.WriteFile(filepath.Join(root, "broken.dcm"), []byte("not dicom"), 0o644); err != nil {
		t.Fatal(err)
	}

	batch, _ := loadBatch(t, root)
	if !batch.Valid() {
		t.Fatal("one valid file should keep the batch valid")
	}
	if len(batch.Failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(batch.Failures))
	}
	if batch.Failures[0].Name != "broken.dcm" {
		t.Errorf("failure = %q, want broken.dcm", batch.Failures[0].Name)
	}
}

func TestPipeline_DisplayNavigateExport(t *testing.T) {
	root := filepath.Join(t.TempDir(), "ct")
	writeSeries(t, root, 3)

	batch, ledger := loadBatch(t, root)
	logger := obs.NopLogger()
	settings := config.Defaults()

	sess := viewport.NewSession(
		func() (viewport.Engine, error) { return render.NewEngine(ledger, logger), nil },
		settings, ledger, logger, nil,
	)
	if err := sess.Attach(800, 600); err != nil {
		t.Fatal(err)
	}
	sess.SetBatch(batch)

	if err := sess.SelectSeries(batch.Series[0].Key); err != nil {
		t.Fatal(err)
	}
	sess.WaitIdle()
	if sess.State() != viewport.StateDisplayed {
		t.Fatalf("state = %v, err = %v", sess.State(), sess.Err())
	}

	sess.NavigateRelative(1)
	sess.WaitIdle()
	if sess.Index() != 1 {
		t.Fatalf("index = %d, want 1", sess.Index())
	}

	eng := render.NewEngine(ledger, logger)
	defer eng.Destroy()
	data, name, err := export.Snapshot(context.Background(), eng, batch.Series[0], sess.Index(), sess.View())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if name != "PID000001_AX_TEST_2.png" {
		t.Errorf("export name = %q", name)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("export is not valid PNG: %v", err)
	}

	sess.Teardown()
	if ledger.Open() != 0 {
		t.Errorf("%d handles left after teardown", ledger.Open())
	}
}

func TestPipeline_Thumbnails(t *testing.T) {
	root := filepath.Join(t.TempDir(), "thumbs")
	writeSeries(t, root, 2)

	batch, ledger := loadBatch(t, root)
	eng := render.NewEngine(ledger, obs.NopLogger())
	defer eng.Destroy()

	render.AttachThumbnails(context.Background(), batch, eng, 100)
	for _, s := range batch.Series {
		thumb := s.Thumbnail()
		if thumb == nil {
			t.Fatalf("series %q has no thumbnail", s.Key)
		}
		if thumb.Bounds().Dx() != 100 || thumb.Bounds().Dy() != 100 {
			t.Errorf("thumbnail = %v, want 100x100", thumb.Bounds())
		}
	}
}
