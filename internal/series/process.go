package series

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mleroi/dicomstack/internal/dicomcore"
	"github.com/mleroi/dicomstack/internal/obs"
	"github.com/mleroi/dicomstack/internal/resource"
)

// Failure reports one file that could not be extracted.
type Failure struct {
	Name string
	Err  error
}

// Batch is the outcome of processing one upload: the assembled series
// plus the per-file failure report. A batch with failures still succeeds
// as long as at least one series was assembled.
type Batch struct {
	Shape    UploadShape
	Series   []*Series
	Failures []Failure
}

// Valid reports whether at least one series was assembled.
func (b *Batch) Valid() bool { return len(b.Series) > 0 }

// FindSeries returns the series with the given key, or nil.
func (b *Batch) FindSeries(key string) *Series {
	for _, s := range b.Series {
		if s.Key == key {
			return s
		}
	}
	return nil
}

// ProcessUpload extracts every file of an upload in parallel, registers
// the surviving byte buffers in the batch ledger, and assembles the
// records into series. One bad file never aborts the batch; its name and
// reason land in the failure report instead.
func ProcessUpload(ctx context.Context, files []File, shape UploadShape, ledger *resource.Ledger, logger zerolog.Logger, metrics *obs.Metrics) *Batch {
	batch := &Batch{Shape: shape}
	if len(files) == 0 {
		return batch
	}

	type result struct {
		index int
		rec   *dicomcore.ImageRecord
		err   error
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	taskChan := make(chan int, len(files))
	resultChan := make(chan result, len(files))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range taskChan {
				if ctx.Err() != nil {
					resultChan <- result{index: i, err: ctx.Err()}
					continue
				}
				f := files[i]
				rec, err := dicomcore.Extract(f.Name, f.Data)
				resultChan <- result{index: i, rec: rec, err: err}
			}
		}()
	}

	for i := range files {
		taskChan <- i
	}
	close(taskChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Re-order results to input order so grouping stays deterministic
	// regardless of worker completion order.
	results := make([]result, len(files))
	for r := range resultChan {
		results[r.index] = r
	}

	var records []*dicomcore.ImageRecord
	for i, r := range results {
		f := files[i]
		if r.err != nil {
			logger.Warn().Str("file", f.Name).Err(r.err).Msg("skipping unreadable file")
			if metrics != nil {
				metrics.ExtractFailures.Inc()
			}
			batch.Failures = append(batch.Failures, Failure{Name: f.Name, Err: r.err})
			continue
		}
		r.rec.RelPath = f.Path
		r.rec.Source = ledger.Register(f.Data)
		records = append(records, r.rec)
	}

	batch.Series = Assemble(records, shape)
	logger.Info().
		Int("files", len(files)).
		Int("series", len(batch.Series)).
		Int("failures", len(batch.Failures)).
		Stringer("shape", shape).
		Msg("upload processed")
	return batch
}
