// Package downloader fetches tag-and-probe histograms of selected runs from
// the DQM GUI and commits them to an archive.
package downloader

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cms-egamma/egdqm/pkg/dqm"
	"github.com/cms-egamma/egdqm/pkg/dqmgui"
	"github.com/cms-egamma/egdqm/pkg/util"
	"go.uber.org/zap"
)

// DefaultRetries is the number of fetch attempts per run.
const DefaultRetries = 3

// Fetcher returns server folder listings.
type Fetcher interface {
	Folder(ctx context.Context, run, dataset, folder string) (*dqmgui.Listing, error)
}

// Archive stores downloaded histograms.
type Archive interface {
	Commit(*dqm.Batch) error
}

// MetricRegister accumulates download statistics.
type MetricRegister interface {
	IncFetchAttempts()
	AddRunResult(status string)
	AddHistograms(n int)
}

// Prm groups Downloader parameters. Fetcher and Archive are required.
type Prm struct {
	Fetcher Fetcher
	Archive Archive

	// Pool runs per-run jobs, synchronous pool if nil.
	Pool    util.WorkerPool
	Logger  *zap.Logger
	Metrics MetricRegister

	// Retries is the number of attempts per run, DefaultRetries if not
	// positive.
	Retries int
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration

	// BaseFolder, Paths and Exclusions default to DefaultBaseFolder,
	// DefaultPaths and DefaultExclusions if empty.
	BaseFolder string
	Paths      []string
	Exclusions []string

	// OnResult is called for each result as soon as it is known. Calls may
	// be concurrent when Pool runs jobs in parallel.
	OnResult func(Result)
}

// Downloader fetches runs with retries.
type Downloader struct {
	fetcher Fetcher
	archive Archive
	pool    util.WorkerPool
	log     *zap.Logger
	metrics MetricRegister

	retries    int
	retryDelay time.Duration

	baseFolder string
	paths      map[string]struct{}
	exclusions []string

	onResult func(Result)
}

// New creates Downloader.
func New(prm Prm) *Downloader {
	d := &Downloader{
		fetcher:    prm.Fetcher,
		archive:    prm.Archive,
		pool:       prm.Pool,
		log:        prm.Logger,
		metrics:    prm.Metrics,
		retries:    prm.Retries,
		retryDelay: prm.RetryDelay,
		baseFolder: prm.BaseFolder,
		exclusions: prm.Exclusions,
		onResult:   prm.OnResult,
	}

	if d.pool == nil {
		d.pool = util.NewPseudoWorkerPool()
	}

	if d.log == nil {
		d.log = zap.NewNop()
	}

	if d.metrics == nil {
		d.metrics = noopMetrics{}
	}

	if d.retries <= 0 {
		d.retries = DefaultRetries
	}

	if d.baseFolder == "" {
		d.baseFolder = DefaultBaseFolder
	}

	paths := prm.Paths
	if len(paths) == 0 {
		paths = DefaultPaths
	}

	d.paths = make(map[string]struct{}, len(paths))
	for i := range paths {
		d.paths[paths[i]] = struct{}{}
	}

	if len(d.exclusions) == 0 {
		d.exclusions = DefaultExclusions
	}

	if d.onResult == nil {
		d.onResult = func(Result) {}
	}

	return d
}

type job struct {
	dataset string
	run     string
}

// Jobs returns (dataset, run) pairs to download: each run of runs owned by
// a dataset of the catalog and not listed in covered. Skipped pairs are
// returned separately. Repeated pairs are listed once.
func Jobs(runs []string, catalog, covered dqm.Catalog) (todo, skipped []Result) {
	datasets := catalog.Datasets()
	seen := make(map[job]struct{})

	for _, run := range runs {
		run = strings.TrimSpace(run)
		if run == "" {
			continue
		}

		for _, ds := range datasets {
			if !catalog.Contains(ds, run) {
				continue
			}

			j := job{dataset: ds, run: run}
			if _, ok := seen[j]; ok {
				continue
			}

			seen[j] = struct{}{}

			r := Result{Dataset: ds, Run: run}

			if covered.Contains(ds, run) {
				r.Status = StatusSkipped
				skipped = append(skipped, r)
			} else {
				todo = append(todo, r)
			}
		}
	}

	return
}

// Run downloads every selected run of the catalog datasets that is not
// covered yet. Network failures are retried, a run which runs out of
// attempts is reported as failed and the loop goes on. Any other failure
// stops the loop: it is returned along with results collected so far.
func (d *Downloader) Run(ctx context.Context, runs []string, catalog, covered dqm.Catalog) ([]Result, error) {
	todo, skipped := Jobs(runs, catalog, covered)

	results := make([]Result, 0, len(todo)+len(skipped))

	for _, r := range skipped {
		d.log.Info("run is already in the archive, skip",
			zap.String("dataset", r.Dataset),
			zap.String("run", r.Run))
		d.report(r)
		results = append(results, r)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg    sync.WaitGroup
		mtx   sync.Mutex
		fatal error
		done  = make([]Result, 0, len(todo))
	)

	for _, r := range todo {
		mtx.Lock()
		stop := fatal != nil
		mtx.Unlock()

		if stop {
			break
		}

		j := job{dataset: r.Dataset, run: r.Run}

		wg.Add(1)

		err := d.pool.Submit(func() {
			defer wg.Done()

			res, err := d.process(ctx, j)

			mtx.Lock()
			done = append(done, res)
			if err != nil && fatal == nil {
				fatal = err
				cancel()
			}
			mtx.Unlock()

			d.report(res)
		})
		if err != nil {
			wg.Done()

			mtx.Lock()
			if fatal == nil {
				fatal = fmt.Errorf("submit run %s: %w", j.run, err)
			}
			mtx.Unlock()

			break
		}
	}

	wg.Wait()

	results = append(results, done...)

	return results, fatal
}

func (d *Downloader) report(r Result) {
	d.metrics.AddRunResult(r.Status.String())
	d.onResult(r)
}

// process downloads one (dataset, run) pair. Returned error is fatal for
// the whole download.
func (d *Downloader) process(ctx context.Context, j job) (Result, error) {
	res := Result{Dataset: j.dataset, Run: j.run, Status: StatusFailed}

	l := d.log.With(
		zap.String("dataset", j.dataset),
		zap.String("run", j.run))

	l.Info("processing run")

	for res.Attempts < d.retries {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res, err
		}

		res.Attempts++
		d.metrics.IncFetchAttempts()

		b, err := d.fetchRun(ctx, j.dataset, j.run)
		if err == nil {
			err = d.archive.Commit(b)
			if err != nil {
				res.Err = fmt.Errorf("commit run %s of %s: %w", j.run, j.dataset, err)
				return res, res.Err
			}

			res.Status = StatusDone
			res.Histograms = b.Len()
			res.Err = nil

			d.metrics.AddHistograms(b.Len())

			l.Info("run stored",
				zap.Int("attempts", res.Attempts),
				zap.Int("histograms", b.Len()))

			return res, nil
		}

		res.Err = err

		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		if !dqmgui.IsNetworkError(err) {
			return res, fmt.Errorf("run %s of %s: %w", j.run, j.dataset, err)
		}

		l.Warn("network error, retrying",
			zap.Int("attempt", res.Attempts),
			zap.Int("limit", d.retries),
			zap.Error(err))

		if res.Attempts < d.retries && d.retryDelay > 0 {
			t := time.NewTimer(d.retryDelay)
			select {
			case <-ctx.Done():
				t.Stop()
				return res, ctx.Err()
			case <-t.C:
			}
		}
	}

	l.Error("run abandoned after retries",
		zap.Int("attempts", res.Attempts),
		zap.Error(res.Err))

	return res, nil
}

type noopMetrics struct{}

func (noopMetrics) IncFetchAttempts() {}

func (noopMetrics) AddRunResult(string) {}

func (noopMetrics) AddHistograms(int) {}
