package downloader_test

import (
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cms-egamma/egdqm/pkg/archive"
	"github.com/cms-egamma/egdqm/pkg/downloader"
	"github.com/cms-egamma/egdqm/pkg/dqm"
	"github.com/cms-egamma/egdqm/pkg/dqm/dqmtest"
	"github.com/cms-egamma/egdqm/pkg/dqmgui"
	"github.com/cms-egamma/egdqm/pkg/util"
	"github.com/stretchr/testify/require"
)

const (
	testDataset = "/EGamma/Run2018A-PromptReco-v1/DQMIO"
	basePath    = "HLT_Ele32_WPTight_Gsf"
)

func str(s string) *string { return &s }

func subdir(name string) dqmgui.Item {
	return dqmgui.Item{Subdir: str(name)}
}

func item(name, kind string, payload []byte) dqmgui.Item {
	return dqmgui.Item{
		Obj:        str(name),
		RootObj:    str(hex.EncodeToString(payload)),
		Properties: dqmgui.Properties{Type: kind},
	}
}

// histogram returns an item of the kind with a streamed histogram which has
// an entry per character of tag.
func histogram(tb testing.TB, name, kind, tag string) dqmgui.Item {
	values := make([]float64, len(tag))

	var h dqm.Histogram
	if kind == string(dqm.KindTH2F) {
		h = dqmtest.TH2F(tb, name, values...)
	} else {
		h = dqmtest.TH1F(tb, name, values...)
	}

	return item(name, kind, h.Payload)
}

// testFetcher serves folder listings by folder and counts requests per run.
type testFetcher struct {
	mtx      sync.Mutex
	folders  map[string][]dqmgui.Item
	failures map[string]int // run -> number of network failures to emulate
	err      error
	calls    map[string]int // run -> number of base folder requests
}

func newTestFetcher(tb testing.TB) *testFetcher {
	return &testFetcher{
		folders: map[string][]dqmgui.Item{
			downloader.DefaultBaseFolder: {
				subdir(basePath),
				subdir("HLT_Unlisted_Path"),
				histogram(tb, "top_level", "TH1F", "ignored"),
			},
			downloader.DefaultBaseFolder + "/" + basePath: {
				histogram(tb, "eff_EBvsEt", "TH1F", "1d"),
				histogram(tb, "eff_vsSCEtaPhi", "TH2F", "2d"),
				histogram(tb, "eff_HEP17_vsEt", "TH1F", "excluded"),
				histogram(tb, "eff_HEM17_vsEt", "TH1F", "excluded"),
				histogram(tb, "profile", "TProfile", "unknown type"),
				subdir("nested"),
				{Obj: str("no payload")},
			},
			downloader.DefaultBaseFolder + "/HLT_Unlisted_Path": {
				histogram(tb, "unlisted", "TH1F", "never"),
			},
		},
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
}

func (x *testFetcher) Folder(_ context.Context, run, dataset, folder string) (*dqmgui.Listing, error) {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	if folder == downloader.DefaultBaseFolder {
		x.calls[dataset+"#"+run]++
	}

	if x.err != nil {
		return nil, x.err
	}

	if x.failures[run] > 0 {
		x.failures[run]--
		return nil, &dqmgui.NetworkError{URL: folder, Cause: errors.New("connection reset")}
	}

	items, ok := x.folders[folder]
	if !ok {
		return nil, &dqmgui.NetworkError{URL: folder, Status: 404}
	}

	return &dqmgui.Listing{Contents: items}, nil
}

func (x *testFetcher) requests(dataset, run string) int {
	x.mtx.Lock()
	defer x.mtx.Unlock()

	return x.calls[dataset+"#"+run]
}

func openArchive(tb testing.TB) *archive.Archive {
	a, err := archive.Open(filepath.Join(tb.TempDir(), "egdqm.root"), archive.ModeRecreate)
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = a.Close() })

	return a
}

func TestDownloader_Writer(t *testing.T) {
	f := newTestFetcher(t)
	a := openArchive(t)

	d := downloader.New(downloader.Prm{Fetcher: f, Archive: a})

	catalog := dqm.Catalog{testDataset: {"316187"}}

	res, err := d.Run(context.Background(), []string{"316187"}, catalog, nil)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, downloader.StatusDone, res[0].Status)
	require.Equal(t, 1, res[0].Attempts)
	require.Equal(t, 2, res[0].Histograms)
	require.NoError(t, res[0].Err)

	run := dqm.RunPath(testDataset, "316187")

	l, err := a.List(run)
	require.NoError(t, err)
	require.Equal(t, []string{basePath}, l.Dirs, "only whitelisted paths are created")
	require.Empty(t, l.Histograms)

	l, err = a.List(run.Join(basePath))
	require.NoError(t, err)
	require.Equal(t, []string{"eff_EBvsEt", "eff_vsSCEtaPhi"}, l.Histograms)
	require.Empty(t, l.Dirs)

	h, err := a.Get(run.Join(basePath), "eff_vsSCEtaPhi")
	require.NoError(t, err)
	require.Equal(t, "eff_vsSCEtaPhi", h.Name)
	require.Equal(t, dqm.KindTH2F, h.Kind)
	require.Equal(t, "TH2F", h.Object.Class())
	require.EqualValues(t, 2, dqmtest.Entries(t, h))
}

func TestDownloader_Incremental(t *testing.T) {
	f := newTestFetcher(t)
	a := openArchive(t)

	catalog := dqm.Catalog{testDataset: {"316187", "316199"}}

	d := downloader.New(downloader.Prm{Fetcher: f, Archive: a})

	_, err := d.Run(context.Background(), []string{"316187"}, catalog, nil)
	require.NoError(t, err)
	require.Equal(t, 1, f.requests(testDataset, "316187"))

	covered, err := a.DatasetRuns()
	require.NoError(t, err)

	var reported []downloader.Result

	d = downloader.New(downloader.Prm{
		Fetcher:  f,
		Archive:  a,
		OnResult: func(r downloader.Result) { reported = append(reported, r) },
	})

	res, err := d.Run(context.Background(), catalog.Runs(), catalog, covered)
	require.NoError(t, err)
	require.Equal(t, res, reported)
	require.Len(t, res, 2)

	require.Equal(t, "316187", res[0].Run)
	require.Equal(t, downloader.StatusSkipped, res[0].Status)
	require.Equal(t, 1, f.requests(testDataset, "316187"), "covered run must not be refetched")

	require.Equal(t, "316199", res[1].Run)
	require.Equal(t, downloader.StatusDone, res[1].Status)
	require.Equal(t, 1, f.requests(testDataset, "316199"))
}

func TestDownloader_Retry(t *testing.T) {
	t.Run("recovered", func(t *testing.T) {
		f := newTestFetcher(t)
		f.failures["1"] = 2

		d := downloader.New(downloader.Prm{Fetcher: f, Archive: openArchive(t)})

		res, err := d.Run(context.Background(), []string{"1"}, dqm.Catalog{testDataset: {"1"}}, nil)
		require.NoError(t, err)
		require.Len(t, res, 1)
		require.Equal(t, downloader.StatusDone, res[0].Status)
		require.Equal(t, 3, res[0].Attempts)
	})

	t.Run("exhausted", func(t *testing.T) {
		f := newTestFetcher(t)
		f.failures["1"] = 3
		a := openArchive(t)

		d := downloader.New(downloader.Prm{Fetcher: f, Archive: a})

		res, err := d.Run(context.Background(), []string{"1", "2"}, dqm.Catalog{testDataset: {"1", "2"}}, nil)
		require.NoError(t, err)
		require.Len(t, res, 2)

		require.Equal(t, downloader.StatusFailed, res[0].Status)
		require.Equal(t, 3, res[0].Attempts)
		require.True(t, dqmgui.IsNetworkError(res[0].Err))
		require.Equal(t, 3, f.requests(testDataset, "1"))

		require.Equal(t, downloader.StatusDone, res[1].Status)
		require.Equal(t, res[:1], downloader.Failed(res))

		covered, err := a.DatasetRuns()
		require.NoError(t, err)
		require.False(t, covered.Contains(testDataset, "1"), "failed run leaves no data")
		require.True(t, covered.Contains(testDataset, "2"))
	})

	t.Run("custom limit", func(t *testing.T) {
		f := newTestFetcher(t)
		f.failures["1"] = 10

		d := downloader.New(downloader.Prm{Fetcher: f, Archive: openArchive(t), Retries: 5})

		res, err := d.Run(context.Background(), []string{"1"}, dqm.Catalog{testDataset: {"1"}}, nil)
		require.NoError(t, err)
		require.Equal(t, 5, res[0].Attempts)
	})
}

func TestDownloader_Fatal(t *testing.T) {
	t.Run("malformed response", func(t *testing.T) {
		f := newTestFetcher(t)
		f.err = dqmgui.ErrMalformedResponse

		d := downloader.New(downloader.Prm{Fetcher: f, Archive: openArchive(t)})

		res, err := d.Run(context.Background(), []string{"1", "2"}, dqm.Catalog{testDataset: {"1", "2"}}, nil)
		require.ErrorIs(t, err, dqmgui.ErrMalformedResponse)
		require.Len(t, res, 1, "loop stops at the first fatal error")
		require.Equal(t, 1, res[0].Attempts)
		require.Equal(t, 0, f.requests(testDataset, "2"))
	})

	t.Run("bad hex", func(t *testing.T) {
		f := newTestFetcher(t)
		f.folders[downloader.DefaultBaseFolder+"/"+basePath] = []dqmgui.Item{
			{Obj: str("h"), RootObj: str("zz"), Properties: dqmgui.Properties{Type: "TH1F"}},
		}

		d := downloader.New(downloader.Prm{Fetcher: f, Archive: openArchive(t)})

		_, err := d.Run(context.Background(), []string{"1"}, dqm.Catalog{testDataset: {"1"}}, nil)
		require.Error(t, err)
		require.False(t, dqmgui.IsNetworkError(err))
	})

	t.Run("bad object", func(t *testing.T) {
		f := newTestFetcher(t)
		f.folders[downloader.DefaultBaseFolder+"/"+basePath] = []dqmgui.Item{
			item("h", "TH1F", []byte("not a streamed object")),
		}

		d := downloader.New(downloader.Prm{Fetcher: f, Archive: openArchive(t)})

		_, err := d.Run(context.Background(), []string{"1"}, dqm.Catalog{testDataset: {"1"}}, nil)
		require.Error(t, err)
		require.False(t, dqmgui.IsNetworkError(err))
	})

	t.Run("type mismatch", func(t *testing.T) {
		f := newTestFetcher(t)
		f.folders[downloader.DefaultBaseFolder+"/"+basePath] = []dqmgui.Item{
			item("h", "TH2F", dqmtest.TH1F(t, "h").Payload),
		}

		d := downloader.New(downloader.Prm{Fetcher: f, Archive: openArchive(t)})

		_, err := d.Run(context.Background(), []string{"1"}, dqm.Catalog{testDataset: {"1"}}, nil)
		require.ErrorIs(t, err, dqm.ErrKindMismatch)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		d := downloader.New(downloader.Prm{Fetcher: newTestFetcher(t), Archive: openArchive(t)})

		_, err := d.Run(ctx, []string{"1"}, dqm.Catalog{testDataset: {"1"}}, nil)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestDownloader_Parallel(t *testing.T) {
	f := newTestFetcher(t)
	a := openArchive(t)

	pool, err := util.NewWorkerPool(4)
	require.NoError(t, err)
	defer pool.Release()

	runs := []string{"1", "2", "3", "4", "5", "6"}
	catalog := dqm.Catalog{testDataset: runs}

	d := downloader.New(downloader.Prm{Fetcher: f, Archive: a, Pool: pool})

	res, err := d.Run(context.Background(), runs, catalog, nil)
	require.NoError(t, err)
	require.Len(t, res, len(runs))
	require.Empty(t, downloader.Failed(res))

	covered, err := a.DatasetRuns()
	require.NoError(t, err)
	require.ElementsMatch(t, runs, covered[testDataset])
}

func TestJobs(t *testing.T) {
	const other = "/EGamma/Run2018B-PromptReco-v1/DQMIO"

	catalog := dqm.Catalog{
		testDataset: {"1", "2"},
		other:       {"2", "3"},
	}
	covered := dqm.Catalog{other: {"2"}}

	todo, skipped := downloader.Jobs([]string{" 2\n", "4", "", "1", "2"}, catalog, covered)
	require.Equal(t, []downloader.Result{
		{Dataset: testDataset, Run: "2"},
		{Dataset: testDataset, Run: "1"},
	}, todo)
	require.Equal(t, []downloader.Result{
		{Dataset: other, Run: "2", Status: downloader.StatusSkipped},
	}, skipped)
}

func TestSelectRuns(t *testing.T) {
	catalog := dqm.Catalog{
		testDataset: {"1", "2"},
		"/B/x/DQMIO": {"3"},
	}

	require.Equal(t, []string{"3", "1", "2"}, downloader.SelectRuns(nil, catalog))
	require.Equal(t, []string{"5", "6"}, downloader.SelectRuns([]string{"5", " 6 "}, catalog))

	file := filepath.Join(t.TempDir(), "runs.txt")
	require.NoError(t, os.WriteFile(file, []byte("316187\n\n316199\r\n"), 0o600))

	require.Equal(t, []string{"316187", "316199"}, downloader.SelectRuns([]string{file, "7"}, catalog))
}
