package archive

import (
	"fmt"

	"github.com/cms-egamma/egdqm/pkg/dqm"
)

// Listing is the content of an archive directory.
type Listing struct {
	Dirs       []string
	Histograms []string
}

// Get reads the histogram from the directory. Returns ErrNotFound if either
// is missing.
func (a *Archive) Get(dir dqm.Path, name string) (dqm.Histogram, error) {
	a.mtx.RLock()
	defer a.mtx.RUnlock()

	n := a.root.lookup(dir)
	if n == nil || len(dir) == 0 {
		return dqm.Histogram{}, fmt.Errorf("directory %s: %w", dir, ErrNotFound)
	}

	h, ok := n.hists[name]
	if !ok {
		return dqm.Histogram{}, fmt.Errorf("histogram %s/%s: %w", dir, name, ErrNotFound)
	}

	return h, nil
}

// List returns sorted names of subdirectories and histograms of the
// directory. Empty dir lists the archive root.
func (a *Archive) List(dir dqm.Path) (Listing, error) {
	a.mtx.RLock()
	defer a.mtx.RUnlock()

	n := a.root.lookup(dir)
	if n == nil {
		return Listing{}, fmt.Errorf("directory %s: %w", dir, ErrNotFound)
	}

	return Listing{
		Dirs:       n.dirNames(),
		Histograms: n.histNames(),
	}, nil
}

// Walk calls f for every stored histogram, depth-first in name order,
// histograms of a directory before its subdirectories. Walking stops at the
// first error returned by f. f must not commit to the archive.
func (a *Archive) Walk(f func(dqm.Entry) error) error {
	a.mtx.RLock()
	defer a.mtx.RUnlock()

	return walk(nil, a.root, f)
}

func walk(dir dqm.Path, n *node, f func(dqm.Entry) error) error {
	for _, name := range n.histNames() {
		err := f(dqm.Entry{Dir: dir, Histogram: n.hists[name]})
		if err != nil {
			return err
		}
	}

	for _, name := range n.dirNames() {
		err := walk(dir.Join(name), n.dirs[name], f)
		if err != nil {
			return err
		}
	}

	return nil
}

// DatasetRuns returns datasets and runs already present in the archive.
// Every directory under DQMData is a dataset named by its sanitized form,
// runs are taken from the "Run <n>" subdirectories.
func (a *Archive) DatasetRuns() (dqm.Catalog, error) {
	a.mtx.RLock()
	defer a.mtx.RUnlock()

	c := make(dqm.Catalog)

	top := a.root.lookup(dqm.Path{dqm.RootDir})
	if top == nil {
		return c, nil
	}

	for _, dsName := range top.dirNames() {
		ds := dqm.RestoreDataset(dsName)
		c.Add(ds, "")

		for _, runDir := range top.dirs[dsName].dirNames() {
			if run, ok := dqm.RunFromDir(runDir); ok {
				c.Add(ds, run)
			}
		}
	}

	return c, nil
}
