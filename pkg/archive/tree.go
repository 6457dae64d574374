package archive

import (
	"sort"

	"github.com/cms-egamma/egdqm/pkg/dqm"
)

// node is a directory of the in-memory archive tree.
type node struct {
	dirs  map[string]*node
	hists map[string]dqm.Histogram
}

func newNode() *node {
	return &node{
		dirs:  make(map[string]*node),
		hists: make(map[string]dqm.Histogram),
	}
}

func (n *node) mkdir(name string) *node {
	sub, ok := n.dirs[name]
	if !ok {
		sub = newNode()
		n.dirs[name] = sub
	}

	return sub
}

func (n *node) mkdirAll(dir dqm.Path) *node {
	for _, name := range dir {
		n = n.mkdir(name)
	}

	return n
}

// lookup returns the node of the directory or nil if it is missing.
func (n *node) lookup(dir dqm.Path) *node {
	for _, name := range dir {
		if n = n.dirs[name]; n == nil {
			return nil
		}
	}

	return n
}

func (n *node) apply(b *dqm.Batch) error {
	for _, dir := range b.Dirs() {
		if len(dir) == 0 {
			return ErrEmptyPath
		}

		n.mkdirAll(dir)
	}

	for _, e := range b.Entries() {
		if len(e.Dir) == 0 {
			return ErrEmptyPath
		}

		n.mkdirAll(e.Dir).hists[e.Name] = e.Histogram
	}

	return nil
}

func (n *node) dirNames() []string {
	return sortedKeys(n.dirs)
}

func (n *node) histNames() []string {
	return sortedKeys(n.hists)
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}

	res := make([]string, 0, len(m))
	for k := range m {
		res = append(res, k)
	}

	sort.Strings(res)

	return res
}
