package dqm

import "sort"

// Catalog maps dataset names to their run numbers.
type Catalog map[string][]string

// Add appends the run to the dataset unless it is already listed. A call
// with an empty run registers the dataset only.
func (c Catalog) Add(dataset, run string) {
	runs, ok := c[dataset]
	if !ok {
		runs = []string{}
	}

	if run != "" && !contains(runs, run) {
		runs = append(runs, run)
	}

	c[dataset] = runs
}

// Contains reports whether the run is listed for the dataset.
func (c Catalog) Contains(dataset, run string) bool {
	return contains(c[dataset], run)
}

// Datasets returns the dataset names in lexicographical order.
func (c Catalog) Datasets() []string {
	res := make([]string, 0, len(c))
	for ds := range c {
		res = append(res, ds)
	}

	sort.Strings(res)

	return res
}

// Runs returns the runs of all datasets, dataset by dataset in the order of
// Datasets.
func (c Catalog) Runs() []string {
	var res []string

	for _, ds := range c.Datasets() {
		res = append(res, c[ds]...)
	}

	return res
}

func contains(list []string, s string) bool {
	for i := range list {
		if list[i] == s {
			return true
		}
	}

	return false
}
