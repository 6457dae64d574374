package archive

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/cms-egamma/egdqm/pkg/dqm"
	"go-hep.org/x/hep/groot/riofs"
	"go.uber.org/zap"

	// registers TH1F and TH2F streamers
	_ "go-hep.org/x/hep/groot/rhist"
)

const (
	tmpSuffix = ".tmp"

	// classes of directory keys start with it: TDirectory, TDirectoryFile
	directoryClass = "TDirectory"
)

// load reads the directory tree of the ROOT file. Keys of classes other
// than directories and recognized histograms are skipped.
func load(path string, log *zap.Logger) (*node, error) {
	f, err := riofs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ROOT file: %w", err)
	}
	defer f.Close()

	root := newNode()

	err = loadDir(f, root, nil, log)
	if err != nil {
		return nil, err
	}

	return root, nil
}

func loadDir(dir riofs.Directory, n *node, at dqm.Path, log *zap.Logger) error {
	for _, k := range dir.Keys() {
		name := k.Name()
		class := k.ClassName()

		switch {
		case strings.HasPrefix(class, directoryClass):
			if _, ok := n.dirs[name]; ok {
				continue
			}

			obj, err := dir.Get(name)
			if err != nil {
				return fmt.Errorf("read directory %s: %w", at.Join(name), err)
			}

			sub, ok := obj.(riofs.Directory)
			if !ok {
				return fmt.Errorf("read directory %s: unexpected %T", at.Join(name), obj)
			}

			err = loadDir(sub, n.mkdir(name), at.Join(name), log)
			if err != nil {
				return err
			}
		case dqm.Kind(class).Recognized():
			// keys of older cycles repeat the name, Get reads the latest one
			if _, ok := n.hists[name]; ok {
				continue
			}

			obj, err := dir.Get(name)
			if err != nil {
				return fmt.Errorf("read histogram %s/%s: %w", at, name, err)
			}

			n.hists[name] = dqm.Histogram{
				Name:   name,
				Kind:   dqm.Kind(class),
				Object: obj,
			}
		default:
			log.Debug("unsupported object, skip",
				zap.Stringer("dir", at),
				zap.String("name", name),
				zap.String("class", class))
		}
	}

	return nil
}

// store writes the tree into a temporary file and moves it to path.
func store(root *node, path string, perm fs.FileMode) error {
	tmp := path + tmpSuffix

	f, err := riofs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create ROOT file: %w", err)
	}

	err = storeDir(f, root, nil)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)

		return err
	}

	err = f.Close()
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close ROOT file: %w", err)
	}

	err = os.Chmod(tmp, perm)
	if err != nil {
		return fmt.Errorf("chmod ROOT file: %w", err)
	}

	err = os.Rename(tmp, path)
	if err != nil {
		return fmt.Errorf("move ROOT file in place: %w", err)
	}

	return nil
}

func storeDir(dir riofs.Directory, n *node, at dqm.Path) error {
	for _, name := range n.dirNames() {
		sub, err := dir.Mkdir(name)
		if err != nil {
			return fmt.Errorf("create directory %s: %w", at.Join(name), err)
		}

		err = storeDir(sub, n.dirs[name], at.Join(name))
		if err != nil {
			return err
		}
	}

	for _, name := range n.histNames() {
		err := dir.Put(name, n.hists[name].Object)
		if err != nil {
			return fmt.Errorf("write histogram %s/%s: %w", at, name, err)
		}
	}

	return nil
}
