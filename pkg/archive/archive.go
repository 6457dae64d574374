// Package archive implements the on-disk histogram archive: a ROOT file
// holding the DQMData directory tree with TH1F and TH2F objects.
//
// A writable archive keeps the tree in memory and writes the file on Close.
// Every commit is recorded in a journal next to the file first, so runs
// committed before a crash are recovered when the archive is reopened for
// update.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/cms-egamma/egdqm/pkg/dqm"
	"go.uber.org/zap"
)

// Mode defines how Open treats the archive file.
type Mode uint8

const (
	// ModeRecreate replaces an existing file on Close.
	ModeRecreate Mode = iota
	// ModeUpdate keeps existing contents, creating the file if needed.
	ModeUpdate
	// ModeRead opens an existing file read-only.
	ModeRead
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeRecreate:
		return "recreate"
	case ModeUpdate:
		return "update"
	case ModeRead:
		return "read"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

var (
	// ErrNotFound is returned when requested directory or histogram is
	// missing.
	ErrNotFound = errors.New("not found")
	// ErrEmptyPath is returned for operations on the archive root.
	ErrEmptyPath = errors.New("empty archive path")
	// ErrReadOnly is returned on commits to an archive opened in ModeRead.
	ErrReadOnly = errors.New("archive is read-only")
	// ErrClosed is returned on commits to a closed archive.
	ErrClosed = errors.New("archive is closed")
)

type cfg struct {
	perm        fs.FileMode
	lockTimeout time.Duration
	noSync      bool
	compress    bool
	log         *zap.Logger
}

func defaultCfg() *cfg {
	return &cfg{
		perm:        0o640,
		lockTimeout: 10 * time.Second,
		log:         zap.NewNop(),
	}
}

// Option allows to set optional Archive parameters.
type Option func(*cfg)

// WithPermissions sets file mode of the archive and its journal.
func WithPermissions(perm fs.FileMode) Option {
	return func(c *cfg) {
		c.perm = perm
	}
}

// WithLockTimeout limits waiting for the journal lock held by another
// writer of the same archive.
func WithLockTimeout(d time.Duration) Option {
	return func(c *cfg) {
		c.lockTimeout = d
	}
}

// WithNoSync disables fsync of the journal after each commit.
func WithNoSync(v bool) Option {
	return func(c *cfg) {
		c.noSync = v
	}
}

// WithCompression enables zstd compression of journaled payloads.
func WithCompression(v bool) Option {
	return func(c *cfg) {
		c.compress = v
	}
}

// WithLogger sets the logger, nop logger by default.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		if l != nil {
			c.log = l
		}
	}
}

// Archive is an opened histogram archive. All methods are safe for
// concurrent use.
type Archive struct {
	mtx sync.RWMutex

	path    string
	mode    Mode
	perm    fs.FileMode
	root    *node
	journal *journal
	closed  bool

	log *zap.Logger
}

// Open opens the archive file at path in the given mode. Writable modes
// lock the journal, so one archive has at most one writer.
func Open(path string, mode Mode, opts ...Option) (*Archive, error) {
	c := defaultCfg()
	for i := range opts {
		opts[i](c)
	}

	a := &Archive{
		path: path,
		mode: mode,
		perm: c.perm,
		root: newNode(),
		log:  c.log.With(zap.String("archive", path)),
	}

	var err error

	switch mode {
	case ModeRead:
		a.root, err = load(path, a.log)
		if err != nil {
			return nil, err
		}
	case ModeRecreate, ModeUpdate:
		a.journal, err = openJournal(path+journalSuffix, c)
		if err != nil {
			return nil, err
		}

		err = a.prepare()
		if err != nil {
			_ = a.journal.close()
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported archive mode %v", mode)
	}

	a.log.Debug("archive opened", zap.Stringer("mode", mode))

	return a, nil
}

// prepare fills the tree of a writable archive: recreated archives start
// empty, updated ones load the file and replay the journal left by an
// interrupted session.
func (a *Archive) prepare() error {
	if a.mode == ModeRecreate {
		return a.journal.reset()
	}

	_, err := os.Stat(a.path)
	switch {
	case err == nil:
		a.root, err = load(a.path, a.log)
		if err != nil {
			return err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("stat archive: %w", err)
	}

	var replayed int

	err = a.journal.replay(func(b *dqm.Batch) error {
		replayed++
		return a.root.apply(b)
	})
	if err != nil {
		return fmt.Errorf("replay journal: %w", err)
	}

	if replayed > 0 {
		a.log.Info("recovered journaled batches", zap.Int("batches", replayed))
	}

	return nil
}

// Path returns the archive file path.
func (a *Archive) Path() string {
	return a.path
}

// Close writes a writable archive to its file and removes the journal.
// If writing fails the journal is kept for the next update.
func (a *Archive) Close() error {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	if a.closed {
		return nil
	}

	a.closed = true

	if a.mode == ModeRead {
		return nil
	}

	err := store(a.root, a.path, a.perm)
	if err != nil {
		_ = a.journal.close()
		return err
	}

	a.log.Debug("archive written")

	return a.journal.remove()
}

// Put stores the histogram in the directory, replacing a histogram of the
// same name.
func (a *Archive) Put(dir dqm.Path, h dqm.Histogram) error {
	var b dqm.Batch
	b.Put(dir, h)

	return a.Commit(&b)
}

// Commit atomically applies every directory and histogram of the batch.
// Histograms without an object are reconstructed from their payload.
func (a *Archive) Commit(b *dqm.Batch) error {
	if a.mode == ModeRead {
		return ErrReadOnly
	}

	resolved, err := resolve(b)
	if err != nil {
		return err
	}

	a.mtx.Lock()
	defer a.mtx.Unlock()

	if a.closed {
		return ErrClosed
	}

	err = a.journal.put(resolved)
	if err != nil {
		return err
	}

	err = a.root.apply(resolved)
	if err != nil {
		return err
	}

	a.log.Debug("batch committed",
		zap.Int("dirs", len(b.Dirs())),
		zap.Int("histograms", b.Len()))

	return nil
}

// resolve checks paths of the batch and returns its copy with every
// histogram object reconstructed.
func resolve(b *dqm.Batch) (*dqm.Batch, error) {
	var res dqm.Batch

	for _, dir := range b.Dirs() {
		if len(dir) == 0 {
			return nil, ErrEmptyPath
		}

		res.Mkdir(dir)
	}

	for _, e := range b.Entries() {
		if len(e.Dir) == 0 {
			return nil, ErrEmptyPath
		}

		h := e.Histogram
		if h.Object == nil {
			var err error

			h, err = dqm.NewHistogram(h.Name, h.Kind, h.Payload)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.Dir, err)
			}
		}

		res.Put(e.Dir, h)
	}

	return &res, nil
}
