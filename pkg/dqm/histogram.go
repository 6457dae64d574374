package dqm

import (
	"errors"
	"fmt"

	"go-hep.org/x/hep/groot/rbytes"
	"go-hep.org/x/hep/groot/root"

	// registers TH1F and TH2F streamers
	_ "go-hep.org/x/hep/groot/rhist"
)

// Kind is the class name of a streamed histogram object.
type Kind string

const (
	// KindTH1F is a one-dimensional float histogram.
	KindTH1F Kind = "TH1F"
	// KindTH2F is a two-dimensional float histogram.
	KindTH2F Kind = "TH2F"
)

// Recognized reports whether histograms of the kind are stored in archives.
func (k Kind) Recognized() bool {
	return k == KindTH1F || k == KindTH2F
}

// ErrKindMismatch is returned when a streamed object is not of the
// announced class.
var ErrKindMismatch = errors.New("object class does not match histogram type")

// Histogram is a named histogram. Payload is the object streamed together
// with its class tag, Object is the reconstructed ROOT object. Histograms
// read from an archive file have no Payload.
type Histogram struct {
	Name    string
	Kind    Kind
	Payload []byte
	Object  root.Object
}

// NewHistogram reconstructs the object of the kind from payload.
func NewHistogram(name string, kind Kind, payload []byte) (Histogram, error) {
	obj, err := Decode(payload)
	if err != nil {
		return Histogram{}, fmt.Errorf("histogram %s: %w", name, err)
	}

	if obj.Class() != string(kind) {
		return Histogram{}, fmt.Errorf("histogram %s: %w: %s instead of %s", name, ErrKindMismatch, obj.Class(), kind)
	}

	return Histogram{
		Name:    name,
		Kind:    kind,
		Payload: payload,
		Object:  obj,
	}, nil
}

// Decode reads an object streamed with its class tag, the way
// TBufferFile::WriteObject does it.
func Decode(payload []byte) (obj root.Object, err error) {
	if len(payload) == 0 {
		return nil, errors.New("empty payload")
	}

	// malformed payloads may make the streamers index out of the buffer
	defer func() {
		if r := recover(); r != nil {
			obj, err = nil, fmt.Errorf("read object: %v", r)
		}
	}()

	r := rbytes.NewRBuffer(payload, make(map[int64]interface{}), 0, nil)

	obj = r.ReadObjectAny()
	if err = r.Err(); err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}

	if obj == nil {
		return nil, errors.New("null object")
	}

	return obj, nil
}

// Encode streams obj with its class tag. Decode reverses it.
func Encode(obj root.Object) ([]byte, error) {
	w := rbytes.NewWBuffer(nil, make(map[interface{}]int64), 0, nil)

	w.WriteObjectAny(obj)
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("write %s: %w", obj.Class(), err)
	}

	return w.Bytes(), nil
}

// Entry is a stored histogram together with its directory.
type Entry struct {
	Dir Path
	Histogram
}

// Batch groups directories and histograms produced by one download so that
// they can be committed at once.
type Batch struct {
	dirs    []Path
	entries []Entry
}

// Mkdir schedules creation of the directory.
func (b *Batch) Mkdir(dir Path) {
	b.dirs = append(b.dirs, dir)
}

// Put schedules storing h under dir. Parent directories are created
// implicitly.
func (b *Batch) Put(dir Path, h Histogram) {
	b.entries = append(b.entries, Entry{Dir: dir, Histogram: h})
}

// Dirs returns scheduled directories in insertion order.
func (b *Batch) Dirs() []Path {
	return b.dirs
}

// Entries returns scheduled histograms in insertion order.
func (b *Batch) Entries() []Entry {
	return b.entries
}

// Len returns the number of scheduled histograms.
func (b *Batch) Len() int {
	return len(b.entries)
}
