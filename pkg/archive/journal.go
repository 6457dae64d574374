package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/cms-egamma/egdqm/pkg/archive/compression"
	"github.com/cms-egamma/egdqm/pkg/dqm"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

const journalSuffix = ".journal"

var batchesBucket = []byte("batches")

// journal is a bbolt database of batches committed since the archive file
// was last written, keyed by commit sequence number.
type journal struct {
	db       *bbolt.DB
	compress compression.Config
}

// journalBatch is the stored form of dqm.Batch.
type journalBatch struct {
	Dirs    [][]string     `msgpack:"dirs"`
	Entries []journalEntry `msgpack:"entries"`
}

type journalEntry struct {
	Dir     []string `msgpack:"dir"`
	Name    string   `msgpack:"name"`
	Kind    string   `msgpack:"kind"`
	Payload []byte   `msgpack:"payload"`
	// Compressed is set when Payload is zstd-compressed.
	Compressed bool `msgpack:"compressed"`
}

func openJournal(path string, c *cfg) (*journal, error) {
	j := &journal{
		compress: compression.Config{Enabled: c.compress},
	}

	err := j.compress.Init()
	if err != nil {
		return nil, fmt.Errorf("init compression: %w", err)
	}

	j.db, err = bbolt.Open(path, c.perm, &bbolt.Options{
		Timeout: c.lockTimeout,
		NoSync:  c.noSync,
	})
	if err != nil {
		_ = j.compress.Close()
		return nil, fmt.Errorf("can't open bbolt at %s: %w", path, err)
	}

	err = j.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(batchesBucket)
		return err
	})
	if err != nil {
		_ = j.close()
		return nil, fmt.Errorf("init journal: %w", err)
	}

	return j, nil
}

// reset drops every journaled batch.
func (j *journal) reset() error {
	return j.db.Update(func(tx *bbolt.Tx) error {
		err := tx.DeleteBucket(batchesBucket)
		if err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}

		_, err = tx.CreateBucket(batchesBucket)

		return err
	})
}

func (j *journal) put(b *dqm.Batch) error {
	val, err := j.encode(b)
	if err != nil {
		return err
	}

	return j.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(batchesBucket)

		seq, err := bkt.NextSequence()
		if err != nil {
			return err
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		err = bkt.Put(key, val)
		if err != nil {
			return fmt.Errorf("journal batch: %w", err)
		}

		return nil
	})
}

// replay calls f for every journaled batch in commit order.
func (j *journal) replay(f func(*dqm.Batch) error) error {
	return j.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(batchesBucket).ForEach(func(k, v []byte) error {
			b, err := j.decode(v)
			if err != nil {
				return fmt.Errorf("decode batch %d: %w", binary.BigEndian.Uint64(k), err)
			}

			return f(b)
		})
	})
}

func (j *journal) encode(b *dqm.Batch) ([]byte, error) {
	var jb journalBatch

	for _, dir := range b.Dirs() {
		jb.Dirs = append(jb.Dirs, dir)
	}

	for _, e := range b.Entries() {
		payload := e.Payload
		if len(payload) == 0 {
			var err error

			payload, err = dqm.Encode(e.Object)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.Dir, err)
			}
		}

		jb.Entries = append(jb.Entries, journalEntry{
			Dir:        e.Dir,
			Name:       e.Name,
			Kind:       string(e.Kind),
			Payload:    j.compress.Compress(payload),
			Compressed: j.compress.Enabled,
		})
	}

	return msgpack.Marshal(jb)
}

// decode MUST NOT retain val.
func (j *journal) decode(val []byte) (*dqm.Batch, error) {
	var jb journalBatch

	err := msgpack.Unmarshal(val, &jb)
	if err != nil {
		return nil, err
	}

	var b dqm.Batch

	for _, dir := range jb.Dirs {
		b.Mkdir(dir)
	}

	for _, e := range jb.Entries {
		payload := e.Payload
		if e.Compressed {
			payload, err = j.compress.Decompress(payload)
			if err != nil {
				return nil, fmt.Errorf("decompress %s: %w", e.Name, err)
			}
		}

		h, err := dqm.NewHistogram(e.Name, dqm.Kind(e.Kind), payload)
		if err != nil {
			return nil, err
		}

		b.Put(e.Dir, h)
	}

	return &b, nil
}

func (j *journal) close() error {
	err := j.db.Close()
	if cErr := j.compress.Close(); err == nil {
		err = cErr
	}

	return err
}

// remove closes the journal and deletes its file.
func (j *journal) remove() error {
	path := j.db.Path()

	err := j.close()
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove journal: %w", err)
	}

	return nil
}
