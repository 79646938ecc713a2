package db

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"mooworld/types"
)

// WAL is an append-only write-ahead log of committed transactions. A commit
// is durable only after its record has been appended and fsynced here; a
// crash between a commit and the next checkpoint is recovered by replaying
// the log from the last checkpoint forward (see Recover). Each record's
// objects are framed with writeObject/readObject, the same per-object
// codec the full-database textdump writer and reader already use, so the
// WAL's on-disk shape is a natural extension of the existing dump format
// rather than a second serialization scheme.
type WAL struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	bw      *bufio.Writer
	nextLSN uint64
}

// OpenWAL opens (creating if necessary) the write-ahead log at path and
// positions nextLSN just past the highest LSN already recorded.
func OpenWAL(path string) (*WAL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open wal: %w", err)
	}
	w := &WAL{path: path, file: f, bw: bufio.NewWriter(f)}

	lastLSN, err := scanLastLSN(path)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.nextLSN = lastLSN + 1
	return w, nil
}

func scanLastLSN(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var last uint64
	for {
		rec, err := readWALRecord(r)
		if err != nil {
			break
		}
		last = rec.lsn
	}
	return last, nil
}

type walRecord struct {
	lsn       uint64
	puts      []*Object
	recycled  []types.ObjID
	maxObjID  types.ObjID
	highWater types.ObjID
}

// Append writes one committed transaction's write set to the log and
// fsyncs before returning, so Commit cannot report success until the
// record is durable on disk.
func (w *WAL) Append(store *Store, puts map[types.ObjID]*Object, recycled []types.ObjID, maxObjID, highWater types.ObjID) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	lsn := w.nextLSN
	objs := make([]*Object, 0, len(puts))
	for _, o := range puts {
		objs = append(objs, o)
	}

	if err := writeWALRecord(w.bw, store, walRecord{lsn: lsn, puts: objs, recycled: recycled, maxObjID: maxObjID, highWater: highWater}); err != nil {
		return 0, fmt.Errorf("append wal record: %w", err)
	}
	if err := w.bw.Flush(); err != nil {
		return 0, fmt.Errorf("flush wal: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return 0, fmt.Errorf("fsync wal: %w", err)
	}
	w.nextLSN++
	walLSNGauge.Set(float64(lsn))
	return lsn, nil
}

func writeWALRecord(bw *bufio.Writer, store *Store, rec walRecord) error {
	writer := NewWriter(bw, store)
	if _, err := fmt.Fprintf(bw, "LSN %d\n", rec.lsn); err != nil {
		return err
	}
	if err := writer.writeInt64(int64(rec.maxObjID)); err != nil {
		return err
	}
	if err := writer.writeInt64(int64(rec.highWater)); err != nil {
		return err
	}
	if err := writer.writeInt(len(rec.puts)); err != nil {
		return err
	}
	for _, obj := range rec.puts {
		if err := writer.writeObject(obj); err != nil {
			return err
		}
	}
	if err := writer.writeInt(len(rec.recycled)); err != nil {
		return err
	}
	for _, id := range rec.recycled {
		if err := writer.writeObjID(id); err != nil {
			return err
		}
	}
	return writer.Flush()
}

func readWALRecord(r *bufio.Reader) (walRecord, error) {
	var rec walRecord

	line, err := r.ReadString('\n')
	if err != nil {
		return rec, err
	}
	if _, err := fmt.Sscanf(line, "LSN %d\n", &rec.lsn); err != nil {
		return rec, fmt.Errorf("malformed wal record header: %q: %w", line, err)
	}

	maxObjID, err := readInt(r)
	if err != nil {
		return rec, err
	}
	rec.maxObjID = types.ObjID(maxObjID)

	highWater, err := readInt(r)
	if err != nil {
		return rec, err
	}
	rec.highWater = types.ObjID(highWater)

	count, err := readInt(r)
	if err != nil {
		return rec, err
	}
	db := &Database{Version: 17}
	for i := 0; i < count; i++ {
		obj, err := db.readObject(r)
		if err != nil {
			return rec, fmt.Errorf("read wal object: %w", err)
		}
		rec.puts = append(rec.puts, obj)
	}

	recycledCount, err := readInt(r)
	if err != nil {
		return rec, err
	}
	for i := 0; i < recycledCount; i++ {
		id, err := readObjID(r)
		if err != nil {
			return rec, err
		}
		rec.recycled = append(rec.recycled, id)
	}

	return rec, nil
}

// Recover replays every record in the log into store, in LSN order. Used on
// startup after loading the last checkpoint, to restore writes that
// committed after that checkpoint but before a crash.
func (w *WAL) Recover(store *Store) error {
	f, err := os.Open(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	store.mu.Lock()
	defer store.mu.Unlock()

	for {
		rec, err := readWALRecord(r)
		if err != nil {
			if err == io.EOF {
				break
			}
			break
		}
		for _, obj := range rec.puts {
			store.objects[obj.ID] = obj
			store.versions[obj.ID] = rec.lsn
		}
		for _, id := range rec.recycled {
			if o, ok := store.objects[id]; ok {
				o.Recycled = true
				o.Flags = o.Flags.Set(FlagRecycled | FlagInvalid)
			}
		}
		if rec.maxObjID > store.maxObjID {
			store.maxObjID = rec.maxObjID
		}
		if rec.highWater > store.highWaterID {
			store.highWaterID = rec.highWater
		}
		if rec.lsn > store.globalVersion {
			store.globalVersion = rec.lsn
		}
	}
	return nil
}

// Checkpoint truncates the log. The caller is expected to have just written
// a full checkpoint dump (CheckpointManager.Checkpoint) covering everything
// up to this point, so replaying from an empty log after the next restart
// is sufficient. This bounds WAL growth to the tail of writes since the
// last full dump, rather than letting it grow for the life of the server.
func (w *WAL) Checkpoint() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Close(); err != nil {
		return err
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	w.file = f
	w.bw = bufio.NewWriter(f)
	return nil
}

// Close flushes and closes the underlying log file.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.bw.Flush(); err != nil {
		return err
	}
	return w.file.Close()
}

// LSN returns the LSN that will be assigned to the next appended record.
func (w *WAL) LSN() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.nextLSN
}
