// Package badgerstore keeps a property graph in BadgerDB and serves it as read snapshots.
//
// Key layout (ids are 8 byte big endian, so key order is id order):
//
//	s/v/<label>                 vertex label in the schema
//	s/e/<label>                 edge label in the schema
//	v/<id>                      vertex record (JSON)
//	e/<src>/<seq>               out-edge record (JSON), seq in insertion order
//	i/<label>/<field>/<value>   index entry, value is the vertex id
package badgerstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/ScottSallinen/snapolap/graph"
	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Path       string // Directory; ignored when InMemory.
	InMemory   bool
	SyncWrites bool
	ReadOnly   bool
}

type Store struct {
	db *badger.DB
}

var (
	prefixVertexLabel = []byte("s/v/")
	prefixEdgeLabel   = []byte("s/e/")
	prefixVertex      = []byte("v/")
	prefixEdge        = []byte("e/")
	prefixIndex       = []byte("i/")
)

func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("badgerstore: path is required for a persistent store")
		}
		if !cfg.ReadOnly {
			if err := os.MkdirAll(cfg.Path, 0750); err != nil {
				return nil, fmt.Errorf("badgerstore: create directory %s: %w", cfg.Path, err)
			}
		}
		opts = badger.DefaultOptions(cfg.Path).WithReadOnly(cfg.ReadOnly)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1).WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger: %w", graph.ErrStoreUnavailable, err)
	}
	log.Debug().Msg("Opened badger store at " + cfg.Path + " (in-memory " + fmt.Sprint(cfg.InMemory) + ")")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Snapshots are badger read transactions: consistent with the moment they are opened.
func (s *Store) OpenReadSnapshot(ctx context.Context, filter graph.LabelFilter) (graph.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", graph.ErrStoreUnavailable, err)
	}
	if s.db.IsClosed() {
		return nil, fmt.Errorf("%w: badger store closed", graph.ErrStoreUnavailable)
	}
	txn := s.db.NewTransaction(false)
	snap := &snapshot{txn: txn, filter: filter}
	snap.readSchema()
	return snap, nil
}

func idBytes(id graph.RawID) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func vertexKey(id graph.RawID) []byte { return concat(prefixVertex, idBytes(id)) }

func edgePrefix(src graph.RawID) []byte { return concat(prefixEdge, idBytes(src), []byte("/")) }

func edgeKey(src graph.RawID, seq uint64) []byte {
	return concat(edgePrefix(src), idBytes(graph.RawID(seq)))
}

func indexKey(label, field string, value any) []byte {
	return concat(prefixIndex, []byte(label+"/"+field+"/"+fmt.Sprint(value)))
}

// Stored form of a vertex or edge, without the ids that live in the key.
type record struct {
	Label  string       `json:"label"`
	Dst    graph.RawID  `json:"dst,omitempty"`
	Fields graph.Fields `json:"fields,omitempty"`
}

// Badger's own logging goes through zerolog; chatter is demoted one level.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, args ...interface{})   { log.Error().Msg(fmt.Sprintf(f, args...)) }
func (badgerLogger) Warningf(f string, args ...interface{}) { log.Warn().Msg(fmt.Sprintf(f, args...)) }
func (badgerLogger) Infof(f string, args ...interface{})    { log.Debug().Msg(fmt.Sprintf(f, args...)) }
func (badgerLogger) Debugf(f string, args ...interface{})   { log.Trace().Msg(fmt.Sprintf(f, args...)) }
