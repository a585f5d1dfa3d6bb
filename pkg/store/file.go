package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/synthline/hotgraph/pkg/model"
)

// Document is the on-disk JSON form of the graph store.
type Document struct {
	Revision model.Revision   `json:"revision"`
	Nodes    []model.Node     `json:"nodes"`
	Edges    []model.Edge     `json:"edges"`
	Zones    []model.ZoneRule `json:"zones,omitempty"`
}

// FileStore keeps the graph in a single JSON document. Writes go through
// a temp file and rename so readers never observe a half-written document.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the document at path. The file
// does not have to exist yet; Init creates it.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document path.
func (s *FileStore) Path() string { return s.path }

// Init writes an initial document containing the given graph at revision 1.
// It fails if the document already exists.
func (s *FileStore) Init(g *model.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return &model.PersistenceError{Op: "init", Err: fmt.Errorf("%s already exists", s.path)}
	}
	doc := &Document{
		Revision: 1,
		Nodes:    g.Nodes,
		Edges:    g.Edges,
		Zones:    g.Zones,
	}
	if err := s.write(doc); err != nil {
		return &model.PersistenceError{Op: "init", Err: err}
	}
	return nil
}

// Load reads and validates the stored graph.
func (s *FileStore) Load(ctx context.Context) (*model.Graph, model.Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	doc, err := s.read()
	if err != nil {
		return nil, 0, &model.PersistenceError{Op: "load", Err: err}
	}
	g := &model.Graph{Nodes: doc.Nodes, Edges: doc.Edges, Zones: doc.Zones}
	if err := g.Validate(); err != nil {
		return nil, 0, &model.PersistenceError{Op: "load", Err: err}
	}
	return g, doc.Revision, nil
}

// Persist merges delta nodes by id into the document, bumps the revision
// and rewrites the file atomically.
func (s *FileStore) Persist(ctx context.Context, delta []model.Node, expect model.Revision) (model.Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	doc, err := s.read()
	if err != nil {
		return 0, &model.PersistenceError{Op: "persist", Err: err}
	}
	if expect != 0 && expect != doc.Revision {
		return 0, &model.ConflictError{Expected: expect, Current: doc.Revision}
	}

	g := &model.Graph{Nodes: doc.Nodes, Edges: doc.Edges, Zones: doc.Zones}
	for _, n := range delta {
		g.AddNode(n)
	}
	if err := g.Validate(); err != nil {
		return 0, &model.PersistenceError{Op: "persist", Err: err}
	}

	doc.Revision++
	doc.Nodes = g.Nodes
	doc.Edges = g.Edges
	doc.Zones = g.Zones
	if err := s.write(doc); err != nil {
		return 0, &model.PersistenceError{Op: "persist", Err: err}
	}
	return doc.Revision, nil
}

func (s *FileStore) read() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return &doc, nil
}

func (s *FileStore) write(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".hotgraph-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
