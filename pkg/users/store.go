package users

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/followgraph/pkg/errors"
)

var (
	errMissing  = stderrors.New("field missing")
	errNotList  = stderrors.New("not a list")
	errNotCount = stderrors.New("not a non-negative integer")
	errNotID    = stderrors.New("identifier must be a string or integer")
	errEmptyID  = stderrors.New("empty identifier")
)

// Store is an ordered collection of user records.
// The zero value is not usable - use NewStore, Read or Load.
type Store struct {
	ids     []string
	records map[string]*Record

	// Digest is the SHA-256 of the raw source bytes when the store was
	// loaded with Read or Load, and empty otherwise.
	Digest string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{records: make(map[string]*Record)}
}

// Add inserts or replaces a record. A replaced record keeps its position.
func (s *Store) Add(r *Record) {
	if _, ok := s.records[r.ID]; !ok {
		s.ids = append(s.ids, r.ID)
	}
	s.records[r.ID] = r
}

// Get returns the record for id.
func (s *Store) Get(id string) (*Record, bool) {
	r, ok := s.records[id]
	return r, ok
}

// Len returns the number of records. A nil store has length 0.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns the identifiers in store order. The returned slice is a copy.
func (s *Store) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Each calls fn for every record in store order until fn returns false.
func (s *Store) Each(fn func(*Record) bool) {
	for _, id := range s.ids {
		if !fn(s.records[id]) {
			return
		}
	}
}

// Read decodes a store from a JSON object mapping identifiers to records,
// preserving the key order of the document.
//
//	{
//	  "12": {"followers": [13, 14], "friends": ["13"], "followers_count": 2, "friends_count": 1},
//	  "13": {"followers": 0, "friends": [], "followers_count": 5, "friends_count": 0}
//	}
//
// Malformed records are kept (see [Record.List]); only a document that is
// not a JSON object is rejected.
func Read(r io.Reader) (*Store, error) {
	h := sha256.New()
	s, err := read(io.TeeReader(r, h))
	if err != nil {
		return nil, err
	}
	s.Digest = digest(h)
	return s, nil
}

// Load reads a store from path. Paths ending in ".gz" are gunzipped.
// A missing file yields a FILE_NOT_FOUND error.
func Load(path string) (*Store, error) {
	rc, h, err := open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	s, err := read(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Digest = digest(h)
	return s, nil
}

func read(r io.Reader) (*Store, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode user store")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New(errors.ErrCodeInvalidInput, "user store must be a JSON object keyed by user ID")
	}

	s := NewStore()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode user key")
		}
		id, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode user %s", id)
		}
		if id == "" {
			continue
		}
		s.Add(decodeRecord(id, raw))
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode user store")
	}
	return s, nil
}

// open opens path for reading, hashing the raw bytes as they are consumed.
func open(path string) (io.ReadCloser, hash.Hash, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	h := sha256.New()
	tee := io.TeeReader(f, h)
	if !strings.HasSuffix(path, ".gz") {
		return readCloser{Reader: tee, closers: []io.Closer{f}}, h, nil
	}

	zr, err := gzip.NewReader(tee)
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "gunzip %s", path)
	}
	return readCloser{Reader: zr, closers: []io.Closer{zr, f}}, h, nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func digest(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
