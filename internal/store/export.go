package store

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/verdant-ai/verdant/internal/models"
)

// Export writes the full result history to w as gzip-compressed NDJSON, one
// result per line in insertion order.
func (s *Store) Export(w io.Writer) error {
	results, err := s.ReadAll()
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	zw := gzip.NewWriter(w)
	enc := json.NewEncoder(zw)
	for i := range results {
		if err := enc.Encode(&results[i]); err != nil {
			_ = zw.Close()
			return fmt.Errorf("encoding result %s: %w", results[i].ID, err)
		}
	}
	return zw.Close()
}

// Import reads gzip-compressed NDJSON produced by Export and appends every
// record to the store.
func (s *Store) Import(r io.Reader) (int, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer func() { _ = zr.Close() }()

	dec := json.NewDecoder(zr)
	n := 0
	for dec.More() {
		var result models.CandidateResult
		if err := dec.Decode(&result); err != nil {
			return n, fmt.Errorf("decoding record %d: %w", n, err)
		}
		if err := s.Append(&result); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
