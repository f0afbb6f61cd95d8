package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// Marshal converts a snapshot to indented JSON bytes.
func Marshal(sn Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(sn, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes JSON bytes into a snapshot. The result is not
// validated against a molecule; [Restore] does that.
func Unmarshal(data []byte) (Snapshot, error) {
	return readFrom(bytes.NewReader(data))
}

// WriteFile writes a snapshot to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(sn Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(sn, f)
}

// Write writes a snapshot as JSON to an io.Writer.
// Use Marshal for in-memory serialization or WriteFile for files.
func Write(sn Snapshot, w io.Writer) error {
	return writeTo(sn, w)
}

// ReadFile reads a JSON file and returns the decoded snapshot.
func ReadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f)
}

// Read decodes a JSON snapshot from an io.Reader.
// Use ReadFile for files or pass bytes.NewReader for in-memory data.
func Read(r io.Reader) (Snapshot, error) {
	return readFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(sn Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sn); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (Snapshot, error) {
	var sn Snapshot
	if err := json.NewDecoder(r).Decode(&sn); err != nil {
		return Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	return sn, nil
}
