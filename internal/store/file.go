package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	appErrors "gantry/internal/errors"
)

// File keeps the document in a YAML file, or JSON when the path ends in
// .json.
type File struct {
	path string
}

// NewFile returns a store for path. The file is not touched until Load or
// Save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path is the file the store reads and writes.
func (f *File) Path() string { return f.path }

func (f *File) isJSON() bool {
	return strings.EqualFold(filepath.Ext(f.path), ".json")
}

// Load reads the document. A missing file is a CodeNotFound error.
func (f *File) Load(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	//nolint:gosec // G304: path comes from the user's own config or flags
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, appErrors.New(appErrors.CodeNotFound, fmt.Sprintf("task file %s not found", f.path), err)
	}
	if err != nil {
		return Document{}, failed("read task file", err)
	}
	doc, err := decodeDocument(data, f.isJSON())
	if err != nil {
		return Document{}, appErrors.New(appErrors.CodeParseFailed, fmt.Sprintf("parse %s", f.path), err)
	}
	log.Logf("loaded %d tasks from %s", len(doc.Tasks), f.path)
	return doc, nil
}

func decodeDocument(data []byte, asJSON bool) (Document, error) {
	var doc Document
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if asJSON {
		// A bare array is accepted as a task list.
		if trimmed := bytes.TrimSpace(data); trimmed[0] == '[' {
			err := json.Unmarshal(trimmed, &doc.Tasks)
			return doc, err
		}
		err := json.Unmarshal(data, &doc)
		return doc, err
	}
	err := yaml.Unmarshal(data, &doc)
	return doc, err
}

// Save writes the document atomically through a temp file in the same
// directory.
func (f *File) Save(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := f.encode(doc)
	if err != nil {
		return failed("encode task file", err)
	}
	dir := filepath.Dir(f.path)
	//nolint:gosec // G301: task files live next to the user's project
	if err := os.MkdirAll(dir, 0755); err != nil {
		return failed("create task file directory", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return failed("create temp task file", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return failed("write task file", err)
	}
	if err := tmp.Close(); err != nil {
		return failed("close task file", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return failed("replace task file", err)
	}
	log.Logf("saved %d tasks to %s", len(doc.Tasks), f.path)
	return nil
}

func (f *File) encode(doc Document) ([]byte, error) {
	if f.isJSON() {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Close is a no-op; files are opened per call.
func (f *File) Close() error { return nil }
