package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/user/alttext-service/internal/domain"
)

// FileRecordWriter writes the record as indented JSON to a file and echoes
// it to Echo when set.
type FileRecordWriter struct {
	Path string
	Echo io.Writer
}

func NewFileRecordWriter(path string) *FileRecordWriter {
	return &FileRecordWriter{Path: path, Echo: os.Stdout}
}

func (w *FileRecordWriter) WriteRecord(_ context.Context, record *domain.BatchRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if err := os.WriteFile(w.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write results to %s: %w", w.Path, err)
	}
	if w.Echo != nil {
		fmt.Fprintln(w.Echo, string(data))
	}
	return nil
}
