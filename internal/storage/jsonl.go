// Package storage persists cleaning remarks as JSONL and in SQLite.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/bibclean/internal/remark"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// JSONLWriter is a remark.Sink writing one remark per line. Record cannot
// fail, so the first write error is kept and returned by Close.
type JSONLWriter struct {
	f   *os.File
	w   *bufio.Writer
	err error
}

// CreateJSONL creates or truncates the remarks file at path.
func CreateJSONL(path string) (*JSONLWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating remarks file: %w", err)
	}
	return &JSONLWriter{f: f, w: bufio.NewWriter(f)}, nil
}

// Record appends r to the file.
func (j *JSONLWriter) Record(r remark.Remark) {
	if j.err != nil {
		return
	}
	data, err := json.Marshal(r)
	if err != nil {
		j.err = fmt.Errorf("encoding remark: %w", err)
		return
	}
	if _, err := j.w.Write(data); err != nil {
		j.err = fmt.Errorf("writing remark: %w", err)
		return
	}
	if err := j.w.WriteByte('\n'); err != nil {
		j.err = fmt.Errorf("writing newline: %w", err)
	}
}

// Close flushes the file and reports the first error seen.
func (j *JSONLWriter) Close() error {
	flushErr := j.w.Flush()
	closeErr := j.f.Close()
	switch {
	case j.err != nil:
		return j.err
	case flushErr != nil:
		return fmt.Errorf("flushing remarks file: %w", flushErr)
	case closeErr != nil:
		return fmt.Errorf("closing remarks file: %w", closeErr)
	}
	return nil
}

// ReadRemarks reads all remarks from a JSONL file.
func ReadRemarks(path string) ([]remark.Remark, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing file returns empty slice
		}
		return nil, fmt.Errorf("opening remarks file: %w", err)
	}
	defer f.Close()

	var remarks []remark.Remark
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r remark.Remark
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		remarks = append(remarks, r)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading remarks file: %w", err)
	}

	return remarks, nil
}
