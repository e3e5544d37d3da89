package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type TurnRecord struct {
	Session string
	TurnMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a directory named after the current time under root.
func NewWriter(root string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405.000000000Z")
	baseDir := filepath.Join(root, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteTurnRecords(records []TurnRecord) error {
	path := filepath.Join(w.baseDir, "turn_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create turn records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"session", "day", "team", "start_time", "duration", "commits", "trashes", "undos", "restarts", "attacks", "captures", "builds"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write turn records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.Session,
			strconv.Itoa(record.Day),
			strconv.Itoa(record.Team),
			record.StartTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.Commits),
			strconv.Itoa(record.Trashes),
			strconv.Itoa(record.Undos),
			strconv.Itoa(record.Restarts),
			strconv.Itoa(record.Attacks),
			strconv.Itoa(record.Captures),
			strconv.Itoa(record.Builds),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write turn record row: %w", err)
		}
	}

	return nil
}
