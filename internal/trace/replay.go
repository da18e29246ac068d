package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/browserpilot/agent/pkg/models"
)

// exportVersion is the JSONL export schema version, written as the first
// line of every file so a future format change fails loudly on import
// rather than silently misparsing.
const exportVersion = 1

// exportHeader is the first line of a JSONL export file.
type exportHeader struct {
	Version   int       `json:"version"`
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
}

// Exporter writes AgentEvents to a JSONL file, one event per line,
// flushing after every write for crash safety. It is an optional
// export/import layer over the sqlite store, not the store itself.
type Exporter struct {
	mu     sync.Mutex
	file   *os.File
	header exportHeader
	wrote  bool
}

// NewExporterFile creates (truncating) path and prepares it to receive
// events for runID.
func NewExporterFile(path, runID string) (*Exporter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("trace: create export file: %w", err)
	}
	return &Exporter{
		file:   f,
		header: exportHeader{Version: exportVersion, RunID: runID, StartedAt: time.Now()},
	}, nil
}

// Write appends one event as a JSON line.
func (e *Exporter) Write(event models.AgentEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.wrote {
		if err := e.writeLine(e.header); err != nil {
			return err
		}
		e.wrote = true
	}
	return e.writeLine(event)
}

func (e *Exporter) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := e.file.Write(append(data, '\n')); err != nil {
		return err
	}
	return e.file.Sync()
}

// Close closes the underlying file.
func (e *Exporter) Close() error { return e.file.Close() }

// Importer reads AgentEvents back out of a JSONL export file.
type Importer struct {
	decoder *json.Decoder
	header  exportHeader
}

// NewImporter validates the header line and prepares to decode events.
func NewImporter(r io.Reader) (*Importer, error) {
	dec := json.NewDecoder(r)
	var header exportHeader
	if err := dec.Decode(&header); err != nil {
		return nil, fmt.Errorf("trace: read export header: %w", err)
	}
	if header.Version != exportVersion {
		return nil, fmt.Errorf("trace: unsupported export version %d", header.Version)
	}
	return &Importer{decoder: dec, header: header}, nil
}

// RunID returns the header's run id.
func (im *Importer) RunID() string { return im.header.RunID }

// ReadEvent decodes the next event, returning io.EOF when exhausted.
func (im *Importer) ReadEvent() (*models.AgentEvent, error) {
	var event models.AgentEvent
	if err := im.decoder.Decode(&event); err != nil {
		return nil, err
	}
	return &event, nil
}

// ReadAll decodes every remaining event into a slice.
func (im *Importer) ReadAll() ([]models.AgentEvent, error) {
	var events []models.AgentEvent
	for {
		e, err := im.ReadEvent()
		if err == io.EOF {
			break
		}
		if err != nil {
			return events, err
		}
		events = append(events, *e)
	}
	return events, nil
}

// ReplayToStats folds every event in the export back into a RunStats
// aggregate, without touching the sqlite store — used by the CLI's
// `trace stats` subcommand.
func ReplayToStats(im *Importer) (*models.RunStats, error) {
	events, err := im.ReadAll()
	if err != nil && len(events) == 0 {
		return nil, err
	}
	stats := models.NewRunStats(im.RunID())
	for _, e := range events {
		stats.Observe(e)
	}
	if len(events) > 0 {
		last := events[len(events)-1]
		stats.Duration = last.Time.Sub(events[0].Time)
	}
	return stats, nil
}
