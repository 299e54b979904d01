package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/cowell/pkg/dynamo"
)

// ErrNotFound is returned for unknown run IDs.
var ErrNotFound = errors.New("storage: run not found")

// Store keeps one directory per run with metadata.json and states.csv.
type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string {
	return s.baseDir
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Dynamics   string             `json:"dynamics"`
	Mode       string             `json:"mode"`
	Solver     string             `json:"solver"`
	Controller string             `json:"controller"`
	Event      string             `json:"event,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	T1         float64            `json:"t1"`
	Dt         float64            `json:"dt,omitempty"`
	Args       map[string]any     `json:"args"`
	Result     string             `json:"result"`
	EventTime  float64            `json:"event_time,omitempty"`
	Stats      dynamo.Stats       `json:"stats"`
	Samples    int                `json:"samples"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// Save writes a new run and returns its ID. ID, Timestamp, Result, Stats and
// Samples are filled from sol.
func (s *Store) Save(meta RunMetadata, sol *dynamo.Solution) (string, error) {
	now := s.now()
	if meta.Name == "" {
		meta.Name = meta.Dynamics
	}
	runID := fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Result = sol.Result.String()
	meta.EventTime = sol.EventTime
	meta.Stats = sol.Stats
	meta.Samples = sol.Len()

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, sol); err != nil {
		return "", fmt.Errorf("write states: %w", err)
	}
	return runID, nil
}

// WriteCSV writes a time column followed by one column per state component.
func WriteCSV(out io.Writer, sol *dynamo.Solution) error {
	w := csv.NewWriter(out)

	if len(sol.Ys) > 0 {
		header := []string{"time"}
		for i := range sol.Ys[0] {
			header = append(header, columnName(i))
		}
		if err := w.Write(header); err != nil {
			return err
		}
	}

	for i, y := range sol.Ys {
		row := []string{strconv.FormatFloat(sol.Ts[i], 'g', -1, 64)}
		for _, val := range y {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

var orbitColumns = []string{"x", "y", "z", "vx", "vy", "vz"}

func columnName(i int) string {
	if i < len(orbitColumns) {
		return orbitColumns[i]
	}
	return fmt.Sprintf("s%d", i)
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata of %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i, err)
		}

		state := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d column %d: %w", i, j, err)
			}
			state = append(state, val)
		}
		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}

// LoadSolution rebuilds the Solution of a stored run.
func (s *Store) LoadSolution(runID string) (*RunMetadata, *dynamo.Solution, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	res, err := dynamo.ParseResult(meta.Result)
	if err != nil {
		return nil, nil, err
	}

	sol := &dynamo.Solution{
		Ts:        times,
		Ys:        make([]dynamo.State, len(states)),
		Stats:     meta.Stats,
		Result:    res,
		EventTime: meta.EventTime,
	}
	for i, st := range states {
		sol.Ys[i] = dynamo.State(st)
	}
	return meta, sol, nil
}

// Latest returns the most recent run.
func (s *Store) Latest() (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNotFound
	}
	return &runs[len(runs)-1], nil
}
