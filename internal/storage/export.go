package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/cowell/pkg/dynamo"
)

type ExportData struct {
	Run       RunMetadata  `json:"run"`
	Result    string       `json:"result"`
	EventTime float64      `json:"event_time,omitempty"`
	Stats     dynamo.Stats `json:"stats"`
	Times     []float64    `json:"times"`
	States    [][]float64  `json:"states"`
}

func newExportData(meta RunMetadata, sol *dynamo.Solution) ExportData {
	data := ExportData{
		Run:       meta,
		Result:    sol.Result.String(),
		EventTime: sol.EventTime,
		Stats:     sol.Stats,
		Times:     sol.Ts,
		States:    make([][]float64, len(sol.Ys)),
	}
	for i, s := range sol.Ys {
		data.States[i] = s
	}
	if data.Times == nil {
		data.Times = []float64{}
	}
	return data
}

// WriteJSON writes the run and its samples as indented JSON.
func WriteJSON(w io.Writer, meta RunMetadata, sol *dynamo.Solution) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, sol))
}

func ExportJSON(path string, meta RunMetadata, sol *dynamo.Solution) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, sol)
}

func ExportJSONStdout(meta RunMetadata, sol *dynamo.Solution) error {
	return WriteJSON(os.Stdout, meta, sol)
}

func ExportCSV(path string, sol *dynamo.Solution) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, sol)
}
