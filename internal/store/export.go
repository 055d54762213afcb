package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/whirl/internal/replay"
)

type ExportData struct {
	Script     string             `json:"script"`
	Preset     string             `json:"preset"`
	Frames     int                `json:"frames"`
	FinalIndex int                `json:"final_index"`
	FinalValue string             `json:"final_value"`
	Times      []float64          `json:"times"`
	Positions  []float64          `json:"positions"`
	Velocities []float64          `json:"velocities"`
	Metrics    map[string]float64 `json:"metrics"`
}

func exportData(script, preset string, result *replay.Result) ExportData {
	return ExportData{
		Script:     script,
		Preset:     preset,
		Frames:     result.Frames,
		FinalIndex: result.FinalIndex,
		FinalValue: result.FinalValue,
		Times:      result.Times,
		Positions:  result.Positions,
		Velocities: result.Velocities,
		Metrics:    result.Metrics,
	}
}

func ExportJSON(path string, script, preset string, result *replay.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeExport(file, script, preset, result)
}

func ExportJSONStdout(script, preset string, result *replay.Result) error {
	return writeExport(os.Stdout, script, preset, result)
}

func writeExport(w io.Writer, script, preset string, result *replay.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(script, preset, result))
}
