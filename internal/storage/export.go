package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/gravquad/internal/sim"
)

type ExportFrame struct {
	Step          int      `json:"step"`
	MinDistance   *float64 `json:"min_distance"`
	PairI         int      `json:"pair_i"`
	PairJ         int      `json:"pair_j"`
	KineticEnergy float64  `json:"kinetic_energy"`
}

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Frames []ExportFrame `json:"frames"`
}

func exportData(meta RunMetadata, frames []sim.Frame) ExportData {
	data := ExportData{Run: meta, Frames: make([]ExportFrame, len(frames))}
	for i, f := range frames {
		ef := ExportFrame{Step: f.Step, PairI: -1, PairJ: -1, KineticEnergy: f.KineticEnergy}
		if f.HasPair {
			d := f.MinDistance
			ef.MinDistance = &d
			ef.PairI, ef.PairJ = f.Pair.I, f.Pair.J
		}
		data.Frames[i] = ef
	}
	return data
}

// ExportJSON writes a stored run, metadata and frames, as one JSON document.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(*meta, frames))
}

// ExportJSONFile is ExportJSON into a new file at path.
func (s *Store) ExportJSONFile(runID, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.ExportJSON(runID, file)
}

// ExportCSV copies a run's frame table to w.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	file, err := os.Open(s.FramesPath(runID))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(w, file)
	return err
}
