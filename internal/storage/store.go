package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gravquad/internal/physics"
	"github.com/san-kum/gravquad/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var frameHeader = []string{"step", "min_distance", "pair_i", "pair_j", "kinetic_energy"}

// Store keeps one directory per run under baseDir. Runs are diagnostics for
// later inspection; a stored run cannot be resumed.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunParams mirrors physics.Params for the metadata file.
type RunParams struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	G           float64 `json:"g"`
	Restitution float64 `json:"restitution"`
	MassMin     float64 `json:"mass_min"`
	MassMax     float64 `json:"mass_max"`
	MaxSpeed    float64 `json:"max_speed"`
	Workers     int     `json:"workers"`
}

func paramsRecord(p physics.Params) RunParams {
	return RunParams{
		Width:       p.Width,
		Height:      p.Height,
		G:           p.G,
		Restitution: p.Restitution,
		MassMin:     p.MassMin,
		MassMax:     p.MassMax,
		MaxSpeed:    p.MaxSpeed,
		Workers:     p.Workers,
	}
}

type RunMetadata struct {
	ID              string             `json:"id"`
	Preset          string             `json:"preset,omitempty"`
	Timestamp       time.Time          `json:"timestamp"`
	Seed            uint64             `json:"seed"`
	Bodies          int                `json:"bodies"`
	Steps           int                `json:"steps"`
	Params          RunParams          `json:"params"`
	EnergyDrift     float64            `json:"energy_drift"`
	IndexChecks     int                `json:"index_checks"`
	IndexMismatches int                `json:"index_mismatches"`
	Metrics         map[string]float64 `json:"metrics"`
}

// finite drops values JSON cannot carry, such as the +Inf separation of a
// run that never had a pair.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

// Save writes metadata.json and frames.csv for a finished run and returns
// the run id.
func (s *Store) Save(preset string, bodies int, params physics.Params, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("run_%d_%d", params.Seed, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:              runID,
		Preset:          preset,
		Timestamp:       now,
		Seed:            params.Seed,
		Bodies:          bodies,
		Steps:           result.StepsTaken,
		Params:          paramsRecord(params),
		EnergyDrift:     result.EnergyDrift,
		IndexChecks:     result.IndexChecks,
		IndexMismatches: result.IndexMismatches,
		Metrics:         finite(result.Metrics),
	}
	if math.IsNaN(meta.EnergyDrift) || math.IsInf(meta.EnergyDrift, 0) {
		meta.EnergyDrift = 0
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result.Frames); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFrames(path string, frames []sim.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(frameHeader); err != nil {
		return err
	}

	for _, fr := range frames {
		i, j := -1, -1
		if fr.HasPair {
			i, j = fr.Pair.I, fr.Pair.J
		}
		row := []string{
			strconv.Itoa(fr.Step),
			strconv.FormatFloat(fr.MinDistance, 'f', 6, 64),
			strconv.Itoa(i),
			strconv.Itoa(j),
			strconv.FormatFloat(fr.KineticEnergy, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadFrames reads frames.csv back. Rows that fail to parse are skipped.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	frames := make([]sim.Frame, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < len(frameHeader) {
			continue
		}
		step, err1 := strconv.Atoi(record[0])
		dist, err2 := strconv.ParseFloat(record[1], 64)
		pi, err3 := strconv.Atoi(record[2])
		pj, err4 := strconv.Atoi(record[3])
		ke, err5 := strconv.ParseFloat(record[4], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			continue
		}

		frames = append(frames, sim.Frame{
			Step:          step,
			MinDistance:   dist,
			Pair:          physics.Pair{I: pi, J: pj},
			HasPair:       pi >= 0,
			KineticEnergy: ke,
		})
	}

	return frames, nil
}

// FramesPath is the location of a run's frame table, for copying it out.
func (s *Store) FramesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, framesFile)
}
