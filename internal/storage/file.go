package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

// FileStore keeps each run in its own directory as metadata.json and
// trace.csv.
type FileStore struct {
	baseDir string
}

func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

func (s *FileStore) Init(ctx context.Context) error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *FileStore) runDir(id string) (string, error) {
	if id == "" || filepath.Base(id) != id || id == "." || id == ".." {
		return "", fmt.Errorf("invalid run id %q", id)
	}
	return filepath.Join(s.baseDir, id), nil
}

func (s *FileStore) Save(ctx context.Context, meta RunMetadata, trace Trace) (string, error) {
	prepare(&meta)
	runDir, err := s.runDir(meta.ID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, traceFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := writeTrace(csvFile, trace); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeTrace(f *os.File, trace Trace) error {
	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return err
	}

	for _, r := range trace {
		row := []string{
			strconv.Itoa(r.Step),
			formatFloat(r.Time),
			formatFloat(r.X),
			formatFloat(r.XDot),
			formatFloat(r.Theta),
			formatFloat(r.ThetaDot),
			formatFloat(r.Action),
			formatFloat(r.Reward),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (s *FileStore) List(ctx context.Context) ([]RunMetadata, error) {
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

		meta, err := s.Load(ctx, entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *FileStore) Load(ctx context.Context, id string) (*RunMetadata, error) {
	runDir, err := s.runDir(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(runDir, metadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", id, err)
	}

	return &meta, nil
}

func (s *FileStore) LoadTrace(ctx context.Context, id string) (Trace, error) {
	runDir, err := s.runDir(id)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(runDir, traceFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(Columns)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return Trace{}, nil
	}

	trace := make(Trace, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("trace %s line %d: %w", id, i+2, err)
		}
		trace = append(trace, row)
	}
	return trace, nil
}

func parseRow(record []string) (Row, error) {
	step, err := strconv.Atoi(record[0])
	if err != nil {
		return Row{}, err
	}

	vals := make([]float64, len(record)-1)
	for j := range vals {
		vals[j], err = strconv.ParseFloat(record[j+1], 64)
		if err != nil {
			return Row{}, err
		}
	}

	return Row{
		Step:     step,
		Time:     vals[0],
		X:        vals[1],
		XDot:     vals[2],
		Theta:    vals[3],
		ThetaDot: vals[4],
		Action:   vals[5],
		Reward:   vals[6],
	}, nil
}

func (s *FileStore) Close() error {
	return nil
}
