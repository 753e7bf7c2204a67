package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/swingup/internal/storage"
)

type ExportData struct {
	ID         string             `json:"id"`
	Controller string             `json:"controller"`
	RewardMode string             `json:"reward_mode"`
	Seed       uint64             `json:"seed"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Return     float64            `json:"return"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Actions    []float64          `json:"actions"`
	Rewards    []float64          `json:"rewards"`
	Metrics    map[string]float64 `json:"metrics"`
}

func newExportData(meta *storage.RunMetadata, trace storage.Trace) ExportData {
	data := ExportData{
		ID:         meta.ID,
		Controller: meta.Controller,
		RewardMode: meta.RewardMode,
		Seed:       meta.Seed,
		Dt:         meta.Dt,
		Steps:      len(trace),
		Return:     meta.Return,
		Times:      make([]float64, len(trace)),
		States:     make([][]float64, len(trace)),
		Actions:    make([]float64, len(trace)),
		Rewards:    make([]float64, len(trace)),
		Metrics:    meta.Metrics,
	}

	for i, r := range trace {
		data.Times[i] = r.Time
		data.States[i] = []float64{r.X, r.XDot, r.Theta, r.ThetaDot}
		data.Actions[i] = r.Action
		data.Rewards[i] = r.Reward
	}
	return data
}

func WriteJSON(w io.Writer, meta *storage.RunMetadata, trace storage.Trace) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, trace))
}

func ExportJSON(path string, meta *storage.RunMetadata, trace storage.Trace) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, trace)
}
