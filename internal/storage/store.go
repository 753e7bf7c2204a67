package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/swingup/internal/dynamo"
)

var ErrRunNotFound = errors.New("storage: run not found")

type RunMetadata struct {
	ID         string             `json:"id"`
	Controller string             `json:"controller"`
	RewardMode string             `json:"reward_mode"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       uint64             `json:"seed"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Return     float64            `json:"return"`
	Terminated bool               `json:"terminated"`
	Truncated  bool               `json:"truncated"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Row is one recorded step: the state after the step, and the action and
// reward that produced it.
type Row struct {
	Step     int
	Time     float64
	X        float64
	XDot     float64
	Theta    float64
	ThetaDot float64
	Action   float64
	Reward   float64
}

type Trace []Row

// Columns lists the trace columns in file order.
var Columns = []string{"step", "time", "x", "x_dot", "theta", "theta_dot", "action", "reward"}

// Column extracts a named column.
func (t Trace) Column(name string) ([]float64, error) {
	var get func(Row) float64
	switch name {
	case "step":
		get = func(r Row) float64 { return float64(r.Step) }
	case "time":
		get = func(r Row) float64 { return r.Time }
	case "x":
		get = func(r Row) float64 { return r.X }
	case "x_dot":
		get = func(r Row) float64 { return r.XDot }
	case "theta":
		get = func(r Row) float64 { return r.Theta }
	case "theta_dot":
		get = func(r Row) float64 { return r.ThetaDot }
	case "action":
		get = func(r Row) float64 { return r.Action }
	case "reward":
		get = func(r Row) float64 { return r.Reward }
	default:
		return nil, fmt.Errorf("unknown column: %s", name)
	}

	out := make([]float64, len(t))
	for i, r := range t {
		out[i] = get(r)
	}
	return out, nil
}

// TraceFromTransitions records the post-step states of an episode. Row
// times are the end of each step.
func TraceFromTransitions(trs []dynamo.Transition, dt float64) Trace {
	trace := make(Trace, 0, len(trs))
	for _, tr := range trs {
		if len(tr.Next) < 4 {
			continue
		}
		trace = append(trace, Row{
			Step:     tr.Step + 1,
			Time:     float64(tr.Step+1) * dt,
			X:        tr.Next[0],
			XDot:     tr.Next[1],
			Theta:    tr.Next[2],
			ThetaDot: tr.Next[3],
			Action:   tr.Action,
			Reward:   tr.Reward,
		})
	}
	return trace
}

// Store persists episodes.
type Store interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, meta RunMetadata, trace Trace) (string, error)
	List(ctx context.Context) ([]RunMetadata, error)
	Load(ctx context.Context, id string) (*RunMetadata, error)
	LoadTrace(ctx context.Context, id string) (Trace, error)
	Close() error
}

func NewRunID() string {
	return uuid.NewString()
}

// NewStore opens a backend by name. The file backend keeps one directory
// per run under dir; the sqlite backend keeps dir/runs.db.
func NewStore(kind, dir string) (Store, error) {
	switch kind {
	case "", "file":
		return NewFileStore(dir), nil
	case "sqlite":
		return NewSQLiteStore(filepath.Join(dir, "runs.db")), nil
	default:
		return nil, fmt.Errorf("%w: unsupported store backend: %s", dynamo.ErrInvalidConfiguration, kind)
	}
}

func prepare(meta *RunMetadata) {
	if meta.ID == "" {
		meta.ID = NewRunID()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	if meta.Metrics == nil {
		meta.Metrics = map[string]float64{}
	}
}
