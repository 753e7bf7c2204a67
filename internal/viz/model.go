package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/san-kum/swingup/internal/dynamo"
	"github.com/san-kum/swingup/internal/env"
	"github.com/san-kum/swingup/internal/export"
)

const (
	width           = 64
	height          = 18
	historyCapacity = 300
	// holdFrames keeps a pressed arrow active between terminal key repeats.
	holdFrames = 6
)

type TickMsg time.Time

type Options struct {
	StepsPerFrame int
	FPS           int
	// Controller drives the cart when auto mode is on; nil means keyboard only.
	Controller     dynamo.Controller
	ControllerName string
	GIFPath        string
	Logger         *zap.Logger
}

// Model is the terminal front-end: it steps the environment on every tick
// and draws the scene on a braille canvas.
type Model struct {
	env    *env.CartPoleSwingUp
	opts   Options
	scene  Scene
	canvas *Canvas

	state    dynamo.State
	action   float64
	hold     int
	reward   float64
	ret      float64
	t        float64
	episodes int
	lastEnd  string

	auto      bool
	running   bool
	err       error
	rewards   []float64
	actions   []float64
	theme     int
	styles    styles
	recorder  *export.GIFRecorder
	recording bool
	saved     string
}

func NewModel(e *env.CartPoleSwingUp, opts Options) Model {
	if opts.StepsPerFrame < 1 {
		opts.StepsPerFrame = 1
	}
	if opts.FPS < 1 {
		opts.FPS = 30
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "swingup.gif"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	p := e.Params()
	m := Model{
		env:     e,
		opts:    opts,
		scene:   Scene{PoleLength: p.PoleLength, XThreshold: p.XThreshold},
		canvas:  NewCanvas(width, height),
		auto:    opts.Controller != nil,
		running: true,
		rewards: make([]float64, 0, historyCapacity),
		actions: make([]float64, 0, historyCapacity),
		styles:  newStyles(Themes[0]),
	}
	m.state, _ = e.Reset(env.ResetOptions{InitialState: env.RestState()})
	m.scene.Draw(m.canvas, m.state[env.IdxX], m.state[env.IdxTheta])
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left", "h", "a":
			m.push(-1)
		case "right", "l", "d":
			m.push(1)
		case " ":
			m.push(0)
		case "p":
			m.running = !m.running
		case "r":
			m.reset(true)
		case "c":
			if m.opts.Controller != nil {
				m.auto = !m.auto
			}
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = newStyles(Themes[m.theme])
		case "g":
			m.toggleRecording()
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) push(a float64) {
	m.auto = false
	m.action = a
	m.hold = holdFrames
}

// advance runs one frame worth of physics steps.
func (m *Model) advance() {
	for i := 0; i < m.opts.StepsPerFrame; i++ {
		a := m.action
		if m.auto {
			a = m.opts.Controller.Compute(m.state, m.t).Scalar()
		}

		res, err := m.env.Step(a)
		if err != nil {
			m.err = err
			m.running = false
			m.opts.Logger.Error("step failed", zap.Error(err))
			return
		}
		m.state = res.Observation
		m.reward = res.Reward
		m.ret += res.Reward
		m.t += m.env.Params().Dt
		m.record(a, res.Reward)

		if res.Done() {
			m.episodes++
			m.lastEnd = "truncated"
			if res.Terminated {
				m.lastEnd = "terminated"
			}
			m.opts.Logger.Info("episode finished",
				zap.Int("episode", m.episodes),
				zap.String("end", m.lastEnd),
				zap.Float64("return", m.ret),
			)
			m.reset(false)
			break
		}
	}

	if !m.auto && m.hold > 0 {
		m.hold--
		if m.hold == 0 {
			m.action = 0
		}
	}
	m.scene.Draw(m.canvas, m.state[env.IdxX], m.state[env.IdxTheta])
	if m.recording {
		if err := m.recorder.Capture(m.state); err != nil {
			m.opts.Logger.Warn("gif capture failed", zap.Error(err))
		}
	}
}

func (m *Model) record(a, r float64) {
	m.rewards = append(m.rewards, r)
	if len(m.rewards) > historyCapacity {
		m.rewards = m.rewards[1:]
	}
	m.actions = append(m.actions, a)
	if len(m.actions) > historyCapacity {
		m.actions = m.actions[1:]
	}
}

// reset restarts the episode: from the exact rest state when asked by the
// user, with reset noise after an episode ends.
func (m *Model) reset(exact bool) {
	opts := env.ResetOptions{}
	if exact {
		opts.InitialState = env.RestState()
	}
	m.state, _ = m.env.Reset(opts)
	if rc, ok := m.opts.Controller.(interface{ Reset() }); ok {
		rc.Reset()
	}
	m.ret = 0
	m.t = 0
	m.action = 0
	m.hold = 0
	m.rewards = m.rewards[:0]
	m.actions = m.actions[:0]
	m.scene.Draw(m.canvas, m.state[env.IdxX], m.state[env.IdxTheta])
}

func (m *Model) toggleRecording() {
	if !m.recording {
		p := m.env.Params()
		m.recorder = export.NewGIFRecorder(p.PoleLength, 1, m.opts.FPS, m.opts.Logger)
		m.recording = true
		m.saved = ""
		return
	}
	m.recording = false
	if err := m.recorder.Save(m.opts.GIFPath); err != nil {
		m.opts.Logger.Warn("gif save failed", zap.Error(err))
		m.saved = "gif: " + err.Error()
	} else {
		m.saved = fmt.Sprintf("saved %d frames to %s", m.recorder.Frames(), m.opts.GIFPath)
	}
	m.recorder = nil
}

// State returns the current environment state.
func (m Model) State() dynamo.State { return m.state.Clone() }

// Episodes counts finished episodes.
func (m Model) Episodes() int { return m.episodes }

func (m Model) View() string {
	st := m.styles
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render("CART-POLE SWING-UP") + "\n")

	switch {
	case m.err != nil:
		s.WriteString(st.bad.Render("ERROR: "+m.err.Error()) + "\n")
	case m.recording:
		s.WriteString(st.bad.Render("● RECORDING") + "\n")
	case !m.running:
		s.WriteString(st.warn.Render("PAUSED") + "\n")
	default:
		s.WriteString(st.good.Render("RUNNING") + "\n")
	}

	mode := "keyboard"
	if m.auto {
		mode = m.opts.ControllerName
		if mode == "" {
			mode = "controller"
		}
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	s.WriteString("\n")
	row("Mode", mode)
	row("Step", fmt.Sprintf("%d", m.env.Steps()))
	row("Episodes", fmt.Sprintf("%d", m.episodes))
	row("x", fmt.Sprintf("%+.3f m", m.state[env.IdxX]))
	row("x_dot", fmt.Sprintf("%+.3f m/s", m.state[env.IdxXDot]))
	row("theta", fmt.Sprintf("%+.3f rad", m.state[env.IdxTheta]))
	row("theta_dot", fmt.Sprintf("%+.3f rad/s", m.state[env.IdxThetaDot]))
	row("Action", fmt.Sprintf("%+.2f", m.action))
	row("Reward", fmt.Sprintf("%.3f", m.reward))
	row("Return", fmt.Sprintf("%.2f", m.ret))
	if m.lastEnd != "" {
		row("Last end", m.lastEnd)
	}

	if len(m.rewards) > 1 {
		chart := asciigraph.Plot(m.rewards, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Reward"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}
	if len(m.actions) > 0 {
		s.WriteString(st.label.Render("Actions") + st.Sparkline(m.actions, 24) + "\n")
	}
	if m.saved != "" {
		s.WriteString(st.help.Render(m.saved) + "\n")
	}

	s.WriteString(st.help.Render("←/→:Push SP:Coast R:Reset P:Pause\nC:Controller G:GIF T:Theme Q:Quit"))
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
}

// Run starts the terminal program and blocks until the user quits.
func Run(e *env.CartPoleSwingUp, opts Options) error {
	_, err := tea.NewProgram(NewModel(e, opts), tea.WithAltScreen()).Run()
	return err
}
