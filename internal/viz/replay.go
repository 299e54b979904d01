package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/cowell/internal/analysis"
	"github.com/san-kum/cowell/pkg/dynamo"
)

// TickMsg advances playback by the current speed.
type TickMsg time.Time

const frameRate = time.Second / 30

// Replay plays back a solution sample by sample.
type Replay struct {
	title  string
	sol    *dynamo.Solution
	radius []float64
	index  int
	speed  int
	paused bool
	width  int
	height int
}

// NewReplay builds a paused-at-start replay of sol.
func NewReplay(title string, sol *dynamo.Solution) Replay {
	radius := make([]float64, sol.Len())
	for i, y := range sol.Ys {
		radius[i] = y.Position().Norm()
	}
	return Replay{
		title:  title,
		sol:    sol,
		radius: radius,
		speed:  1,
		width:  80,
		height: 24,
	}
}

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Replay) Init() tea.Cmd {
	return tick()
}

// Index is the sample currently shown.
func (m Replay) Index() int { return m.index }

func (m Replay) last() int { return max(m.sol.Len()-1, 0) }

func (m Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "left", "h":
			m.paused = true
			m.index = max(m.index-1, 0)
		case "right", "l":
			m.paused = true
			m.index = min(m.index+1, m.last())
		case "+", "=":
			m.speed = min(m.speed*2, 64)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		case "r":
			m.index = 0
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case TickMsg:
		if !m.paused {
			m.index = min(m.index+m.speed, m.last())
		}
		return m, tick()
	}
	return m, nil
}

func (m Replay) View() string {
	if m.sol.Len() == 0 {
		return Subtle.Render("no samples") + "\n"
	}

	plotW := max(m.width-36, 20)
	plotH := max(m.height-8, 8)

	shown := &dynamo.Solution{Ts: m.sol.Ts[:m.index+1], Ys: m.sol.Ys[:m.index+1]}
	plot := analysis.PhasePortraitToASCII(analysis.ProjectPhase(shown, 0, 1), plotW, plotH)

	t, y := m.sol.Ts[m.index], m.sol.Ys[m.index]
	rows := []string{
		Title.Render(m.title),
		"",
		kv("t", fmt.Sprintf("%.4f", t)),
		kv("|r|", fmt.Sprintf("%.6f", m.radius[m.index])),
		kv("|v|", fmt.Sprintf("%.6f", y.Velocity().Norm())),
		kv("sample", fmt.Sprintf("%d/%d", m.index+1, m.sol.Len())),
		kv("speed", fmt.Sprintf("%dx", m.speed)),
		"",
		m.status(),
		"",
		ProgressBar(float64(m.index)/float64(max(m.last(), 1)), 24),
		Sparkline(m.radius[:m.index+1], 24),
	}
	side := Panel.Render(strings.Join(rows, "\n"))

	var b strings.Builder
	b.WriteString(joinColumns(plot, side))
	b.WriteString("\n")
	b.WriteString(KeyHint.Render("space pause  h/l step  +/- speed  r restart  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Replay) status() string {
	switch {
	case m.index < m.last() && m.paused:
		return StatusPaused.Render("paused")
	case m.index < m.last():
		return StatusOK.Render("playing")
	}
	return ResultStyle(m.sol.Result).Render(m.sol.Result.String())
}

func kv(label, value string) string {
	return MetricLabel.Render(fmt.Sprintf("%-7s", label)) + MetricValue.Render(value)
}

func joinColumns(left, right string) string {
	l := strings.Split(strings.TrimRight(left, "\n"), "\n")
	r := strings.Split(right, "\n")
	width := 0
	for _, line := range l {
		width = max(width, len([]rune(line)))
	}

	var b strings.Builder
	for i := 0; i < max(len(l), len(r)); i++ {
		var a, c string
		if i < len(l) {
			a = l[i]
		}
		if i < len(r) {
			c = r[i]
		}
		b.WriteString(a)
		b.WriteString(strings.Repeat(" ", width-len([]rune(a))+2))
		b.WriteString(c)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RunReplay plays sol full-screen until the user quits.
func RunReplay(title string, sol *dynamo.Solution) error {
	_, err := tea.NewProgram(NewReplay(title, sol), tea.WithAltScreen()).Run()
	return err
}
