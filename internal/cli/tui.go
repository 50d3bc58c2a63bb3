package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pathtrace/pkg/search"
	"github.com/matzehuels/pathtrace/pkg/trace"
)

// Replay styles
var (
	replayCurrentStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	replayVisitedStyle = lipgloss.NewStyle().Foreground(colorWhite)
	replayDimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	replayPathStyle    = StyleSuccess.Bold(true)
	replayBoxStyle     = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

const (
	defaultReplayInterval = 500 * time.Millisecond
	minReplayInterval     = 50 * time.Millisecond
	maxReplayInterval     = 5 * time.Second
)

// =============================================================================
// ReplayModel - Step through a recorded search
// =============================================================================

type replayTickMsg time.Time

// ReplayModel is the bubbletea model for stepping through a search trace.
type ReplayModel struct {
	Result   search.Result
	Replay   *trace.Replay
	Frame    trace.Frame
	Started  bool
	Playing  bool
	Interval time.Duration
	Width    int
}

// NewReplayModel prepares a replay of res positioned before the first
// expansion.
func NewReplayModel(res search.Result, interval time.Duration) (ReplayModel, error) {
	r, err := trace.NewReplay(res.Trace)
	if err != nil {
		return ReplayModel{}, err
	}
	if interval <= 0 {
		interval = defaultReplayInterval
	}
	return ReplayModel{Result: res, Replay: r, Interval: interval, Width: 80}, nil
}

func (m ReplayModel) Init() tea.Cmd {
	return nil
}

func (m ReplayModel) tick() tea.Cmd {
	return tea.Tick(m.Interval, func(t time.Time) tea.Msg { return replayTickMsg(t) })
}

func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n":
			m.Playing = false
			m.step()
		case "left", "h", "p":
			m.Playing = false
			if f, ok := m.Replay.Prev(); ok {
				m.Frame = f
			}
		case "home", "g":
			m.Playing = false
			m.Replay.Reset()
			m.Frame, m.Started = trace.Frame{}, false
		case "end", "G":
			m.Playing = false
			if m.Replay.Len() > 0 {
				m.Frame, m.Started = m.Replay.Seek(m.Replay.Len()-1), true
			}
		case " ", "space":
			m.Playing = !m.Playing
			if m.Playing {
				if m.Frame.Done {
					m.Replay.Reset()
					m.Frame, m.Started = trace.Frame{}, false
				}
				return m, m.tick()
			}
		case "+", "=":
			m.Interval = max(m.Interval/2, minReplayInterval)
		case "-":
			m.Interval = min(m.Interval*2, maxReplayInterval)
		}
	case replayTickMsg:
		if !m.Playing {
			return m, nil
		}
		if !m.step() || m.Frame.Done {
			m.Playing = false
			return m, nil
		}
		return m, m.tick()
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	}
	return m, nil
}

// step advances one frame and reports whether there was one.
func (m *ReplayModel) step() bool {
	f, ok := m.Replay.Next()
	if !ok {
		return false
	}
	m.Frame, m.Started = f, true
	return true
}

func (m ReplayModel) View() string {
	var b strings.Builder
	res := m.Result

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Replay %s %s %s", res.Start, iconArrow, res.Goal)))
	b.WriteString("  ")
	b.WriteString(replayDimStyle.Render(res.Strategy.String()))
	b.WriteString("\n")
	b.WriteString(replayDimStyle.Render("←/→ step  space play/pause  +/- speed  g/G first/last  q quit"))
	b.WriteString("\n\n")

	total := m.Replay.Len()
	step := 0
	if m.Started {
		step = m.Frame.Index + 1
	}
	b.WriteString(progressBar(step, total, max(10, min(m.Width-20, 50))))
	b.WriteString(replayDimStyle.Render(fmt.Sprintf("  %d/%d", step, total)))
	if m.Playing {
		b.WriteString(replayDimStyle.Render(fmt.Sprintf("  ▶ %s", m.Interval)))
	}
	b.WriteString("\n\n")

	if !m.Started {
		b.WriteString(replayDimStyle.Render("press → to expand the start node"))
		b.WriteString("\n")
		return b.String()
	}

	var body strings.Builder
	fmt.Fprintf(&body, "%s %s\n", replayDimStyle.Render("expanding"), replayCurrentStyle.Render(m.Frame.Current))

	order := make([]string, len(m.Frame.Expanded))
	for i, id := range m.Frame.Expanded {
		if i == len(m.Frame.Expanded)-1 {
			order[i] = replayCurrentStyle.Render(id)
		} else {
			order[i] = replayVisitedStyle.Render(id)
		}
	}
	fmt.Fprintf(&body, "%s %s\n", replayDimStyle.Render("order    "), strings.Join(order, replayDimStyle.Render(" · ")))

	relaxed := make([]string, len(m.Frame.New))
	for i, e := range m.Frame.New {
		relaxed[i] = e.To
	}
	if len(relaxed) == 0 {
		relaxed = []string{replayDimStyle.Render("none")}
	}
	fmt.Fprintf(&body, "%s %s\n", replayDimStyle.Render("relaxed  "), strings.Join(relaxed, ", "))
	fmt.Fprintf(&body, "%s %d", replayDimStyle.Render("explored "), len(m.Frame.Explored))

	b.WriteString(replayBoxStyle.Render(body.String()))
	b.WriteString("\n\n")

	if m.Frame.Done {
		if m.Frame.Found {
			b.WriteString(replayPathStyle.Render(formatPath(m.Frame.Path)))
			b.WriteString(StyleNumber.Render(fmt.Sprintf("  cost %g", res.Cost)))
		} else {
			b.WriteString(StyleWarning.Render("goal not reachable"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// progressBar renders done/total as a fixed-width bar.
func progressBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	return StyleHighlight.Render(strings.Repeat("█", filled)) +
		replayDimStyle.Render(strings.Repeat("░", width-filled))
}

// printFrames writes the replay as plain lines, one per expansion, for
// non-interactive output.
func printFrames(res search.Result) error {
	r, err := trace.NewReplay(res.Trace)
	if err != nil {
		return err
	}
	for f, ok := r.Next(); ok; f, ok = r.Next() {
		relaxed := make([]string, len(f.New))
		for i, e := range f.New {
			relaxed[i] = e.String()
		}
		fmt.Printf("%3d  %-12s %s\n", f.Index+1, f.Current, strings.Join(relaxed, " "))
		if f.Done {
			if f.Found {
				printSuccess("%s (cost %g)", formatPath(f.Path), res.Cost)
			} else {
				printWarning("goal not reachable")
			}
		}
	}
	return nil
}
