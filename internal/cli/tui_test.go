package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/pathtrace/pkg/graph"
	"github.com/matzehuels/pathtrace/pkg/heuristic"
	"github.com/matzehuels/pathtrace/pkg/search"
)

func exampleResult(t *testing.T) search.Result {
	t.Helper()
	g, err := graph.New(map[string]map[string]float64{
		"A": {"B": 1, "C": 4},
		"B": {"C": 1, "D": 2},
		"C": {"D": 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	res, err := search.Solve(search.UniformCost, g, heuristic.Table{}, "A", "D", 0)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func press(m ReplayModel, key tea.KeyMsg) ReplayModel {
	next, _ := m.Update(key)
	return next.(ReplayModel)
}

var (
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyEnd   = tea.KeyMsg{Type: tea.KeyEnd}
	keyHome  = tea.KeyMsg{Type: tea.KeyHome}
)

func TestReplayModelStepping(t *testing.T) {
	res := exampleResult(t)
	m, err := NewReplayModel(res, 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.Interval != defaultReplayInterval {
		t.Errorf("interval = %v", m.Interval)
	}
	if !strings.Contains(m.View(), "press →") {
		t.Error("initial view should prompt for the first step")
	}

	m = press(m, keyRight)
	if !m.Started || m.Frame.Current != "A" {
		t.Fatalf("first frame = %+v", m.Frame)
	}
	m = press(m, keyRight)
	if m.Frame.Current != "B" {
		t.Errorf("second frame current = %q, want B", m.Frame.Current)
	}
	m = press(m, keyLeft)
	if m.Frame.Current != "A" {
		t.Errorf("after back = %q, want A", m.Frame.Current)
	}

	m = press(m, keyEnd)
	if !m.Frame.Done || !m.Frame.Found {
		t.Fatalf("last frame = %+v", m.Frame)
	}
	if m.Frame.Current != "D" {
		t.Errorf("last expanded = %q, want D", m.Frame.Current)
	}
	if !strings.Contains(m.View(), "cost 3") {
		t.Error("final view should show the cost")
	}

	m = press(m, keyHome)
	if m.Started {
		t.Error("home should rewind before the first frame")
	}
}

func TestReplayModelPlayback(t *testing.T) {
	m, err := NewReplayModel(exampleResult(t), time.Second)
	if err != nil {
		t.Fatal(err)
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(ReplayModel)
	if !m.Playing || cmd == nil {
		t.Fatal("space should start playback and schedule a tick")
	}

	for i := 0; i < 10 && m.Playing; i++ {
		next, _ = m.Update(replayTickMsg(time.Now()))
		m = next.(ReplayModel)
	}
	if m.Playing || !m.Frame.Done {
		t.Errorf("playback should stop on the last frame: playing=%v frame=%+v", m.Playing, m.Frame)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	if m.Interval != 500*time.Millisecond {
		t.Errorf("faster interval = %v", m.Interval)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	if m.Interval != time.Second {
		t.Errorf("slower interval = %v", m.Interval)
	}
}

func TestReplayModelQuit(t *testing.T) {
	m, err := NewReplayModel(exampleResult(t), 0)
	if err != nil {
		t.Fatal(err)
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestProgressBar(t *testing.T) {
	bar := progressBar(0, 0, 10)
	if strings.Count(bar, "░") != 10 {
		t.Errorf("empty bar = %q", bar)
	}
	bar = progressBar(5, 10, 10)
	if strings.Count(bar, "█") != 5 {
		t.Errorf("half bar = %q", bar)
	}
}
