// Package ui provides the Bubbletea progress display shown while a
// mosaic render is running.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoadComplete signals that the tile pools (and optional beat analysis)
// are ready and rendering is about to begin.
type LoadComplete struct {
	PoolA  int
	PoolB  int
	Onsets int
}

// StepProgress represents a per-frame progress update from the engine.
type StepProgress struct {
	Frame       int
	TotalFrames int
	Replaced    int
	Elapsed     time.Duration
	FileSize    int64
}

// RunComplete signals that rendering and encoding have finished.
type RunComplete struct {
	OutputFile    string
	TotalFrames   int
	TilesReplaced int
	TotalTime     time.Duration
	FileSize      int64
}

// quitTimerMsg is sent when it's time to quit after showing completion
type quitTimerMsg struct{}

// renderModel implements the Bubbletea model for a mosaic render.
type renderModel struct {
	progress        progress.Model
	loaded          *LoadComplete
	lastUpdate      StepProgress
	complete        *RunComplete
	startTime       time.Time
	width           int
	minDisplayTime  time.Duration
	completionDelay time.Duration
}

// NewRenderModel creates the progress UI model for a render run.
func NewRenderModel() tea.Model {
	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return &renderModel{
		progress:        p,
		startTime:       time.Now(),
		minDisplayTime:  500 * time.Millisecond,
		completionDelay: 2 * time.Second,
	}
}

// Init initializes the model
func (m *renderModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *renderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(msg.Width-30, 50)
		return m, nil

	case LoadComplete:
		m.loaded = &msg
		return m, nil

	case StepProgress:
		m.lastUpdate = msg
		return m, nil

	case RunComplete:
		m.complete = &msg

		elapsed := time.Since(m.startTime)
		delay := m.completionDelay
		if elapsed < m.minDisplayTime {
			delay += m.minDisplayTime - elapsed
		}

		return m, tea.Tick(delay, func(t time.Time) tea.Msg {
			return quitTimerMsg{}
		})

	case quitTimerMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		// Any key skips the completion screen delay
		if m.complete != nil {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the UI
func (m *renderModel) View() string {
	if m.complete != nil {
		return m.renderComplete()
	}
	return m.renderProgress()
}

func (m *renderModel) renderProgress() string {
	var s strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B7DD8")).
		Render("Feldhimmel 🌾")

	s.WriteString(title)
	s.WriteString("\n")

	if m.loaded == nil {
		s.WriteString(lipgloss.NewStyle().Faint(true).Render("Loading tile pools..."))
		s.WriteString("\n")
		return m.frame(s.String(), "#3B7DD8")
	}

	s.WriteString(lipgloss.NewStyle().Faint(true).Render("Rendering mosaic"))
	s.WriteString("\n\n")

	if m.lastUpdate.TotalFrames > 0 {
		percent := float64(m.lastUpdate.Frame) / float64(m.lastUpdate.TotalFrames)
		s.WriteString(m.progress.ViewAs(percent))
		s.WriteString(fmt.Sprintf(" %5.1f%%\n\n", percent*100))

		elapsed := m.lastUpdate.Elapsed
		if elapsed == 0 {
			elapsed = time.Since(m.startTime)
		}

		labelStyle := lipgloss.NewStyle().Faint(true)

		s.WriteString("  ")
		s.WriteString(labelStyle.Render("Frame:    "))
		s.WriteString(fmt.Sprintf("%6d / %d", m.lastUpdate.Frame, m.lastUpdate.TotalFrames))
		s.WriteString("\n")

		s.WriteString("  ")
		s.WriteString(labelStyle.Render("Tiles:    "))
		s.WriteString(fmt.Sprintf("%6d replaced", m.lastUpdate.Replaced))
		s.WriteString("\n")

		s.WriteString("  ")
		s.WriteString(labelStyle.Render("Elapsed:  "))
		s.WriteString(fmt.Sprintf("%6.1fs", elapsed.Seconds()))
		if m.lastUpdate.FileSize > 0 {
			s.WriteString("  │  ")
			s.WriteString(labelStyle.Render("Size: "))
			s.WriteString(formatBytes(m.lastUpdate.FileSize))
		}
		s.WriteString("\n\n")
	} else {
		s.WriteString(lipgloss.NewStyle().Faint(true).Render("Building initial grid...\n\n"))
	}

	labelStyle := lipgloss.NewStyle().Faint(true)
	s.WriteString(labelStyle.Render("Pools:"))
	s.WriteString(fmt.Sprintf("  A: %d images", m.loaded.PoolA))
	if m.loaded.PoolB > 0 {
		s.WriteString(fmt.Sprintf("  │  B: %d images", m.loaded.PoolB))
	}
	if m.loaded.Onsets > 0 {
		s.WriteString(fmt.Sprintf("  │  Beats: %d", m.loaded.Onsets))
	}

	return m.frame(s.String(), "#3B7DD8")
}

func (m *renderModel) renderComplete() string {
	var s strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#4A9B4A")).
		Render("✓ Render Complete!")

	s.WriteString(title)
	s.WriteString("\n\n")

	s.WriteString(fmt.Sprintf("  Output:      %s\n", m.complete.OutputFile))
	s.WriteString(fmt.Sprintf("  Frames:      %d\n", m.complete.TotalFrames))
	s.WriteString(fmt.Sprintf("  Tiles:       %d replaced\n", m.complete.TilesReplaced))
	if m.complete.FileSize > 0 {
		s.WriteString(fmt.Sprintf("  File Size:   %s\n", formatBytes(m.complete.FileSize)))
	}
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Rendered in %.2fs", m.complete.TotalTime.Seconds()))

	return m.frame(s.String(), "#4A9B4A") + "\n"
}

func (m *renderModel) frame(content, borderColor string) string {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(1, 2).
		Render(content)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
