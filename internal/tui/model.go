// Package tui provides the Bubble Tea PASAT interface. It drives the psat
// engine and realizes its triggers as timers and sound cues.
package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/verte-zerg/tuipasat/internal/model"
	"github.com/verte-zerg/tuipasat/internal/psat"
	statsPkg "github.com/verte-zerg/tuipasat/internal/stats"
)

// Session is the engine model used by the interface.
type Session = psat.Model[int, int]

// SessionStore persists finished sessions and reads past ones for the footer.
type SessionStore interface {
	InsertSession(ctx context.Context, result model.SessionResult) (int64, error)
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
}

// Sounder plays a cue for a stimulus.
type Sounder interface {
	Play(stimulus int) error
}

type inputMode int

const (
	modeIdle inputMode = iota
	modeAnswer
	modeEditISI
	modeEditDuration
)

// actionMsg redelivers an action requested by a DelayedAction trigger.
type actionMsg struct {
	action psat.Action[int]
}

type soundErrMsg struct {
	err error
}

// Model implements the Bubble Tea PASAT UI.
type Model struct {
	session Session
	store   SessionStore
	player  Sounder
	now     func() time.Time

	width  int
	height int

	mode   inputMode
	input  textinput.Model
	notice string

	runID     string
	startedAt time.Time
	startISI  int
	trials    []model.Trial

	lastResult *model.SessionResult
	allRight   int
	allTotal   int
}

var (
	stimulusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(1, 4).
			Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#C89A3A"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	rightStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	missedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	settingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
)

// NewModel constructs a PASAT TUI model around an idle engine session.
func NewModel(session Session, store SessionStore, player Sounder) *Model {
	input := textinput.New()
	input.CharLimit = 6
	m := &Model{
		session: session,
		store:   store,
		player:  player,
		now:     time.Now,
		input:   input,
	}
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case actionMsg:
		return m, m.dispatch(msg.action)
	case soundErrMsg:
		m.notice = msg.err.Error()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			if m.session.Running() {
				m.dispatch(psat.ManualStop[int]())
			}
			return m, tea.Quit
		}
		switch m.mode {
		case modeAnswer:
			return m, m.handleAnswerKey(msg)
		case modeEditISI, modeEditDuration:
			return m, m.handleEditKey(msg)
		default:
			return m.handleIdleKey(msg)
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.mode {
	case modeAnswer:
		content = m.renderRunning()
	case modeEditISI, modeEditDuration:
		content = m.renderEdit()
	default:
		content = m.renderIdle()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) handleIdleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter", "s":
		return m, m.dispatch(psat.Start[int]())
	case "i":
		return m, m.beginEdit(modeEditISI, "ISI (ms): ", m.session.ISI())
	case "d":
		return m, m.beginEdit(modeEditDuration, "Duration (min): ", m.session.Duration())
	default:
		return m, nil
	}
}

func (m *Model) beginEdit(mode inputMode, prompt string, current int) tea.Cmd {
	m.mode = mode
	m.notice = ""
	m.input.Reset()
	m.input.Prompt = prompt
	m.input.Placeholder = strconv.Itoa(current)
	return m.input.Focus()
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.endInput(modeIdle)
		return nil
	case tea.KeyEnter:
		raw := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.endInput(modeIdle)
		if raw == "" {
			return nil
		}
		if v, err := strconv.Atoi(raw); err == nil && v <= 0 {
			m.notice = fmt.Sprintf("%s unchanged: %d must be greater than zero", editLabel(mode), v)
			return nil
		}
		var cmd tea.Cmd
		if mode == modeEditISI {
			before := m.session.ISI()
			cmd = m.dispatch(psat.UpdateIsi[int](raw))
			if m.session.ISI() == before && raw != strconv.Itoa(before) {
				m.notice = fmt.Sprintf("ISI unchanged: %q is not a whole number", raw)
			}
		} else {
			before := m.session.Duration()
			cmd = m.dispatch(psat.UpdateDuration[int](raw))
			if m.session.Duration() == before && raw != strconv.Itoa(before) {
				m.notice = fmt.Sprintf("Duration unchanged: %q is not a whole number", raw)
			}
		}
		return cmd
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}
}

func editLabel(mode inputMode) string {
	if mode == modeEditISI {
		return "ISI"
	}
	return "Duration"
}

func (m *Model) handleAnswerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		return m.dispatch(psat.ManualStop[int]())
	case tea.KeyEnter:
		raw := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if raw == "" {
			return nil
		}
		answer, err := strconv.Atoi(raw)
		if err != nil {
			m.notice = fmt.Sprintf("%q is not a number", raw)
			return nil
		}
		m.notice = ""
		return m.dispatch(psat.UserAnswers(answer))
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}
}

func (m *Model) endInput(mode inputMode) {
	m.mode = mode
	m.input.Blur()
	m.input.Reset()
}

// dispatch feeds one action through the engine and turns the resulting
// triggers into commands.
func (m *Model) dispatch(action psat.Action[int]) tea.Cmd {
	now := m.now()
	prev := m.session
	next, triggers := psat.Update(now, action, prev)
	m.session = next

	if next.OutcomeCount() > prev.OutcomeCount() && next.Running() {
		stimulus, _ := prev.Current()
		outcome, _ := next.LastOutcome()
		m.trials = append(m.trials, model.Trial{
			Ordinal:  len(m.trials) + 1,
			Stimulus: stimulus,
			Outcome:  outcome.String(),
			ISIMs:    next.ISI(),
		})
	}

	switch {
	case !prev.Running() && next.Running():
		m.beginSession(now)
	case prev.Running() && !next.Running():
		m.finishSession(now, stopReason(action))
	}
	return m.realize(triggers)
}

func (m *Model) realize(triggers []psat.Trigger[int, int]) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(triggers))
	for _, t := range triggers {
		switch t.Kind {
		case psat.KindDelayedAction:
			cmds = append(cmds, delayed(t.Delay, t.Action))
		case psat.KindPlaySound:
			if t.HasStimulus {
				cmds = append(cmds, m.playCmd(t.Stimulus))
			}
		default:
			panic(fmt.Sprintf("tui: unhandled trigger kind %s", t.Kind))
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func delayed(delay time.Duration, action psat.Action[int]) tea.Cmd {
	if delay < 0 {
		delay = 0
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return actionMsg{action: action}
	})
}

func (m *Model) playCmd(stimulus int) tea.Cmd {
	if m.player == nil {
		return nil
	}
	player := m.player
	return func() tea.Msg {
		if err := player.Play(stimulus); err != nil {
			return soundErrMsg{err: err}
		}
		return nil
	}
}

func stopReason(action psat.Action[int]) string {
	if action.Kind == psat.KindAutomaticStop {
		return "automatic"
	}
	return "manual"
}

func (m *Model) beginSession(now time.Time) {
	m.runID = uuid.NewString()
	m.startedAt = now
	m.startISI = m.session.ISI()
	m.trials = nil
	m.notice = ""
	m.mode = modeAnswer
	m.input.Reset()
	m.input.Prompt = "> "
	m.input.Placeholder = ""
	m.input.Focus()
}

func (m *Model) finishSession(now time.Time, stoppedBy string) {
	m.endInput(modeIdle)
	summary := psat.Summarize(m.session.Outcomes())
	minISI := m.startISI
	for _, tr := range m.trials {
		minISI = min(minISI, tr.ISIMs)
	}
	result := model.SessionResult{
		RunID:       m.runID,
		StartedAt:   m.startedAt,
		EndedAt:     now,
		DurationMin: m.session.Duration(),
		StartISIMs:  m.startISI,
		FinalISIMs:  m.session.ISI(),
		MinISIMs:    minISI,
		Right:       summary.Right,
		Wrong:       summary.Wrong,
		Missed:      summary.Missed,
		StoppedBy:   stoppedBy,
		Trials:      m.trials,
	}
	m.lastResult = &result
	if summary.Total == 0 {
		return
	}
	m.allRight += summary.Right
	m.allTotal += summary.Total
	if m.store == nil {
		return
	}
	if _, err := m.store.InsertSession(context.Background(), result); err != nil {
		logErrf("failed to save session: %v\n", err)
		m.notice = "failed to save session"
	}
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	sessions, err := m.store.ListSessions(context.Background(), model.StatsConfig{})
	if err != nil {
		logErrf("failed to load session stats: %v\n", err)
		return
	}
	for _, s := range sessions {
		m.allRight += s.Right
		m.allTotal += s.Total()
	}
}

func (m *Model) renderIdle() string {
	lines := []string{
		titleStyle.Render("Paced Serial Addition"),
		"",
		settingStyle.Render(fmt.Sprintf("ISI %d ms · Duration %d min", m.session.ISI(), m.session.Duration())),
	}
	if r := m.lastResult; r != nil {
		acc, _ := statsPkg.SessionMetrics(r.Right, r.Wrong, r.Missed)
		lines = append(lines, "", fmt.Sprintf("Last session (%s stop): %d right · %d wrong · %d missed · %.1f%%",
			r.StoppedBy, r.Right, r.Wrong, r.Missed, acc*100))
		lines = append(lines, fmt.Sprintf("ISI %d → %d ms", r.StartISIMs, r.FinalISIMs))
	}
	if m.notice != "" {
		lines = append(lines, "", noticeStyle.Render(m.notice))
	}
	lines = append(lines, "", footerStyle.Render("enter: start  i: ISI  d: duration  q: quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderEdit() string {
	lines := []string{m.input.View()}
	lines = append(lines, "", footerStyle.Render("enter: apply  esc: cancel"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderRunning() string {
	stimulus := "·"
	if v, ok := m.session.Current(); ok {
		stimulus = strconv.Itoa(v)
	}
	lines := []string{
		stimulusStyle.Render(stimulus),
		"",
		m.input.View(),
	}
	if m.notice != "" {
		lines = append(lines, noticeStyle.Render(m.notice))
	}
	lines = append(lines, "", footerStyle.Render("type the sum of the last two numbers, enter: answer  esc: stop"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	if !m.session.Running() {
		if m.allTotal == 0 {
			return ""
		}
		return footerStyle.Render(fmt.Sprintf("All-time %.1f%% over %d trials", float64(m.allRight)/float64(m.allTotal)*100, m.allTotal))
	}
	summary := psat.Summarize(m.session.Outcomes())
	segments := []string{
		fmt.Sprintf("Session %d", m.session.SessionID()),
		fmt.Sprintf("ISI %d ms", m.session.ISI()),
		fmt.Sprintf("%d right · %d wrong · %d missed", summary.Right, summary.Wrong, summary.Missed),
	}
	if last, ok := m.session.LastOutcome(); ok {
		segments = append(segments, outcomeStyle(last).Render(last.String()))
	}
	remaining := time.Duration(m.session.Duration())*time.Minute - m.now().Sub(m.startedAt)
	if remaining > 0 {
		segments = append(segments, fmt.Sprintf("%s left", remaining.Truncate(time.Second)))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func outcomeStyle(o psat.Outcome) lipgloss.Style {
	switch o {
	case psat.Right:
		return rightStyle
	case psat.Wrong:
		return wrongStyle
	default:
		return missedStyle
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
