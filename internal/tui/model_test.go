package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuipasat/internal/generator"
	"github.com/verte-zerg/tuipasat/internal/model"
	"github.com/verte-zerg/tuipasat/internal/psat"
)

type fakeStore struct {
	saved   []model.SessionResult
	history []model.SessionAggregate
}

func (f *fakeStore) InsertSession(_ context.Context, result model.SessionResult) (int64, error) {
	f.saved = append(f.saved, result)
	return int64(len(f.saved)), nil
}

func (f *fakeStore) ListSessions(context.Context, model.StatsConfig) ([]model.SessionAggregate, error) {
	return f.history, nil
}

type fakePlayer struct {
	played []int
	err    error
}

func (f *fakePlayer) Play(stimulus int) error {
	f.played = append(f.played, stimulus)
	return f.err
}

func newTestTUI(t *testing.T, pool []int) (*Model, *fakeStore) {
	t.Helper()
	session, err := psat.New(psat.Config[int, int]{
		Key:      generator.SumKey,
		Pool:     pool,
		ISI:      1000,
		Duration: 2,
		Seed:     generator.FixedSeed(1),
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	st := &fakeStore{}
	m := NewModel(session, st, &fakePlayer{})
	clock := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return m, st
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func deliver(m *Model, action psat.Action[int]) {
	m.Update(actionMsg{action: action})
}

func TestSessionIsRecordedOnManualStop(t *testing.T) {
	m, st := newTestTUI(t, []int{4})

	press(m, "enter")
	if !m.session.Running() || m.mode != modeAnswer || m.runID == "" {
		t.Fatalf("expected running session, mode=%v run=%q", m.mode, m.runID)
	}

	deliver(m, psat.AnswerTimeout[int](1))
	press(m, "8", "enter")
	if len(m.trials) != 1 || m.trials[0].Outcome != "right" || m.trials[0].Stimulus != 4 {
		t.Fatalf("unexpected trials: %+v", m.trials)
	}

	deliver(m, psat.AnswerTimeout[int](1))
	deliver(m, psat.AnswerTimeout[int](1))
	press(m, "esc")

	if m.session.Running() || m.mode != modeIdle {
		t.Fatalf("expected idle after esc")
	}
	if len(st.saved) != 1 {
		t.Fatalf("expected 1 saved session, got %d", len(st.saved))
	}
	saved := st.saved[0]
	if saved.Right != 1 || saved.Missed != 1 || saved.StoppedBy != "manual" {
		t.Fatalf("unexpected result: %+v", saved)
	}
	if len(saved.Trials) != 2 || saved.Trials[1].Outcome != "missed" {
		t.Fatalf("unexpected trials: %+v", saved.Trials)
	}
	if saved.RunID != m.runID || !saved.EndedAt.After(saved.StartedAt) {
		t.Fatalf("unexpected run metadata: %+v", saved)
	}
}

func TestStaleAutomaticStopIsIgnored(t *testing.T) {
	m, st := newTestTUI(t, []int{4})

	press(m, "enter", "esc", "enter")
	if m.session.SessionID() != 2 {
		t.Fatalf("expected second session, got %d", m.session.SessionID())
	}

	deliver(m, psat.AutomaticStop[int](1))
	if !m.session.Running() {
		t.Fatalf("stale automatic stop ended the session")
	}

	deliver(m, psat.AutomaticStop[int](2))
	if m.session.Running() {
		t.Fatalf("expected automatic stop to end the session")
	}
	if m.lastResult == nil || m.lastResult.StoppedBy != "automatic" {
		t.Fatalf("unexpected last result: %+v", m.lastResult)
	}
	if len(st.saved) != 0 {
		t.Fatalf("sessions without trials should not be saved, got %d", len(st.saved))
	}
}

func TestEditSettings(t *testing.T) {
	m, _ := newTestTUI(t, []int{4})

	press(m, "i", "abc", "enter")
	if m.session.ISI() != 1000 {
		t.Fatalf("expected ISI to stay 1000, got %d", m.session.ISI())
	}
	if !strings.Contains(m.notice, "not a whole number") {
		t.Fatalf("expected notice, got %q", m.notice)
	}

	press(m, "i", "250", "enter")
	if m.session.ISI() != 250 || m.notice != "" {
		t.Fatalf("expected ISI 250 without notice, got %d %q", m.session.ISI(), m.notice)
	}

	press(m, "d", "7", "enter")
	if m.session.Duration() != 7 {
		t.Fatalf("expected duration 7, got %d", m.session.Duration())
	}

	press(m, "d", "9", "esc")
	if m.session.Duration() != 7 || m.mode != modeIdle {
		t.Fatalf("expected esc to cancel the edit")
	}
	if got := len(m.session.Log()); got != 3 {
		t.Fatalf("expected 3 logged settings actions, got %d", got)
	}
}

func TestEditRejectsNonPositiveValues(t *testing.T) {
	m, _ := newTestTUI(t, []int{4})

	press(m, "i", "0", "enter")
	if m.session.ISI() != 1000 {
		t.Fatalf("expected ISI to stay 1000, got %d", m.session.ISI())
	}
	if !strings.Contains(m.notice, "ISI unchanged") || !strings.Contains(m.notice, "greater than zero") {
		t.Fatalf("expected ISI notice, got %q", m.notice)
	}

	press(m, "d", "-3", "enter")
	if m.session.Duration() != 2 {
		t.Fatalf("expected duration to stay 2, got %d", m.session.Duration())
	}
	if !strings.Contains(m.notice, "Duration unchanged") {
		t.Fatalf("expected duration notice, got %q", m.notice)
	}
	if got := len(m.session.Log()); got != 0 {
		t.Fatalf("rejected values must not reach the engine, got %d log entries", got)
	}
	if m.mode != modeIdle {
		t.Fatalf("expected idle mode after rejected edit, got %v", m.mode)
	}
}

func TestNonNumericAnswerIsNotSubmitted(t *testing.T) {
	m, _ := newTestTUI(t, []int{4})
	press(m, "enter")
	logged := len(m.session.Log())

	press(m, "x", "enter")
	if len(m.session.Log()) != logged {
		t.Fatalf("expected no action for a non-numeric answer")
	}
	if m.notice == "" {
		t.Fatalf("expected a notice")
	}
}

func TestDelayedClampsNegativeDelay(t *testing.T) {
	action := psat.AnswerTimeout[int](3)
	msg := delayed(-time.Second, action)()
	got, ok := msg.(actionMsg)
	if !ok || got.action != action {
		t.Fatalf("unexpected message: %#v", msg)
	}
}

func TestPlayCmdReportsErrors(t *testing.T) {
	m, _ := newTestTUI(t, []int{4})
	player := &fakePlayer{err: errors.New("no speaker")}
	m.player = player

	msg := m.playCmd(6)()
	errMsg, ok := msg.(soundErrMsg)
	if !ok || errMsg.err == nil {
		t.Fatalf("expected sound error message, got %#v", msg)
	}
	if len(player.played) != 1 || player.played[0] != 6 {
		t.Fatalf("unexpected plays: %v", player.played)
	}
	m.Update(msg)
	if m.notice != "no speaker" {
		t.Fatalf("expected notice from sound error, got %q", m.notice)
	}
}

func TestRealizeSkipsEmptySound(t *testing.T) {
	m, _ := newTestTUI(t, []int{4})
	if cmd := m.realize([]psat.Trigger[int, int]{psat.PlaySound[int, int](0, false)}); cmd != nil {
		t.Fatalf("expected no command for an empty sound trigger")
	}
	if cmd := m.realize(nil); cmd != nil {
		t.Fatalf("expected no command without triggers")
	}
}

func TestRenderFooterWhileRunning(t *testing.T) {
	m, _ := newTestTUI(t, []int{4})
	press(m, "enter")
	deliver(m, psat.AnswerTimeout[int](1))
	press(m, "1", "enter")

	out := m.renderFooter()
	for _, want := range []string{"Session 1", "ISI 1000 ms", "0 right · 1 wrong · 0 missed", "left"} {
		if !strings.Contains(out, want) {
			t.Fatalf("footer missing %q: %s", want, out)
		}
	}
}

func TestFooterUsesStoredHistory(t *testing.T) {
	session, err := psat.New(psat.Config[int, int]{Key: generator.SumKey, Pool: []int{1}, ISI: 1000, Duration: 1})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	st := &fakeStore{history: []model.SessionAggregate{{Right: 3, Wrong: 1}}}
	m := NewModel(session, st, nil)
	if out := m.renderFooter(); !strings.Contains(out, "75.0% over 4 trials") {
		t.Fatalf("unexpected footer: %s", out)
	}
}
