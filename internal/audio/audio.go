// Package audio plays stimulus cues requested by the session engine.
package audio

import (
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// Mode selects how a cue is produced.
type Mode string

// Supported cue modes.
const (
	ModeBell    Mode = "bell"
	ModeOff     Mode = "off"
	ModeCommand Mode = "command"
)

const stimulusPlaceholder = "{}"

// ParseMode validates a mode name from flags or config.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeBell:
		return ModeBell, nil
	case ModeOff:
		return ModeOff, nil
	case ModeCommand:
		return ModeCommand, nil
	default:
		return "", fmt.Errorf("unknown sound mode %q (want bell, off or command)", s)
	}
}

// Player realizes PlaySound triggers.
type Player struct {
	mode    Mode
	out     io.Writer
	command []string
	run     func(name string, args ...string) error
}

// New returns a Player. command is only used in ModeCommand; "{}" in it is
// replaced by the stimulus, otherwise the stimulus is appended as last argument.
func New(mode Mode, out io.Writer, command string) (*Player, error) {
	p := &Player{mode: mode, out: out, run: runCommand}
	if mode == ModeCommand {
		p.command = strings.Fields(command)
		if len(p.command) == 0 {
			return nil, fmt.Errorf("sound command is empty")
		}
	}
	return p, nil
}

// Play cues the stimulus.
func (p *Player) Play(stimulus int) error {
	switch p.mode {
	case ModeOff:
		return nil
	case ModeBell:
		if _, err := io.WriteString(p.out, "\a"); err != nil {
			return fmt.Errorf("failed to ring bell: %w", err)
		}
		return nil
	case ModeCommand:
		args := p.commandArgs(stimulus)
		if err := p.run(args[0], args[1:]...); err != nil {
			return fmt.Errorf("failed to run sound command: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown sound mode %q", p.mode)
	}
}

func (p *Player) commandArgs(stimulus int) []string {
	value := strconv.Itoa(stimulus)
	args := make([]string, 0, len(p.command)+1)
	replaced := false
	for _, part := range p.command {
		if strings.Contains(part, stimulusPlaceholder) {
			part = strings.ReplaceAll(part, stimulusPlaceholder, value)
			replaced = true
		}
		args = append(args, part)
	}
	if !replaced {
		args = append(args, value)
	}
	return args
}

func runCommand(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}
