// Package export writes stored sessions in machine-readable formats.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuipasat/internal/model"
)

// Supported formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Record is one exported session with its trial trace.
type Record struct {
	model.SessionAggregate `yaml:",inline"`
	Trials                 []model.Trial `json:"trials" yaml:"trials"`
}

// ParseFormat normalizes a format name.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use yaml or json)", s)
	}
}

// Records pairs sessions with their trials, keeping session order.
func Records(sessions []model.SessionAggregate, trials map[int64][]model.Trial) []Record {
	records := make([]Record, 0, len(sessions))
	for _, s := range sessions {
		list := trials[s.SessionID]
		if list == nil {
			list = []model.Trial{}
		}
		records = append(records, Record{SessionAggregate: s, Trials: list})
	}
	return records
}

// Write encodes records to w in the given format.
func Write(w io.Writer, format string, records []Record) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(records); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(records); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
