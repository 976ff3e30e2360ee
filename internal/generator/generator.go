// Package generator builds stimulus pools and answer keys for PASAT sessions.
package generator

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/tuipasat/internal/psat"
)

// Digits returns the integers in [lo, hi].
func Digits(lo, hi int) ([]int, error) {
	if lo > hi {
		return nil, fmt.Errorf("invalid stimulus range %d..%d", lo, hi)
	}
	pool := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		pool = append(pool, v)
	}
	return pool, nil
}

// LoadPool reads one integer stimulus per line. Blank lines and lines starting
// with '#' are skipped.
func LoadPool(path string) ([]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only pool file.
			_ = cerr
		}
	}()

	var pool []int
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %q is not an integer", lineNo, line)
		}
		pool = append(pool, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("stimulus pool is empty")
	}
	return pool, nil
}

// SumKey expects the sum of the two most recent stimuli.
func SumKey(presented []int) (int, bool) {
	if len(presented) < 2 {
		return 0, false
	}
	return presented[0] + presented[1], true
}

// ClockSeed seeds the session RNG from the wall clock.
func ClockSeed() psat.Seed {
	now := uint64(time.Now().UnixNano())
	return psat.NewSeed(now, now>>32|now<<32)
}

// FixedSeed returns a reproducible seed.
func FixedSeed(seed uint64) psat.Seed {
	return psat.NewSeed(seed, seed^0x9e3779b97f4a7c15)
}
