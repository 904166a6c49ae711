package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// parseWords parses comma-separated signed decimal integers. Whitespace
// around each value is ignored, as is a trailing comma.
func parseWords(text string) ([]int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	fields := strings.Split(text, ",")
	if strings.TrimSpace(fields[len(fields)-1]) == "" {
		fields = fields[:len(fields)-1]
	}
	ws := make([]int64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %v", i, err)
		}
		ws[i] = v
	}
	return ws, nil
}

func loadProgram(file string) ([]int64, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	ws, err := parseWords(string(b))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %v", file, err)
	}
	if len(ws) == 0 {
		return nil, fmt.Errorf("parsing %s: empty program", file)
	}
	return ws, nil
}

// parsePatches parses a comma-separated list of addr=value pairs.
func parsePatches(text string) ([]Patch, error) {
	var ps []Patch
	for _, f := range strings.Split(text, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		a, v, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid patch %q, want addr=value", f)
		}
		addr, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid patch %q: %v", f, err)
		}
		val, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid patch %q: %v", f, err)
		}
		ps = append(ps, Patch{Addr: addr, Value: val})
	}
	return ps, nil
}
