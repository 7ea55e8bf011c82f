package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Filter selects journal entries. Zero fields match everything.
type Filter struct {
	Kind    string
	Package string
	Subject string
}

func (f Filter) match(e Entry) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Package != "" && e.Package != f.Package {
		return false
	}
	if f.Subject != "" && e.Subject != f.Subject {
		return false
	}
	return true
}

// Read returns the entries matching filter in journal order.
// A missing file yields no entries. Malformed lines are skipped.
func Read(path string, filter Filter) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var out []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if filter.match(e) {
			out = append(out, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return out, nil
}

// Tail returns the last n entries.
func Tail(path string, n int) ([]Entry, error) {
	all, err := Read(path, Filter{})
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

// FormatText renders entries one per line for terminal output.
func FormatText(entries []Entry) string {
	if len(entries) == 0 {
		return "No entries.\n"
	}
	var b strings.Builder
	for _, e := range entries {
		change := e.Value
		if e.Previous != "" {
			change = e.Previous + " -> " + e.Value
		}
		fmt.Fprintf(&b, "%s  %-5s  user=%d  %-40s  %-32s  %s\n",
			e.Timestamp, e.Kind, e.User, e.Package, e.Subject, change)
	}
	return b.String()
}
