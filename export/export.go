package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/attunehq/vernier/benchmark"
)

// Format identifies one export syntax.
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	AsciiDoc Format = "asciidoc"
)

// Metadata identifies the producing tool in exports that carry provenance.
type Metadata struct {
	Tool    string
	Version string
}

type target struct {
	format Format
	path   string
}

// Manager renders a session report into every requested target file. Targets
// are created up front so bad paths fail before anything runs, and each file
// is rewritten whole after every unit so it holds a valid document at all
// times, even if the session dies halfway.
type Manager struct {
	meta    Metadata
	targets []target
}

func NewManager(meta Metadata) *Manager {
	return &Manager{meta: meta}
}

// Add registers an export target. An empty path is ignored so flag values can
// be passed through unconditionally.
func (m *Manager) Add(format Format, path string) {
	if path == "" {
		return
	}
	m.targets = append(m.targets, target{format: format, path: path})
}

// Empty reports whether no target is registered.
func (m *Manager) Empty() bool { return len(m.targets) == 0 }

// Validate creates every target file before the session starts, so an
// unwritable path surfaces as a configuration error instead of lost results.
func (m *Manager) Validate() error {
	for _, t := range m.targets {
		if dir := filepath.Dir(t.path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return &benchmark.ConfigError{Msg: fmt.Sprintf("cannot create export directory for %q: %v", t.path, err)}
			}
		}
		f, err := os.Create(t.path)
		if err != nil {
			return &benchmark.ConfigError{Msg: fmt.Sprintf("cannot create export file %q: %v", t.path, err)}
		}
		f.Close()
	}
	return nil
}

// Flush rewrites every target with the report's current contents.
func (m *Manager) Flush(rep *benchmark.Report) error {
	for _, t := range m.targets {
		data, err := m.render(t.format, rep)
		if err != nil {
			return fmt.Errorf("rendering %s export: %w", t.format, err)
		}
		if err := os.WriteFile(t.path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", t.path, err)
		}
	}
	return nil
}

func (m *Manager) render(f Format, rep *benchmark.Report) ([]byte, error) {
	switch f {
	case JSON:
		return renderJSON(m.meta, rep)
	case CSV:
		return renderCSV(rep)
	case Markdown:
		return renderMarkdown(rep), nil
	case AsciiDoc:
		return renderAsciiDoc(rep), nil
	}
	return nil, fmt.Errorf("unknown export format %q", f)
}

// relativeFactors indexes the ranking by result once the comparison exists.
func relativeFactors(rep *benchmark.Report) map[*benchmark.Result]benchmark.RelativeSpeed {
	rel := make(map[*benchmark.Result]benchmark.RelativeSpeed)
	if rep.Comparison == nil {
		return rel
	}
	for _, rs := range rep.Comparison.Ranked {
		rel[rs.Result] = rs
	}
	return rel
}

// parameterNames collects the union of parameter names across all units,
// sorted for stable column order.
func parameterNames(rep *benchmark.Report) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range rep.Results {
		for name := range r.Unit.Params {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func completedCount(rep *benchmark.Report) int {
	n := 0
	for _, r := range rep.Results {
		if !r.Failed && r.Stats.N > 0 {
			n++
		}
	}
	return n
}
