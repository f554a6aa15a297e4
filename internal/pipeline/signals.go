package pipeline

import (
	"fmt"
	"io"
	"strings"
)

// SignalPrefix starts every build signal line on stdout.
const SignalPrefix = "ayamsys:"

// Signals tell an enclosing build what to watch and what to link.
type Signals struct {
	RerunIfChanged []string
	LinkLibs       []string // kind=name, e.g. static=ayan
	LinkSearch     []string // kind=dir, e.g. native=/out
}

// Empty reports whether there is nothing to announce.
func (s Signals) Empty() bool {
	return len(s.RerunIfChanged) == 0 && len(s.LinkLibs) == 0 && len(s.LinkSearch) == 0
}

// Lines renders the signals in emission order.
func (s Signals) Lines() []string {
	var out []string
	for _, p := range s.RerunIfChanged {
		out = append(out, SignalPrefix+"rerun-if-changed="+p)
	}
	for _, l := range s.LinkLibs {
		out = append(out, SignalPrefix+"link-lib="+l)
	}
	for _, d := range s.LinkSearch {
		out = append(out, SignalPrefix+"link-search="+d)
	}
	return out
}

// Emit writes one signal per line to w.
func (s Signals) Emit(w io.Writer) error {
	lines := s.Lines()
	if len(lines) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("emit build signals: %w", err)
	}
	return nil
}
