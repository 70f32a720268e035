package tui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/goodcast/goodapi/pkg/domain"
)

// EventPrinter writes one line per live event and keeps per-name totals.
type EventPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	profile termenv.Profile
	counts  map[string]int
	total   int
}

// NewEventPrinter writes to out. Colors are only used when out is a terminal.
func NewEventPrinter(out io.Writer) *EventPrinter {
	profile := termenv.Ascii
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		profile = termenv.NewOutput(f).ColorProfile()
	}
	return NewEventPrinterWithProfile(out, profile)
}

// NewEventPrinterWithProfile writes to out with a fixed color profile.
func NewEventPrinterWithProfile(out io.Writer, profile termenv.Profile) *EventPrinter {
	return &EventPrinter{
		out:     out,
		profile: profile,
		counts:  make(map[string]int),
	}
}

// Print writes ev as a single line.
func (p *EventPrinter) Print(ev domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.counts[ev.Name]++
	p.total++
	fmt.Fprintln(p.out, p.format(ev))
}

func (p *EventPrinter) format(ev domain.Event) string {
	var b strings.Builder
	b.WriteString(p.profile.String(ev.Created.Local().Format("15:04:05")).Faint().String())
	b.WriteByte(' ')
	b.WriteString(p.profile.String(ev.Name).Foreground(p.profile.Color("#34d399")).Bold().String())

	if v := domain.Deref(ev.Platform); v != "" {
		b.WriteString(" [" + v + "]")
	}
	if v := domain.Deref(ev.URL); v != "" {
		b.WriteString(" " + v)
	}
	if v := domain.Deref(ev.Actor); v != "" {
		b.WriteString(" " + p.profile.String("by "+v).Foreground(p.profile.Color("#60a5fa")).String())
	}
	where := strings.Trim(strings.Join([]string{domain.Deref(ev.City), domain.Deref(ev.Country)}, ", "), ", ")
	if where != "" {
		b.WriteString(" (" + where + ")")
	}
	return b.String()
}

// Summary returns a markdown table of event totals, most frequent first.
func (p *EventPrinter) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.counts))
	for name := range p.counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if p.counts[names[i]] != p.counts[names[j]] {
			return p.counts[names[i]] > p.counts[names[j]]
		}
		return names[i] < names[j]
	})

	var b strings.Builder
	fmt.Fprintf(&b, "## %d events\n\n", p.total)
	b.WriteString("| Event | Count |\n|---|---:|\n")
	for _, name := range names {
		fmt.Fprintf(&b, "| %s | %d |\n", name, p.counts[name])
	}
	return b.String()
}
