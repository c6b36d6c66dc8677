// Package dashboard renders a kernel tick's published stats to a terminal:
// memory utilization, running access-rate counters, and a per-process
// table, redrawn in place each tick.
package dashboard

import (
	"fmt"
	"io"
	"text/tabwriter"

	"pvsim/internal/kernel"
	"pvsim/internal/mmu"
	"pvsim/internal/proc"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// maxProcessRows bounds how many processes the table prints; the rest are
// summarized in a trailing "... and N more" line.
const maxProcessRows = 20

// clearScreen is the ANSI sequence to home the cursor and clear the screen,
// giving the illusion of a live-updating panel rather than a scrolling log.
const clearScreen = "\x1b[H\x1b[2J"

// Renderer writes successive ticks' stats to an output stream, formatting
// numbers per a fixed locale.
type Renderer struct {
	w   io.Writer
	p   *message.Printer
	tty bool
}

// New builds a Renderer writing to w. tty controls whether each Render call
// clears the screen first; set it false when w is not an interactive
// terminal (a log file, a test buffer) to avoid littering escape codes.
func New(w io.Writer, tty bool) *Renderer {
	return &Renderer{w: w, p: message.NewPrinter(language.English), tty: tty}
}

// Render implements kernel.Publish, printing one tick's snapshot.
func (r *Renderer) Render(mem mmu.Stats, acc kernel.AccessStats, procs []proc.Stats) {
	if r.tty {
		fmt.Fprint(r.w, clearScreen)
	}

	r.p.Fprintf(r.w, "memory: %d/%d frames busy (%.2f%% load)\n", mem.Busy, mem.Total, mem.LoadPercent)
	r.p.Fprintf(r.w, "access: %d total, %d faults (%s), %d replaced (%s), %d writeback\n",
		acc.Total, acc.Faults, percent(acc.FaultRatePercent()),
		acc.Replaced, percent(acc.ReplacementRatePercent()), acc.Writes)
	fmt.Fprintln(r.w)

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PID\tPAGES\tWS\tWS%\tCOUNTER\tTTL")
	shown := procs
	if len(shown) > maxProcessRows {
		shown = shown[:maxProcessRows]
	}
	for _, s := range shown {
		r.p.Fprintf(tw, "%d\t%d\t%d\t%.1f%%\t%d\t%d\n",
			s.Pid, s.PageTableSize, s.WorkingSetSize, s.WorkingSetRatioPercent, s.Counter, s.TTL)
	}
	tw.Flush()
	if rest := len(procs) - len(shown); rest > 0 {
		fmt.Fprintf(r.w, "... and %d more\n", rest)
	}
}

// percent formats a percentage that may legitimately be NaN (no accesses,
// or no faults, yet) as "n/a" rather than the Go default "NaN".
func percent(v float64) string {
	if v != v {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v)
}
