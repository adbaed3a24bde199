// Package stats records timing and counts for a normalization run: how long
// scanning, converting and writing took, and what the conversion found.
package stats

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Phase is a timed stage of a run.
type Phase struct {
	Start time.Time
	End   time.Time
}

// Duration returns the elapsed time, or zero while the phase is open.
func (p Phase) Duration() time.Duration {
	if p.Start.IsZero() || p.End.IsZero() {
		return 0
	}
	return p.End.Sub(p.Start)
}

// Stats holds metrics for one run.
type Stats struct {
	Scan    Phase
	Convert Phase
	Write   Phase

	// Counts
	FilesScanned int
	FilesChanged int
	FilesWritten int
	LinksFound   int
	UniqueHrefs  int
	Definitions  int
	Missing      int
	Ignored      int

	// Memory stats (captured when the run finishes)
	HeapAlloc    uint64
	TotalAlloc   uint64
	NumGC        uint32
	NumGoroutine int
}

// New creates a new Stats instance.
func New() *Stats {
	return &Stats{}
}

// StartScan marks the beginning of the file scanning phase.
func (s *Stats) StartScan() {
	s.Scan.Start = time.Now()
}

// EndScan marks the end of the file scanning phase.
func (s *Stats) EndScan(filesFound int) {
	s.Scan.End = time.Now()
	s.FilesScanned = filesFound
}

// StartConvert marks the beginning of the conversion phase.
func (s *Stats) StartConvert() {
	s.Convert.Start = time.Now()
}

// EndConvert marks the end of the conversion phase.
func (s *Stats) EndConvert(changed, links, uniqueHrefs, definitions, missing int) {
	s.Convert.End = time.Now()
	s.FilesChanged = changed
	s.LinksFound = links
	s.UniqueHrefs = uniqueHrefs
	s.Definitions = definitions
	s.Missing = missing
}

// StartWrite marks the beginning of the phase that writes files back.
func (s *Stats) StartWrite() {
	s.Write.Start = time.Now()
}

// EndWrite marks the end of the write phase.
func (s *Stats) EndWrite(written int) {
	s.Write.End = time.Now()
	s.FilesWritten = written
}

// Finish captures memory statistics. Call it once the run is over.
func (s *Stats) Finish() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	s.HeapAlloc = m.HeapAlloc
	s.TotalAlloc = m.TotalAlloc
	s.NumGC = m.NumGC
	s.NumGoroutine = runtime.NumGoroutine()
}

// TotalDuration returns the time from scan start to the end of the last
// finished phase.
func (s *Stats) TotalDuration() time.Duration {
	end := s.Write.End
	if end.IsZero() {
		end = s.Convert.End
	}
	if end.IsZero() || s.Scan.Start.IsZero() {
		return 0
	}
	return end.Sub(s.Scan.Start)
}

// FilesPerSecond returns the conversion throughput.
func (s *Stats) FilesPerSecond() float64 {
	d := s.Convert.Duration()
	if d == 0 || s.FilesScanned == 0 {
		return 0
	}
	return float64(s.FilesScanned) / d.Seconds()
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%.1fs", int(d.Minutes()), d.Seconds()-float64(int(d.Minutes())*60))
}

// FormatBytes formats bytes for human-readable display.
func FormatBytes(bytes uint64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func writePhase(b *strings.Builder, label string, d, total time.Duration) {
	b.WriteString(fmt.Sprintf("  %-14s %8s", label+":", FormatDuration(d)))
	if total > 0 {
		b.WriteString(fmt.Sprintf("  (%4.1f%%)", float64(d)/float64(total)*100))
	}
	b.WriteString("\n")
}

// String returns a formatted string representation of the stats.
func (s *Stats) String() string {
	var b strings.Builder

	total := s.TotalDuration()

	b.WriteString("\n=== Run Statistics ===\n\n")

	b.WriteString("Timing:\n")
	writePhase(&b, "Scan files", s.Scan.Duration(), total)
	writePhase(&b, "Convert", s.Convert.Duration(), total)
	if !s.Write.Start.IsZero() {
		writePhase(&b, "Write files", s.Write.Duration(), total)
	}
	b.WriteString("  ─────────────────────────\n")
	b.WriteString(fmt.Sprintf("  Total:         %8s\n", FormatDuration(total)))

	b.WriteString("\nDocuments:\n")
	b.WriteString(fmt.Sprintf("  Files scanned:     %5d\n", s.FilesScanned))
	b.WriteString(fmt.Sprintf("  Files changed:     %5d\n", s.FilesChanged))
	if !s.Write.Start.IsZero() {
		b.WriteString(fmt.Sprintf("  Files written:     %5d\n", s.FilesWritten))
	}
	b.WriteString(fmt.Sprintf("  Links found:       %5d\n", s.LinksFound))
	b.WriteString(fmt.Sprintf("  Unique targets:    %5d\n", s.UniqueHrefs))
	b.WriteString(fmt.Sprintf("  Definitions:       %5d\n", s.Definitions))
	if s.Missing > 0 {
		b.WriteString(fmt.Sprintf("  Undefined refs:    %5d\n", s.Missing))
	}
	if s.Ignored > 0 {
		b.WriteString(fmt.Sprintf("  Ignored:           %5d\n", s.Ignored))
	}
	b.WriteString(fmt.Sprintf("  Files/second:    %7.1f\n", s.FilesPerSecond()))

	b.WriteString("\nMemory:\n")
	b.WriteString(fmt.Sprintf("  Heap in use:   %8s\n", FormatBytes(s.HeapAlloc)))
	b.WriteString(fmt.Sprintf("  Total alloc:   %8s\n", FormatBytes(s.TotalAlloc)))
	b.WriteString(fmt.Sprintf("  GC cycles:     %8d\n", s.NumGC))
	b.WriteString(fmt.Sprintf("  Goroutines:    %8d\n", s.NumGoroutine))

	return b.String()
}

// ToJSON returns a map suitable for JSON serialization.
func (s *Stats) ToJSON() map[string]any {
	return map[string]any{
		"timing": map[string]any{
			"scan_ms":    s.Scan.Duration().Milliseconds(),
			"convert_ms": s.Convert.Duration().Milliseconds(),
			"write_ms":   s.Write.Duration().Milliseconds(),
			"total_ms":   s.TotalDuration().Milliseconds(),
		},
		"documents": map[string]any{
			"files_scanned":    s.FilesScanned,
			"files_changed":    s.FilesChanged,
			"files_written":    s.FilesWritten,
			"links_found":      s.LinksFound,
			"unique_hrefs":     s.UniqueHrefs,
			"definitions":      s.Definitions,
			"missing":          s.Missing,
			"ignored":          s.Ignored,
			"files_per_second": s.FilesPerSecond(),
		},
		"memory": map[string]any{
			"heap_bytes":  s.HeapAlloc,
			"total_bytes": s.TotalAlloc,
			"gc_cycles":   s.NumGC,
			"goroutines":  s.NumGoroutine,
		},
	}
}
