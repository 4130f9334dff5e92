// Package sourcemap identifies source positions and routes diagnostics
// without threading file paths and byte offsets through every API in the
// compiler. It owns two related concerns: the Span store (a deduplicated
// interner from (source, byte-range) to a small value handle) and the
// Report/ReportManager pair used to collect and render diagnostics.
package sourcemap

import "fmt"

// Span is an opaque handle into the Store. Spans are small value types; the
// Store owns the actual byte ranges they refer to.
type Span struct {
	id int
}

// IsZero reports whether the span is the uninitialized zero value, used by
// nodes that were synthesized rather than parsed from source text.
func (s Span) IsZero() bool {
	return s.id == 0
}

type sourceRef struct {
	path    string
	content string
}

type rangeKey struct {
	source int
	left   int
	right  int
}

// Store owns registered sources and every Span minted against them.
type Store struct {
	sources []sourceRef
	ranges  []rangeKey
	byRange map[rangeKey]Span
}

// NewStore creates an empty span store.
func NewStore() *Store {
	return &Store{
		// index 0 is reserved so the zero Span is recognizably invalid.
		ranges:  []rangeKey{{}},
		byRange: make(map[rangeKey]Span),
	}
}

// SourceID identifies a source file registered with the store.
type SourceID int

// AddSource registers a source file's path and content, returning a
// SpanMaker scoped to it. Re-registering the same path produces a distinct
// source entry; callers are expected to register each file once.
func (st *Store) AddSource(path, content string) *SpanMaker {
	id := SourceID(len(st.sources))
	st.sources = append(st.sources, sourceRef{path: path, content: content})
	return &SpanMaker{store: st, source: id}
}

// SpanMaker mints spans against one registered source.
type SpanMaker struct {
	store  *Store
	source SourceID
}

// Span returns the (deduplicated) handle for the half-open byte range
// [left, right) within this maker's source.
func (sm *SpanMaker) Span(left, right int) Span {
	key := rangeKey{source: int(sm.source), left: left, right: right}
	if existing, ok := sm.store.byRange[key]; ok {
		return existing
	}
	sm.store.ranges = append(sm.store.ranges, key)
	span := Span{id: len(sm.store.ranges) - 1}
	sm.store.byRange[key] = span
	return span
}

// Left returns the span's starting byte offset.
func (st *Store) Left(s Span) int { return st.ranges[s.id].left }

// Left returns the starting byte offset of a span previously minted by this
// maker, letting a caller holding only a SpanMaker recover it without a
// separate reference to the owning Store.
func (sm *SpanMaker) Left(s Span) int { return sm.store.Left(s) }

// Right returns the span's ending byte offset.
func (st *Store) Right(s Span) int { return st.ranges[s.id].right }

// Range returns (left, right) in one call.
func (st *Store) Range(s Span) (int, int) {
	r := st.ranges[s.id]
	return r.left, r.right
}

// Source returns the registered path the span was minted against.
func (st *Store) Source(s Span) string {
	return st.sources[st.ranges[s.id].source].path
}

// content returns the full text of the file the span belongs to.
func (st *Store) content(s Span) string {
	return st.sources[st.ranges[s.id].source].content
}

// LineCol converts a byte offset within the span's source into a 1-indexed
// (line, column) pair, counting bytes (not runes) to match the spans the
// preprocessor/parser produce.
func (st *Store) LineCol(s Span, offset int) (line, col int) {
	text := st.content(s)
	if offset > len(text) {
		offset = len(text)
	}
	line = 1
	lastNL := -1
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			lastNL = i
		}
	}
	col = offset - lastNL
	return line, col
}

// Severity classifies a Report.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityAdvice
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityAdvice:
		return "advice"
	default:
		return "unknown"
	}
}

// Label attaches a sub-message to a secondary span within a Report.
type Label struct {
	Span    Span
	Message string
}

// Report is a single diagnostic: a severity, a headline message, a primary
// span, zero or more secondary labels, and optional help text.
type Report struct {
	Severity Severity
	Message  string
	Primary  Span
	Labels   []Label
	Help     string
}

// NewReport builds an error-severity report; use the Severity field or the
// Warning/Advice helpers for the other tiers.
func NewReport(primary Span, message string) Report {
	return Report{Severity: SeverityError, Message: message, Primary: primary}
}

// Warning builds a warning-severity report.
func Warning(primary Span, message string) Report {
	return Report{Severity: SeverityWarning, Message: message, Primary: primary}
}

// Advice builds an advice-severity report.
func Advice(primary Span, message string) Report {
	return Report{Severity: SeverityAdvice, Message: message, Primary: primary}
}

// WithLabel appends a secondary label and returns the report for chaining.
func (r Report) WithLabel(span Span, message string) Report {
	r.Labels = append(r.Labels, Label{Span: span, Message: message})
	return r
}

// WithHelp attaches help text and returns the report for chaining.
func (r Report) WithHelp(help string) Report {
	r.Help = help
	return r
}

// ReportManager accumulates reports pushed during a pass until the driver
// consumes (prints and clears) them between passes. Push/consume are not
// atomic with respect to each other by design — see spec.md §4.1.
type ReportManager struct {
	reports []Report
}

// NewReportManager returns an empty manager.
func NewReportManager() *ReportManager {
	return &ReportManager{}
}

// Push appends a report.
func (rm *ReportManager) Push(r Report) {
	rm.reports = append(rm.reports, r)
}

// HasErrors reports whether any pushed report has error severity.
func (rm *ReportManager) HasErrors() bool {
	for _, r := range rm.reports {
		if r.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Len returns the number of reports currently held.
func (rm *ReportManager) Len() int { return len(rm.reports) }

// Take returns all accumulated reports and clears the manager, implementing
// the driver's "consume between passes" contract.
func (rm *ReportManager) Take() []Report {
	out := rm.reports
	rm.reports = nil
	return out
}

// Render formats a single report with a caret pointing at its primary span,
// resolving source text through the Store. Color is applied by the caller
// (the driver decides based on isatty); Render itself never emits ANSI.
func Render(st *Store, r Report) string {
	var out string
	path := st.Source(r.Primary)
	left, _ := st.Range(r.Primary)
	line, col := st.LineCol(r.Primary, left)

	out += fmt.Sprintf("%s: %s\n", r.Severity, r.Message)
	out += fmt.Sprintf("  --> %s:%d:%d\n", path, line, col)

	text := st.content(r.Primary)
	srcLine := lineAt(text, line)
	if srcLine != "" {
		gutter := fmt.Sprintf("%4d | ", line)
		out += gutter + srcLine + "\n"
		out += repeat(" ", len(gutter)+col-1) + "^\n"
	}

	for _, lbl := range r.Labels {
		lblPath := st.Source(lbl.Span)
		lLine, lCol := st.LineCol(lbl.Span, st.Left(lbl.Span))
		out += fmt.Sprintf("  note: %s (%s:%d:%d)\n", lbl.Message, lblPath, lLine, lCol)
	}
	if r.Help != "" {
		out += "  help: " + r.Help + "\n"
	}
	return out
}

func lineAt(text string, line int) string {
	start := 0
	cur := 1
	for i := 0; i < len(text); i++ {
		if cur == line {
			start = i
			break
		}
		if text[i] == '\n' {
			cur++
			start = i + 1
		}
	}
	if cur != line {
		return ""
	}
	end := start
	for end < len(text) && text[end] != '\n' {
		end++
	}
	return text[start:end]
}

func repeat(s string, n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, n*len(s))
	for i := 0; i < n; i++ {
		copy(out[i*len(s):], s)
	}
	return string(out)
}
