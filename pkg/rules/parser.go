package rules

import (
	"bytes"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"

	"github.com/jmontp/LocoHub-sub005/pkg/errs"
)

const taskHeadingPrefix = "Task:"

// Column is a rule table column.
type Column int

const (
	ColVariable Column = iota
	ColPhaseRange
	ColMin
	ColMax
	ColPattern
	ColTolerance
	ColUnits
	ColNotes
	numColumns
)

var headerAliases = map[string]Column{
	"variable":         ColVariable,
	"phase_range":      ColPhaseRange,
	"phase":            ColPhaseRange,
	"min":              ColMin,
	"max":              ColMax,
	"expected_pattern": ColPattern,
	"pattern":          ColPattern,
	"tolerance":        ColTolerance,
	"units":            ColUnits,
	"unit":             ColUnits,
	"notes":            ColNotes,
}

type parseOptions struct {
	logger *zap.Logger
}

// ParseOption configures Parse.
type ParseOption func(*parseOptions)

// WithLogger logs parse warnings to logger.
func WithLogger(logger *zap.Logger) ParseOption {
	return func(o *parseOptions) {
		o.logger = logger
	}
}

// ParseFile reads and parses a rule document.
func ParseFile(path string, opts ...ParseOption) (*Table, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read rule file %s", path)
	}

	return Parse(src, opts...), nil
}

// Parse builds a Table from a markdown document made of "### Task: <name>" sections,
// each followed by a rule table. Malformed rows are skipped and reported through
// Table.Warnings; they never fail the parse.
func Parse(src []byte, opts ...ParseOption) *Table {
	o := parseOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	p := &docParser{
		src:    src,
		logger: o.logger,
		table:  &Table{rules: map[string][]Rule{}},
		seen:   map[string]int{},
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(src))
	_ = ast.Walk(doc, p.visit)

	return p.table
}

type docParser struct {
	src    []byte
	logger *zap.Logger
	table  *Table
	task   string
	seen   map[string]int
}

func (p *docParser) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	switch node := n.(type) {
	case *ast.Heading:
		p.task = ""
		title := strings.TrimSpace(nodeText(node, p.src))
		if node.Level == 3 && strings.HasPrefix(title, taskHeadingPrefix) {
			p.task = strings.TrimSpace(strings.TrimPrefix(title, taskHeadingPrefix))
			if _, ok := p.table.rules[p.task]; !ok {
				p.table.rules[p.task] = nil
			}
		}

		return ast.WalkSkipChildren, nil
	case *east.Table:
		p.parseTable(node)

		return ast.WalkSkipChildren, nil
	}

	return ast.WalkContinue, nil
}

func (p *docParser) parseTable(tbl *east.Table) {
	if p.task == "" {
		p.warn("", 0, "table outside of a task section ignored")

		return
	}

	p.seen[p.task]++
	if p.seen[p.task] > 1 {
		p.warn("", 0, "additional table in task section")
	}

	columns := positionalColumns()
	row := 0
	for child := tbl.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *east.TableHeader:
			if mapped, ok := headerColumns(p.cells(child)); ok {
				columns = mapped
			}
		case *east.TableRow:
			row++
			rule, err := p.parseRow(p.cells(child), columns, row)
			if err != nil {
				p.warn("", row, err.Error())

				continue
			}
			p.table.rules[p.task] = append(p.table.rules[p.task], rule)
		}
	}
}

func (p *docParser) cells(row ast.Node) []string {
	var cells []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*east.TableCell); ok {
			cells = append(cells, strings.TrimSpace(nodeText(c, p.src)))
		}
	}

	return cells
}

func (p *docParser) parseRow(cells []string, columns map[Column]int, row int) (Rule, error) {
	get := func(c Column) string {
		i, ok := columns[c]
		if !ok || i >= len(cells) {
			return ""
		}

		return cells[i]
	}

	variable := get(ColVariable)
	if variable == "" {
		return Rule{}, errors.Errorf("row %d has no variable", row)
	}

	lo, err := strconv.ParseFloat(get(ColMin), 64)
	if err != nil {
		return Rule{}, errors.Errorf("row %d (%s): invalid min %q", row, variable, get(ColMin))
	}
	hi, err := strconv.ParseFloat(get(ColMax), 64)
	if err != nil {
		return Rule{}, errors.Errorf("row %d (%s): invalid max %q", row, variable, get(ColMax))
	}

	pr, ok := ParsePhaseRange(get(ColPhaseRange))
	if !ok && get(ColPhaseRange) != "" {
		p.warn(variable, row, "malformed phase range "+strconv.Quote(get(ColPhaseRange))+", using 0-100")
	}

	tol, tolType := ParseTolerance(get(ColTolerance))

	rule := Rule{
		Variable:        variable,
		Task:            p.task,
		PhaseRange:      pr,
		Min:             lo,
		Max:             hi,
		ExpectedPattern: get(ColPattern),
		Tolerance:       tol,
		ToleranceType:   tolType,
		Units:           get(ColUnits),
		Notes:           get(ColNotes),
	}

	for _, kw := range splitPatterns(rule.ExpectedPattern) {
		pat, ok := ParsePattern(kw)
		if !ok {
			p.warn(variable, row, "unknown pattern "+strconv.Quote(kw)+" dropped")

			continue
		}
		rule.Patterns = append(rule.Patterns, pat)
	}

	return rule, nil
}

func (p *docParser) warn(variable string, row int, msg string) {
	err := errs.ParseWarning("task %s: %s", p.task, msg)
	p.table.warnings = append(p.table.warnings, err)
	p.logger.Warn("rule table",
		zap.String("task", p.task),
		zap.String("variable", variable),
		zap.Int("row", row),
		zap.Error(err),
	)
}

// ParsePhaseRange parses "a-b" (percent signs and en-dashes accepted). It returns
// FullCycle and false when s is empty or malformed.
func ParsePhaseRange(s string) (PhaseRange, bool) {
	s = strings.NewReplacer("%", "", " ", "", "–", "-", "—", "-").Replace(s)
	if s == "" {
		return FullCycle, false
	}

	// A leading minus would be a negative phase, which never occurs.
	i := strings.Index(s, "-")
	if i <= 0 {
		return FullCycle, false
	}
	start, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return FullCycle, false
	}
	end, err := strconv.ParseFloat(s[i+1:], 64)
	if err != nil || end < start {
		return FullCycle, false
	}

	return PhaseRange{Start: start, End: end}, true
}

// ParseTolerance parses "x%" as a relative tolerance x/100, anything else as an
// absolute value. Unparseable input yields DefaultTolerance.
func ParseTolerance(s string) (float64, ToleranceType) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err == nil {
			return v / 100, ToleranceRelative
		}

		return DefaultTolerance, ToleranceAbsolute
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return DefaultTolerance, ToleranceAbsolute
	}

	return v, ToleranceAbsolute
}

func splitPatterns(s string) []string {
	var out []string
	for _, kw := range strings.Split(s, ",") {
		kw = strings.TrimSpace(kw)
		switch strings.ToLower(kw) {
		case "", "-", "none", "n/a":
			continue
		}
		out = append(out, kw)
	}

	return out
}

func positionalColumns() map[Column]int {
	cols := make(map[Column]int, numColumns)
	for c := ColVariable; c < numColumns; c++ {
		cols[c] = int(c)
	}

	return cols
}

// headerColumns maps header names to column indexes. It fails when the header
// has no variable column, in which case positional order applies.
func headerColumns(header []string) (map[Column]int, bool) {
	cols := map[Column]int{}
	for i, h := range header {
		key := strings.ToLower(strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(h)))
		if c, ok := headerAliases[key]; ok {
			if _, dup := cols[c]; !dup {
				cols[c] = i
			}
		}
	}
	_, ok := cols[ColVariable]

	return cols, ok
}

func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Segment.Value(src))
				if t.SoftLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(t.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)

	return buf.String()
}
