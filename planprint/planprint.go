// Package planprint renders a mapped physical.Operator tree as the text
// and JSON plan printouts result.QuerySummary carries (spec.md §6
// "QuerySummary (compiling time, execution time, plan printout in text
// and JSON)"), grounded on
// _examples/SnellerInc-sneller/plan/graphviz.go's recursive Op-tree
// walk-to-string-builder shape and
// _examples/original_source/src/c_api/query_summary.cpp's requirement
// that both a human-readable and a machine-readable plan form exist side
// by side. Text rendering uses github.com/fatih/color for operator-kind
// highlighting and github.com/olekukonko/tablewriter for the per-operator
// stats table; JSON uses the standard encoding/json, since no example in
// the pack carries a richer JSON library and the shape here (nested
// struct literals) needs nothing beyond field tags.
package planprint

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/nectardb/nectar/physical"
)

var kindColor = color.New(color.FgCyan, color.Bold)

// node is the JSON plan shape: one entry per operator, nested by
// Children, carrying the per-operator stats an Instrumented wrapper
// accumulated if the tree was built with Mapper.Instrument set.
type node struct {
	Kind     string  `json:"kind"`
	Columns  []string `json:"columns"`
	Children []node  `json:"children,omitempty"`
	Stats    *stats  `json:"stats,omitempty"`
}

type stats struct {
	Rows          int   `json:"cardinality"`
	ExecutionNs   int64 `json:"executionTimeNs"`
}

func build(op physical.Operator) node {
	n := node{Kind: opKind(op), Columns: op.ColumnNames()}
	if inst, ok := op.(*physical.Instrumented); ok {
		n.Stats = &stats{Rows: inst.Stats.Rows, ExecutionNs: inst.Stats.SelfTimeNs}
	}
	for _, c := range op.Children() {
		n.Children = append(n.Children, build(c))
	}
	return n
}

// opKind reports an Instrumented's wrapped Kind label, or the operator's
// own Go type name otherwise, so Explain reads the same whether or not
// Mapper.Instrument was set.
func opKind(op physical.Operator) string {
	if inst, ok := op.(*physical.Instrumented); ok {
		return inst.Kind
	}
	return fmt.Sprintf("%T", op)
}

// JSON renders root's plan tree as the §6 "plan printout in text and JSON"
// JSON form.
func JSON(root physical.Operator) (string, error) {
	b, err := json.MarshalIndent(build(root), "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Text renders root's plan tree as an indented, colorized outline with a
// trailing per-operator stats table when stats are present (i.e. the
// tree was mapped with Mapper.Instrument set).
func Text(root physical.Operator) string {
	var sb strings.Builder
	var rows [][]string
	writeNode(&sb, &rows, root, 0)
	if len(rows) == 0 {
		return sb.String()
	}
	sb.WriteString("\n")
	table := tablewriter.NewTable(&sb)
	table.Header([]string{"Operator", "Rows", "Self Time"})
	for _, r := range rows {
		table.Append(r)
	}
	table.Render()
	return sb.String()
}

func writeNode(sb *strings.Builder, rows *[][]string, op physical.Operator, depth int) {
	kind := opKind(op)
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(kindColor.Sprint(kind))
	if cols := op.ColumnNames(); len(cols) > 0 {
		sb.WriteString(" [" + strings.Join(cols, ", ") + "]")
	}
	sb.WriteString("\n")
	if inst, ok := op.(*physical.Instrumented); ok {
		*rows = append(*rows, []string{kind, strconv.Itoa(inst.Stats.Rows), durString(inst.Stats.SelfTimeNs)})
	}
	for _, c := range op.Children() {
		writeNode(sb, rows, c, depth+1)
	}
}

func durString(ns int64) string {
	switch {
	case ns >= 1_000_000:
		return fmt.Sprintf("%.2fms", float64(ns)/1_000_000)
	case ns >= 1_000:
		return fmt.Sprintf("%.2fus", float64(ns)/1_000)
	default:
		return fmt.Sprintf("%dns", ns)
	}
}

// Explain renders both forms of root's plan, for a caller (prepare.Execute)
// to attach to a result.QuerySummary.
func Explain(root physical.Operator) (text, jsonText string, err error) {
	jsonText, err = JSON(root)
	if err != nil {
		return "", "", err
	}
	return Text(root), jsonText, nil
}
