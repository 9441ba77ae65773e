package planprint_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nectardb/nectar/physical"
	"github.com/nectardb/nectar/planprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextRendersOperatorKindAndColumns(t *testing.T) {
	root := physical.NewDummyScan()
	text := planprint.Text(root)
	assert.Contains(t, text, "DummyScan")
	assert.Contains(t, text, "_dummy")
}

func TestTextNestsChildrenByIndentation(t *testing.T) {
	scan := physical.NewDummyScan()
	limit := physical.NewLimit(scan, 5)
	text := planprint.Text(limit)
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 2, "expected at least 2 lines, got %q", text)
	assert.False(t, strings.HasPrefix(lines[0], " "), "root line should not be indented: %q", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "  "), "child line should be indented: %q", lines[1])
}

func TestJSONRoundTripsKindAndChildren(t *testing.T) {
	scan := physical.NewDummyScan()
	limit := physical.NewLimit(scan, 5)
	out, err := planprint.JSON(limit)
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Contains(t, parsed["kind"].(string), "Limit")
	children, ok := parsed["children"].([]interface{})
	require.True(t, ok)
	require.Len(t, children, 1)
	child := children[0].(map[string]interface{})
	assert.Contains(t, child["kind"].(string), "DummyScan")
}

func TestExplainReturnsBothForms(t *testing.T) {
	root := physical.NewDummyScan()
	text, jsonText, err := planprint.Explain(root)
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.NotEmpty(t, jsonText)
}

func TestTextIncludesStatsTableWhenInstrumented(t *testing.T) {
	inst := physical.Instrument(physical.NewDummyScan(), "DummyScan")
	text := planprint.Text(inst)
	assert.Contains(t, text, "Operator")
	assert.Contains(t, text, "Rows")
}
