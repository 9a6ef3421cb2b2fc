// Package charts maps pipeline aggregates onto renderer-agnostic chart
// specifications. It is pure glue: every builder degrades to an empty
// placeholder spec when its input aggregate is empty, and none of them can
// fail.
package charts

// Chart type identifiers understood by the frontend renderer.
const (
	TypeBar         = "bar"
	TypePie         = "pie"
	TypeTreemap     = "treemap"
	TypeLine        = "line"
	TypeViolin      = "violin"
	TypeScatter     = "scatter"
	TypeRadar       = "radar"
	TypeStackedArea = "stacked_area"
	TypeGauge       = "gauge"
	TypeSankey      = "sankey"
	TypeHeatmap     = "heatmap"
	TypeBubble      = "bubble"
	TypeCalendar    = "calendar"
)

// Dashboard palette, matching the dark neon theme.
var (
	PaletteQualitative = []string{
		"#8B5CF6", "#F472B6", "#34D399", "#FBBF24", "#60A5FA",
		"#F87171", "#A78BFA", "#2DD4BF", "#FB923C", "#E879F9",
	}
	ColorAccent   = "#8B5CF6"
	ColorLine     = "#F472B6"
	ColorLow      = "#DC2626"
	ColorMid      = "#F59E0B"
	ColorHigh     = "#16A34A"
	ScaleSequential = "viridis"
	ScaleHeat       = "purd"
	ScaleCalendar   = "greens"
)

// EmptyNote is the informational message shown in place of a chart when the
// filtered dataset has no rows.
const EmptyNote = "No posts match the current filters"

// Axis describes one chart axis.
type Axis struct {
	Title  string   `json:"title,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// Point is one (x, y) or (x, y, size) observation; the renderer decides how
// many components it reads based on the chart type.
type Point struct {
	X     string  `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size,omitempty"`
	Label string  `json:"label,omitempty"`
}

// Series is one named data series within a chart.
type Series struct {
	Name   string    `json:"name"`
	Color  string    `json:"color,omitempty"`
	Values []float64 `json:"values,omitempty"`
	Points []Point   `json:"points,omitempty"`
}

// TreeNode is one node of a hierarchical (treemap) spec.
type TreeNode struct {
	Label    string     `json:"label"`
	Value    int        `json:"value"`
	Children []TreeNode `json:"children,omitempty"`
}

// Link is one weighted sankey edge, by node index into Labels.
type Link struct {
	Source int `json:"source"`
	Target int `json:"target"`
	Value  int `json:"value"`
}

// GaugeBand is one colored range segment on the gauge dial.
type GaugeBand struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Color string  `json:"color"`
}

// Spec is a renderer-agnostic chart configuration. Only the fields relevant
// to a spec's Type are populated; Empty marks a placeholder rendering.
type Spec struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Empty    bool     `json:"empty"`
	Note     string   `json:"note,omitempty"`
	Palette  []string `json:"palette,omitempty"`
	Scale    string   `json:"scale,omitempty"`
	XAxis    *Axis    `json:"x_axis,omitempty"`
	YAxis    *Axis    `json:"y_axis,omitempty"`
	Series   []Series `json:"series,omitempty"`

	// Hierarchical charts.
	Tree []TreeNode `json:"tree,omitempty"`

	// Flow charts.
	Labels []string `json:"labels,omitempty"`
	Links  []Link   `json:"links,omitempty"`

	// Matrix charts (heatmap, calendar).
	Matrix [][]int `json:"matrix,omitempty"`

	// Gauge charts.
	Value float64     `json:"value,omitempty"`
	Bands []GaugeBand `json:"bands,omitempty"`
}

func emptySpec(id, chartType, title string) Spec {
	return Spec{ID: id, Type: chartType, Title: title, Empty: true, Note: EmptyNote}
}
