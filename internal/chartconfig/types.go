package chartconfig

import "time"

// DatasetDefinition describes one plotted line.
//
// Only SensorCode is interpreted here: "<category>_<field>" selects a
// category series (for example "electrical_demand"), a single word selects a
// top-level series ("temperature"). The remaining attributes are passed to
// the renderer untouched. Data is filled in during assembly.
type DatasetDefinition struct {
	SensorCode      string    `json:"sensorcode"`
	Label           string    `json:"label"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
	YAxisID         string    `json:"yAxisID,omitempty"`
	Hidden          bool      `json:"hidden"`
	Fill            bool      `json:"fill"`
	Order           int       `json:"order"`
	Data            []float64 `json:"data"`
}

// AxisDefinition describes one y-axis.
type AxisDefinition struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Position   string     `json:"position"`
	Display    bool       `json:"display"`
	ScaleLabel ScaleLabel `json:"scaleLabel"`
}

// ScaleLabel is an axis title.
type ScaleLabel struct {
	Display     bool   `json:"display"`
	LabelString string `json:"labelString"`
}

// ChartConfiguration is a renderer-agnostic line chart for one building.
//
// Instances returned by the Assembler are shared until they expire and must
// not be modified.
type ChartConfiguration struct {
	BuildingID  int          `json:"buildingid"`
	Type        string       `json:"type"`
	Data        ChartData    `json:"data"`
	Options     ChartOptions `json:"options"`
	GeneratedAt time.Time    `json:"generatedAt"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

// ChartData holds the x-axis labels (sample timestamps, ms) and datasets.
type ChartData struct {
	Labels   []int64             `json:"labels"`
	Datasets []DatasetDefinition `json:"datasets"`
}

// ChartOptions holds layout and scale options.
type ChartOptions struct {
	MaintainAspectRatio bool    `json:"maintainAspectRatio"`
	Layout              Layout  `json:"layout"`
	LineHeight          float64 `json:"lineHeight"`
	Responsive          bool    `json:"responsive"`
	Hover               Hover   `json:"hover"`
	Legend              Legend  `json:"legend"`
	Title               Title   `json:"title"`
	Scales              Scales  `json:"scales"`
}

// Layout holds chart padding.
type Layout struct {
	Padding Padding `json:"padding"`
}

// Padding in pixels.
type Padding struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Hover controls point hit-testing.
type Hover struct {
	Mode      string `json:"mode"`
	Intersect bool   `json:"intersect"`
}

// Legend controls the built-in legend.
type Legend struct {
	Display bool `json:"display"`
}

// Title controls the chart title.
type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// Scales holds the chart axes.
type Scales struct {
	YAxes []AxisDefinition `json:"yAxes"`
	XAxes []XAxis          `json:"xAxes"`
}

// XAxis is the time axis.
type XAxis struct {
	Ticks XTicks `json:"ticks"`
}

// XTicks limits and formats time-axis ticks. Format is a moment.js style
// layout for the renderer.
type XTicks struct {
	MaxTicksLimit int    `json:"maxTicksLimit"`
	AutoSkip      bool   `json:"autoSkip"`
	Format        string `json:"format"`
}

// newTemplate returns an empty configuration with the fixed layout options.
func newTemplate(buildingID int) *ChartConfiguration {
	return &ChartConfiguration{
		BuildingID: buildingID,
		Type:       "line",
		Data: ChartData{
			Labels:   []int64{},
			Datasets: []DatasetDefinition{},
		},
		Options: ChartOptions{
			MaintainAspectRatio: false,
			Layout: Layout{
				Padding: Padding{Left: 50, Right: 50, Top: 20, Bottom: 20},
			},
			LineHeight: 1,
			Responsive: true,
			Hover:      Hover{Mode: "nearest", Intersect: true},
			Legend:     Legend{Display: false},
			Title:      Title{Display: false, Text: "Default"},
			Scales: Scales{
				YAxes: []AxisDefinition{},
				XAxes: []XAxis{{
					Ticks: XTicks{MaxTicksLimit: 10, AutoSkip: true, Format: "ddd h:mm a"},
				}},
			},
		},
	}
}
