package chartconfig

import (
	"slices"

	"github.com/engineering-on-display/eod-uaa/internal/infrastructure/config"
)

// DefaultAxes are used when no axes are configured: usage and demand on the
// left, temperature on the right.
var DefaultAxes = []AxisDefinition{
	{ID: "usage", Type: "linear", Position: "left", Display: true, ScaleLabel: ScaleLabel{Display: true, LabelString: "Usage"}},
	{ID: "demand", Type: "linear", Position: "left", Display: true, ScaleLabel: ScaleLabel{Display: true, LabelString: "Demand"}},
	{ID: "temperature", Type: "linear", Position: "right", Display: true, ScaleLabel: ScaleLabel{Display: true, LabelString: "Temperature"}},
}

// StaticAxes serves a fixed axis list.
type StaticAxes struct {
	axes []AxisDefinition
}

// NewStaticAxes returns an AxisProvider for axes, or DefaultAxes when empty.
func NewStaticAxes(axes []AxisDefinition) *StaticAxes {
	if len(axes) == 0 {
		axes = DefaultAxes
	}
	return &StaticAxes{axes: slices.Clone(axes)}
}

// AxesFromConfig converts the chart.axes section of config.yaml.
func AxesFromConfig(cfgs []config.AxisConfig) *StaticAxes {
	axes := make([]AxisDefinition, 0, len(cfgs))
	for _, c := range cfgs {
		position := c.Position
		if position == "" {
			position = "left"
		}
		axes = append(axes, AxisDefinition{
			ID:         c.ID,
			Type:       "linear",
			Position:   position,
			Display:    c.Display,
			ScaleLabel: ScaleLabel{Display: c.Label != "", LabelString: c.Label},
		})
	}
	return NewStaticAxes(axes)
}

// AllAxes returns a copy of the axis list.
func (s *StaticAxes) AllAxes() []AxisDefinition {
	return slices.Clone(s.axes)
}
