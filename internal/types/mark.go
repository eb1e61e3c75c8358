package types

import (
	"time"

	"github.com/moznion/go-optional"
)

type MarkShape string

const (
	MarkShapeCircle   MarkShape = "circle"
	MarkShapeTriangle MarkShape = "triangle"
)

type MarkColor string

const (
	MarkColorRed   MarkColor = "red"
	MarkColorGreen MarkColor = "green"
)

// Mark is a chart annotation placed on one bar.
type Mark struct {
	BarIndex int                     `json:"bar_index" yaml:"bar_index"`
	Time     time.Time               `json:"time" yaml:"time"`
	Price    float64                 `json:"price" yaml:"price"`
	Color    MarkColor               `json:"color" yaml:"color"`
	Shape    MarkShape               `json:"shape" yaml:"shape"`
	Title    string                  `json:"title" yaml:"title"`
	Category string                  `json:"category" yaml:"category"`
	Signal   optional.Option[Signal] `json:"-" yaml:"-"`
}
