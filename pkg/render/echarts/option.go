package echarts

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/kinship/pkg/lineage"
)

// Fixed styling and physics constants.
const (
	SeriesType     = "graph"
	LayoutForce    = "force"
	Repulsion      = 1000
	EdgeLength     = 300
	SymbolSize     = 70
	Symbol         = "roundRect"
	NodeScaleRatio = 1.2

	EdgeSymbolStart     = "circle"
	EdgeSymbolEnd       = "arrow"
	EdgeSymbolStartSize = 4
	EdgeSymbolEndSize   = 12

	TooltipBackground = "#2D303A"
	LabelColor        = "#222222"
	LineColor         = "#999999"

	richKey = "a"
)

// TooltipFormatter renders the tooltip for a hovered node.
type TooltipFormatter func(item DataItem) string

// LabelFormatter renders the in-node label.
type LabelFormatter func(item DataItem) string

// Option is the renderer configuration.
type Option struct {
	Tooltip Tooltip  `json:"tooltip"`
	Color   []string `json:"color"`
	Legend  []Legend `json:"legend"`
	Series  []Series `json:"series"`
}

// Tooltip configures hover tooltips.
type Tooltip struct {
	Trigger         string    `json:"trigger"`
	TriggerOn       string    `json:"triggerOn"`
	BackgroundColor string    `json:"backgroundColor"`
	Padding         []int     `json:"padding"`
	Color           string    `json:"color"`
	TextStyle       TextStyle `json:"textStyle"`

	Formatter TooltipFormatter `json:"-"`
}

// TextStyle holds named rich-text styles.
type TextStyle struct {
	Rich map[string]RichStyle `json:"rich"`
}

// RichStyle is one rich-text style block.
type RichStyle struct {
	FontSize   int    `json:"fontSize"`
	Color      string `json:"color"`
	LineHeight int    `json:"lineHeight"`
	Align      string `json:"align"`
	Padding    []int  `json:"padding"`
}

// Legend is a legend component.
type Legend struct {
	Orient string       `json:"orient"`
	Top    int          `json:"top"`
	Left   int          `json:"left"`
	Data   []LegendItem `json:"data"`
}

// LegendItem names one legend entry.
type LegendItem struct {
	Name string `json:"name"`
}

// Series is the graph series.
type Series struct {
	Type           string           `json:"type"`
	Layout         string           `json:"layout"`
	NodeScaleRatio float64          `json:"nodeScaleRatio"`
	Draggable      bool             `json:"draggable"`
	Animation      bool             `json:"animation"`
	Roam           bool             `json:"roam"`
	Symbol         string           `json:"symbol"`
	SymbolSize     int              `json:"symbolSize"`
	Data           []DataItem       `json:"data"`
	Categories     []SeriesCategory `json:"categories"`
	Label          Label            `json:"label"`
	EdgeSymbol     []string         `json:"edgeSymbol"`
	EdgeSymbolSize []int            `json:"edgeSymbolSize"`
	Force          Force            `json:"force"`
	Links          []lineage.Edge   `json:"links"`
	LineStyle      LineStyle        `json:"lineStyle"`
}

// SeriesCategory declares a node category and its steady-state color.
type SeriesCategory struct {
	Name      string    `json:"name"`
	ItemStyle ItemStyle `json:"itemStyle"`
}

// Label configures in-node labels.
type Label struct {
	Show      bool      `json:"show"`
	Position  string    `json:"position"`
	Color     string    `json:"color"`
	TextStyle TextStyle `json:"textStyle"`

	Formatter LabelFormatter `json:"-"`
}

// Force holds force-layout physics parameters.
type Force struct {
	Repulsion  int `json:"repulsion"`
	EdgeLength int `json:"edgeLength"`
}

// LineStyle styles edges.
type LineStyle struct {
	Color string `json:"color"`
}

// ItemStyle styles a node.
type ItemStyle struct {
	Color string `json:"color"`
}

// Emphasis styles a node while highlighted.
type Emphasis struct {
	ItemStyle ItemStyle `json:"itemStyle"`
}

// DataItem is a lineage node decorated for rendering.
type DataItem struct {
	lineage.Node

	Category string   `json:"category"`
	Emphasis Emphasis `json:"emphasis"`

	// Set by Resolve.
	Tooltip *ItemTooltip `json:"tooltip,omitempty"`
	Label   *ItemLabel   `json:"label,omitempty"`
}

// UnmarshalJSON decodes a data item. It is needed because the embedded
// Node's decoder would otherwise drop the rendering fields.
func (d *DataItem) UnmarshalJSON(data []byte) error {
	var extra struct {
		Category string       `json:"category"`
		Emphasis Emphasis     `json:"emphasis"`
		Tooltip  *ItemTooltip `json:"tooltip"`
		Label    *ItemLabel   `json:"label"`
	}
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}
	if err := d.Node.UnmarshalJSON(data); err != nil {
		return err
	}
	d.Category, d.Emphasis = extra.Category, extra.Emphasis
	d.Tooltip, d.Label = extra.Tooltip, extra.Label
	return nil
}

// ItemTooltip is a per-node tooltip with pre-rendered content.
type ItemTooltip struct {
	Show      bool   `json:"show"`
	Formatter string `json:"formatter,omitempty"`
}

// ItemLabel is a per-node label with pre-rendered content.
type ItemLabel struct {
	Formatter string `json:"formatter"`
}

// Graph returns the graph series. Build always produces exactly one.
func (o Option) Graph() *Series {
	if len(o.Series) == 0 {
		return nil
	}
	return &o.Series[0]
}

// Resolve returns a copy of o with every data item's tooltip and label
// evaluated through the option's formatters. o is not modified.
func (o Option) Resolve() Option {
	out := o
	out.Series = make([]Series, len(o.Series))
	for i, s := range o.Series {
		s.Data = make([]DataItem, len(o.Series[i].Data))
		for j, item := range o.Series[i].Data {
			item.Tooltip, item.Label = nil, nil
			if o.Tooltip.Formatter != nil {
				text := o.Tooltip.Formatter(item)
				item.Tooltip = &ItemTooltip{Show: text != "", Formatter: text}
			}
			if s.Label.Show && s.Label.Formatter != nil {
				if text := s.Label.Formatter(item); text != "" {
					item.Label = &ItemLabel{Formatter: text}
				}
			}
			s.Data[j] = item
		}
		out.Series[i] = s
	}
	return out
}

// JSON encodes the resolved option.
func (o Option) JSON() ([]byte, error) {
	data, err := json.Marshal(o.Resolve())
	if err != nil {
		return nil, fmt.Errorf("encode option: %w", err)
	}
	return data, nil
}
