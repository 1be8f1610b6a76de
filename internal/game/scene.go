package game

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/thywilljoshua/matchgame/internal/logger"
)

// Layout constants for the two-column board.
const (
	componentX     = 550
	componentY     = 102
	componentW     = 393
	componentH     = 133
	useCaseX       = 1160
	useCaseY       = 104
	useCaseW       = 1465
	useCaseH       = 134
	rowStride      = 190
	groupX         = 520
	groupY         = 72
	groupW         = 2170
	groupH         = 1200
	nodeFontSize   = 30
	groupFontSize  = 40
	nodeOpacity    = 0.5
	unifiedGroup   = "Unified Group"
	groupCaption   = "Match the components with their use cases"
	rectangleType  = "standard.Rectangle"
	linkType       = "standard.Link"
	labelTextColor = "#000000"
)

// DefaultPalette holds the component fill colors.
var DefaultPalette = []string{"#FF6347", "#32CD32", "#4169E1", "#FFD700", "#DA70D6", "#00CED1", "#8A2BE2", "#5F9EA0"}

// ShufflePalette returns a shuffled copy of DefaultPalette.
func ShufflePalette(rng *rand.Rand) []string {
	p := append([]string(nil), DefaultPalette...)
	rng.Shuffle(len(p), func(i, j int) { p[i], p[j] = p[j], p[i] })
	return p
}

// IDGenerator yields a fresh unique cell id per call.
type IDGenerator func() string

func NewUUID() string { return uuid.NewString() }

type CellKind int

const (
	KindGroup CellKind = iota
	KindComponent
	KindUseCase
	KindLink
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Ref struct {
	ID string `json:"id"`
}

type CellData struct {
	Group           string   `json:"group,omitempty"`
	NoneConnectable bool     `json:"noneConnectable,omitempty"`
	Embeds          []string `json:"embeds,omitempty"`
	Type            string   `json:"type,omitempty"`
}

type BodyAttrs struct {
	Fill            string  `json:"fill,omitempty"`
	FillOpacity     float64 `json:"fillOpacity,omitempty"`
	Stroke          string  `json:"stroke,omitempty"`
	StrokeDasharray string  `json:"strokeDasharray,omitempty"`
}

// TextWrap.Width is -10 (relative) for components and "1200" for use cases,
// matching what the diagram widget expects.
type TextWrap struct {
	Width    any    `json:"width"`
	Ellipsis bool   `json:"ellipsis"`
	Height   string `json:"height"`
}

type LabelAttrs struct {
	TextVerticalAnchor string    `json:"textVerticalAnchor,omitempty"`
	RefY               string    `json:"refY,omitempty"`
	RefY2              int       `json:"refY2,omitempty"`
	FontSize           int       `json:"fontSize"`
	Fill               string    `json:"fill,omitempty"`
	TextWrap           *TextWrap `json:"textWrap"`
	Text               string    `json:"text"`
}

type Attrs struct {
	Body  *BodyAttrs  `json:"body,omitempty"`
	Label *LabelAttrs `json:"label,omitempty"`
}

// Cell is one entry of the scene: the group, a node, or a link.
type Cell struct {
	Type     string    `json:"type"`
	Position *Point    `json:"position,omitempty"`
	Size     *Size     `json:"size,omitempty"`
	Angle    *int      `json:"angle,omitempty"`
	Source   *Ref      `json:"source,omitempty"`
	Target   *Ref      `json:"target,omitempty"`
	ID       string    `json:"id"`
	Data     *CellData `json:"data,omitempty"`
	Attrs    Attrs     `json:"attrs"`
	Kind     CellKind  `json:"-"`
}

type Scene struct {
	Cells []Cell `json:"cells"`
}

// Nodes returns the component and use-case cells in order.
func (s Scene) Nodes() []Cell {
	var out []Cell
	for _, c := range s.Cells {
		if c.Kind == KindComponent || c.Kind == KindUseCase {
			out = append(out, c)
		}
	}
	return out
}

func (s Scene) Links() []Cell {
	var out []Cell
	for _, c := range s.Cells {
		if c.Kind == KindLink {
			out = append(out, c)
		}
	}
	return out
}

// Group returns the enclosing group cell; ok is false for a zero Scene.
func (s Scene) Group() (Cell, bool) {
	for _, c := range s.Cells {
		if c.Kind == KindGroup {
			return c, true
		}
	}
	return Cell{}, false
}

// Builder lays pairs out on the board. Palette and NewID are inputs so the
// output is reproducible in tests.
type Builder struct {
	Palette []string
	NewID   IDGenerator
	log     *logger.Logger
}

func NewBuilder(palette []string, ids IDGenerator, log *logger.Logger) *Builder {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	if ids == nil {
		ids = NewUUID
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{Palette: palette, NewID: ids, log: log}
}

// Build returns the group, then component/use-case nodes pair by pair, then
// one link per pair.
func (b *Builder) Build(pairs []Pair) Scene {
	nodes := make([]Cell, 0, 2*len(pairs))
	componentIDs := make([]string, len(pairs))
	useCaseIDs := make([]string, len(pairs))
	embeds := make([]string, 0, 2*len(pairs))

	for i, p := range pairs {
		comp := b.componentNode(i, p.Component)
		uc := b.useCaseNode(i, p.UseCase)
		componentIDs[i], useCaseIDs[i] = comp.ID, uc.ID
		embeds = append(embeds, comp.ID, uc.ID)
		nodes = append(nodes, comp, uc)
	}

	links := b.linkPairs(pairs, componentIDs, useCaseIDs)

	cells := make([]Cell, 0, 1+len(nodes)+len(links))
	cells = append(cells, b.groupNode(embeds))
	cells = append(cells, nodes...)
	cells = append(cells, links...)
	return Scene{Cells: cells}
}

// linkPairs connects pair i's component node to its use-case node. Pairs
// missing either id are skipped.
func (b *Builder) linkPairs(pairs []Pair, componentIDs, useCaseIDs []string) []Cell {
	links := make([]Cell, 0, len(pairs))
	for i, p := range pairs {
		var src, dst string
		if i < len(componentIDs) {
			src = componentIDs[i]
		}
		if i < len(useCaseIDs) {
			dst = useCaseIDs[i]
		}
		if src == "" || dst == "" {
			b.log.Warn("skipping link due to missing node id", "component", p.Component, "use_case", p.UseCase)
			continue
		}
		links = append(links, Cell{
			Type:   linkType,
			Source: &Ref{ID: src},
			Target: &Ref{ID: dst},
			ID:     b.NewID(),
			Attrs:  Attrs{},
			Kind:   KindLink,
		})
	}
	return links
}

func (b *Builder) componentNode(i int, label string) Cell {
	return Cell{
		Type:     rectangleType,
		Position: &Point{X: componentX, Y: componentY + i*rowStride},
		Size:     &Size{Width: componentW, Height: componentH},
		Angle:    new(int),
		ID:       b.NewID(),
		Data:     &CellData{Group: unifiedGroup},
		Attrs: Attrs{
			Body:  &BodyAttrs{Fill: b.Palette[i%len(b.Palette)], FillOpacity: nodeOpacity},
			Label: nodeLabel(label, -10),
		},
		Kind: KindComponent,
	}
}

func (b *Builder) useCaseNode(i int, label string) Cell {
	return Cell{
		Type:     rectangleType,
		Position: &Point{X: useCaseX, Y: useCaseY + i*rowStride},
		Size:     &Size{Width: useCaseW, Height: useCaseH},
		Angle:    new(int),
		ID:       b.NewID(),
		Data:     &CellData{Group: unifiedGroup},
		Attrs: Attrs{
			Body:  &BodyAttrs{FillOpacity: nodeOpacity},
			Label: nodeLabel(label, "1200"),
		},
		Kind: KindUseCase,
	}
}

func nodeLabel(text string, wrapWidth any) *LabelAttrs {
	return &LabelAttrs{
		FontSize: nodeFontSize,
		Fill:     labelTextColor,
		TextWrap: &TextWrap{Width: wrapWidth, Ellipsis: true, Height: "auto"},
		Text:     text,
	}
}

func (b *Builder) groupNode(embeds []string) Cell {
	return Cell{
		Type:     rectangleType,
		Position: &Point{X: groupX, Y: groupY},
		Size:     &Size{Width: groupW, Height: groupH},
		Angle:    new(int),
		ID:       b.NewID(),
		Data:     &CellData{NoneConnectable: true, Embeds: embeds, Type: "group"},
		Attrs: Attrs{
			Body: &BodyAttrs{Stroke: "gray", StrokeDasharray: "8,10"},
			Label: &LabelAttrs{
				TextVerticalAnchor: "top",
				RefY:               "100%",
				RefY2:              10,
				FontSize:           groupFontSize,
				Text:               groupCaption,
			},
		},
		Kind: KindGroup,
	}
}
