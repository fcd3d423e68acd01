package kicadsym

import (
	"math"

	"github.com/circuitsmith/circuitsmith/pkg/circuit"
	"github.com/circuitsmith/circuitsmith/pkg/sexpr"
)

const (
	// minStrokeWidth is the floor applied to stroke widths so thin symbol
	// outlines stay visible.
	minStrokeWidth = 0.254

	penColor  = "#000000"
	fillColor = "#FAFAFA"
)

// collectGraphics extracts drawing primitives from every sub-symbol unit,
// falling back to the symbol node itself, with the bounding-box offset
// applied to all coordinates.
func collectGraphics(node *sexpr.List, offsetX, offsetY float64) []circuit.Graphic {
	var graphics []circuit.Graphic
	for _, unit := range sexpr.FindAllNodes(node, "symbol") {
		graphics = append(graphics, unitGraphics(unit, offsetX, offsetY)...)
	}
	if len(graphics) == 0 {
		graphics = unitGraphics(node, offsetX, offsetY)
	}
	return graphics
}

func unitGraphics(unit *sexpr.List, offsetX, offsetY float64) []circuit.Graphic {
	var graphics []circuit.Graphic
	for _, item := range unit.Items() {
		child, ok := item.(*sexpr.List)
		if !ok {
			continue
		}
		name, err := sexpr.NodeName(child)
		if err != nil {
			continue
		}

		var g *circuit.Graphic
		switch name {
		case "polyline":
			g = parsePolyline(child, offsetX, offsetY)
		case "rectangle":
			g = parseRectangle(child, offsetX, offsetY)
		case "circle":
			g = parseCircle(child, offsetX, offsetY)
		case "arc":
			g = parseArc(child, offsetX, offsetY)
		}
		if g != nil {
			graphics = append(graphics, *g)
		}
	}
	return graphics
}

// parsePolyline converts a polyline to a polygon primitive.
func parsePolyline(node *sexpr.List, offsetX, offsetY float64) *circuit.Graphic {
	var points []circuit.Point
	if ptsNode, found := sexpr.FindNode(node, "pts"); found {
		for _, xy := range sexpr.FindAllNodes(ptsNode, "xy") {
			x, errX := sexpr.GetFloat(xy, 1)
			y, errY := sexpr.GetFloat(xy, 2)
			if errX != nil || errY != nil {
				continue
			}
			points = append(points, circuit.Point{X: x - offsetX, Y: y - offsetY})
		}
	}
	if len(points) == 0 {
		return nil
	}

	g := &circuit.Graphic{
		Type:   "polygon",
		Points: points,
		Width:  strokeWidth(node),
		Pen:    penColor,
	}
	applyFill(g, node)
	return g
}

func parseRectangle(node *sexpr.List, offsetX, offsetY float64) *circuit.Graphic {
	var startX, startY, endX, endY float64
	if startNode, found := sexpr.FindNode(node, "start"); found {
		startX, _ = sexpr.GetFloat(startNode, 1)
		startY, _ = sexpr.GetFloat(startNode, 2)
		startX -= offsetX
		startY -= offsetY
	}
	if endNode, found := sexpr.FindNode(node, "end"); found {
		endX, _ = sexpr.GetFloat(endNode, 1)
		endY, _ = sexpr.GetFloat(endNode, 2)
		endX -= offsetX
		endY -= offsetY
	}

	x := min(startX, endX)
	y := min(startY, endY)
	w := math.Abs(endX - startX)
	h := math.Abs(endY - startY)

	g := &circuit.Graphic{
		Type:  "rect",
		Rect:  []float64{x, y, w, h},
		Width: strokeWidth(node),
		Pen:   penColor,
	}
	applyFill(g, node)
	return g
}

func parseCircle(node *sexpr.List, offsetX, offsetY float64) *circuit.Graphic {
	var centerX, centerY, radius float64
	if centerNode, found := sexpr.FindNode(node, "center"); found {
		centerX, _ = sexpr.GetFloat(centerNode, 1)
		centerY, _ = sexpr.GetFloat(centerNode, 2)
		centerX -= offsetX
		centerY -= offsetY
	}
	if radiusNode, found := sexpr.FindNode(node, "radius"); found {
		radius, _ = sexpr.GetFloat(radiusNode, 1)
	}

	g := &circuit.Graphic{
		Type:   "circle",
		Center: circuit.Point{X: centerX, Y: centerY},
		Radius: radius,
		Width:  strokeWidth(node),
		Pen:    penColor,
	}
	applyFill(g, node)
	return g
}

// parseArc approximates a 3-point arc (start, mid, end) with a polyline
// through the same three points. True arc geometry is out of scope.
func parseArc(node *sexpr.List, offsetX, offsetY float64) *circuit.Graphic {
	points := make([]circuit.Point, 0, 3)
	for _, key := range []string{"start", "mid", "end"} {
		var x, y float64
		if pn, found := sexpr.FindNode(node, key); found {
			x, _ = sexpr.GetFloat(pn, 1)
			y, _ = sexpr.GetFloat(pn, 2)
		}
		points = append(points, circuit.Point{X: x - offsetX, Y: y - offsetY})
	}

	g := &circuit.Graphic{
		Type:   "polygon",
		Points: points,
		Width:  strokeWidth(node),
		Pen:    penColor,
	}
	applyFill(g, node)
	return g
}

// strokeWidth reads the stroke width of a graphic node, clamped to the
// visible floor.
func strokeWidth(node *sexpr.List) float64 {
	width := 0.0
	if strokeNode, found := sexpr.FindNode(node, "stroke"); found {
		if widthNode, found := sexpr.FindNode(strokeNode, "width"); found {
			width, _ = sexpr.GetFloat(widthNode, 1)
		}
	}
	if width < minStrokeWidth {
		width = minStrokeWidth
	}
	return width
}

// applyFill sets the fill color when the graphic's fill type is anything
// other than "none".
func applyFill(g *circuit.Graphic, node *sexpr.List) {
	fillType := "none"
	if fillNode, found := sexpr.FindNode(node, "fill"); found {
		if typeNode, found := sexpr.FindNode(fillNode, "type"); found {
			if t, err := sexpr.GetString(typeNode, 1); err == nil {
				fillType = t
			}
		}
	}
	if fillType != "" && fillType != "none" {
		g.Fill = fillColor
	}
}
