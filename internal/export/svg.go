package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/cowell/internal/analysis"
	"github.com/san-kum/cowell/pkg/dynamo"
)

// TrajectoryToSVG draws points as a single polyline scaled to width x height.
func TrajectoryToSVG(points []analysis.Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}
	b := newBounds(points)

	var sb strings.Builder
	writeHeader(&sb, width, height)
	writePath(&sb, points, b, width, height, strokeColor)
	sb.WriteString("</svg>")
	return sb.String()
}

// OrbitToSVG draws the x-y ground plane projection of sol. The origin is
// marked when it falls inside the frame, and the final sample is marked in
// red when the run ended in an event.
func OrbitToSVG(sol *dynamo.Solution, width, height int) string {
	portrait := analysis.ProjectPhase(sol, 0, 1)
	if portrait == nil || len(portrait.Points) < 2 {
		return ""
	}
	points := portrait.Points
	b := newBounds(points)

	var sb strings.Builder
	writeHeader(&sb, width, height)
	if b.contains(0, 0) {
		cx, cy := b.project(0, 0, width, height)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"4\" fill=\"#ffcc00\"/>\n", cx, cy)
	}
	writePath(&sb, points, b, width, height, "#00ccff")

	last := points[len(points)-1]
	lx, ly := b.project(last.X, last.Y, width, height)
	marker := "#00ff88"
	if sol.Result == dynamo.EventOccurred {
		marker = "#ff4444"
	}
	fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", lx, ly, marker)
	sb.WriteString("</svg>")
	return sb.String()
}

// WriteOrbitSVG renders sol with OrbitToSVG and writes it to path.
func WriteOrbitSVG(path string, sol *dynamo.Solution, width, height int) error {
	svg := OrbitToSVG(sol, width, height)
	if svg == "" {
		return fmt.Errorf("need at least two samples to draw, got %d", sol.Len())
	}
	return os.WriteFile(path, []byte(svg), 0644)
}

type bounds struct {
	minX, minY, rangeX, rangeY float64
}

func newBounds(points []analysis.Point) bounds {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	return bounds{minX: minX, minY: minY, rangeX: rangeX * 1.2, rangeY: rangeY * 1.2}
}

func (b bounds) contains(x, y float64) bool {
	return x >= b.minX && x <= b.minX+b.rangeX && y >= b.minY && y <= b.minY+b.rangeY
}

func (b bounds) project(x, y float64, width, height int) (float64, float64) {
	px := (x - b.minX) / b.rangeX * float64(width)
	py := float64(height) - (y-b.minY)/b.rangeY*float64(height)
	return px, py
}

func writeHeader(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

func writePath(sb *strings.Builder, points []analysis.Point, b bounds, width, height int, stroke string) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i, p := range points {
		x, y := b.project(p.X, p.Y, width, height)
		if i == 0 {
			fmt.Fprintf(sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}
