package analysis

import (
	"strings"

	"github.com/san-kum/cowell/pkg/dynamo"
)

// Point is one sample of a 2D projection.
type Point struct{ X, Y float64 }

// PhasePortrait2D holds two components of a trajectory.
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// ProjectPhase extracts components xIdx and yIdx from every sample of sol.
func ProjectPhase(sol *dynamo.Solution, xIdx, yIdx int) *PhasePortrait2D {
	if sol == nil || sol.Len() == 0 {
		return nil
	}
	if dim := len(sol.Ys[0]); xIdx < 0 || yIdx < 0 || xIdx >= dim || yIdx >= dim {
		return nil
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, sol.Len()),
	}
	for _, y := range sol.Ys {
		portrait.Points = append(portrait.Points, Point{X: y[xIdx], Y: y[yIdx]})
	}
	return portrait
}

// PhasePortraitToASCII rasterizes the portrait onto a width x height grid.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
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
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// central body
	if minX <= 0 && maxX >= 0 && minY <= 0 && maxY >= 0 {
		col := int(-minX / rangeX * float64(width-1))
		row := height - 1 - int(-minY/rangeY*float64(height-1))
		canvas[row][col] = '+'
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection returns (recordX, recordY) at every upward crossing of
// component crossIdx through threshold, linearly interpolated between samples.
func PoincareSection(sol *dynamo.Solution, crossIdx int, threshold float64, recordX, recordY int) []Point {
	points := make([]Point, 0)
	if sol == nil || sol.Len() < 2 {
		return points
	}
	dim := len(sol.Ys[0])
	if crossIdx >= dim || recordX >= dim || recordY >= dim {
		return points
	}

	prev := sol.Ys[0]
	for _, y := range sol.Ys[1:] {
		a, b := prev[crossIdx], y[crossIdx]
		if a < threshold && b >= threshold {
			frac := (threshold - a) / (b - a)
			points = append(points, Point{
				X: prev[recordX] + frac*(y[recordX]-prev[recordX]),
				Y: prev[recordY] + frac*(y[recordY]-prev[recordY]),
			})
		}
		prev = y
	}
	return points
}
