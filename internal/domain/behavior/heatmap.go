// Package behavior aggregates visitor events into heatmaps, session flows
// and engagement figures.
package behavior

import (
	"math"
	"sort"

	"github.com/okian/scorecard/internal/domain/model"
)

// DefaultGridSize is the side of the square heatmap grid.
const DefaultGridSize = 50

// Cell is one populated heatmap bucket.
type Cell struct {
	X         int `json:"x"`
	Y         int `json:"y"`
	Intensity int `json:"intensity"`
}

// Heatmap buckets positioned events into a gridSize x gridSize grid by
// their position relative to the viewport. Events missing a coordinate or
// viewport dimension (nil or zero) are skipped. Cells are sorted by y, then x.
func Heatmap(events []model.BehaviorEvent, gridSize int) []Cell {
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	type key struct{ x, y int }
	grid := make(map[key]int)
	for _, e := range events {
		if !positioned(e) {
			continue
		}
		k := key{
			x: bucket(*e.PositionX / *e.ViewportWidth, gridSize),
			y: bucket(*e.PositionY / *e.ViewportHeight, gridSize),
		}
		grid[k]++
	}

	cells := make([]Cell, 0, len(grid))
	for k, n := range grid {
		cells = append(cells, Cell{X: k.x, Y: k.y, Intensity: n})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	return cells
}

// Split partitions events by type for the heatmap report.
func Split(events []model.BehaviorEvent) (clicks, moves, scrolls []model.BehaviorEvent) {
	for _, e := range events {
		switch e.EventType {
		case model.EventClick:
			clicks = append(clicks, e)
		case model.EventMove:
			moves = append(moves, e)
		case model.EventScroll:
			scrolls = append(scrolls, e)
		}
	}
	return clicks, moves, scrolls
}

func positioned(e model.BehaviorEvent) bool {
	for _, v := range []*float64{e.PositionX, e.PositionY} {
		if v == nil || *v == 0 {
			return false
		}
	}
	for _, v := range []*float64{e.ViewportWidth, e.ViewportHeight} {
		if v == nil || *v <= 0 {
			return false
		}
	}
	return true
}

// bucket maps a relative position to a grid index in [0, n-1].
func bucket(rel float64, n int) int {
	i := int(math.Floor(rel * float64(n)))
	return max(0, min(n-1, i))
}
