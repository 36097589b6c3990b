package prefs

// Levels are the only zoom percentages the terminal accepts.
var Levels = []int{75, 90, 100, 110, 125, 150, 175, 200}

// DefaultZoom is the zoom used when nothing is stored.
const DefaultZoom = 100

// ValidZoom reports whether level is one of Levels.
func ValidZoom(level int) bool {
	return indexOf(level) >= 0
}

// ZoomIn returns the next larger level, staying at the largest.
func ZoomIn(level int) int {
	idx := nearestIndex(level)
	if idx < len(Levels)-1 {
		idx++
	}
	return Levels[idx]
}

// ZoomOut returns the next smaller level, staying at the smallest.
func ZoomOut(level int) int {
	idx := nearestIndex(level)
	if idx > 0 {
		idx--
	}
	return Levels[idx]
}

func indexOf(level int) int {
	for i, l := range Levels {
		if l == level {
			return i
		}
	}
	return -1
}

// nearestIndex maps arbitrary values onto the level list so a corrupted
// value can never escape it.
func nearestIndex(level int) int {
	best := 0
	bestDist := -1
	for i, l := range Levels {
		d := l - level
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
