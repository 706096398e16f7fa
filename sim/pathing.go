package sim

import "errors"

// ErrUnreachable is returned by VehicleUnit.Schedule when the path finder
// cannot produce a route between the two facilities. It always indicates a
// configuration defect, never runtime contention.
var ErrUnreachable = errors.New("destination unreachable")

// Waypoint is one cell on a vehicle route.
type Waypoint struct {
	X int
	Y int
}

// PathFinder computes the waypoint sequence between two coordinates.
// A nil result means the destination is unreachable; the geometric routing
// algorithm itself is an external collaborator.
type PathFinder interface {
	FindPath(x1, y1, x2, y2 int) []Waypoint
}

// GridPathFinder is the default router: an L-shaped walk on an unobstructed
// grid, first along x then along y. Both endpoints are included, so a route
// between co-located facilities has length 1.
type GridPathFinder struct{}

// FindPath implements PathFinder. It never fails on an unobstructed grid.
func (GridPathFinder) FindPath(x1, y1, x2, y2 int) []Waypoint {
	path := []Waypoint{{X: x1, Y: y1}}
	x, y := x1, y1
	for x != x2 {
		x += stepToward(x, x2)
		path = append(path, Waypoint{X: x, Y: y})
	}
	for y != y2 {
		y += stepToward(y, y2)
		path = append(path, Waypoint{X: x, Y: y})
	}
	return path
}

func stepToward(from, to int) int {
	if from < to {
		return 1
	}
	return -1
}
