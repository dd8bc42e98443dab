// Package core provides fundamental types and utilities for the studio runtime.
// It contains no external dependencies (especially no Bubble Tea) so that the
// genre interpreters stay pure and testable.
package core

import "math"

// Rect is an integer axis-aligned rectangle in screen cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Vec is a point or velocity in world units.
type Vec struct {
	X, Y float64
}

// V is shorthand for Vec{X: x, Y: y}.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale returns v * k.
func (v Vec) Scale(k float64) Vec {
	return Vec{X: v.X * k, Y: v.Y * k}
}

// FromAngle returns a vector of the given length pointing along angle
// (radians, 0 = +X, clockwise because world Y grows downwards).
func FromAngle(angle, length float64) Vec {
	return Vec{X: math.Cos(angle) * length, Y: math.Sin(angle) * length}
}

// Box is a world-space body described by its center and size, matching the
// way sprites are positioned on the 800x600 canvas.
type Box struct {
	Center Vec
	W, H   float64
}

// BoxAt creates a box centered at (x, y).
func BoxAt(x, y, w, h float64) Box {
	return Box{Center: Vec{X: x, Y: y}, W: w, H: h}
}

// Left returns the x-coordinate of the left edge.
func (b Box) Left() float64 { return b.Center.X - b.W/2 }

// Right returns the x-coordinate of the right edge.
func (b Box) Right() float64 { return b.Center.X + b.W/2 }

// Top returns the y-coordinate of the top edge.
func (b Box) Top() float64 { return b.Center.Y - b.H/2 }

// Bottom returns the y-coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Center.Y + b.H/2 }

// Overlaps reports whether two boxes intersect. Touching edges do not count.
func (b Box) Overlaps(o Box) bool {
	if b.Left() >= o.Right() || o.Left() >= b.Right() {
		return false
	}
	if b.Top() >= o.Bottom() || o.Top() >= b.Bottom() {
		return false
	}
	return true
}

// ClampInto moves the box so it lies fully inside a w x h world.
func (b Box) ClampInto(w, h float64) Box {
	b.Center.X = ClampF(b.Center.X, b.W/2, w-b.W/2)
	b.Center.Y = ClampF(b.Center.Y, b.H/2, h-b.H/2)
	return b
}

// Viewport maps world coordinates onto a screen region.
type Viewport struct {
	WorldW, WorldH float64
	Dst            Rect
}

// Project converts a world point to a screen cell inside Dst.
func (v Viewport) Project(p Vec) (int, int) {
	if v.WorldW <= 0 || v.WorldH <= 0 {
		return v.Dst.X, v.Dst.Y
	}
	x := v.Dst.X + int(p.X/v.WorldW*float64(v.Dst.W))
	y := v.Dst.Y + int(p.Y/v.WorldH*float64(v.Dst.H))
	return x, y
}

// ProjectBox converts a world box to the covered screen rectangle.
// The result is at least one cell in each dimension.
func (v Viewport) ProjectBox(b Box) Rect {
	x0, y0 := v.Project(Vec{X: b.Left(), Y: b.Top()})
	x1, y1 := v.Project(Vec{X: b.Right(), Y: b.Bottom()})
	return NewRect(x0, y0, Max(1, x1-x0), Max(1, y1-y0))
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
