package weave

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/piwi3910/SlabRough/internal/fibre"
)

// ErrOutsideWeave is returned when a point or move leaves the fibre grid.
var ErrOutsideWeave = errors.New("weave: outside the fibre grid")

// Cell sides and corners run clockwise from the bottom left: side 0 is the
// left u-fibre going up, 1 the top v-fibre going right, 2 the right u-fibre
// going down and 3 the bottom v-fibre going left. Corner i starts side i.
const (
	SideLeft = iota
	SideTop
	SideRight
	SideBottom
)

// Bound is one fibre endpoint on the border of a cell.
type Bound struct {
	Side     int
	Endpoint int // index into the side fibre
}

// Cell is the rectangle between two neighbouring u-fibres and two
// neighbouring v-fibres, with the region's crossings of its border listed
// clockwise. Rebuild it after the fibres change.
type Cell struct {
	w *Weave

	IU, IV         int // the cell lies between fibres IU-1, IU and IV-1, IV
	URange, VRange r1.Interval

	Bounds []Bound
	// Whether each corner is inside the region.
	LDIn, LUIn, RUIn, RDIn bool
	// Pairs joins each exit crossing to the following entry crossing,
	// as indices into Bounds.
	Pairs [][2]int
}

// findCellParal returns i with fibs[i-1].WP <= x < fibs[i].WP.
func findCellParal(fibs []*fibre.Fibre, x float64) (int, bool) {
	for i := 1; i < len(fibs); i++ {
		if fibs[i].WP > x {
			return i, fibs[i-1].WP <= x
		}
	}
	return 0, false
}

// FindCell returns the cell holding p.
func (w *Weave) FindCell(p r2.Point) (*Cell, error) {
	iu, ok := findCellParal(w.UFibres, p.X)
	if !ok {
		return nil, fmt.Errorf("%w: x %g", ErrOutsideWeave, p.X)
	}
	iv, ok := findCellParal(w.VFibres, p.Y)
	if !ok {
		return nil, fmt.Errorf("%w: y %g", ErrOutsideWeave, p.Y)
	}
	c := &Cell{w: w, IU: iu, IV: iv}
	c.ConstructBounds()
	c.CreateBoundList()
	return c, nil
}

// ConstructBounds resets the cell to the fibres at IU and IV.
func (c *Cell) ConstructBounds() {
	c.URange = r1.Interval{Lo: c.w.UFibres[c.IU-1].WP, Hi: c.w.UFibres[c.IU].WP}
	c.VRange = r1.Interval{Lo: c.w.VFibres[c.IV-1].WP, Hi: c.w.VFibres[c.IV].WP}
	c.Bounds = c.Bounds[:0]
	c.Pairs = c.Pairs[:0]
}

// Corner returns corner i: bottom left, top left, top right, bottom right.
func (c *Cell) Corner(i int) r2.Point {
	p := r2.Point{X: c.URange.Lo, Y: c.VRange.Lo}
	if i&2 != 0 {
		p.X = c.URange.Hi
	}
	if (i+1)&2 != 0 {
		p.Y = c.VRange.Hi
	}
	return p
}

// Side returns the fibre running from corner i to corner i+1.
func (c *Cell) Side(i int) *fibre.Fibre {
	switch i & 3 {
	case SideLeft:
		return c.w.UFibres[c.IU-1]
	case SideTop:
		return c.w.VFibres[c.IV]
	case SideRight:
		return c.w.UFibres[c.IU]
	default:
		return c.w.VFibres[c.IV-1]
	}
}

// addSide lists the endpoints of side inside rg in the side's direction and
// reports whether the side ends inside the region. Endpoints sitting on a
// corner and opening or closing coverage towards the cell are left out,
// which keeps the corner inside.
func (c *Cell) addSide(side int, rg r1.Interval) bool {
	f := c.Side(side)
	eps := f.Endpoints()
	il, ir := f.Locate(rg)
	if il <= ir && eps[il].Lower && eps[il].W == rg.Lo {
		il++
	}
	if il <= ir && !eps[ir].Lower && eps[ir].W == rg.Hi {
		ir--
	}

	leftIn := il > 0 && eps[il-1].Lower
	rightIn := ir+1 < len(eps) && !eps[ir+1].Lower

	goingDown := side&2 != 0
	if !goingDown {
		for i := il; i <= ir; i++ {
			c.Bounds = append(c.Bounds, Bound{Side: side, Endpoint: i})
		}
		return rightIn
	}
	for i := ir; i >= il; i-- {
		c.Bounds = append(c.Bounds, Bound{Side: side, Endpoint: i})
	}
	return leftIn
}

// CreateBoundList lists the border crossings and pairs them so the inside
// of the region stays connected across the cell. It returns the number of
// pairs.
func (c *Cell) CreateBoundList() int {
	c.Bounds = c.Bounds[:0]
	c.Pairs = c.Pairs[:0]

	c.LUIn = c.addSide(SideLeft, c.VRange)
	c.RUIn = c.addSide(SideTop, c.URange)
	c.RDIn = c.addSide(SideRight, c.VRange)
	c.LDIn = c.addSide(SideBottom, c.URange)

	prev := len(c.Bounds) - 1
	for i := range c.Bounds {
		if c.BoundLower(i) {
			c.Pairs = append(c.Pairs, [2]int{prev, i})
		}
		prev = i
	}
	return len(c.Pairs)
}

// BoundPoint returns the xy position of bound i.
func (c *Cell) BoundPoint(i int) r2.Point {
	b := c.Bounds[i]
	f := c.Side(b.Side)
	w := f.Endpoint(b.Endpoint).W
	if b.Side&1 == 0 {
		return r2.Point{X: f.WP, Y: w}
	}
	return r2.Point{X: w, Y: f.WP}
}

// BoundLower reports whether walking clockwise past bound i enters the
// region. Sides 2 and 3 run against their fibres.
func (c *Cell) BoundLower(i int) bool {
	b := c.Bounds[i]
	return (b.Side&2 == 0) == c.Side(b.Side).Endpoint(b.Endpoint).Lower
}

// AdvanceCrossSide moves to the neighbouring cell across side.
func (c *Cell) AdvanceCrossSide(side int) error {
	switch side {
	case SideLeft:
		if c.IU <= 1 {
			return fmt.Errorf("%w: left of u fibre 0", ErrOutsideWeave)
		}
		c.IU--
	case SideRight:
		if c.IU+1 >= len(c.w.UFibres) {
			return fmt.Errorf("%w: right of the last u fibre", ErrOutsideWeave)
		}
		c.IU++
	case SideBottom:
		if c.IV <= 1 {
			return fmt.Errorf("%w: below v fibre 0", ErrOutsideWeave)
		}
		c.IV--
	case SideTop:
		if c.IV+1 >= len(c.w.VFibres) {
			return fmt.Errorf("%w: above the last v fibre", ErrOutsideWeave)
		}
		c.IV++
	default:
		return fmt.Errorf("weave: no cell side %d", side)
	}
	c.ConstructBounds()
	c.CreateBoundList()
	return nil
}

// BoundListPosition returns the index in Bounds of the first crossing on
// side at or past p in the side's direction, wrapping to 0. A crossing
// exactly at p that leaves the region gives the one after it. It returns
// -1 when the cell has no crossings.
func (c *Cell) BoundListPosition(side int, p r2.Point) int {
	if len(c.Bounds) == 0 {
		return -1
	}
	goingUp := side&2 == 0
	wb := p.X
	if side&1 == 0 {
		wb = p.Y
	}

	i := 0
	for ; i < len(c.Bounds); i++ {
		b := c.Bounds[i]
		if b.Side > side {
			break
		}
		if b.Side != side {
			continue
		}
		w := c.Side(side).Endpoint(b.Endpoint).W
		if w == wb {
			if !c.BoundLower(i) {
				i++
				if i == len(c.Bounds) {
					i = 0
				}
			}
			return i
		}
		if (goingUp && w >= wb) || (!goingUp && w <= wb) {
			return i
		}
	}
	if i == len(c.Bounds) {
		i = 0
	}
	return i
}
