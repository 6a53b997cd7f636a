package annotation

// Grid is a dense occupancy grid with the dimensions of the annotated image.
// Cells are stored row-major in a flat byte slice indexed by y*width+x.
type Grid struct {
	width  int
	height int
	cells  []uint8
}

// NewGrid returns an empty grid. Negative dimensions are treated as zero.
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid{width: width, height: height, cells: make([]uint8, width*height)}
}

// GridFromRows builds a grid from host supplied rows. Rows or columns beyond
// the given dimensions are ignored and missing ones are left unset.
func GridFromRows(rows [][]bool, width, height int) *Grid {
	g := NewGrid(width, height)
	for y, row := range rows {
		if y >= g.height {
			break
		}
		for x, v := range row {
			if x >= g.width {
				break
			}
			if v {
				g.cells[y*g.width+x] = 1
			}
		}
	}
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// In reports whether (x, y) lies inside the grid.
func (g *Grid) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// At returns the cell value; out of range cells read as false.
func (g *Grid) At(x, y int) bool {
	if !g.In(x, y) {
		return false
	}
	return g.cells[y*g.width+x] != 0
}

// Set writes a cell. Writes outside the grid are dropped.
func (g *Grid) Set(x, y int, v bool) {
	if !g.In(x, y) {
		return
	}
	var b uint8
	if v {
		b = 1
	}
	g.cells[y*g.width+x] = b
}

// Rows expands the grid back into nested boolean rows.
func (g *Grid) Rows() [][]bool {
	rows := make([][]bool, g.height)
	for y := range rows {
		row := make([]bool, g.width)
		off := y * g.width
		for x := range row {
			row[x] = g.cells[off+x] != 0
		}
		rows[y] = row
	}
	return rows
}

// Count returns the number of occupied cells.
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.cells {
		if c != 0 {
			n++
		}
	}
	return n
}

func (g *Grid) Clone() *Grid {
	out := &Grid{width: g.width, height: g.height, cells: make([]uint8, len(g.cells))}
	copy(out.cells, g.cells)
	return out
}

// Subtract clears every cell of g that is occupied in other and returns how
// many cells changed. Grids of different dimensions are compared over their
// common area.
func (g *Grid) Subtract(other *Grid) int {
	if other == nil {
		return 0
	}
	if g.width == other.width && g.height == other.height {
		n := 0
		for i, c := range other.cells {
			if c != 0 && g.cells[i] != 0 {
				g.cells[i] = 0
				n++
			}
		}
		return n
	}
	n := 0
	for y := 0; y < min(g.height, other.height); y++ {
		for x := 0; x < min(g.width, other.width); x++ {
			if other.At(x, y) && g.At(x, y) {
				g.Set(x, y, false)
				n++
			}
		}
	}
	return n
}
