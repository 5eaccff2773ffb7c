package force

// quadtree is a Barnes-Hut tree over a fixed snapshot of positions.
// Every node carries the same charge, so a cell is summarised by its point
// count and centroid.
type quadtree struct {
	cells []cell
	xs    []float64
	ys    []float64
}

type cell struct {
	x0, y0, size float64
	cx, cy       float64 // centroid
	count        int
	children     [4]int // -1 when absent
	points       []int  // leaf contents
}

const maxTreeDepth = 32

func newQuadtree(xs, ys []float64) *quadtree {
	qt := &quadtree{xs: xs, ys: ys}
	if len(xs) == 0 {
		return qt
	}
	minX, minY, maxX, maxY := xs[0], ys[0], xs[0], ys[0]
	for i := range xs {
		minX = min(minX, xs[i])
		minY = min(minY, ys[i])
		maxX = max(maxX, xs[i])
		maxY = max(maxY, ys[i])
	}
	size := max(maxX-minX, maxY-minY, 1)
	qt.cells = append(qt.cells, newCell(minX, minY, size))
	for i := range xs {
		qt.insert(0, i, 0)
	}
	qt.accumulate(0)
	return qt
}

func newCell(x0, y0, size float64) cell {
	return cell{x0: x0, y0: y0, size: size, children: [4]int{-1, -1, -1, -1}}
}

func (qt *quadtree) insert(ci, p, depth int) {
	c := &qt.cells[ci]
	c.count++
	if c.isLeaf() {
		if len(c.points) == 0 || depth >= maxTreeDepth || qt.coincident(c.points[0], p) {
			c.points = append(c.points, p)
			return
		}
		// Split: push existing points one level down.
		existing := c.points
		c.points = nil
		for _, q := range existing {
			qt.insertChild(ci, q, depth)
		}
	}
	qt.insertChild(ci, p, depth)
}

func (qt *quadtree) insertChild(ci, p, depth int) {
	c := qt.cells[ci]
	half := c.size / 2
	q := 0
	x0, y0 := c.x0, c.y0
	if qt.xs[p] >= c.x0+half {
		q |= 1
		x0 += half
	}
	if qt.ys[p] >= c.y0+half {
		q |= 2
		y0 += half
	}
	child := c.children[q]
	if child < 0 {
		child = len(qt.cells)
		qt.cells = append(qt.cells, newCell(x0, y0, half))
		qt.cells[ci].children[q] = child
	}
	qt.insert(child, p, depth+1)
}

func (qt *quadtree) coincident(a, b int) bool {
	return qt.xs[a] == qt.xs[b] && qt.ys[a] == qt.ys[b]
}

func (c *cell) isLeaf() bool {
	return c.children == [4]int{-1, -1, -1, -1}
}

func (qt *quadtree) accumulate(ci int) {
	c := &qt.cells[ci]
	var sx, sy float64
	if c.isLeaf() {
		for _, p := range c.points {
			sx += qt.xs[p]
			sy += qt.ys[p]
		}
	} else {
		for _, child := range c.children {
			if child < 0 {
				continue
			}
			qt.accumulate(child)
			cc := qt.cells[child]
			sx += cc.cx * float64(cc.count)
			sy += cc.cy * float64(cc.count)
		}
	}
	c = &qt.cells[ci]
	if c.count > 0 {
		c.cx = sx / float64(c.count)
		c.cy = sy / float64(c.count)
	}
}

// visit calls far for every cell that can be approximated from point i and
// near for every other point in leaves that cannot.
func (qt *quadtree) visit(i int, theta float64, far func(cx, cy float64, count int), near func(j int)) {
	if len(qt.cells) == 0 {
		return
	}
	qt.visitCell(0, i, theta*theta, far, near)
}

func (qt *quadtree) visitCell(ci, i int, theta2 float64, far func(float64, float64, int), near func(int)) {
	c := &qt.cells[ci]
	if c.count == 0 {
		return
	}
	if c.isLeaf() {
		for _, j := range c.points {
			if j != i {
				near(j)
			}
		}
		return
	}
	dx := c.cx - qt.xs[i]
	dy := c.cy - qt.ys[i]
	d2 := dx*dx + dy*dy
	if !qt.contains(c, i) && c.size*c.size < theta2*d2 {
		far(c.cx, c.cy, c.count)
		return
	}
	for _, child := range c.children {
		if child >= 0 {
			qt.visitCell(child, i, theta2, far, near)
		}
	}
}

func (qt *quadtree) contains(c *cell, i int) bool {
	x, y := qt.xs[i], qt.ys[i]
	return x >= c.x0 && x <= c.x0+c.size && y >= c.y0 && y <= c.y0+c.size
}
