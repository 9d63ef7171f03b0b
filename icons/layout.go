package icons

// layout.go arranges icons on a canvas. Cleanup packs them into a
// fixed-pitch grid in row-major order; Names view stacks them in a single
// column. Both report the content extents so the canvas can clamp its
// scroll offsets.

// Grid pitch. Cells are wider than the widest icon so labels have room.
const (
	GridCellWidth  = 80
	GridCellHeight = 75
	NamesRowHeight = 20
	NamesColWidth  = 300
)

// ViewMode selects between the spatial icon grid and the text list.
type ViewMode int

const (
	ViewIcons ViewMode = iota
	ViewNames
)

// Extents is the computed content size after a layout pass.
type Extents struct {
	ContentWidth  int
	ContentHeight int
}

// Cleanup arranges icons into a grid starting at the canvas origin,
// row-major, columns sized to the visible width. Returns the content
// extents. Icons keep their slice order; spatial positions are the
// caller's to preserve by not calling Cleanup.
func Cleanup(list []*FileIcon, visibleWidth int) Extents {
	cols := visibleWidth / GridCellWidth
	if cols < 1 {
		cols = 1
	}
	var ext Extents
	for i, ic := range list {
		col := i % cols
		row := i / cols
		ic.X = col*GridCellWidth + (GridCellWidth-ic.Width)/2
		ic.Y = row*GridCellHeight + 8
		right := (col + 1) * GridCellWidth
		bottom := (row + 1) * GridCellHeight
		if right > ext.ContentWidth {
			ext.ContentWidth = right
		}
		if bottom > ext.ContentHeight {
			ext.ContentHeight = bottom
		}
	}
	return ext
}

// LayoutNames stacks icons into a single-column list.
func LayoutNames(list []*FileIcon) Extents {
	var ext Extents
	for i, ic := range list {
		ic.X = 4
		ic.Y = i * NamesRowHeight
	}
	ext.ContentWidth = NamesColWidth
	ext.ContentHeight = len(list) * NamesRowHeight
	return ext
}

// ExtentsOf computes content extents from current icon positions without
// moving anything — used after spatial placement.
func ExtentsOf(list []*FileIcon) Extents {
	var ext Extents
	for _, ic := range list {
		right := ic.X + ic.HitWidth() + 8
		bottom := ic.Y + ic.HitHeight() + NamesRowHeight
		if lw := ic.X + ic.LabelWidth; lw+8 > right {
			right = lw + 8
		}
		if right > ext.ContentWidth {
			ext.ContentWidth = right
		}
		if bottom > ext.ContentHeight {
			ext.ContentHeight = bottom
		}
	}
	return ext
}

// FindAt returns the topmost icon under the canvas-local point, or nil.
// Later slice entries draw above earlier ones, so the scan runs backward.
func FindAt(list []*FileIcon, x, y int) *FileIcon {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Contains(x, y) {
			return list[i]
		}
	}
	return nil
}
