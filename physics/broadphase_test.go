package physics

import (
	"testing"

	"github.com/milk9111/jump/geom"
)

func TestSpanOf(t *testing.T) {
	cases := []struct {
		name   string
		r      geom.Rect
		ts     int
		offset cell
		want   cellSpan
	}{
		{"inside_one_cell", geom.NewRect(1, 1, 4, 4), 16, cell{}, cellSpan{0, 0, 1, 1}},
		{"straddles_boundary", geom.NewRect(0.9, 0, 0.2, 0.5), 1, cell{}, cellSpan{0, 0, 1, 1}},
		{"negative_coords", geom.NewRect(-20, -1, 8, 8), 16, cell{}, cellSpan{-2, -1, -1, 0}},
		{"offset", geom.NewRect(32, 32, 16, 16), 16, cell{X: 1, Y: -1}, cellSpan{1, 3, 2, 4}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := spanOf(c.r, c.ts, c.offset); got != c.want {
				t.Fatalf("expected %+v, got %+v", c.want, got)
			}
		})
	}
}

func TestSpanCoversBox(t *testing.T) {
	r := geom.NewRect(13.7, -5.2, 40.1, 3)
	ts := 8
	s := spanOf(r, ts, cell{})
	maxX := int(r.Max().X) / ts
	if s.MinX*ts > int(r.Pos.X) || s.MaxX < maxX {
		t.Fatalf("span %+v does not cover %v", s, r)
	}
}

func TestSpatialIndexQueryVisitsOnce(t *testing.T) {
	idx := newSpatialIndex()
	a := &Body{AABB: geom.NewRect(0, 0, 40, 40)}
	b := &Body{AABB: geom.NewRect(100, 100, 4, 4)}
	idx.insert(a, spanOf(a.AABB, 16, cell{}))
	idx.insert(a, spanOf(a.AABB, 16, cell{}))
	idx.insert(b, spanOf(b.AABB, 16, cell{}))

	if n := len(idx.cells[cell{0, 0}]); n != 1 {
		t.Fatalf("expected one entry in cell (0,0), got %d", n)
	}

	var visited []*Body
	idx.query(cellSpan{0, 0, 3, 3}, func(other *Body) {
		visited = append(visited, other)
	})
	if len(visited) != 1 || visited[0] != a {
		t.Fatalf("expected only a once, got %d bodies", len(visited))
	}

	idx.reset()
	visited = visited[:0]
	idx.query(cellSpan{-10, -10, 10, 10}, func(other *Body) {
		visited = append(visited, other)
	})
	if len(visited) != 0 {
		t.Fatalf("expected empty index after reset, got %d", len(visited))
	}
}
