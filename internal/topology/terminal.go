package topology

import (
	"fmt"
	"ht-planning-service/internal/domain"
)

// Default container terminal layout: eight quay cranes on row 3, two eastbound QC lanes,
// the buffer on row 6, alternating west/east highway lanes on rows 7..12 and sixteen
// yard blocks on row 13.
func DefaultTerminal() *Topology {
	t := &Topology{
		Width:          43,
		Height:         14,
		MinX:           1,
		MaxX:           42,
		CorridorTop:    4,
		CorridorBottom: 12,
		BufferRow:      6,
	}

	for _, row := range []int{4, 5, 8, 10, 12} {
		t.Lanes = append(t.Lanes, Lane{Row: row, Dir: East, MinX: t.MinX, MaxX: t.MaxX})
	}
	for _, row := range []int{7, 9, 11} {
		t.Lanes = append(t.Lanes, Lane{Row: row, Dir: West, MinX: t.MinX, MaxX: t.MaxX})
	}

	for i := 0; i < 8; i++ {
		t.QCs = append(t.QCs, Gate{
			ID:  fmt.Sprintf("QC%d", i+1),
			In:  domain.Coordinate{X: 3 + 5*i, Y: 3},
			Out: domain.Coordinate{X: 4 + 5*i, Y: 3},
		})
	}

	for i, letter := range "ABCDEFGH" {
		t.Yards = append(t.Yards,
			Gate{
				ID:  fmt.Sprintf("%c1", letter),
				In:  domain.Coordinate{X: 2 + 5*i, Y: 13},
				Out: domain.Coordinate{X: 3 + 5*i, Y: 13},
			},
			Gate{
				ID:  fmt.Sprintf("%c2", letter),
				In:  domain.Coordinate{X: 4 + 5*i, Y: 13},
				Out: domain.Coordinate{X: 5 + 5*i, Y: 13},
			},
		)
	}

	return t
}

// DefaultFleet parks size trucks two per buffer slot from column 2 eastwards,
// named HT_01, HT_02, ...
func DefaultFleet(t *Topology, size int) []*domain.Truck {
	trucks := make([]*domain.Truck, 0, size)
	for i := 0; i < size; i++ {
		x := t.MinX + 1 + i/2
		if x > t.MaxX {
			x = t.MinX + (x-t.MinX)%(t.MaxX-t.MinX+1)
		}
		trucks = append(trucks, domain.NewTruck(fmt.Sprintf("HT_%02d", i+1), domain.Coordinate{X: x, Y: t.BufferRow}))
	}
	return trucks
}
