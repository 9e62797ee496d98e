package testing

import (
	"fmt"
	"strconv"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

// BuildReplenScenario builds the raw sheet of the worked pallet example: item A has a
// shortfall of 15 over two pallets of 10, item B a single pallet.
func BuildReplenScenario() *entities.RawTable {
	return &entities.RawTable{
		Source: "replen-scenario",
		Header: []string{"Item Number", "Licence Plate", "Posted Quantity", "Diff", "Level"},
		Rows: [][]string{
			{"A", "LP1", "10", "15", "A"},
			{"A", "LP2", "10", "15", "B"},
			{"B", "LP3", "7", "4", "C"},
		},
	}
}

// BuildGreplenScenario builds the raw sheet of the worked backorder example: P1 can cover
// part of two backorders, P2 is out of stock.
func BuildGreplenScenario() *entities.RawTable {
	return &entities.RawTable{
		Source: "greplen-scenario",
		Header: []string{"Part Number", "Sales Back Order", "Backorder", "Actual Stock"},
		Rows: [][]string{
			{"P1", "SBO1", "10", "12"},
			{"P1", "SBO2", "6", "12"},
			{"P2", "SBO3", "4", "0"},
		},
	}
}

// BuildLargeReplenTable builds a deterministic REPLEN sheet with the given number of items
// and pallets per item. Shortfalls cycle through below, at and above the pallet total.
func BuildLargeReplenTable(items, palletsPerItem int) *entities.RawTable {
	raw := &entities.RawTable{
		Source: fmt.Sprintf("replen-%dx%d", items, palletsPerItem),
		Header: []string{"Item Number", "Licence Plate", "Posted Quantity", "Diff", "Level"},
		Rows:   make([][]string, 0, items*palletsPerItem),
	}
	for i := 0; i < items; i++ {
		total := 0
		posted := make([]int, palletsPerItem)
		for j := range posted {
			posted[j] = 5 + (i*7+j*13)%40
			total += posted[j]
		}
		diff := strconv.Itoa(total * (1 + i%3) / 2)
		for j := range posted {
			raw.Rows = append(raw.Rows, []string{
				fmt.Sprintf("ITEM_%05d", i),
				fmt.Sprintf("LP_%05d_%02d", i, j),
				strconv.Itoa(posted[j]),
				diff,
				string(rune('A' + (i+j)%6)),
			})
		}
	}
	return raw
}

// BuildLargeGreplenTable builds a deterministic GREPLEN sheet; every fifth part is out of stock
func BuildLargeGreplenTable(parts, backordersPerPart int) *entities.RawTable {
	raw := &entities.RawTable{
		Source: fmt.Sprintf("greplen-%dx%d", parts, backordersPerPart),
		Header: []string{"Part Number", "Sales Back Order", "Backorder", "Actual Stock", "Number of Days ETA", "ETA Qty DifferenceTotal"},
		Rows:   make([][]string, 0, parts*backordersPerPart),
	}
	for i := 0; i < parts; i++ {
		total := 0
		backorders := make([]int, backordersPerPart)
		for j := range backorders {
			backorders[j] = 1 + (i*11+j*5)%30
			total += backorders[j]
		}
		stock := total * 3 / 4
		if i%5 == 0 {
			stock = 0
		}
		eta, surplus := "", ""
		if i%4 == 1 {
			eta, surplus = strconv.Itoa(i%14), strconv.Itoa(i%9-3)
		}
		for j := range backorders {
			raw.Rows = append(raw.Rows, []string{
				fmt.Sprintf("PART_%05d", i),
				fmt.Sprintf("SBO_%05d_%02d", i, j),
				strconv.Itoa(backorders[j]),
				strconv.Itoa(stock),
				eta,
				surplus,
			})
		}
	}
	return raw
}
