package services

import (
	"github.com/shopspring/decimal"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

func qty(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func newLine(item entities.ItemKey, id string, index int, posted int64) *entities.Line {
	line, err := entities.NewLine(item, id, index, qty(posted))
	if err != nil {
		panic(err)
	}
	return line
}

func newGroup(item entities.ItemKey, pool int64, lines ...*entities.Line) *entities.ItemGroup {
	return &entities.ItemGroup{Item: item, Lines: lines, Pool: qty(pool)}
}

// ratioLine builds a line whose posted/allocated ratio equals ratio
func ratioLine(id string, index int, ratio int64) *entities.Line {
	line := newLine("ITEM", id, index, ratio)
	line.AllocatedQty = qty(100)
	return line
}
