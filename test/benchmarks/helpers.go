// test/benchmarks/helpers.go
package benchmarks

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/tealeg/xlsx/v3"
)

var (
	benchColors = []string{"Black", "White", "Heather Grey", "Red", "Navy"}
	benchSizes  = []string{"XS", "S", "M", "L", "XL", "XXL"}
)

// countSheetLines renders a text count sheet covering products × colors ×
// sizes, with a header line.
func countSheetLines(products int) []string {
	lines := []string{"product color size count"}
	for p := 0; p < products; p++ {
		for _, c := range benchColors {
			for _, s := range benchSizes {
				lines = append(lines, fmt.Sprintf("BENCH-%03d %s %s %d", p, c, s, (p*7)%40))
			}
		}
	}
	return lines
}

// countSheetXLSX renders the same sheet as a workbook.
func countSheetXLSX(b *testing.B, products int) []byte {
	b.Helper()

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Counts")
	if err != nil {
		b.Fatal(err)
	}

	header := sheet.AddRow()
	for _, h := range []string{"product_id", "color", "size", "inventory_count"} {
		header.AddCell().SetString(h)
	}
	for p := 0; p < products; p++ {
		for _, c := range benchColors {
			for _, s := range benchSizes {
				row := sheet.AddRow()
				row.AddCell().SetString(fmt.Sprintf("BENCH-%03d", p))
				row.AddCell().SetString(c)
				row.AddCell().SetString(s)
				row.AddCell().SetInt((p * 7) % 40)
			}
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		b.Fatal(err)
	}
	return buf.Bytes()
}
