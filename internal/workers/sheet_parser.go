// internal/workers/sheet_parser.go
package workers

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
)

// SheetParseResult holds the rows that parsed and a message per rejected line.
type SheetParseResult struct {
	Rows   []domain.SheetRow
	Errors []string
}

// ParseSheet dispatches on format. A returned error means the file itself
// could not be read; bad lines are reported in Errors.
func ParseSheet(format domain.SheetFormat, data []byte) (*SheetParseResult, error) {
	switch format {
	case domain.SheetXLSX:
		return ParseXLSX(data)
	case domain.SheetPDF:
		return ParsePDF(data)
	}
	return nil, fmt.Errorf("unsupported sheet format %q", format)
}

// ParseXLSX reads the first worksheet. Columns are product_id, color, size,
// inventory_count and the first row is a header.
func ParseXLSX(data []byte) (*SheetParseResult, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	res := &SheetParseResult{}
	line := 0
	err = file.Sheets[0].ForEachRow(func(r *xlsx.Row) error {
		line++
		if line == 1 {
			return nil
		}

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			return strings.TrimSpace(c.String())
		}

		fields := []string{get(0), get(1), get(2), get(3)}
		if strings.Join(fields, "") == "" {
			return nil
		}

		row, perr := buildRow(line, fields[0], fields[1], fields[2], fields[3])
		if perr != nil {
			res.Errors = append(res.Errors, perr.Error())
			return nil
		}
		res.Rows = append(res.Rows, row)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx rows: %w", err)
	}

	return res, nil
}

// ParsePDF extracts text lines from a text PDF and parses them as
// "product_id color size count".
func ParsePDF(data []byte) (*SheetParseResult, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var lines []string
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", pageNum, err)
		}
		lines = append(lines, strings.Split(text, "\n")...)
	}

	return ParseSheetText(lines), nil
}

// ParseSheetText parses whitespace separated count lines. The last field is
// the count, the one before it the size, the first the product id, and
// anything in between the color. Blank lines, lines starting with '#' and
// a leading header line are ignored.
func ParseSheetText(lines []string) *SheetParseResult {
	res := &SheetParseResult{}
	seenData := false

	for i, raw := range lines {
		lineNo := i + 1
		text := strings.TrimSpace(raw)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < 4 {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: expected product_id color size count", lineNo))
			continue
		}

		n := len(fields)
		countField := fields[n-1]
		if !seenData && !looksNumeric(countField) {
			// header
			seenData = true
			continue
		}
		seenData = true

		row, err := buildRow(lineNo, fields[0], strings.Join(fields[1:n-2], " "), fields[n-2], countField)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			continue
		}
		res.Rows = append(res.Rows, row)
	}

	return res
}

func buildRow(line int, productID, color, size, count string) (domain.SheetRow, error) {
	if productID == "" || color == "" || size == "" {
		return domain.SheetRow{}, fmt.Errorf("line %d: product_id, color and size are required", line)
	}
	n, err := parseCount(count)
	if err != nil {
		return domain.SheetRow{}, fmt.Errorf("line %d: %w", line, err)
	}
	return domain.SheetRow{
		Line:           line,
		ProductID:      productID,
		Color:          color,
		Size:           size,
		InventoryCount: n,
	}, nil
}

// parseCount accepts integers and whole floats ("12", "12.0"). Negative
// counts are passed through so reconciliation reports them per target.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("invalid inventory_count %q", s)
	}
	return int(f), nil
}

func looksNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
