package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/razeghi71/docq/document"
	"github.com/razeghi71/docq/engine"
	"github.com/razeghi71/docq/value"
)

// cell renders a value for tabular output: strings bare, everything else in
// canonical JSON.
func cell(v value.Value) string {
	if v.Type == value.TypeString {
		return v.Str
	}
	return v.String()
}

// printFlat writes a collection of flat documents (projections, flattened
// join pairs) as a table or CSV with the given column order.
func printFlat(c *document.Collection, cols []string, asCSV bool) {
	rows := make([][]string, 0, c.Len())
	for _, d := range c.Docs() {
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i] = "null"
			if d.Val.Type == value.TypeObject {
				if v, ok := d.Val.Obj.Get(col); ok {
					row[i] = cell(v)
				}
			}
		}
		rows = append(rows, row)
	}
	emit(cols, rows, asCSV)
}

func printGroupResults(results []engine.GroupResult, asCSV bool) {
	if len(results) == 0 {
		return
	}
	headers := append([]string{"key"}, results[0].Values.Keys()...)
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		row := make([]string, 0, len(headers))
		row = append(row, cell(r.Key))
		for _, f := range r.Values.Fields() {
			row = append(row, cell(f.Val))
		}
		rows = append(rows, row)
	}
	emit(headers, rows, asCSV)
}

func printRates(rates []engine.GroupRate, asCSV bool) {
	headers := []string{"key", "count", "rate"}
	rows := make([][]string, 0, len(rates))
	for _, r := range rates {
		rows = append(rows, []string{
			cell(r.Key),
			strconv.FormatInt(r.Count, 10),
			strconv.FormatFloat(r.Rate, 'f', -1, 64),
		})
	}
	emit(headers, rows, asCSV)
}

func emit(headers []string, rows [][]string, asCSV bool) {
	if asCSV {
		w := csv.NewWriter(os.Stdout)
		w.Write(headers)
		for _, row := range rows {
			w.Write(row)
		}
		w.Flush()
		return
	}
	printTable(headers, rows)
}

// printTable writes a padded text table.
func printTable(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i := range headers {
			if i < len(row) && len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}

	headerParts := make([]string, len(headers))
	for i, h := range headers {
		headerParts[i] = padRight(h, widths[i])
	}
	fmt.Println(strings.Join(headerParts, " | "))

	sepParts := make([]string, len(headers))
	for i := range headers {
		sepParts[i] = strings.Repeat("-", widths[i])
	}
	fmt.Println(strings.Join(sepParts, "-+-"))

	for _, row := range rows {
		parts := make([]string, len(headers))
		for i := range headers {
			if i < len(row) {
				parts[i] = padRight(row[i], widths[i])
			} else {
				parts[i] = padRight("", widths[i])
			}
		}
		fmt.Println(strings.Join(parts, " | "))
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
