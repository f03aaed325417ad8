/*
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"fmt"
	"io"
	"strings"
)

// printMarkdownTable writes a table with the given header, rows with only one value are rendered as section title.
func printMarkdownTable(header []tableValue, values [][]tableValue, writer io.StringWriter) {
	printRow(header, len(header), writer)
	dividers := make([]tableValue, len(header))
	for i := range dividers {
		dividers[i] = tableValue{value: "---"}
	}
	printRow(dividers, len(header), writer)
	for _, row := range values {
		printRow(row, len(header), writer)
	}
}

func printRow(values []tableValue, columns int, writer io.StringWriter) {
	cells := make([]string, columns)
	for i := 0; i < columns; i++ {
		// Account for a row with less values than columns in the table
		if i < len(values) {
			cells[i] = values[i].render()
		}
	}
	_, _ = writer.WriteString("| " + strings.Join(cells, " | ") + " |\n")
}

type tableValue struct {
	value string
	bold  bool
}

func (v tableValue) render() string {
	rendered := strings.ReplaceAll(v.value, "|", "\\|")
	if v.bold {
		rendered = fmt.Sprintf("**%s**", rendered)
	}
	return rendered
}

func val(value string) tableValue {
	return tableValue{value: value}
}

func vals(value ...string) []tableValue {
	result := make([]tableValue, len(value))
	for i, v := range value {
		result[i] = val(v)
	}
	return result
}
