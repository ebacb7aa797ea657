// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// NewTable returns a go-pretty table writer with the covidctl house style.
// Plain mode drops the border characters so output stays grep-friendly.
func NewTable(out io.Writer, headers ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	if len(headers) > 0 {
		t.AppendHeader(headers)
	}
	if Plain() {
		t.SetStyle(table.StyleDefault)
		t.Style().Options.DrawBorder = false
		t.Style().Options.SeparateColumns = false
	} else {
		t.SetStyle(table.StyleRounded)
		t.Style().Color.Header = text.Colors{text.FgHiCyan, text.Bold}
	}
	return t
}

// PrintTable renders rows to stdout under the given headers.
func PrintTable(headers []any, rows [][]any) {
	t := NewTable(os.Stdout, headers...)
	for _, row := range rows {
		t.AppendRow(row)
	}
	t.Render()
}
