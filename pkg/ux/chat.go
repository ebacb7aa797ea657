// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// QueryDiagnostics carries the optional per-answer metadata the backend
// returns with a RAG response. Empty fields are not rendered.
type QueryDiagnostics struct {
	SQLQuery      string
	TableUsed     string
	ExecutionTime float64
	Sources       []string
	Preview       []map[string]any
}

// SessionStats accumulates counters for the chat session summary.
type SessionStats struct {
	Queries   int
	Failures  int
	StartedAt time.Time
}

// ChatUI defines the contract for chat display formatting.
//
// Implementations handle all terminal output for the chat loop so the
// runner only coordinates input, service calls, and control flow. The
// interface is small on purpose: a test double can capture every call.
type ChatUI interface {
	// Header prints the session banner with the backend base URL.
	Header(baseURL string)

	// Greeting prints the seeded assistant greeting.
	Greeting(text string)

	// Prompt returns the styled input prompt string.
	Prompt() string

	// Recalled shows a history question copied into the input buffer.
	Recalled(question string)

	// Response prints an assistant answer with its diagnostics.
	Response(answer string, diag QueryDiagnostics)

	// Error prints a failed query as an assistant-style error line.
	Error(err error)

	// HistoryList prints recent questions, numbered for recall.
	HistoryList(questions []string)

	// SessionEnd prints the closing summary.
	SessionEnd(stats SessionStats)
}

// NewChatUI creates a ChatUI writing to stdout.
func NewChatUI() ChatUI {
	return &terminalChatUI{w: os.Stdout}
}

// NewChatUIWithWriter creates a ChatUI writing to w, for tests.
func NewChatUIWithWriter(w io.Writer) ChatUI {
	return &terminalChatUI{w: w}
}

type terminalChatUI struct {
	w io.Writer
}

func (u *terminalChatUI) Header(baseURL string) {
	title := Styles.Title.Render("covidctl chat")
	sub := Styles.Muted.Render("backend: " + baseURL)
	fmt.Fprintf(u.w, "%s\n%s\n", title, sub)
	fmt.Fprintln(u.w, Styles.Muted.Render("type a question, /history to list recent queries, /use N to recall, exit to quit"))
	fmt.Fprintln(u.w)
}

func (u *terminalChatUI) Greeting(text string) {
	fmt.Fprintf(u.w, "%s %s\n\n", Styles.Highlight.Render("asistente:"), text)
}

func (u *terminalChatUI) Prompt() string {
	if Plain() {
		return "> "
	}
	return Styles.Subtitle.Render("tú> ")
}

func (u *terminalChatUI) Recalled(question string) {
	fmt.Fprintf(u.w, "%s %s\n", Styles.Muted.Render("recalled:"), question)
	fmt.Fprintln(u.w, Styles.Muted.Render("press enter to send, or type a new question"))
}

func (u *terminalChatUI) Response(answer string, diag QueryDiagnostics) {
	fmt.Fprintf(u.w, "\n%s %s\n", Styles.Highlight.Render("asistente:"), answer)

	if diag.SQLQuery != "" {
		fmt.Fprintf(u.w, "%s %s\n", Styles.Muted.Render("  sql:"), Styles.Muted.Render(diag.SQLQuery))
	}
	if diag.TableUsed != "" {
		fmt.Fprintf(u.w, "%s %s\n", Styles.Muted.Render("  table:"), Styles.Muted.Render(diag.TableUsed))
	}
	if diag.ExecutionTime > 0 {
		fmt.Fprintf(u.w, "%s %s\n", Styles.Muted.Render("  time:"),
			Styles.Muted.Render(fmt.Sprintf("%.2fs", diag.ExecutionTime)))
	}
	if len(diag.Sources) > 0 {
		fmt.Fprintf(u.w, "%s %s\n", Styles.Muted.Render("  sources:"),
			Styles.Muted.Render(strings.Join(diag.Sources, ", ")))
	}
	if len(diag.Preview) > 0 {
		fmt.Fprintf(u.w, "%s\n", Styles.Muted.Render(fmt.Sprintf("  preview: %d rows", len(diag.Preview))))
	}
	fmt.Fprintln(u.w)
}

func (u *terminalChatUI) Error(err error) {
	fmt.Fprintf(u.w, "\n%s %s\n\n", Styles.Highlight.Render("asistente:"),
		Styles.Error.Render(fmt.Sprintf("lo siento, la consulta falló: %v", err)))
}

func (u *terminalChatUI) HistoryList(questions []string) {
	if len(questions) == 0 {
		fmt.Fprintln(u.w, Styles.Muted.Render("no recent queries"))
		return
	}
	fmt.Fprintln(u.w, Styles.Bold.Render("recent queries:"))
	for i, q := range questions {
		fmt.Fprintf(u.w, "  %s %s\n", Styles.Subtitle.Render(fmt.Sprintf("[%d]", i+1)), q)
	}
}

func (u *terminalChatUI) SessionEnd(stats SessionStats) {
	elapsed := time.Since(stats.StartedAt).Round(time.Second)
	fmt.Fprintln(u.w)
	fmt.Fprintln(u.w, Styles.Muted.Render(fmt.Sprintf(
		"session ended: %d queries, %d failed, %s elapsed",
		stats.Queries, stats.Failures, elapsed)))
}
