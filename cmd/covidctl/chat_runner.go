// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// This file defines the chat loop behind `covidctl chat`. The loop is
// split from the cobra handler so tests can drive it with a scripted
// InputReader and a fake QueryService instead of a live backend.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/saluddata/covidctl/pkg/api"
	"github.com/saluddata/covidctl/pkg/ux"
)

// QueryService is the slice of the backend the chat loop needs.
type QueryService interface {
	Ask(ctx context.Context, question string) (*api.QueryAnswer, error)
	History(ctx context.Context, limit int) ([]api.QueryHistoryEntry, error)
}

// apiQueryService adapts *api.Client to QueryService.
type apiQueryService struct {
	client *api.Client
}

func (s *apiQueryService) Ask(ctx context.Context, question string) (*api.QueryAnswer, error) {
	return s.client.Query(ctx, question)
}

func (s *apiQueryService) History(ctx context.Context, limit int) ([]api.QueryHistoryEntry, error) {
	return s.client.QueryHistory(ctx, limit)
}

// InputReader abstracts line input so tests can script a session.
type InputReader interface {
	// ReadLine returns the next input line without its newline.
	// io.EOF ends the session.
	ReadLine() (string, error)
}

type stdinReader struct {
	scanner *bufio.Scanner
}

func newStdinReader(r io.Reader) *stdinReader {
	return &stdinReader{scanner: bufio.NewScanner(r)}
}

func (r *stdinReader) ReadLine() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

// Chat transcript roles.
const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// chatHistoryLimit bounds in-loop history, matching the recent-query
// window every other history surface shows.
const chatHistoryLimit = 5

// chatMessage is one transcript entry.
type chatMessage struct {
	Role string
	Text string
}

// chatGreeting opens every session, mirroring the backend assistant's
// own tone.
const chatGreeting = "¡Hola! Soy el asistente de datos COVID-19. Pregúntame sobre casos, severidad, vacunación o tendencias."

// ChatRunner runs the interactive question loop. The transcript is
// append-only: errors become assistant messages rather than removing
// the question that caused them.
type ChatRunner struct {
	svc QueryService
	ui  ux.ChatUI
	in  InputReader

	transcript []chatMessage
	staged     string // question recalled via /use, sent on empty enter
	questions  int
	errors     int
	started    time.Time
}

// NewChatRunner builds a runner with the greeting pre-seeded.
func NewChatRunner(svc QueryService, ui ux.ChatUI, in InputReader) *ChatRunner {
	return &ChatRunner{
		svc:        svc,
		ui:         ui,
		in:         in,
		transcript: []chatMessage{{Role: roleAssistant, Text: chatGreeting}},
		started:    time.Now(),
	}
}

// Transcript returns a copy of the session transcript.
func (r *ChatRunner) Transcript() []chatMessage {
	out := make([]chatMessage, len(r.transcript))
	copy(out, r.transcript)
	return out
}

func (r *ChatRunner) append(role, text string) {
	r.transcript = append(r.transcript, chatMessage{Role: role, Text: text})
}

// Run executes the loop until exit/quit, EOF, or context cancellation.
func (r *ChatRunner) Run(ctx context.Context) error {
	r.ui.Greeting(chatGreeting)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Print(r.ui.Prompt())
		line, err := r.in.ReadLine()
		if err == io.EOF {
			r.finish()
			return nil
		}
		if err != nil {
			return err
		}

		input := strings.TrimSpace(line)
		switch {
		case input == "" && r.staged != "":
			question := r.staged
			r.staged = ""
			r.ask(ctx, question)
		case input == "":
			// Blank input is ignored; nothing reaches the backend.
		case input == "exit" || input == "quit":
			r.finish()
			return nil
		case input == "/history":
			r.showHistory(ctx)
		case strings.HasPrefix(input, "/use "):
			r.recall(ctx, strings.TrimPrefix(input, "/use "))
		case len(input) > 1 && input[0] == '!' && isDigits(input[1:]):
			// !N shorthand for /use N.
			r.recall(ctx, input[1:])
		default:
			r.staged = ""
			r.ask(ctx, input)
		}
	}
}

// ask validates, echoes, and submits one question. The user message is
// appended before the call so a failure never erases what was asked.
func (r *ChatRunner) ask(ctx context.Context, question string) {
	if err := api.ValidateQuestion(question); err != nil {
		r.ui.Error(err)
		return
	}
	r.append(roleUser, question)
	r.questions++

	answer, err := r.svc.Ask(ctx, question)
	if err != nil {
		r.errors++
		msg := api.UserMessage(err)
		r.append(roleAssistant, msg)
		r.ui.Error(err)
		return
	}
	r.append(roleAssistant, answer.Answer)
	r.ui.Response(answer.Answer, ux.QueryDiagnostics{
		SQLQuery:      answer.SQLQuery,
		TableUsed:     answer.TableUsed,
		ExecutionTime: answer.ExecutionTime,
		Sources:       answer.Sources,
		Preview:       answer.DataPreview,
	})
}

// showHistory lists the stored query history without sending anything.
func (r *ChatRunner) showHistory(ctx context.Context) {
	entries, err := r.svc.History(ctx, chatHistoryLimit)
	if err != nil {
		r.ui.Error(err)
		return
	}
	questions := make([]string, 0, len(entries))
	for _, e := range entries {
		questions = append(questions, e.Question)
	}
	r.ui.HistoryList(questions)
}

// recall stages a past question for the next empty enter. It is not
// sent until confirmed, so recalling is always a safe operation.
func (r *ChatRunner) recall(ctx context.Context, arg string) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		r.ui.Error(fmt.Errorf("usage: /use N, where N is a number from /history"))
		return
	}
	entries, herr := r.svc.History(ctx, chatHistoryLimit)
	if herr != nil {
		r.ui.Error(herr)
		return
	}
	if n > len(entries) {
		r.ui.Error(fmt.Errorf("history has only %d entries", len(entries)))
		return
	}
	r.staged = entries[n-1].Question
	r.ui.Recalled(r.staged)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (r *ChatRunner) finish() {
	r.ui.SessionEnd(ux.SessionStats{
		Queries:   r.questions,
		Failures:  r.errors,
		StartedAt: r.started,
	})
}
