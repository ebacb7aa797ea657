// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/saluddata/covidctl/pkg/api"
	"github.com/saluddata/covidctl/pkg/ux"
)

// fakeQueryService records calls and returns scripted results.
type fakeQueryService struct {
	askCalls      []string
	historyCalls  int
	historyLimits []int

	answer  *api.QueryAnswer
	askErr  error
	history []api.QueryHistoryEntry
}

func (f *fakeQueryService) Ask(ctx context.Context, question string) (*api.QueryAnswer, error) {
	f.askCalls = append(f.askCalls, question)
	if f.askErr != nil {
		return nil, f.askErr
	}
	if f.answer != nil {
		return f.answer, nil
	}
	return &api.QueryAnswer{Answer: "respuesta"}, nil
}

func (f *fakeQueryService) History(ctx context.Context, limit int) ([]api.QueryHistoryEntry, error) {
	f.historyCalls++
	f.historyLimits = append(f.historyLimits, limit)
	return f.history, nil
}

// scriptedInput feeds fixed lines, then EOF.
type scriptedInput struct {
	lines []string
	pos   int
}

func (s *scriptedInput) ReadLine() (string, error) {
	if s.pos >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.pos]
	s.pos++
	return line, nil
}

// captureUI discards rendering; tests inspect the runner state instead.
type captureUI struct {
	errs []error
}

func (u *captureUI) Header(string)                        {}
func (u *captureUI) Greeting(string)                      {}
func (u *captureUI) Prompt() string                       { return "" }
func (u *captureUI) Recalled(string)                      {}
func (u *captureUI) Response(string, ux.QueryDiagnostics) {}
func (u *captureUI) Error(err error)                      { u.errs = append(u.errs, err) }
func (u *captureUI) HistoryList([]string)                 {}
func (u *captureUI) SessionEnd(ux.SessionStats)           {}

func runSession(t *testing.T, svc *fakeQueryService, lines ...string) (*ChatRunner, *captureUI) {
	t.Helper()
	ui := &captureUI{}
	runner := NewChatRunner(svc, ui, &scriptedInput{lines: lines})
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return runner, ui
}

func TestChatTranscriptStartsWithGreeting(t *testing.T) {
	runner, _ := runSession(t, &fakeQueryService{}, "exit")
	transcript := runner.Transcript()
	if len(transcript) != 1 {
		t.Fatalf("transcript length = %d, want 1", len(transcript))
	}
	if transcript[0].Role != roleAssistant {
		t.Errorf("first message role = %q, want %q", transcript[0].Role, roleAssistant)
	}
}

func TestChatBlankInputSendsNothing(t *testing.T) {
	svc := &fakeQueryService{}
	runner, _ := runSession(t, svc, "", "   ", "\t", "exit")
	if len(svc.askCalls) != 0 {
		t.Errorf("blank input reached the service: %v", svc.askCalls)
	}
	if got := len(runner.Transcript()); got != 1 {
		t.Errorf("transcript length = %d, want 1 (greeting only)", got)
	}
}

func TestChatQuestionAppendsBothMessages(t *testing.T) {
	svc := &fakeQueryService{answer: &api.QueryAnswer{Answer: "42 casos"}}
	runner, _ := runSession(t, svc, "cuantos casos hay en bogota", "exit")

	transcript := runner.Transcript()
	if len(transcript) != 3 {
		t.Fatalf("transcript length = %d, want 3", len(transcript))
	}
	if transcript[1].Role != roleUser || transcript[1].Text != "cuantos casos hay en bogota" {
		t.Errorf("user message = %+v", transcript[1])
	}
	if transcript[2].Role != roleAssistant || transcript[2].Text != "42 casos" {
		t.Errorf("assistant message = %+v", transcript[2])
	}
}

func TestChatErrorKeepsUserMessage(t *testing.T) {
	svc := &fakeQueryService{askErr: errors.New("backend down")}
	runner, ui := runSession(t, svc, "cuantos casos hay hoy", "exit")

	// The failed question stays in the transcript and the error
	// arrives as an assistant message, never by removing anything.
	transcript := runner.Transcript()
	if len(transcript) != 3 {
		t.Fatalf("transcript length = %d, want 3", len(transcript))
	}
	if transcript[1].Role != roleUser {
		t.Errorf("user message removed after error: %+v", transcript[1])
	}
	if transcript[2].Role != roleAssistant {
		t.Errorf("expected assistant error message, got %+v", transcript[2])
	}
	if len(ui.errs) != 1 {
		t.Errorf("UI error calls = %d, want 1", len(ui.errs))
	}
}

func TestChatTooShortQuestionRejectedLocally(t *testing.T) {
	svc := &fakeQueryService{}
	_, ui := runSession(t, svc, "hola", "exit")
	if len(svc.askCalls) != 0 {
		t.Errorf("short question reached the service: %v", svc.askCalls)
	}
	if len(ui.errs) != 1 {
		t.Errorf("UI error calls = %d, want 1", len(ui.errs))
	}
}

func TestChatHistoryDoesNotSend(t *testing.T) {
	svc := &fakeQueryService{history: []api.QueryHistoryEntry{
		{Question: "casos por ciudad"},
	}}
	_, _ = runSession(t, svc, "/history", "exit")
	if svc.historyCalls != 1 {
		t.Errorf("history calls = %d, want 1", svc.historyCalls)
	}
	if len(svc.askCalls) != 0 {
		t.Errorf("/history sent a query: %v", svc.askCalls)
	}
	if len(svc.historyLimits) != 1 || svc.historyLimits[0] != 5 {
		t.Errorf("history limits = %v, want [5]", svc.historyLimits)
	}
}

func TestChatRecallStagesWithoutSending(t *testing.T) {
	svc := &fakeQueryService{history: []api.QueryHistoryEntry{
		{Question: "casos graves por departamento"},
		{Question: "tendencia de vacunacion"},
	}}
	runner, _ := runSession(t, svc, "/use 2", "exit")
	if len(svc.askCalls) != 0 {
		t.Errorf("/use sent a query immediately: %v", svc.askCalls)
	}
	if len(svc.historyLimits) != 1 || svc.historyLimits[0] != 5 {
		t.Errorf("history limits = %v, want [5]", svc.historyLimits)
	}
	if got := len(runner.Transcript()); got != 1 {
		t.Errorf("transcript length = %d, want 1", got)
	}
}

func TestChatRecallThenEmptyEnterSends(t *testing.T) {
	svc := &fakeQueryService{history: []api.QueryHistoryEntry{
		{Question: "casos graves por departamento"},
	}}
	_, _ = runSession(t, svc, "/use 1", "", "exit")
	if len(svc.askCalls) != 1 || svc.askCalls[0] != "casos graves por departamento" {
		t.Errorf("ask calls = %v, want the recalled question", svc.askCalls)
	}
}

func TestChatRecalledQuestionReplacedByTyping(t *testing.T) {
	svc := &fakeQueryService{history: []api.QueryHistoryEntry{
		{Question: "casos graves por departamento"},
	}}
	_, _ = runSession(t, svc, "/use 1", "muertes por semana este mes", "exit")
	if len(svc.askCalls) != 1 || svc.askCalls[0] != "muertes por semana este mes" {
		t.Errorf("ask calls = %v, want only the typed question", svc.askCalls)
	}
}

func TestChatBangRecallAlias(t *testing.T) {
	svc := &fakeQueryService{history: []api.QueryHistoryEntry{
		{Question: "casos graves por departamento"},
	}}
	_, _ = runSession(t, svc, "!1", "", "exit")
	if len(svc.askCalls) != 1 || svc.askCalls[0] != "casos graves por departamento" {
		t.Errorf("ask calls = %v, want the recalled question", svc.askCalls)
	}
}

func TestChatRecallOutOfRange(t *testing.T) {
	svc := &fakeQueryService{history: []api.QueryHistoryEntry{
		{Question: "casos por ciudad"},
	}}
	_, ui := runSession(t, svc, "/use 9", "exit")
	if len(ui.errs) != 1 {
		t.Errorf("UI error calls = %d, want 1", len(ui.errs))
	}
	if len(svc.askCalls) != 0 {
		t.Errorf("out-of-range recall sent a query: %v", svc.askCalls)
	}
}

func TestChatEOFEndsSession(t *testing.T) {
	svc := &fakeQueryService{}
	runner := NewChatRunner(svc, &captureUI{}, &scriptedInput{})
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() on EOF = %v, want nil", err)
	}
}
