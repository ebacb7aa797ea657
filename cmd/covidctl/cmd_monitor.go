// Copyright (C) 2026 SaludData Labs (dev@saluddata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/saluddata/covidctl/cmd/covidctl/config"
	"github.com/saluddata/covidctl/pkg/api"
	"github.com/saluddata/covidctl/pkg/ux"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// monitorLogLevels cycles through the level filter with the 'e' key.
// Empty string means no filter.
var monitorLogLevels = []string{"", "ERROR", "WARNING", "INFO", "SUCCESS"}

// monitorData is one poll of the monitoring endpoints. Each poll
// replaces the previous snapshot wholesale.
type monitorData struct {
	Processes *api.ProcessList
	Logs      []api.LogEntry
	Alerts    []api.Alert
}

// fetchMonitorData polls processes, logs, and alerts concurrently.
func fetchMonitorData(ctx context.Context, client *api.Client, logLimit int, level string) (*monitorData, error) {
	data := &monitorData{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := client.Processes(gctx)
		if err != nil {
			return err
		}
		data.Processes = p
		return nil
	})
	g.Go(func() error {
		logs, err := client.Logs(gctx, logLimit, level)
		if err != nil {
			return err
		}
		data.Logs = logs
		return nil
	})
	g.Go(func() error {
		alerts, err := client.Alerts(gctx)
		if err != nil {
			return err
		}
		data.Alerts = alerts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// --- bubbletea model ---

type monitorTickMsg time.Time

type monitorMsg struct {
	gen  int
	data *monitorData
	err  error
}

type monitorModel struct {
	fetch        func(level string) (*monitorData, error)
	persistAuto  func(bool)
	persistLevel func(string)
	poll         time.Duration

	gen         int
	autoRefresh bool
	levelIdx    int
	loading     bool
	data        *monitorData
	err         error
	spin        spinner.Model
}

func newMonitorModel(fetch func(level string) (*monitorData, error),
	persistAuto func(bool), persistLevel func(string),
	poll time.Duration, autoRefresh bool, level string) monitorModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ux.Styles.Subtitle))
	return monitorModel{
		fetch:        fetch,
		persistAuto:  persistAuto,
		persistLevel: persistLevel,
		poll:         poll,
		autoRefresh:  autoRefresh,
		levelIdx:     levelIndex(level),
		loading:      true,
		spin:         sp,
	}
}

// levelIndex maps a persisted filter back to its cycle position.
// Unknown values fall back to unfiltered.
func levelIndex(level string) int {
	for i, l := range monitorLogLevels {
		if l == level {
			return i
		}
	}
	return 0
}

func (m monitorModel) level() string {
	return monitorLogLevels[m.levelIdx]
}

func (m monitorModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchCmd(), m.spin.Tick}
	if m.autoRefresh {
		cmds = append(cmds, m.tickCmd())
	}
	return tea.Batch(cmds...)
}

func (m monitorModel) fetchCmd() tea.Cmd {
	gen := m.gen
	level := m.level()
	return func() tea.Msg {
		data, err := m.fetch(level)
		return monitorMsg{gen: gen, data: data, err: err}
	}
}

func (m monitorModel) tickCmd() tea.Cmd {
	return tea.Tick(m.poll, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) reload() (monitorModel, tea.Cmd) {
	m.gen++
	m.loading = true
	return m, tea.Batch(m.fetchCmd(), m.spin.Tick)
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			next, cmd := m.reload()
			return next, cmd
		case "a":
			m.autoRefresh = !m.autoRefresh
			if m.persistAuto != nil {
				m.persistAuto(m.autoRefresh)
			}
			if m.autoRefresh {
				return m, m.tickCmd()
			}
			return m, nil
		case "e":
			m.levelIdx = (m.levelIdx + 1) % len(monitorLogLevels)
			if m.persistLevel != nil {
				m.persistLevel(m.level())
			}
			next, cmd := m.reload()
			return next, cmd
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case monitorTickMsg:
		if !m.autoRefresh {
			// A tick scheduled before the toggle; let the chain die.
			return m, nil
		}
		next, cmd := m.reload()
		return next, tea.Batch(cmd, m.tickCmd())

	case monitorMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.data = msg.data
		return m, nil
	}
	return m, nil
}

func (m monitorModel) View() string {
	var b strings.Builder
	b.WriteString(ux.Styles.Title.Render("Pipeline Monitor"))
	b.WriteString("  ")
	if m.autoRefresh {
		b.WriteString(ux.Styles.Muted.Render(fmt.Sprintf("auto-refresh every %s", m.poll)))
	} else {
		b.WriteString(ux.Styles.Muted.Render("auto-refresh off"))
	}
	if level := m.level(); level != "" {
		b.WriteString(ux.Styles.Muted.Render("  logs: " + level))
	}
	if m.loading {
		b.WriteString("  " + m.spin.View() + ux.Styles.Muted.Render("polling"))
	}
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(ux.Styles.Error.Render("error: " + api.UserMessage(m.err)))
		b.WriteString("\n")
	case m.data == nil:
		b.WriteString(ux.Styles.Muted.Render("loading..."))
		b.WriteString("\n")
	default:
		b.WriteString(renderMonitor(m.data))
	}

	b.WriteString("\n")
	b.WriteString(ux.Styles.Muted.Render("r refresh · a auto-refresh · e log level · q quit"))
	return b.String()
}

// renderMonitor lays out one poll as text panels.
func renderMonitor(data *monitorData) string {
	var b strings.Builder

	counts := data.Processes.CountByStatus()
	b.WriteString(fmt.Sprintf("  %s %d   %s %d   %s %d   %s %d\n\n",
		ux.StatusBadge(api.StatusRunning), counts[api.StatusRunning],
		ux.StatusBadge(api.StatusCompleted), counts[api.StatusCompleted],
		ux.StatusBadge(api.StatusFailed), counts[api.StatusFailed],
		ux.StatusBadge(api.StatusPending), counts[api.StatusPending]))

	for _, p := range data.Processes.Processes {
		line := fmt.Sprintf("  %-14s %s", p.Name, ux.StatusBadge(p.Status))
		if p.Status == api.StatusRunning {
			line += "  " + ux.ProgressBar(p.Progress, 100, 20)
		}
		if p.LastRun != "" {
			line += ux.Styles.Muted.Render("  last run " + p.LastRun)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(data.Alerts) > 0 {
		b.WriteString("\n")
		b.WriteString(ux.Styles.Bold.Render("  alerts"))
		b.WriteString("\n")
		for _, a := range data.Alerts {
			b.WriteString(fmt.Sprintf("  %s %s: %s\n",
				ux.LogLevelStyle(a.Severity).Render("["+a.Severity+"]"), a.Process, a.Message))
		}
	}

	if len(data.Logs) > 0 {
		b.WriteString("\n")
		b.WriteString(ux.Styles.Bold.Render("  logs"))
		b.WriteString("\n")
		for _, l := range data.Logs {
			b.WriteString(fmt.Sprintf("  %s %s %s %s\n",
				ux.Styles.Muted.Render(l.Timestamp),
				ux.LogLevelStyle(l.Level).Render(fmt.Sprintf("%-7s", l.Level)),
				ux.Styles.Subtitle.Render(l.Process),
				l.Message))
		}
	}
	return b.String()
}

// runMonitor shows the process monitor. Interactive by default; --once
// or plain mode prints a single poll.
func runMonitor(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	monCfg := config.Global.Monitor
	store := openSettings()

	fetch := func(level string) (*monitorData, error) {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(config.Global.Backend.TimeoutSeconds)*time.Second)
		defer cancel()
		return fetchMonitorData(ctx, client, monCfg.LogLimit, level)
	}

	if runOnce || ux.Plain() {
		data, err := fetch("")
		if err != nil {
			fail(err)
		}
		ux.Title("Pipeline Monitor")
		fmt.Print(renderMonitor(data))
		return
	}

	persistAuto := func(enabled bool) {
		if err := store.SetMonitorAutoRefresh(enabled); err != nil {
			appLogger.Warn("could not persist auto-refresh", "error", err)
		}
	}
	persistLevel := func(level string) {
		if err := store.SetMonitorLogLevel(level); err != nil {
			appLogger.Warn("could not persist log level filter", "error", err)
		}
	}
	model := newMonitorModel(fetch, persistAuto, persistLevel,
		time.Duration(monCfg.PollSeconds)*time.Second,
		store.MonitorAutoRefresh(), store.MonitorLogLevel())
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fail(err)
	}
}

// runHealth prints the backend's component health report.
func runHealth(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	health, err := client.Health(cmd.Context())
	if err != nil {
		fail(err)
	}
	ux.Title("System Health: " + health.Status)
	if len(health.Components) > 0 {
		names := make([]string, 0, len(health.Components))
		for name := range health.Components {
			names = append(names, name)
		}
		sort.Strings(names)
		rows := make([][]any, 0, len(names))
		for _, name := range names {
			rows = append(rows, []any{name, ux.StatusBadge(health.Components[name])})
		}
		ux.PrintTable([]any{"Component", "Status"}, rows)
	}
	if health.CheckedAt != "" {
		ux.Muted("checked at " + health.CheckedAt)
	}
}
