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
	"github.com/saluddata/covidctl/pkg/cache"
	"github.com/saluddata/covidctl/pkg/ux"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// dashboardData is one full snapshot of everything the dashboard shows.
type dashboardData struct {
	Metrics  *api.DashboardMetrics `json:"metrics"`
	Schema   *api.TableSchema      `json:"schema"`
	Preview  []map[string]any      `json:"preview"`
	Stats    []api.ColumnStats     `json:"stats"`
	Severity map[string]int        `json:"severity"`
}

// Empty reports whether the backend has no data for this table yet.
func (d *dashboardData) Empty() bool {
	return d.Metrics == nil || (d.Metrics.TotalCases == 0 && len(d.Preview) == 0)
}

// statColumnSuffixes are the derived categorical columns the
// classification step produces. Columns with these suffixes make the
// most useful frequency panels, so they win over raw columns.
var statColumnSuffixes = []string{"_clasificacion", "_severidad", "_grupo", "_rango"}

// pickStatColumns chooses up to max columns to show frequency stats
// for. Derived categorical columns come first; if fewer than max
// exist, the leading raw columns fill the rest.
func pickStatColumns(columns []api.ColumnInfo, max int) []string {
	if max <= 0 {
		return nil
	}
	picked := make([]string, 0, max)
	seen := make(map[string]bool)
	for _, col := range columns {
		for _, suffix := range statColumnSuffixes {
			if strings.HasSuffix(col.Name, suffix) {
				picked = append(picked, col.Name)
				seen[col.Name] = true
				break
			}
		}
		if len(picked) == max {
			return picked
		}
	}
	for _, col := range columns {
		if len(picked) == max {
			break
		}
		if !seen[col.Name] {
			picked = append(picked, col.Name)
		}
	}
	return picked
}

// fetchDashboardData assembles a snapshot, consulting the cache first.
// The independent endpoint calls run concurrently; column stats need
// the schema, so they run as a second phase.
func fetchDashboardData(ctx context.Context, client *api.Client, c *cache.Cache,
	tableType api.TableType, cfg config.DashboardConfig) (*dashboardData, error) {

	key := cache.DashboardKey(string(tableType), "snapshot")
	var cached dashboardData
	if c.Get(key, &cached) {
		return &cached, nil
	}

	data := &dashboardData{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := client.Metrics(gctx, tableType)
		if err != nil {
			return err
		}
		data.Metrics = m
		return nil
	})
	g.Go(func() error {
		s, err := client.Schema(gctx, tableType)
		if err != nil {
			return err
		}
		data.Schema = s
		return nil
	})
	g.Go(func() error {
		p, err := client.DataPreview(gctx, cfg.PreviewRows, tableType)
		if err != nil {
			return err
		}
		data.Preview = p
		return nil
	})
	g.Go(func() error {
		// Severity only exists once classification has run; an error
		// here should not take down the whole snapshot.
		sev, err := client.DashboardSeverity(gctx)
		if err == nil {
			data.Severity = sev
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sg, sctx := errgroup.WithContext(ctx)
	columns := pickStatColumns(data.Schema.Columns, cfg.StatColumns)
	stats := make([]api.ColumnStats, len(columns))
	for i, column := range columns {
		i, column := i, column
		sg.Go(func() error {
			st, err := client.ColumnStats(sctx, column, tableType)
			if err != nil {
				return err
			}
			stats[i] = *st
			return nil
		})
	}
	if err := sg.Wait(); err != nil {
		return nil, err
	}
	data.Stats = stats

	c.Set(key, data, cache.DefaultTTL)
	return data, nil
}

// --- bubbletea model ---

type dashboardTickMsg time.Time

// dashboardMsg carries a fetch result tagged with the generation that
// requested it, so a slow response for a previous table type cannot
// overwrite the current view.
type dashboardMsg struct {
	gen  int
	data *dashboardData
	err  error
}

type dashboardModel struct {
	fetch     func(api.TableType) (*dashboardData, error)
	persist   func(api.TableType)
	tableType api.TableType
	refresh   time.Duration

	gen     int
	loading bool
	data    *dashboardData
	err     error
	width   int
	spin    spinner.Model
}

func newDashboardModel(fetch func(api.TableType) (*dashboardData, error),
	persist func(api.TableType), tableType api.TableType, refresh time.Duration) dashboardModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ux.Styles.Subtitle))
	return dashboardModel{
		fetch:     fetch,
		persist:   persist,
		tableType: tableType,
		refresh:   refresh,
		loading:   true,
		width:     100,
		spin:      sp,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), m.tickCmd(), m.spin.Tick)
}

func (m dashboardModel) fetchCmd() tea.Cmd {
	gen := m.gen
	tt := m.tableType
	return func() tea.Msg {
		data, err := m.fetch(tt)
		return dashboardMsg{gen: gen, data: data, err: err}
	}
}

func (m dashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return dashboardTickMsg(t)
	})
}

// reload bumps the generation and starts a fresh fetch.
func (m dashboardModel) reload() (dashboardModel, tea.Cmd) {
	m.gen++
	m.loading = true
	return m, tea.Batch(m.fetchCmd(), m.spin.Tick)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			next, cmd := m.reload()
			return next, cmd
		case "1", "2", "3", "4":
			idx := int(msg.String()[0] - '1')
			if m.tableType == api.TableTypes[idx] {
				return m, nil
			}
			m.tableType = api.TableTypes[idx]
			if m.persist != nil {
				m.persist(m.tableType)
			}
			next, cmd := m.reload()
			return next, cmd
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			// Let the spinner chain die while idle.
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case dashboardTickMsg:
		next, cmd := m.reload()
		return next, tea.Batch(cmd, m.tickCmd())

	case dashboardMsg:
		if msg.gen != m.gen {
			// Stale response from before a table switch or refresh.
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

func (m dashboardModel) View() string {
	var b strings.Builder
	b.WriteString(ux.Styles.Title.Render("COVID-19 Pipeline Dashboard"))
	b.WriteString("  ")
	b.WriteString(ux.Styles.Muted.Render("table: " + string(m.tableType)))
	if m.loading {
		b.WriteString("  " + m.spin.View() + ux.Styles.Muted.Render("refreshing"))
	}
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(ux.Styles.Error.Render("error: " + api.UserMessage(m.err)))
		b.WriteString("\n")
	case m.data == nil:
		b.WriteString(ux.Styles.Muted.Render("loading..."))
		b.WriteString("\n")
	case m.data.Empty():
		b.WriteString(ux.Styles.Muted.Render("No data yet. Upload a file with `covidctl upload file` to get started."))
		b.WriteString("\n")
	default:
		b.WriteString(renderDashboard(m.data))
	}

	b.WriteString("\n")
	b.WriteString(ux.Styles.Muted.Render("r refresh · 1-4 table type (auto/original/clean/classified) · q quit"))
	return b.String()
}

// renderDashboard lays out one snapshot as text panels.
func renderDashboard(data *dashboardData) string {
	var b strings.Builder

	m := data.Metrics
	b.WriteString(fmt.Sprintf("  %s %s    %s %s    %s %s    %s %s\n",
		ux.Styles.Bold.Render("cases"), formatCount(m.TotalCases),
		ux.Styles.Bold.Render("active"), formatCount(m.ActiveCases),
		ux.Styles.Bold.Render("recovered"), formatCount(m.Recovered),
		ux.Styles.Bold.Render("deaths"), formatCount(m.Deaths)))
	if m.LastUpdated != "" {
		b.WriteString(ux.Styles.Muted.Render("  updated " + m.LastUpdated))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if s := data.Schema; s != nil {
		b.WriteString(ux.Styles.Subtitle.Render(fmt.Sprintf("  %s (%d columns)", s.TableName, s.TotalColumns)))
		b.WriteString("\n")
	}

	for _, stat := range data.Stats {
		if len(stat.TopValues) == 0 {
			continue
		}
		b.WriteString(ux.Styles.Bold.Render("  " + stat.Column))
		b.WriteString("\n")
		total := 0
		for _, tv := range stat.TopValues {
			total += tv.Count
		}
		for _, tv := range stat.TopValues {
			b.WriteString(fmt.Sprintf("    %-20s %8d %s\n", tv.Value, tv.Count,
				ux.ProgressBar(tv.Count, total, 20)))
		}
	}

	if len(data.Severity) > 0 {
		b.WriteString(ux.Styles.Bold.Render("  severity"))
		b.WriteString("\n")
		classes := make([]string, 0, len(data.Severity))
		total := 0
		for class, n := range data.Severity {
			classes = append(classes, class)
			total += n
		}
		sort.Strings(classes)
		for _, class := range classes {
			b.WriteString(fmt.Sprintf("    %-20s %8d %s\n", class, data.Severity[class],
				ux.ProgressBar(data.Severity[class], total, 20)))
		}
	}

	if len(data.Preview) > 0 {
		b.WriteString(ux.Styles.Muted.Render(fmt.Sprintf("  preview: %d rows fetched", len(data.Preview))))
		b.WriteString("\n")
	}
	return b.String()
}

func formatCount(n int) string {
	if n >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	}
	if n >= 10_000 {
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}

// runDashboard shows the dashboard. Interactive by default; --once or
// plain mode prints a single static snapshot.
func runDashboard(cmd *cobra.Command, args []string) {
	tableType := api.TableType(tableTypeFlag)
	valid := false
	for _, tt := range api.TableTypes {
		if tt == tableType {
			valid = true
		}
	}
	if !valid {
		fail(&api.ValidationError{Field: "table-type",
			Message: fmt.Sprintf("unknown table type %q: use auto, original, clean, or classified", tableTypeFlag)})
	}

	client := newAPIClient()
	c := openDashboardCache()
	if c != nil {
		defer c.Close()
	}
	dashCfg := config.Global.Dashboard
	store := openSettings()

	// Prefer the persisted table type when the flag stays on its default.
	if tableTypeFlag == "auto" {
		if saved, err := store.Get(); err == nil && saved.DashboardTableType != "" {
			tableType = api.TableType(saved.DashboardTableType)
		}
	}

	fetch := func(tt api.TableType) (*dashboardData, error) {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(config.Global.Backend.TimeoutSeconds)*time.Second)
		defer cancel()
		return fetchDashboardData(ctx, client, c, tt, dashCfg)
	}

	if runOnce || ux.Plain() {
		data, err := fetch(tableType)
		if err != nil {
			fail(err)
		}
		if data.Empty() {
			ux.Muted("No data yet. Upload a file with `covidctl upload file` to get started.")
			return
		}
		ux.Title("COVID-19 Pipeline Dashboard (" + string(tableType) + ")")
		fmt.Print(renderDashboard(data))
		return
	}

	persist := func(tt api.TableType) {
		if err := store.SetDashboardTableType(string(tt)); err != nil {
			appLogger.Warn("could not persist table type", "error", err)
		}
	}
	model := newDashboardModel(fetch, persist, tableType,
		time.Duration(dashCfg.RefreshSeconds)*time.Second)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fail(err)
	}
}

// runDashboardTimeseries prints the per-day aggregates as a table.
func runDashboardTimeseries(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	points, err := client.TimeSeries(cmd.Context(), daysFlag)
	if err != nil {
		fail(err)
	}
	if len(points) == 0 {
		ux.Muted("No time series data yet.")
		return
	}
	rows := make([][]any, 0, len(points))
	for _, p := range points {
		rows = append(rows, []any{p.Date, p.Cases, p.Deaths, p.Vaccinated})
	}
	ux.PrintTable([]any{"Date", "Cases", "Deaths", "Vaccinated"}, rows)
}

// runDashboardTables lists the tables available to visualize.
func runDashboardTables(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	tables, err := client.AvailableTables(cmd.Context())
	if err != nil {
		fail(err)
	}
	if len(tables) == 0 {
		ux.Muted("No tables yet.")
		return
	}
	for _, t := range tables {
		fmt.Println("  " + t)
	}
}

// runDashboardGeo shows per-region case aggregates.
func runDashboardGeo(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	entries, err := client.Geographic(cmd.Context())
	if err != nil {
		fail(err)
	}
	if len(entries) == 0 {
		ux.Muted("No geographic data yet.")
		return
	}
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{e.Country, e.Region, formatCount(e.TotalCases), formatCount(e.Deaths)})
	}
	ux.PrintTable([]any{"Country", "Region", "Cases", "Deaths"}, rows)
}

// runDashboardAges shows the case distribution by age group.
func runDashboardAges(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	buckets, err := client.AgeDistribution(cmd.Context())
	if err != nil {
		fail(err)
	}
	if len(buckets) == 0 {
		ux.Muted("No age data yet.")
		return
	}
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	for _, b := range buckets {
		fmt.Printf("  %-8s %s %s\n", b.AgeGroup,
			ux.ProgressBar(b.Count, total, 30), formatCount(b.Count))
	}
}

// runDashboardVaccination shows the vaccination breakdown.
func runDashboardVaccination(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	stats, err := client.Vaccination(cmd.Context())
	if err != nil {
		fail(err)
	}
	if stats.Total == 0 {
		ux.Muted("No vaccination data yet.")
		return
	}
	ux.PrintTable([]any{"Total", "Vaccinated", "Not Vaccinated", "Rate"}, [][]any{{
		formatCount(stats.Total),
		formatCount(stats.Vaccinated),
		formatCount(stats.NotVaccinated),
		fmt.Sprintf("%.1f%%", stats.VaccinationRate),
	}})
}

// runDashboardKPIs shows the headline indicators.
func runDashboardKPIs(cmd *cobra.Command, args []string) {
	client := newAPIClient()
	report, err := client.KPIs(cmd.Context())
	if err != nil {
		fail(err)
	}
	ux.PrintTable([]any{"Total Cases", "Critical", "Mortality", "Avg Age"}, [][]any{{
		formatCount(report.TotalCases),
		formatCount(report.CriticalCases),
		fmt.Sprintf("%.1f%%", report.MortalityRate),
		fmt.Sprintf("%.1f", report.AverageAge),
	}})
	if report.UpdatedAt != "" {
		ux.Muted("updated at " + report.UpdatedAt)
	}
}
