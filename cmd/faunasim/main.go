// Command faunasim runs the herbivore population dynamics engine against
// a standalone demo grass habitat (package demohabitat) and renders
// progress in a terminal UI: a scrolling summary view and a per-HFT
// population table.
package main

import (
	_ "embed"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/evoranch/fauna/config"
	"github.com/evoranch/fauna/date"
	"github.com/evoranch/fauna/demohabitat"
	"github.com/evoranch/fauna/habitat"
	"github.com/evoranch/fauna/hft"
	"github.com/evoranch/fauna/logging"
	"github.com/evoranch/fauna/output"
	"github.com/evoranch/fauna/world"
)

//go:embed demo.yaml
var demoYAML []byte

func main() {
	var (
		instructions = flag.String("instructions", "", "Path to a YAML instruction file (options + hfts); empty uses the embedded demo herd")
		days         = flag.Int("days", 3650, "Number of days to simulate")
		startYear    = flag.Int("start-year", 1, "Calendar year the run starts on")
		outPath      = flag.String("out", "faunasim_output.csv", "CSV output path; empty disables writing")
		headless     = flag.Bool("headless", false, "Run to completion without the terminal UI")
		plain        = flag.Bool("plain-log", false, "Emit JSON log lines instead of the console writer")
		version      = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Println("faunasim — large-herbivore population dynamics engine")
		return
	}

	logging.Init(!*plain)

	cfg, err := config.Load(*instructions)
	if err != nil {
		fmt.Fprintln(os.Stderr, "faunasim:", err)
		os.Exit(1)
	}
	if *instructions == "" {
		if err := yaml.Unmarshal(demoYAML, cfg); err != nil {
			fmt.Fprintln(os.Stderr, "faunasim: parsing embedded demo herd:", err)
			os.Exit(1)
		}
	}

	hfts, err := cfg.BuildHFTs()
	if err != nil {
		fmt.Fprintln(os.Stderr, "faunasim:", err)
		os.Exit(1)
	}
	params, err := cfg.BuildWorldParameters()
	if err != nil {
		fmt.Fprintln(os.Stderr, "faunasim:", err)
		os.Exit(1)
	}

	var writer output.Writer
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "faunasim:", err)
			os.Exit(1)
		}
		defer f.Close()
		writer = output.NewTextTables(f)
	}

	w := world.New(hfts, params, writer)

	demoHabitat, err := demohabitat.NewHabitat("demo-range", demoGrassParameters(), habitat.Environment{AirTemperatureC: 12}, digestibilityModel(hfts))
	if err != nil {
		fmt.Fprintln(os.Stderr, "faunasim:", err)
		os.Exit(1)
	}
	if err := w.CreateSimulationUnit(demoHabitat); err != nil {
		fmt.Fprintln(os.Stderr, "faunasim:", err)
		os.Exit(1)
	}

	runLogger := logging.ForRun(*instructions, len(hfts))
	runLogger.Info().Msg("starting run")
	today, err := date.New(0, *startYear)
	if err != nil {
		fmt.Fprintln(os.Stderr, "faunasim:", err)
		os.Exit(1)
	}

	if *headless {
		runHeadless(w, today, *days, demoHabitat)
		return
	}

	model := newModel(w, today, *days, demoHabitat)
	program := tea.NewProgram(model)
	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "faunasim:", err)
		os.Exit(1)
	}
}

// demoGrassParameters is the seed habitat faunasim runs against when no
// instruction file supplies a host vegetation model: arbitrary but valid
// temperate-grassland numbers. Seasonal digestibility emerges from the
// live/dead pool dynamics under the monthly growth and decay rates.
func demoGrassParameters() demohabitat.GrassParameters {
	return demohabitat.GrassParameters{
		FoliarCover:            0.6,
		InitialMassKgPerKm2:    120000,
		ReserveKgPerKm2:        20000,
		SaturationKgPerKm2:     200000,
		LiveDigestibility:      0.7,
		DeadDigestibility:      0.45,
		DecayRateByMonth:       []float64{0.002, 0.002, 0.001, 0.0005, 0.0005, 0.0008, 0.001, 0.0015, 0.002, 0.0025, 0.003, 0.0025},
		GrowthRateByMonth:      []float64{0.001, 0.0015, 0.003, 0.006, 0.008, 0.006, 0.004, 0.003, 0.002, 0.0015, 0.001, 0.001},
		NitrogenFractionOfMass: 0.015,
	}
}

// digestibilityModel picks the demo habitat's digestibility model from
// the herd's configuration. The habitat is shared by every HFT, so the
// first HFT's tag decides; an empty herd falls back to PftFixed.
func digestibilityModel(hfts []*hft.HFT) hft.DigestibilityModelKind {
	if len(hfts) == 0 {
		return hft.PftFixed
	}
	return hfts[0].DigestibilityModel
}

func runHeadless(w *world.World, today date.Date, days int, h *demohabitat.Habitat) {
	for i := 0; i < days; i++ {
		if err := w.SimulateDay(today, world.SimDayOptions{DoHerbivores: true}); err != nil {
			fmt.Fprintln(os.Stderr, "faunasim:", err)
			os.Exit(1)
		}
		today = today.Next()
	}
	printSummary(w, h)
}

func printSummary(w *world.World, h *demohabitat.Habitat) {
	fmt.Println("final grass mass (kg/km2):", h.GrassMassKgPerKm2())
	fmt.Println("final excreted nitrogen (kg/km2):", h.ExcretedNitrogen())
	for _, u := range w.Units() {
		for _, p := range u.Populations {
			fmt.Printf("%s: density=%.2f ind/km2\n", p.HFT().Name, p.TotalDensity())
		}
	}
}

// tickMsg drives the auto-advance timer.
type tickMsg time.Time

func doTick() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

var keys = struct {
	quit  key.Binding
	space key.Binding
	enter key.Binding
	view  key.Binding
}{
	quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	space: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
	enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "step")),
	view:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "cycle view")),
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	tableStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1)
)

// model is the bubbletea program state: the world being driven, the
// calendar cursor, and the view/run controls bound to keys.
type model struct {
	world       *world.World
	today       date.Date
	daysLeft    int
	habitat     *demohabitat.Habitat
	paused      bool
	view        string
	lastErr     error
	daysElapsed int
}

func newModel(w *world.World, today date.Date, days int, h *demohabitat.Habitat) model {
	return model{
		world:    w,
		today:    today,
		daysLeft: days,
		habitat:  h,
		view:     "summary",
	}
}

func (m model) Init() tea.Cmd { return doTick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.quit):
			return m, tea.Quit
		case key.Matches(msg, keys.space):
			m.paused = !m.paused
		case key.Matches(msg, keys.enter):
			m.step()
		case key.Matches(msg, keys.view):
			if m.view == "summary" {
				m.view = "populations"
			} else {
				m.view = "summary"
			}
		}
	case tickMsg:
		if !m.paused {
			m.step()
		}
		return m, doTick()
	}
	return m, nil
}

func (m *model) step() {
	if m.daysLeft <= 0 || m.lastErr != nil {
		return
	}
	if err := m.world.SimulateDay(m.today, world.SimDayOptions{DoHerbivores: true}); err != nil {
		m.lastErr = err
		return
	}
	m.today = m.today.Next()
	m.daysLeft--
	m.daysElapsed++
}

func (m model) View() string {
	header := titleStyle.Render(fmt.Sprintf("faunasim — %s", m.today)) + " " +
		infoStyle.Render(fmt.Sprintf("day %d  remaining %d  %s", m.daysElapsed, m.daysLeft, pauseLabel(m.paused)))

	var body string
	switch m.view {
	case "populations":
		body = m.populationsView()
	default:
		body = m.summaryView()
	}

	footer := infoStyle.Render("space pause/resume · enter step · v cycle view · q quit")
	if m.lastErr != nil {
		footer = infoStyle.Render(fmt.Sprintf("error: %v — further steps halted", m.lastErr))
	}

	return header + "\n" + tableStyle.Render(body) + "\n" + footer
}

func pauseLabel(paused bool) string {
	if paused {
		return "[paused]"
	}
	return "[running]"
}

func (m model) summaryView() string {
	out := fmt.Sprintf("grass available: %.0f kg/km2\nnitrogen returned: %.2f kg/km2\npopulations:\n", m.habitat.GrassMassKgPerKm2(), m.habitat.ExcretedNitrogen())
	for _, u := range m.world.Units() {
		for _, p := range u.Populations {
			out += fmt.Sprintf("  %-16s %8.2f ind/km2\n", p.HFT().Name, p.TotalDensity())
		}
	}
	return out
}

func (m model) populationsView() string {
	type row struct {
		hftName string
		sex     string
		ageYr   int
		ind     float64
		bodyCnd float64
	}
	var rows []row
	for _, u := range m.world.Units() {
		for _, p := range u.Populations {
			for _, c := range p.Cohorts() {
				if c.IsDead() {
					continue
				}
				rows = append(rows, row{p.HFT().Name, c.Sex().String(), c.AgeYears(), c.IndPerKm2(), c.BodyCondition()})
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].hftName != rows[j].hftName {
			return rows[i].hftName < rows[j].hftName
		}
		if rows[i].sex != rows[j].sex {
			return rows[i].sex < rows[j].sex
		}
		return rows[i].ageYr < rows[j].ageYr
	})

	out := fmt.Sprintf("%-14s %-6s %5s %10s %10s\n", "hft", "sex", "age", "ind/km2", "bodycond")
	for _, r := range rows {
		out += fmt.Sprintf("%-14s %-6s %5d %10.2f %10.2f\n", r.hftName, r.sex, r.ageYr, r.ind, r.bodyCnd)
	}
	return out
}
