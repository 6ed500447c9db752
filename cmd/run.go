package cmd

import (
	"fmt"
	"os"
	"strings"

	"projection-engine/internal/cli"
	"projection-engine/internal/model"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	flagRecord bool
	flagJSON   bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a projection and show the yearly trajectory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProjection,
}

func init() {
	runCmd.Flags().BoolVar(&flagRecord, "record", false, "Record the run against the --scenario in the library")
	runCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the full result as JSON")
	rootCmd.AddCommand(runCmd)
}

func runProjection(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration(cmd, args)
	if err != nil {
		return err
	}
	e, err := newEngine()
	if err != nil {
		return err
	}
	res, err := e.RunEnhanced(cfg)
	if err != nil {
		return err
	}

	if flagRecord {
		if flagScenario == "" {
			return fmt.Errorf("--record needs --scenario")
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		if _, err := s.RecordRun(cmd.Context(), flagScenario, res.SimulationResult); err != nil {
			return err
		}
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Recorded run for %s\n", flagScenario)
		}
	}

	if flagJSON {
		return printJSON(res)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROJECTION"))
	fmt.Println()
	fmt.Print(renderOverview(cfg, res.SimulationResult))
	fmt.Println()
	fmt.Print(renderTrajectory(cfg.BaseParameters.Horizon.Period.PerYear(), res.SimulationResult))
	fmt.Println()
	fmt.Print(renderMilestones(res.Milestones))
	fmt.Println()
	fmt.Print(renderWarnings(res.Warnings))
	fmt.Println()
	return nil
}

func renderOverview(cfg model.SimulationConfiguration, res model.SimulationResult) string {
	first, final := res.States[0], res.Final()
	retire := "never"
	if res.RetirementDate != nil {
		retire = res.RetirementDate.String()
		if res.RetirementAge != nil {
			retire += fmt.Sprintf(" (age %.1f)", *res.RetirementAge)
		}
	}
	values := make([]float64, len(res.States))
	for i, s := range res.States {
		values[i] = s.NetWorth
	}

	return cli.RenderTable(cli.Table{
		Title:   "Overview",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Period", fmt.Sprintf("%s to %s", first.Date, final.Date)},
			{"Cadence", string(cfg.BaseParameters.Horizon.Period)},
			{"Transitions", fmt.Sprintf("%d", len(cfg.Transitions))},
			{"---"},
			{"Opening net worth", cli.FormatMoney(first.NetWorth)},
			{"Final net worth", cli.FormatMoney(final.NetWorth)},
			{"Change", cli.FormatDelta(final.NetWorth - first.NetWorth)},
			{"Trend", cli.RenderSparkline(values)},
			{"---"},
			{"Retirement", retire},
			{"Sustainable", cli.RenderStatus(res.IsSustainable, "yes", "no")},
		},
	})
}

// renderTrajectory shows one row per projected year plus the final state.
func renderTrajectory(perYear int, res model.SimulationResult) string {
	row := func(s model.FinancialState) []string {
		return []string{
			s.Date.String(),
			cli.FormatCompact(s.NetWorth),
			cli.FormatCompact(s.Cash),
			cli.FormatCompact(s.Investments),
			cli.FormatCompact(s.Superannuation),
			cli.FormatCompact(s.LoanBalance),
			cli.FormatCompact(s.OffsetBalance),
		}
	}
	var rows [][]string
	for i := 0; i < len(res.States); i += perYear {
		rows = append(rows, row(res.States[i]))
	}
	if last := len(res.States) - 1; last%perYear != 0 {
		rows = append(rows, row(res.States[last]))
	}
	return cli.RenderTable(cli.Table{
		Title:   "Trajectory",
		Headers: []string{"Date", "Net worth", "Cash", "Invest", "Super", "Loan", "Offset"},
		Rows:    rows,
	})
}

func renderMilestones(ms []model.Milestone) string {
	if len(ms) == 0 {
		return "  No milestones\n"
	}
	rows := make([][]string, 0, len(ms))
	for _, m := range ms {
		amount := ""
		if m.FinancialImpact != nil {
			amount = cli.FormatMoney(m.FinancialImpact.Amount)
		}
		rows = append(rows, []string{m.Date.String(), m.Title, amount})
	}
	return cli.RenderTable(cli.Table{
		Title:   "Milestones",
		Headers: []string{"Date", "Milestone", "Amount"},
		Rows:    rows,
	})
}

func renderWarnings(ws []model.CalculationMessage) string {
	codes := make([]string, len(ws))
	messages := make([]string, len(ws))
	for i, w := range ws {
		codes[i] = w.Code
		messages[i] = w.Message
	}
	return cli.RenderWarnings(codes, messages)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(strings.TrimSpace(string(out)))
	return nil
}
