package cmd

import (
	"fmt"

	"projection-engine/internal/cli"
	"projection-engine/internal/compare"
	"projection-engine/internal/model"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare [file]",
	Short: "Compare a projection with and without its transitions",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the full result as JSON")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration(cmd, args)
	if err != nil {
		return err
	}
	e, err := newEngine()
	if err != nil {
		return err
	}
	res, err := compare.Compare(e, cfg)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(res)
	}

	with, without := res.WithTransitions, res.WithoutTransitions
	retire := "n/a"
	if d := res.Comparison.RetirementDateDifference; d != nil {
		retire = cli.FormatYears(*d)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("TRANSITION IMPACT"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Scenarios",
		Headers: []string{"Metric", "With", "Without"},
		Rows: [][]string{
			{"Final net worth", cli.FormatMoney(with.Final().NetWorth), cli.FormatMoney(without.Final().NetWorth)},
			{"Retirement", retirementLabel(with.SimulationResult), retirementLabel(without.SimulationResult)},
			{"Sustainable",
				cli.RenderStatus(with.IsSustainable, "yes", "no"),
				cli.RenderStatus(without.IsSustainable, "yes", "no")},
			{"Milestones", fmt.Sprintf("%d", len(with.Milestones)), fmt.Sprintf("%d", len(without.Milestones))},
			{"---"},
			{"Net worth difference", cli.FormatDelta(res.Comparison.FinalNetWorthDifference), ""},
			{"Retirement difference", retire, ""},
		},
	}))
	fmt.Println()
	fmt.Print(renderMilestoneComparison(res.MilestoneComparison))
	fmt.Println()
	return nil
}

func retirementLabel(res model.SimulationResult) string {
	if res.RetirementDate == nil {
		return "never"
	}
	return res.RetirementDate.String()
}

func renderMilestoneComparison(mc model.MilestoneComparison) string {
	var rows [][]string
	for _, p := range mc.CommonMilestones {
		rows = append(rows, []string{
			p.WithTransitions.Title,
			p.WithTransitions.Date.String(),
			p.WithoutTransitions.Date.String(),
			cli.FormatDays(p.TimingDifferenceInDays),
		})
	}
	for _, m := range mc.UniqueToWithTransitions {
		rows = append(rows, []string{m.Title, m.Date.String(), "-", "only with"})
	}
	for _, m := range mc.UniqueToWithoutTransitions {
		rows = append(rows, []string{m.Title, "-", m.Date.String(), "only without"})
	}
	out := cli.RenderTable(cli.Table{
		Title:   "Milestones",
		Headers: []string{"Milestone", "With", "Without", "Timing"},
		Rows:    rows,
	})

	var byType [][]string
	for _, s := range mc.ByType {
		if s.Count == 0 {
			continue
		}
		byType = append(byType, []string{
			string(s.Type),
			fmt.Sprintf("%d", s.Count),
			cli.FormatDays(s.AverageTimingInDays),
			string(s.Effect),
		})
	}
	if len(byType) > 0 {
		out += "\n" + cli.RenderTable(cli.Table{
			Title:   "By type",
			Headers: []string{"Type", "Matched", "Avg timing", "Effect"},
			Rows:    byType,
		})
	}
	return out
}
