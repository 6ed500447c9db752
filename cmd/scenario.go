package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"projection-engine/internal/cli"
	"projection-engine/internal/document"

	"github.com/spf13/cobra"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Manage the saved scenario library",
}

var scenarioSaveCmd = &cobra.Command{
	Use:   "save <name> <file>",
	Short: "Save a JSON or YAML scenario document under a name",
	Args:  cobra.ExactArgs(2),
	RunE:  runScenarioSave,
}

var scenarioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved scenarios",
	Args:  cobra.NoArgs,
	RunE:  runScenarioList,
}

var scenarioShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved scenario and its recorded runs",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioShow,
}

var scenarioExportCmd = &cobra.Command{
	Use:   "export <name> <file>",
	Short: "Export a saved scenario as a JSON document",
	Args:  cobra.ExactArgs(2),
	RunE:  runScenarioExport,
}

var scenarioDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved scenario and its runs",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioDelete,
}

func init() {
	scenarioCmd.AddCommand(scenarioSaveCmd, scenarioListCmd, scenarioShowCmd, scenarioExportCmd, scenarioDeleteCmd)
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarioSave(cmd *cobra.Command, args []string) error {
	name, path := args[0], args[1]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	sc, err := s.Import(cmd.Context(), name, data, ext == ".yaml" || ext == ".yml")
	if err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Printf("  Saved %s (%d transitions)\n", sc.Name, len(sc.Configuration.Transitions))
	}
	return nil
}

func runScenarioList(cmd *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	list, err := s.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("\n  No saved scenarios.")
		return nil
	}

	rows := make([][]string, 0, len(list))
	for _, sc := range list {
		rows = append(rows, []string{
			sc.Name,
			fmt.Sprintf("%d", sc.Transitions),
			fmt.Sprintf("%d", sc.Runs),
			sc.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Scenarios",
		Headers: []string{"Name", "Transitions", "Runs", "Updated"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func runScenarioShow(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	sc, err := s.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	runs, err := s.Runs(cmd.Context(), sc.Name)
	if err != nil {
		return err
	}

	base := sc.Configuration.BaseParameters
	fmt.Println()
	fmt.Println(cli.RenderTitle(strings.ToUpper(sc.Name)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Scenario",
		Headers: []string{"Field", "Value"},
		Rows: [][]string{
			{"Start", base.Horizon.StartDate.String()},
			{"Years", fmt.Sprintf("%d", base.Horizon.Years)},
			{"Cadence", string(base.Horizon.Period)},
			{"Income", fmt.Sprintf("%s %s", cli.FormatMoney(base.Income.Amount), base.Income.Frequency)},
			{"Loan", cli.FormatMoney(base.Loan.Principal)},
			{"Transitions", fmt.Sprintf("%d", len(sc.Configuration.Transitions))},
			{"Created", sc.CreatedAt.Local().Format("2006-01-02 15:04")},
		},
	}))

	if len(sc.Configuration.Transitions) > 0 {
		rows := make([][]string, 0, len(sc.Configuration.Transitions))
		for _, t := range sc.Configuration.Transitions {
			rows = append(rows, []string{t.EffectiveDate.String(), t.Label, t.ID})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Transitions",
			Headers: []string{"Date", "Label", "ID"},
			Rows:    rows,
		}))
	}

	if len(runs) > 0 {
		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			retire := "never"
			if r.RetirementDate != nil {
				retire = r.RetirementDate.String()
			}
			rows = append(rows, []string{
				r.RanAt.Local().Format("2006-01-02 15:04"),
				cli.FormatMoney(r.FinalNetWorth),
				retire,
				cli.RenderStatus(r.IsSustainable, "yes", "no"),
				fmt.Sprintf("%d", r.Warnings),
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Runs",
			Headers: []string{"Ran", "Final net worth", "Retirement", "Sustainable", "Warnings"},
			Rows:    rows,
		}))
	}
	fmt.Println()
	return nil
}

func runScenarioExport(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	sc, err := s.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := document.Save(args[1], sc.Configuration); err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Printf("  Exported %s to %s\n", sc.Name, args[1])
	}
	return nil
}

func runScenarioDelete(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Printf("  Deleted %s\n", args[0])
	}
	return nil
}
