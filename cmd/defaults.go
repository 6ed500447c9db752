package cmd

import (
	"fmt"
	"time"

	"projection-engine/internal/document"
	"projection-engine/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagStart string
	flagOut   string
)

var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default configuration as a scenario document",
	Args:  cobra.NoArgs,
	RunE:  runDefaults,
}

func init() {
	defaultsCmd.Flags().StringVar(&flagStart, "start", "", "Start date (YYYY-MM-DD), default first of this month")
	defaultsCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Write the document to this file instead of stdout")
	rootCmd.AddCommand(defaultsCmd)
}

func runDefaults(_ *cobra.Command, _ []string) error {
	now := time.Now()
	start := model.NewDate(now.Year(), now.Month(), 1)
	if flagStart != "" {
		d, err := model.ParseDate(flagStart)
		if err != nil {
			return err
		}
		start = d
	}
	cfg := model.DefaultConfiguration(start)

	if flagOut != "" {
		if err := document.Save(flagOut, cfg); err != nil {
			return err
		}
		if !flagQuiet {
			fmt.Printf("  Wrote %s\n", flagOut)
		}
		return nil
	}

	data, err := document.Export(cfg, now)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
