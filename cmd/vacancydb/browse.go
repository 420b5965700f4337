package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/vacancydb/internal/model"
	"github.com/amishk599/vacancydb/internal/tui"
)

var (
	browseKeyword      string
	browseAboveAverage bool
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored vacancies interactively (TUI)",
	Long: "Shows a picker of views over the stored vacancies, then a scrollable list where\n" +
		"enter opens the vacancy page. --keyword or --above-average jump straight to a list.",
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseKeyword, "keyword", "", "show vacancies whose title contains this keyword")
	browseCmd.Flags().BoolVar(&browseAboveAverage, "above-average", false, "show vacancies paid above the average salary")
	rootCmd.AddCommand(browseCmd)
}

type browseView struct {
	title string
	load  func(ctx context.Context, q model.Querier) ([]model.VacancyRow, error)
}

var browseViews = []browseView{
	{"All vacancies", func(ctx context.Context, q model.Querier) ([]model.VacancyRow, error) {
		return q.ListAllVacancies(ctx)
	}},
	{"Above average salary", func(ctx context.Context, q model.Querier) ([]model.VacancyRow, error) {
		return q.VacanciesAboveAverage(ctx)
	}},
}

func runBrowse(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stderr, debug)
	cfg := mustLoadConfig(logger)

	st, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	switch {
	case browseKeyword != "":
		rows, err := st.VacanciesMatchingKeyword(ctx, browseKeyword)
		if err != nil {
			return err
		}
		_, err = tui.RunBrowser(fmt.Sprintf("Matching '%s'", browseKeyword), rows)
		return err
	case browseAboveAverage:
		rows, err := st.VacanciesAboveAverage(ctx)
		if err != nil {
			return err
		}
		_, err = tui.RunBrowser("Above average salary", rows)
		return err
	}

	titles := make([]string, len(browseViews))
	for i, v := range browseViews {
		titles[i] = v.title
	}
	for {
		choice, err := tui.RunPicker("Browse vacancies", titles)
		if err != nil {
			return err
		}
		if choice < 0 {
			return nil
		}
		view := browseViews[choice]

		rows, err := view.load(ctx, st)
		if err != nil {
			return err
		}
		wantQuit, err := tui.RunBrowser(view.title, rows)
		if err != nil {
			return err
		}
		if wantQuit {
			return nil
		}
		// else: loop → back to picker
	}
}
