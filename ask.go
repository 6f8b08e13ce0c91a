package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zaynkorai/gemini-deepcrawl-research/agent"
	"github.com/zaynkorai/gemini-deepcrawl-research/enhancement"
)

func askCMD() *cobra.Command {
	var (
		verbose bool
		loops   int
		queries int
	)
	ask := &cobra.Command{
		Use:   "ask <question>",
		Short: "Research a question once and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			rt, err := setup(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			overrides := &agent.RunnableConfig{Configurable: map[string]interface{}{}}
			if cmd.Flags().Changed("loops") {
				overrides.Configurable["max_research_loops"] = loops
			}
			if cmd.Flags().Changed("queries") {
				overrides.Configurable["number_of_initial_queries"] = queries
			}

			state, err := rt.workflow.Run(ctx, strings.Join(args, " "), overrides)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), state, verbose)
			return nil
		},
	}
	ask.Flags().BoolVarP(&verbose, "verbose", "v", false, "also print the enhancement decision report")
	ask.Flags().IntVar(&loops, "loops", 0, "maximum research loops")
	ask.Flags().IntVar(&queries, "queries", 0, "number of initial search queries")
	return ask
}

func printResult(w io.Writer, state agent.OverallState, verbose bool) {
	heading := color.New(color.FgCyan, color.Bold)

	if len(state.Messages) > 0 {
		heading.Fprintln(w, "Answer")
		fmt.Fprintln(w, state.Messages[len(state.Messages)-1].GetContent())
		fmt.Fprintln(w)
	}

	if len(state.SourcesGathered) > 0 {
		heading.Fprintln(w, "Sources")
		for i, s := range state.SourcesGathered {
			fmt.Fprintf(w, "  %d. %s %s\n", i+1, s.Title, color.BlueString(s.URL))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Research loops: %d\n", state.ResearchLoopCount)
	fmt.Fprintf(w, "Enhancement: %s\n", statusColor(state.EnhancementStatus))
	if state.EnhancedSourcesCount > 0 {
		fmt.Fprintf(w, "Enhanced sources: %d\n", state.EnhancedSourcesCount)
	}
	if state.EnhancementError != "" {
		fmt.Fprintln(w, color.RedString(state.EnhancementError))
	}

	if verbose && state.EnhancementDecision != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, color.YellowString(enhancement.FormatDecisionReport(*state.EnhancementDecision)))
	}
}

func statusColor(status agent.EnhancementStatus) string {
	switch status {
	case agent.EnhancementCompleted:
		return color.GreenString(string(status))
	case agent.EnhancementFailed, agent.EnhancementError:
		return color.RedString(string(status))
	case "":
		return "not attempted"
	default:
		return color.YellowString(string(status))
	}
}
