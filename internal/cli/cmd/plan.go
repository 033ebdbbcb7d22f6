package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bookfoundry/internal/estimate"
	"bookfoundry/internal/pipeline"
	"bookfoundry/internal/project"
	"bookfoundry/internal/util/format"
)

func newPlanCmd() *cobra.Command {
	var includeOutline bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what a render would submit and how long it should take",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			p, err := project.Load(opts.ProjectPath)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			plan := pipeline.PlanRender(p.RenderRequest(includeOutline))
			printPlan(cmd, plan)
			if !plan.Ready() {
				return &ExitError{Code: ExitCLIError, Err: errors.Join(plan.Problems...)}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&includeOutline, "include-outline", false, "Narrate the outline before the chapters")
	return cmd
}

func printPlan(cmd *cobra.Command, plan pipeline.Plan) {
	out := cmd.OutOrStdout()
	req := plan.Request
	fmt.Fprintf(out, "Title:   %s\n", req.Title)
	fmt.Fprintf(out, "Voice:   %s at %.2gx\n", req.Voice, req.Speed)
	if req.Instructions != "" {
		fmt.Fprintf(out, "Style:   %s\n", truncate(req.Instructions, 70))
	}

	rows := make([][]string, 0, len(plan.Estimate.Chapters)+2)
	if req.IncludeOutline {
		speed := req.Speed
		if speed == 0 {
			speed = 1
		}
		rows = append(rows, []string{"Outline", strconv.Itoa(plan.Estimate.OutlineWords),
			format.Duration(estimate.Seconds(plan.Estimate.OutlineWords, speed))})
	}
	for _, ch := range plan.Estimate.Chapters {
		rows = append(rows, []string{fmt.Sprintf("Chapter %d", ch.Index), strconv.Itoa(ch.Words), format.Duration(ch.Seconds)})
	}
	rows = append(rows, []string{"Total", strconv.Itoa(plan.Estimate.TotalWords), format.Duration(plan.Estimate.TotalSeconds)})
	fmt.Fprintln(out, renderTable([]string{"Segment", "Words", "Est. time"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))

	for _, p := range plan.Problems {
		fmt.Fprintf(out, "! %s\n", p)
	}
}
