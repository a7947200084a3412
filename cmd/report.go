package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var masteryCmd = &cobra.Command{
	Use:   "mastery <learner> <objective>",
	Short: "Show mastery status and the criteria still missing",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		rec, err := rt.engine.GetMasteryStatus(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		history, err := rt.engine.MasteryHistory(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("mastery history: %w", err)
		}

		w := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(w, map[string]any{"mastery": rec, "history": history})
		}

		fmt.Fprintf(w, "Learner:    %s\n", rec.LearnerID)
		fmt.Fprintf(w, "Objective:  %s\n", rec.ObjectiveID)
		fmt.Fprintf(w, "Status:     %s\n", rec.Status)
		if rec.VerifiedAt != nil {
			fmt.Fprintf(w, "Verified:   %s\n", rec.VerifiedAt.Local().Format("2006-01-02 15:04:05"))
		}

		section(w, "Criteria")
		c := rec.CriteriaMet
		fmt.Fprintf(w, "  %s consecutive high scores\n", yesNo(c.ConsecutiveHighScores))
		fmt.Fprintf(w, "  %s multiple assessment types\n", yesNo(c.MultipleAssessmentTypes))
		fmt.Fprintf(w, "  %s appropriate difficulty\n", yesNo(c.AppropriateDifficulty))
		fmt.Fprintf(w, "  %s accurate calibration\n", yesNo(c.AccurateCalibration))
		fmt.Fprintf(w, "  %s time spaced\n", yesNo(c.TimeSpaced))

		if len(rec.NextSteps) > 0 {
			section(w, "Next steps")
			for _, s := range rec.NextSteps {
				fmt.Fprintf(w, "  - %s\n", s)
			}
		}
		if len(history) > 0 {
			section(w, "History")
			for _, tr := range history {
				fmt.Fprintf(w, "  %-12s -> %-12s  %s\n", tr.From, tr.To, tr.Trigger)
			}
		}
		return nil
	},
}

var calibrationCmd = &cobra.Command{
	Use:   "calibration <learner>",
	Short: "Show confidence calibration over the lookback window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		objective, _ := cmd.Flags().GetString("objective")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		rep, err := rt.engine.CalibrationReport(cmd.Context(), args[0], objective)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(w, rep)
		}
		if len(rep.Records) == 0 {
			fmt.Fprintln(w, "No responses in the lookback window.")
			return nil
		}

		fmt.Fprintf(w, "Responses:  %d\n", len(rep.Records))
		if rep.MeanAbsError != nil {
			fmt.Fprintf(w, "MAE:        %.1f\n", *rep.MeanAbsError)
		}
		if rep.Correlation != nil {
			fmt.Fprintf(w, "Pearson r:  %.2f (%s)\n", rep.Correlation.R, rep.Correlation.Strength)
		} else {
			fmt.Fprintln(w, "Pearson r:  n/a (too few responses)")
		}

		section(w, "By objective")
		fmt.Fprintf(w, "%-24s  %5s  %8s  %6s  %s\n", "Objective", "N", "Delta", "MAE", "Category")
		for _, t := range rep.Topics {
			fmt.Fprintf(w, "%-24s  %5d  %+8.1f  %6.1f  %s\n", t.Topic, t.Count, t.MeanDelta, t.MeanAbsError, t.Category)
		}
		return nil
	},
}

var abilityCmd = &cobra.Command{
	Use:   "ability <learner> <objective>",
	Short: "Show the current ability estimate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		rep, err := rt.engine.AbilityReport(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(w, rep)
		}
		if rep.Estimate == nil {
			fmt.Fprintln(w, "Not enough responses for an estimate yet.")
			return nil
		}
		e := rep.Estimate
		fmt.Fprintf(w, "Theta:       %.3f\n", e.Theta)
		fmt.Fprintf(w, "Std error:   %.3f\n", e.StandardError)
		fmt.Fprintf(w, "95%% CI:      ±%.3f\n", e.ConfidenceInterval)
		fmt.Fprintf(w, "Responses:   %d\n", e.Responses)
		fmt.Fprintf(w, "Iterations:  %d (converged %s)\n", e.Iterations, yesNo(e.Converged))
		if rep.ShouldStopEarly != nil {
			fmt.Fprintf(w, "Stop early:  %s\n", yesNo(*rep.ShouldStopEarly))
		}
		return nil
	},
}

func init() {
	calibrationCmd.Flags().String("objective", "", "Restrict to one objective")
}
