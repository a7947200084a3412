package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/assessor/internal/ability"
	"github.com/abhisek/assessor/internal/assessment"
	"github.com/abhisek/assessor/internal/followup"
	"github.com/abhisek/assessor/internal/store"
)

var nextCmd = &cobra.Command{
	Use:   "next <learner> <objective>",
	Short: "Select the next question for a learner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		req := assessment.NextRequest{LearnerID: args[0], ObjectiveID: args[1]}
		req.SessionID, _ = cmd.Flags().GetString("session")
		req.LastResponseID, _ = cmd.Flags().GetString("last")

		sel, err := rt.engine.SelectNext(cmd.Context(), req)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(w, sel)
		}

		fmt.Fprintf(w, "Target:    %.0f\n", sel.TargetDifficulty)
		if sel.Adjustment != nil {
			fmt.Fprintf(w, "Change:    %+.0f (%s)\n", sel.Adjustment.Delta, sel.Adjustment.Reason)
		}
		if sel.NoCandidate {
			fmt.Fprintf(w, "No question: %s\n", sel.Reason)
		} else {
			printPrompt(w, sel.Prompt)
			if sel.CooldownRelaxed {
				fmt.Fprintln(w, "(cooldown relaxed)")
			}
		}
		printAbility(w, sel.Ability, sel.ShouldStopEarly)
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <learner> <objective> <prompt>",
	Short: "Record a graded response",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := assessment.SubmitRequest{LearnerID: args[0], ObjectiveID: args[1], PromptID: args[2]}
		req.Score, _ = cmd.Flags().GetFloat64("score")
		req.Confidence, _ = cmd.Flags().GetInt("confidence")
		req.Difficulty, _ = cmd.Flags().GetFloat64("difficulty")
		req.SessionID, _ = cmd.Flags().GetString("session")
		t, _ := cmd.Flags().GetString("type")
		req.AssessmentType = store.AssessmentType(t)

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		res, err := rt.engine.SubmitResponse(cmd.Context(), req)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(w, res)
		}

		fmt.Fprintf(w, "Response:     %s (#%d)\n", res.Response.ID, res.Response.Sequence)
		fmt.Fprintf(w, "Calibration:  %s (delta %+.1f)\n", res.Calibration.Category, res.Calibration.Delta)
		fmt.Fprintf(w, "Difficulty:   %.0f -> %.0f (%s)\n", res.Adjustment.Previous, res.Adjustment.NewDifficulty, res.Adjustment.Reason)
		fmt.Fprintf(w, "Mastery:      %s\n", res.Mastery.Status)
		if res.Transition != nil {
			fmt.Fprintf(w, "Transition:   %s -> %s (%s)\n", res.Transition.From, res.Transition.To, res.Transition.Trigger)
		}
		printAbility(w, res.Ability, res.ShouldStopEarly)
		printFollowUp(w, res.FollowUp)
		return nil
	},
}

var followupCmd = &cobra.Command{
	Use:   "followup <learner> <objective>",
	Short: "Preview the follow-up for a score without recording it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := assessment.FollowUpRequest{LearnerID: args[0], ObjectiveID: args[1]}
		req.Score, _ = cmd.Flags().GetFloat64("score")
		req.Difficulty, _ = cmd.Flags().GetFloat64("difficulty")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		res, err := rt.engine.GenerateFollowUp(cmd.Context(), req)
		if err != nil {
			return err
		}
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), res)
		}
		printFollowUp(cmd.OutOrStdout(), res)
		return nil
	},
}

func printPrompt(w io.Writer, p *store.Prompt) {
	if p == nil {
		return
	}
	fmt.Fprintf(w, "Question:  %s  [%s, difficulty %.0f]\n", p.ID, p.AssessmentType, p.Difficulty)
	if p.Text != "" {
		fmt.Fprintf(w, "           %s\n", p.Text)
	}
}

func printAbility(w io.Writer, est *ability.Estimate, stop *bool) {
	if est == nil {
		return
	}
	fmt.Fprintf(w, "Ability:      θ=%.2f ± %.2f (n=%d)\n", est.Theta, est.ConfidenceInterval, est.Responses)
	if stop != nil && *stop {
		fmt.Fprintln(w, "              estimate is precise enough to stop early")
	}
}

func printFollowUp(w io.Writer, r *followup.Result) {
	if r == nil {
		return
	}
	section(w, "Follow-up")
	fmt.Fprintf(w, "Directive:  %s\n", r.Directive.Kind())
	fmt.Fprintf(w, "Reason:     %s\n", r.Reason)
	if r.HasFollowUp {
		printPrompt(w, r.Prompt)
	}
}

func init() {
	nextCmd.Flags().String("session", "", "Session id")
	nextCmd.Flags().String("last", "", "Id of the response just graded")

	submitCmd.Flags().Float64("score", 0, "Score 0-100")
	submitCmd.Flags().Int("confidence", 0, "Self-rated confidence 1-5")
	submitCmd.Flags().Float64("difficulty", 0, "Difficulty the question was answered at")
	submitCmd.Flags().String("session", "", "Session id")
	submitCmd.Flags().String("type", "", "Assessment type (defaults to the question's type)")
	_ = submitCmd.MarkFlagRequired("score")
	_ = submitCmd.MarkFlagRequired("confidence")
	_ = submitCmd.MarkFlagRequired("difficulty")

	followupCmd.Flags().Float64("score", 0, "Score 0-100")
	followupCmd.Flags().Float64("difficulty", 0, "Current difficulty")
	_ = followupCmd.MarkFlagRequired("score")
	_ = followupCmd.MarkFlagRequired("difficulty")
}
