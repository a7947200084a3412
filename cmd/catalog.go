package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/assessor/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage objectives and questions",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Validate a YAML catalog and upsert its objectives and questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		w := cmd.OutOrStdout()
		if dryRun {
			fmt.Fprintf(w, "%s is valid: %d objectives, %d questions (version %s)\n",
				args[0], len(cat.Objectives), len(cat.Prompts), cat.Version)
			return nil
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		sum, err := catalog.Import(cmd.Context(), cat, rt.store.Objectives(), rt.store.Prompts())
		if err != nil {
			return fmt.Errorf("import catalog: %w", err)
		}
		rt.log.Info("catalog imported", "file", args[0], "objectives", sum.Objectives, "prompts", sum.Prompts)
		if wantJSON(cmd) {
			return printJSON(w, sum)
		}
		fmt.Fprintf(w, "Imported %d objectives and %d questions (version %s)\n", sum.Objectives, sum.Prompts, sum.Version)
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored objectives",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		objs, err := rt.store.Objectives().All(cmd.Context())
		if err != nil {
			return fmt.Errorf("list objectives: %w", err)
		}
		w := cmd.OutOrStdout()
		if wantJSON(cmd) {
			return printJSON(w, objs)
		}
		if len(objs) == 0 {
			fmt.Fprintln(w, "No objectives found. Run `assessor catalog import` first.")
			return nil
		}

		fmt.Fprintf(w, "%-28s  %-14s  %s\n", "ID", "Tier", "Prerequisites")
		fmt.Fprintln(w, strings.Repeat("─", 80))
		for _, o := range objs {
			fmt.Fprintf(w, "%-28s  %-14s  %s\n", o.ID, o.Tier, strings.Join(o.Prerequisites, ", "))
		}
		fmt.Fprintf(w, "\n%d objectives\n", len(objs))
		return nil
	},
}

func init() {
	catalogImportCmd.Flags().Bool("dry-run", false, "Validate only; do not write")
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogListCmd)
}
