package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"procedure-backend/internal/quality/checklist"
)

func newChecklistCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Print the built-in checklist as YAML",
		Long: `Print the built-in section checklist in the format accepted by
--checklist and by the API's CHECKLIST_PATH. Redirect it to a file and edit
the patterns or weights to build a custom checklist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			minScore := v.GetInt("min_score")
			if minScore < 0 || minScore > 100 {
				minScore = defaultMinScore
			}
			data, err := checklist.DefaultFile(minScore)
			if err != nil {
				return fmt.Errorf("render checklist: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	return cmd
}
