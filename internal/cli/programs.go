package cli

import (
	"fmt"

	"boxbreath/internal/core/breath"
	"boxbreath/internal/core/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// NewProgramsCommand lists the built-in presets.
func NewProgramsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "programs",
		Short: "List built-in breathing programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(model.Programs))
			for _, program := range model.Programs {
				rows = append(rows, []string{
					program.Name,
					fmt.Sprintf("%ds", program.Inhale),
					fmt.Sprintf("%ds", program.InhaleHold),
					fmt.Sprintf("%ds", program.Exhale),
					fmt.Sprintf("%ds", program.ExhaleHold),
					breath.FormatClock(program.Durations().Cycle()),
				})
			}
			programs := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("PROGRAM", "INHALE", "HOLD", "EXHALE", "HOLD", "CYCLE").
				Rows(rows...)
			_, err := fmt.Fprintln(cmd.OutOrStdout(), programs.String())
			return err
		},
	}
}
