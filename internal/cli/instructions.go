package cli

import (
	"fmt"
	"strings"

	"boxbreath/internal/core/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// NewInstructionsCommand prints how to breathe during a session.
func NewInstructionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "instructions",
		Aliases: []string{"how"},
		Short:   "Show how to do box breathing",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderInstructions())
			return err
		},
	}
}

func renderInstructions() string {
	title := lipgloss.NewStyle().Bold(true).MarginBottom(1)
	step := lipgloss.NewStyle().PaddingLeft(1).Width(72)

	lines := make([]string, 0, len(model.Instructions))
	for index, text := range model.Instructions {
		lines = append(lines, step.Render(fmt.Sprintf("%d. %s", index+1, text)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title.Render(model.InstructionsTitle), strings.Join(lines, "\n"))
}
