package root

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "jupiter",
	Short:         "Jupiter — the goal management system for your life",
	Long:          "Jupiter plans habits, chores, metrics and big plans, and turns them into an inbox you can actually finish.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newInitCmd(),
		newWorkspaceCmd(),
		newUserCmd(),
		newProjectCmd(),
		newTaskCmd(),
		newHabitCmd(),
		newChoreCmd(),
		newBigPlanCmd(),
		newMetricCmd(),
		newPersonCmd(),
		newVacationCmd(),
		newJournalCmd(),
		newMemCmd(),
		newNoteCmd(),
		newTimePlanCmd(),
		newStreamCmd(),
		newPushCmd(),
		newGenCmd(),
		newScoreCmd(),
		newSearchCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(exitCode(err))
	}
}

// exitCode separates domain rejections (1) from infrastructure failures
// (2) so scripts can tell a bad request from a broken install.
func exitCode(err error) int {
	var (
		inputErr    domain.InputValidationError
		notFound    domain.NotFoundError
		exists      domain.AlreadyExistsError
		conflict    domain.ConflictError
		cannot      domain.CannotModifyError
		unavailable domain.FeatureUnavailableError
	)
	switch {
	case errors.As(err, &inputErr),
		errors.As(err, &notFound),
		errors.As(err, &exists),
		errors.As(err, &conflict),
		errors.As(err, &cannot),
		errors.As(err, &unavailable):
		return 1
	default:
		return 2
	}
}
