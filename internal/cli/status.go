package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planka-fit/planka/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status <user>",
	Short: "Show a user's streak, level and achievement summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	userID := args[0]

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	streak, err := d.Streak.Current(userID)
	if err != nil {
		return err
	}
	total, err := d.DB.SessionCount(userID)
	if err != nil {
		return err
	}
	unlocked, err := d.DB.AchievementCount(userID)
	if err != nil {
		return err
	}
	level, err := d.Profile.Level(userID)
	if err != nil {
		return err
	}

	fmt.Printf("User:          %s\n", userID)
	fmt.Printf("Level:         %d\n", level)
	fmt.Printf("Sessions:      %d\n", total)
	fmt.Printf("Streak:        %d day(s) (longest %d)\n", streak.CurrentStreak, streak.LongestStreak)
	fmt.Printf("Achievements:  %d\n", unlocked)
	return nil
}
