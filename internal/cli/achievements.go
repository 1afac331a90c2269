package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/planka-fit/planka/internal/daemon"
)

func init() {
	achievementsCmd.Flags().BoolVar(&achievementsAll, "all", false, "Show the full catalog, not just unlocked entries")
	rootCmd.AddCommand(achievementsCmd)
}

var achievementsAll bool

var achievementsCmd = &cobra.Command{
	Use:   "achievements <user>",
	Short: "List a user's achievements",
	RunE:  runAchievements,
	Args:  cobra.ExactArgs(1),
}

func runAchievements(cmd *cobra.Command, args []string) error {
	userID := args[0]

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if achievementsAll {
		catalog, err := d.Achievement.CatalogFor(userID)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tRARITY\tPOINTS\tSTATUS")
		for _, entry := range catalog {
			status := "locked"
			switch {
			case entry.Unlocked:
				status = "unlocked"
			case entry.NeedsReview:
				status = "needs review"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				entry.ID, entry.Name, entry.Rarity, entry.Points, status)
		}
		return w.Flush()
	}

	list, err := d.Achievement.ListUnlocked(userID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No achievements yet. Keep planking.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEARNED")
	for _, ua := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			ua.AchievementID,
			ua.AchievementName,
			ua.EarnedAt.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}
