package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		p, err := a.Tracker.AddProject(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Printf("created project %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		projects := a.Tracker.Projects()
		if len(projects) == 0 {
			fmt.Println("no projects yet; create one with 'timeledger project add <name>'")
			return nil
		}
		for _, p := range projects {
			marker := " "
			if p.Hidden {
				marker = "H"
			}
			fmt.Printf("%s %-26s %s\n", marker, p.ID, p.Name)
		}
		return nil
	},
}

var projectRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a project (ledger rows stay, orphaned)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.Tracker.DeleteProject(args[0]); err != nil {
			return err
		}
		fmt.Println("project deleted")
		return nil
	},
}

var projectHideCmd = &cobra.Command{
	Use:   "hide <id>",
	Short: "Toggle a project's visibility in the timer (stats unaffected)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.Tracker.ToggleProjectHidden(args[0]); err != nil {
			return err
		}
		fmt.Println("project visibility toggled")
		return nil
	},
}

func init() {
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectRemoveCmd)
	projectCmd.AddCommand(projectHideCmd)
}
