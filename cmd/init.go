package cmd

import (
	"github.com/spf13/cobra"
	"github.com/woodhall335/noticecheck/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize noticecheck configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure noticecheck for your workspace and generates a .noticecheck.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
