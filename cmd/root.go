package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "noticecheck",
	Short: "Compliance checking for UK landlord notices and money claims",
	Long: `Noticecheck validates Section 8 and Section 21 possession notices and
rent arrears money claims against the statutory requirements for
England and Wales. It reports blocking defects, warnings and missing
information, and derives the key dates for each case.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".noticecheck.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
