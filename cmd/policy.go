package cmd

import (
	"github.com/spf13/cobra"
)

// policyCmd prints the effective policy, defaults included, so it can be
// saved and edited as a starting point.
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Print the effective value and document-type policy as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := appPolicy.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(policyCmd)
}
