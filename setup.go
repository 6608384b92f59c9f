package main

import (
	"github.com/spf13/cobra"

	"github.com/slmtnm/s3browse/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write an .s3cfg with the endpoint and region to browse",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.InteractiveS3Setup(cmd.InOrStdin(), cmd.OutOrStdout())
		return err
	},
}
