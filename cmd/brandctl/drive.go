package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) driveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drive",
		Short: "Google Drive export access",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "connect",
		Short: "Run the consent flow and report the granted access",
		Long:  "Access tokens are held in memory only, so a grant lasts for the running command.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.services.DriveOAuth == nil {
				return errors.New("drive export is not configured: set DRIVE_CLIENT_ID and DRIVE_CLIENT_SECRET")
			}
			if !c.services.Drive.RequestInteractivePermission(cmd.Context()) {
				return errors.New("drive access was not granted")
			}
			if st := c.services.Drive.Status(); st.Expiry != nil {
				fmt.Fprintf(c.out, "connected until %s\n", st.Expiry.Format("15:04:05 MST"))
			}
			return nil
		},
	})
	return cmd
}
