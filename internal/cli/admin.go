package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yildizdb/yildiz-go/yildiz"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version reported by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.connect()
			if err != nil {
				return err
			}
			v, err := client.ServerVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, v)
			return nil
		},
	}
}

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Server liveness, health, statistics and auth checks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "alive",
		Short: "Check that the server answers its liveness probe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.connect()
			if err != nil {
				return err
			}
			if err := client.IsAlive(cmd.Context()); err != nil {
				return err
			}
			a.success("alive")
			return nil
		},
	})

	for _, doc := range []struct {
		use, short string
		call       func(*yildiz.Client) docCall
	}{
		{"health", "Show the server's health report", func(c *yildiz.Client) docCall { return c.Health }},
		{"stats", "Show statistics for the tenant", func(c *yildiz.Client) docCall { return c.Stats }},
		{"metrics", "Show server metrics", func(c *yildiz.Client) docCall { return c.Metrics }},
	} {
		call := doc.call
		cmd.AddCommand(&cobra.Command{
			Use:   doc.use,
			Short: doc.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := a.connect()
				if err != nil {
					return err
				}
				res, err := call(client)(cmd.Context())
				if err != nil {
					return err
				}
				a.printDoc(res)
				return nil
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "auth",
		Short: "Verify the configured token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.connect()
			if err != nil {
				return err
			}
			status, err := client.CheckAuth(cmd.Context())
			if err != nil {
				return err
			}
			a.success("authorized (%d)", status)
			return nil
		},
	})

	return cmd
}
