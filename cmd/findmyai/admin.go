package main

import (
	"context"

	"github.com/bynikesh/findmyai-sub001/internal/container"
	"github.com/spf13/cobra"
)

var promoteAdminCmd = &cobra.Command{
	Use:   "promote-admin <email>",
	Short: "Grant admin rights to an existing account",
	Long: `Grant admin rights to the account registered with email.

Examples:
  findmyai promote-admin alice@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
			user, err := c.Auth().PromoteAdmin(args[0])
			if err != nil {
				return err
			}
			if ok, jerr := printJSON(user); ok {
				return jerr
			}
			printSuccess("%s (%s) is now an admin", user.Name, user.Email)
			return nil
		})
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the Elasticsearch index from the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
			if !c.Search().Enabled() {
				printWarning("ELASTICSEARCH_URL is not set; search uses SQL and needs no index")
				return nil
			}
			n, err := c.Search().Reindex(ctx)
			if err != nil {
				return err
			}
			printSuccess("Indexed %d verified tools", n)
			return nil
		})
	},
}
