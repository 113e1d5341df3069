package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aretw0/pious/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts pious as an MCP server on standard input/output, so AI agents can
parse lines and query saved trees as tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tree := appConfig.Server.Tree
		if cmd.Flags().Changed("tree") {
			tree, _ = cmd.Flags().GetString("tree")
		}

		setup, err := newEngineSetup(cmd, nil)
		if err != nil {
			return err
		}
		defer setup.close()
		pool := setup.pool(appConfig.Server.PoolSize)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = pool.Close(ctx)
		}()

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		logger.Info("starting pious MCP server (stdio)")
		return mcp.NewServer(pool, mcp.WithTree(tree), mcp.WithLogger(logger)).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("tree", "", "Tree used when a tool call names none")
}
