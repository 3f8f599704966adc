package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	models "cardshelf/internal/domain/models/placement"
	"cardshelf/internal/repository"
	servicePlacement "cardshelf/internal/service/placement"

	"github.com/spf13/cobra"
)

var (
	treeUser string
	treeJSON bool
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print a user's folder tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := repository.Open(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		svc := servicePlacement.NewPlacementService(store.Folders, store.Cards, store.TxManager, logger)
		roots, err := svc.ListFolderTree(ctx, treeUser)
		if err != nil {
			return err
		}

		if treeJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{"folders": roots})
		}
		printTree(cmd.OutOrStdout(), roots, 0)
		return nil
	},
}

func init() {
	treeCmd.Flags().StringVar(&treeUser, "user", "", "Owner user id")
	treeCmd.Flags().BoolVar(&treeJSON, "json", false, "Print JSON instead of an outline")
	_ = treeCmd.MarkFlagRequired("user")
}

func printTree(w io.Writer, nodes []*models.FolderTreeNode, depth int) {
	for _, node := range nodes {
		fmt.Fprintf(w, "%s%s (%d cards)\n", strings.Repeat("  ", depth), node.Name, node.CardCount)
		printTree(w, node.Children, depth+1)
	}
}
