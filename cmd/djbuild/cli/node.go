package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zzzzz1st/datajunction/build"
	"github.com/zzzzz1st/datajunction/catalog"
	"github.com/zzzzz1st/datajunction/loader"
)

type nodeConfig struct {
	catalogPath string
	nodeName    string
	groupbys    []string
	filters     []string
	databaseID  int
	hasDatabase bool
}

func newNodeCommand() *cobra.Command {
	cfg := &nodeConfig{}

	cmd := &cobra.Command{
		Use:   "node",
		Short: "Build the query for a single node",
		Example: `  djbuild node --catalog catalog.yaml --node B
  djbuild node --catalog catalog.yaml --node B --groupby one --filter "two='x'"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.hasDatabase = cmd.Flags().Changed("database-id")
			return runNode(cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.catalogPath, "catalog", "", "path to the catalog YAML file")
	cmd.Flags().StringVar(&cfg.nodeName, "node", "", "node name to build")
	cmd.Flags().StringArrayVar(&cfg.groupbys, "groupby", nil, "dotted column name to group by (repeatable)")
	cmd.Flags().StringArrayVar(&cfg.filters, "filter", nil, "filter in <col><op><literal> form (repeatable)")
	cmd.Flags().IntVar(&cfg.databaseID, "database-id", 0, "explicit database id to target")

	cmd.MarkFlagRequired("catalog") //nolint:errcheck
	cmd.MarkFlagRequired("node")    //nolint:errcheck

	return cmd
}

func runNode(cfg *nodeConfig) error {
	snap, err := loader.LoadFile(cfg.catalogPath, logrus.StandardLogger())
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}

	node := snap.FindNodeByName(cfg.nodeName)
	if node == nil {
		return catalog.ErrUnknownNode.New(cfg.nodeName)
	}

	var databaseID *int
	if cfg.hasDatabase {
		databaseID = &cfg.databaseID
	}

	query, err := build.GetQueryForNode(snap, node, cfg.groupbys, cfg.filters, databaseID)
	if err != nil {
		return err
	}

	printCreateQuery(query)
	return nil
}

func printCreateQuery(q *catalog.CreateQuery) {
	fmt.Printf("database_id: %d\n", q.DatabaseID)
	fmt.Printf("submitted_query: %s\n", q.SubmittedQuery)
}
