package cli

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zzzzz1st/datajunction/build"
	"github.com/zzzzz1st/datajunction/loader"
)

type sqlConfig struct {
	catalogPath string
	sql         string
}

func newSQLCommand() *cobra.Command {
	cfg := &sqlConfig{}

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Build the query for a SQL statement over the metrics table",
		Example: `  djbuild sql --catalog catalog.yaml --sql 'SELECT B FROM metrics'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.catalogPath, "catalog", "", "path to the catalog YAML file")
	cmd.Flags().StringVar(&cfg.sql, "sql", "", "SQL query over the virtual metrics table")

	cmd.MarkFlagRequired("catalog") //nolint:errcheck
	cmd.MarkFlagRequired("sql")     //nolint:errcheck

	return cmd
}

func runSQL(cfg *sqlConfig) error {
	snap, err := loader.LoadFile(cfg.catalogPath, logrus.StandardLogger())
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}

	query, err := build.GetQueryForSQL(snap, cfg.sql)
	if err != nil {
		return err
	}

	printCreateQuery(query)
	return nil
}
