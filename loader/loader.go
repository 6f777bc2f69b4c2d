// Package loader builds a catalog.Snapshot from a YAML document. It is
// the minimal ambient stand-in for the out-of-scope "YAML repository
// loader" collaborator spec.md names (SPEC_FULL.md §2): it does not
// watch files, hot-reload, or talk to any backend schema. It reads the
// document once, resolves node parents by name, and logs one line per
// entity registered the way auth/audit.go logs audit trails.
package loader

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"

	"github.com/zzzzz1st/datajunction/catalog"
	"github.com/zzzzz1st/datajunction/dependency"
	"github.com/zzzzz1st/datajunction/sqlast"
)

// Document is the top-level shape of a catalog YAML file.
type Document struct {
	Databases []databaseDoc `yaml:"databases"`
	Nodes     []nodeDoc     `yaml:"nodes"`
}

type databaseDoc struct {
	ID   int     `yaml:"id"`
	Name string  `yaml:"name"`
	URI  string  `yaml:"uri"`
	Cost float64 `yaml:"cost"`
}

type tableDoc struct {
	DatabaseID int         `yaml:"database_id"`
	Catalog    string      `yaml:"catalog"`
	Schema     string      `yaml:"schema"`
	Table      string      `yaml:"table"`
	Columns    []columnDoc `yaml:"columns"`
}

type columnDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type nodeDoc struct {
	Name       string      `yaml:"name"`
	Expression string      `yaml:"expression"`
	Columns    []columnDoc `yaml:"columns"`
	Tables     []tableDoc  `yaml:"tables"`
}

// LoadFile reads and parses a catalog YAML file from path and builds a
// Snapshot, logging one line per database and node registered plus a
// Warn for every table whose column set could not be resolved (spec §7:
// "loader records an empty column set and logs").
func LoadFile(path string, log *logrus.Logger) (*catalog.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open catalog file")
	}
	defer f.Close()
	return Load(f, log)
}

// Load parses a catalog YAML document from r and builds a Snapshot.
func Load(r io.Reader, log *logrus.Logger) (*catalog.Snapshot, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read catalog document")
	}

	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "unable to parse catalog YAML")
	}

	databasesByID := make(map[int]*catalog.Database, len(doc.Databases))
	databases := make([]*catalog.Database, 0, len(doc.Databases))
	for _, d := range doc.Databases {
		db := &catalog.Database{ID: d.ID, Name: d.Name, URI: d.URI, Cost: d.Cost}
		databasesByID[db.ID] = db
		databases = append(databases, db)
		log.WithFields(logrus.Fields{
			"database_id": db.ID,
			"name":        db.Name,
			"cost":        db.Cost,
		}).Info("registered database")
	}

	nodes := make([]*catalog.Node, 0, len(doc.Nodes))
	nodesByName := make(map[string]*catalog.Node, len(doc.Nodes))
	for _, n := range doc.Nodes {
		node := &catalog.Node{
			Name:       n.Name,
			Expression: n.Expression,
			Columns:    convertColumns(n.Columns),
		}
		for _, t := range n.Tables {
			table := convertTable(t, databasesByID, log, node.Name)
			node.Tables = append(node.Tables, table)
		}
		nodes = append(nodes, node)
		nodesByName[node.Name] = node
		log.WithFields(logrus.Fields{
			"node":   node.Name,
			"source": node.IsSource(),
		}).Info("registered node")
	}

	for _, n := range doc.Nodes {
		if n.Expression == "" {
			continue
		}
		if err := wireParents(nodesByName[n.Name], nodesByName); err != nil {
			return nil, err
		}
	}

	return catalog.NewSnapshot(databases, nodes), nil
}

func convertColumns(cols []columnDoc) []catalog.Column {
	out := make([]catalog.Column, len(cols))
	for i, c := range cols {
		out[i] = catalog.Column{Name: c.Name, Type: catalog.ColumnType(c.Type)}
	}
	return out
}

// convertTable builds a Table from its YAML form. A table whose
// database_id does not resolve to a known database logs a Warn and keeps
// an empty column set rather than failing the whole load, matching §7's
// isolation of loader-side schema-introspection failures from the core.
func convertTable(t tableDoc, databasesByID map[int]*catalog.Database, log *logrus.Logger, nodeName string) *catalog.Table {
	db, ok := databasesByID[t.DatabaseID]
	table := &catalog.Table{
		Catalog: t.Catalog,
		Schema:  t.Schema,
		Table:   t.Table,
		Columns: convertColumns(t.Columns),
	}
	if ok {
		table.Database = db
		return table
	}
	log.WithFields(logrus.Fields{
		"node":        nodeName,
		"table":       t.Table,
		"database_id": t.DatabaseID,
	}).Warn("table references unknown database; recording empty column set")
	table.Columns = nil
	return table
}

// wireParents resolves node.Parents from the node names its expression
// depends on (spec §3 P3: parents = {catalog.find(name) | name in
// get_dependencies(expression)}), failing with UnknownParent if a
// dependency doesn't name a registered node.
func wireParents(node *catalog.Node, nodesByName map[string]*catalog.Node) error {
	sel, err := sqlast.Parse(node.Expression)
	if err != nil {
		return err
	}
	deps := dependency.GetDependencies(sel)
	for _, name := range dependency.Names(deps) {
		parent, ok := nodesByName[name]
		if !ok {
			return catalog.ErrUnknownParent.New(name)
		}
		node.Parents = append(node.Parents, parent)
	}
	return nil
}
