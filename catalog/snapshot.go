package catalog

// Snapshot is the read-only view of the Catalog Store that a single build
// sees (spec §5: "the planner sees materialized data"). It implements
// §6.1's consumed contract. A Snapshot never mutates once built; the
// loader (external collaborator) is the only writer, and it always
// produces a fresh Snapshot rather than mutating one in place, so that a
// build in flight never observes a partially-loaded catalog.
type Snapshot struct {
	databasesByID map[int]*Database
	databases     []*Database
	nodesByName   map[string]*Node
}

// NewSnapshot builds a Snapshot from a fully-populated set of databases
// and nodes. Callers (the loader) are expected to have already wired
// Node.Parents and Table.Database references.
func NewSnapshot(databases []*Database, nodes []*Node) *Snapshot {
	s := &Snapshot{
		databasesByID: make(map[int]*Database, len(databases)),
		databases:     append([]*Database(nil), databases...),
		nodesByName:   make(map[string]*Node, len(nodes)),
	}
	for _, db := range databases {
		s.databasesByID[db.ID] = db
	}
	for _, n := range nodes {
		s.nodesByName[n.Name] = n
	}
	return s
}

// FindNodeByName returns the node with the given name, or nil if absent.
func (s *Snapshot) FindNodeByName(name string) *Node {
	return s.nodesByName[name]
}

// FindDatabaseByID returns the database with the given id, or nil if
// absent.
func (s *Snapshot) FindDatabaseByID(id int) *Database {
	return s.databasesByID[id]
}

// AllDatabases returns every database known to the catalog.
func (s *Snapshot) AllDatabases() []*Database {
	return append([]*Database(nil), s.databases...)
}

// DatabasesContaining returns the set of databases that can serve node,
// transitively through its ancestry: for a source node this is the
// databases of its own tables; for a derived node it is the intersection
// of its parents' computable sets (a derived node has no tables of its
// own to query against directly).
func (s *Snapshot) DatabasesContaining(node *Node) map[int]*Database {
	return s.databasesContaining(node, map[string]bool{})
}

// databasesContaining recurses down node.Parents. path tracks the nodes
// on the current call stack (not globally), so diamond-shaped ancestry
// (two metrics sharing a grandparent) is still computed for each branch;
// it only guards against a cycle that would violate the DAG acyclicity
// invariant (spec §3 P1).
func (s *Snapshot) databasesContaining(node *Node, path map[string]bool) map[int]*Database {
	if path[node.Name] {
		return map[int]*Database{}
	}
	path = copyPath(path, node.Name)

	if node.IsSource() {
		result := make(map[int]*Database)
		for _, t := range node.Tables {
			if t.Database != nil {
				result[t.Database.ID] = t.Database
			}
		}
		return result
	}

	if len(node.Parents) == 0 {
		return map[int]*Database{}
	}

	result := s.databasesContaining(node.Parents[0], path)
	for _, parent := range node.Parents[1:] {
		parentDBs := s.databasesContaining(parent, path)
		for id := range result {
			if _, ok := parentDBs[id]; !ok {
				delete(result, id)
			}
		}
	}
	return result
}

func copyPath(path map[string]bool, name string) map[string]bool {
	next := make(map[string]bool, len(path)+1)
	for k, v := range path {
		next[k] = v
	}
	next[name] = true
	return next
}
