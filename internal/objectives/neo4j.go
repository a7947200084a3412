package objectives

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jConfig configures the Neo4j-backed graph.
type Neo4jConfig struct {
	URI         string
	User        string
	Password    string
	Database    string
	Timeout     time.Duration
	MaxPoolSize int
}

// An objective's REQUIRES edges point at its prerequisites, so its advanced
// variants are the objectives with an edge into it.
const (
	cypherConstraint = `CREATE CONSTRAINT objective_id_unique IF NOT EXISTS FOR (o:Objective) REQUIRE o.id IS UNIQUE`

	cypherUpsertNodes = `
UNWIND $rows AS r
MERGE (o:Objective {id: r.id})
SET o.name = r.name, o.tier = r.tier
WITH o, r
OPTIONAL MATCH (o)-[old:REQUIRES]->()
DELETE old
`

	cypherLinkPrerequisites = `
UNWIND $rows AS r
UNWIND r.prerequisites AS pid
MATCH (o:Objective {id: r.id})
MATCH (p:Objective {id: pid})
MERGE (o)-[:REQUIRES]->(p)
`

	cypherPrerequisites = `
MATCH (o:Objective {id: $id})
OPTIONAL MATCH (o)-[:REQUIRES]->(p:Objective)
RETURN o.id AS self, p.id AS id
ORDER BY id
`

	cypherDependents = `
MATCH (o:Objective {id: $id})
OPTIONAL MATCH (a:Objective)-[:REQUIRES]->(o)
RETURN o.id AS self, a.id AS id
ORDER BY id
`

	cypherTier = `MATCH (o:Objective {id: $id}) RETURN o.tier AS tier`
)

// Neo4jGraph answers dependency lookups from (:Objective)-[:REQUIRES]->(:Objective).
type Neo4jGraph struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jGraph connects and verifies connectivity.
func NewNeo4jGraph(ctx context.Context, cfg Neo4jConfig) (*Neo4jGraph, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4j: URI required")
	}
	if cfg.User == "" {
		cfg.User = "neo4j"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxPoolSize <= 0 {
		cfg.MaxPoolSize = 50
	}

	auth := neo4j.BasicAuth(cfg.User, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = cfg.MaxPoolSize
		c.SocketConnectTimeout = cfg.Timeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	vctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}

	return &Neo4jGraph{driver: driver, database: cfg.Database}, nil
}

// Close releases the driver.
func (g *Neo4jGraph) Close(ctx context.Context) error {
	if g == nil || g.driver == nil {
		return nil
	}
	return g.driver.Close(ctx)
}

// Sync upserts every objective and its REQUIRES edges. Existing edges out of
// a synced objective are replaced.
func (g *Neo4jGraph) Sync(ctx context.Context, objs []Objective) error {
	if err := Validate(objs); err != nil {
		return err
	}

	rows := syncRows(objs)

	session := g.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: g.database,
	})
	defer session.Close(ctx)

	if res, err := session.Run(ctx, cypherConstraint, nil); err == nil {
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypherUpsertNodes, map[string]any{"rows": rows})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx, cypherLinkPrerequisites, map[string]any{"rows": rows})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("neo4j: sync objectives: %w", err)
	}
	return nil
}

func (g *Neo4jGraph) PrerequisitesOf(ctx context.Context, objectiveID string) ([]string, error) {
	return g.lookupIDs(ctx, objectiveID, cypherPrerequisites)
}

func (g *Neo4jGraph) AdvancedVariantsOf(ctx context.Context, objectiveID string) ([]string, error) {
	return g.lookupIDs(ctx, objectiveID, cypherDependents)
}

func (g *Neo4jGraph) TierOf(ctx context.Context, objectiveID string) (Tier, error) {
	session := g.readSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypherTier, map[string]any{"id": objectiveID})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return tierFromRecords(objectiveID, records)
	})
	if err != nil {
		return "", err
	}
	return out.(Tier), nil
}

// lookupIDs runs a query returning one row per neighbour (or one row with a
// null id when the objective has none) and collects the ids.
func (g *Neo4jGraph) lookupIDs(ctx context.Context, objectiveID, query string) ([]string, error) {
	session := g.readSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"id": objectiveID})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return idsFromRecords(objectiveID, records)
	})
	if err != nil {
		return nil, err
	}
	return out.([]string), nil
}

func (g *Neo4jGraph) readSession(ctx context.Context) neo4j.SessionWithContext {
	return g.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: g.database,
	})
}

// syncRows flattens objectives into the $rows parameter of the sync queries.
// Tiers are normalized and prerequisites passed as []any for the driver.
func syncRows(objs []Objective) []map[string]any {
	rows := make([]map[string]any, 0, len(objs))
	for _, o := range objs {
		tier, _ := ParseTier(string(o.Tier))
		prereqs := make([]any, len(o.Prerequisites))
		for i, p := range o.Prerequisites {
			prereqs[i] = p
		}
		rows = append(rows, map[string]any{
			"id":            o.ID,
			"name":          o.Name,
			"tier":          string(tier),
			"prerequisites": prereqs,
		})
	}
	return rows
}

// idsFromRecords collects the "id" column. No rows means the objective node
// does not exist; a single null id means it exists with no neighbours.
func idsFromRecords(objectiveID string, records []*neo4j.Record) ([]string, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("objective %q: %w", objectiveID, ErrUnknownObjective)
	}
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		raw, ok := rec.Get("id")
		if !ok || raw == nil {
			continue
		}
		if s, ok := raw.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

func tierFromRecords(objectiveID string, records []*neo4j.Record) (Tier, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("objective %q: %w", objectiveID, ErrUnknownObjective)
	}
	raw, _ := records[0].Get("tier")
	s, _ := raw.(string)
	return ParseTier(s)
}
