// Package neo4j loads weighted graphs from a Neo4j database.
//
// A Cypher read query returns one row per edge with the columns from, to
// and weight. [Loader] folds the rows into the adjacency mapping accepted
// by graph.Normalize, so a database graph goes through exactly the same
// validation as a JSON or YAML file.
//
//	client, err := neo4j.NewClient(ctx, neo4j.Options{URI: "neo4j://localhost:7687"})
//	loader := neo4j.NewLoader(client)
//	g, err := loader.LoadGraph(ctx, neo4j.DefaultQuery())
package neo4j

import (
	"context"
	"fmt"

	neo4jdrv "github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Record is one result row keyed by column name.
type Record map[string]any

// Client runs read queries. The driver-backed client is created with
// NewClient; tests substitute their own.
type Client interface {
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]Record, error)
	Close(ctx context.Context) error
}

// Options configures the database connection.
type Options struct {
	URI            string
	Username       string
	Password       string
	Database       string
	MaxConnections int
}

// ErrMissingURI is returned by NewClient when no URI is given.
var ErrMissingURI = fmt.Errorf("neo4j: uri is required")

// NewClient opens a Bolt connection with the official driver and verifies
// connectivity.
func NewClient(ctx context.Context, opts Options) (Client, error) {
	if opts.URI == "" {
		return nil, ErrMissingURI
	}

	auth := neo4jdrv.NoAuth()
	if opts.Username != "" {
		auth = neo4jdrv.BasicAuth(opts.Username, opts.Password, "")
	}

	driver, err := neo4jdrv.NewDriverWithContext(opts.URI, auth, func(c *neo4jdrv.Config) {
		if opts.MaxConnections > 0 {
			c.MaxConnectionPoolSize = opts.MaxConnections
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	return &driverClient{driver: driver, database: opts.Database}, nil
}

type driverClient struct {
	driver   neo4jdrv.DriverWithContext
	database string
}

func (c *driverClient) ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	session := c.driver.NewSession(ctx, neo4jdrv.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4jdrv.AccessModeRead,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	var records []Record
	for res.Next(ctx) {
		rec := res.Record()
		record := make(Record, len(rec.Keys))
		for _, key := range rec.Keys {
			value, _ := rec.Get(key)
			record[key] = value
		}
		records = append(records, record)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *driverClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}
