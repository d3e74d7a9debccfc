package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const neo4jConstraint = `CREATE CONSTRAINT kv_entry_key IF NOT EXISTS FOR (e:KVEntry) REQUIRE e.key IS UNIQUE`

// Neo4jBackend implements StorageBackend with one (:KVEntry) node per key.
type Neo4jBackend struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jBackend connects to uri, verifies connectivity and creates the
// uniqueness constraint on KVEntry.key.
//
// An empty database selects the server's default database.
func NewNeo4jBackend(ctx context.Context, uri, username, password, database string) (*Neo4jBackend, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	backend := &Neo4jBackend{
		driver:   driver,
		database: database,
	}

	if err := backend.ensureConstraint(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return backend, nil
}

func (b *Neo4jBackend) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return b.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: b.database,
	})
}

func (b *Neo4jBackend) ensureConstraint(ctx context.Context) error {
	session := b.session(ctx, neo4j.AccessModeWrite)
	defer func() { _ = session.Close(ctx) }()

	result, err := session.Run(ctx, neo4jConstraint, nil)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

// Get returns the value stored under key.
func (b *Neo4jBackend) Get(ctx context.Context, key string) ([]byte, error) {
	session := b.session(ctx, neo4j.AccessModeRead)
	defer func() { _ = session.Close(ctx) }()

	value, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (e:KVEntry {key: $key}) RETURN e.value AS value",
			map[string]any{"key": key},
		)
		if err != nil {
			return nil, err
		}

		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, ErrNotFound
		}

		raw, _ := res.Record().Get("value")
		text, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("value for %q has type %T, want string", key, raw)
		}
		return text, nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query value: %w", err)
	}

	return []byte(value.(string)), nil
}

// Put merges the KVEntry node for key and replaces its value.
func (b *Neo4jBackend) Put(ctx context.Context, key string, value []byte) error {
	session := b.session(ctx, neo4j.AccessModeWrite)
	defer func() { _ = session.Close(ctx) }()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MERGE (e:KVEntry {key: $key}) SET e.value = $value, e.updated_at = $updatedAt",
			map[string]any{
				"key":       key,
				"value":     string(value),
				"updatedAt": utcTimestamp(),
			},
		)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to merge value: %w", err)
	}

	return nil
}

// Close releases the driver and its connection pool.
func (b *Neo4jBackend) Close() error {
	return b.driver.Close(context.Background())
}
