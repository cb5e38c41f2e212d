package neo4j

import (
	"context"
	"fmt"

	neo "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/mahfuzr/krishi-assistant/internal/infrastructure/resilience"
)

// Store is the crop knowledge-graph adapter. Read queries run in managed
// read transactions behind the shared retry/breaker executor; the driver
// handles its own connection pooling.
type Store struct {
	driver   neo.DriverWithContext
	database string
	exec     *resilience.Executor
}

type Config struct {
	URI      string
	User     string
	Password string
	Database string
}

func NewStore(cfg Config, exec *resilience.Executor) (*Store, error) {
	driver, err := neo.NewDriverWithContext(cfg.URI, neo.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	database := cfg.Database
	if database == "" {
		database = "neo4j"
	}
	return &Store{driver: driver, database: database, exec: exec}, nil
}

// ReadRecords executes a read-only Cypher query and flattens every result
// record into a key/value mapping.
func (s *Store) ReadRecords(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	var out []map[string]any
	err := s.exec.Run(ctx, "neo4j.read", classify, func(ctx context.Context) error {
		session := s.driver.NewSession(ctx, neo.SessionConfig{
			AccessMode:   neo.AccessModeRead,
			DatabaseName: s.database,
		})
		defer session.Close(ctx)

		records, err := session.ExecuteRead(ctx, func(tx neo.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, query, params)
			if err != nil {
				return nil, err
			}
			return result.Collect(ctx)
		})
		if err != nil {
			return err
		}

		collected := records.([]*neo.Record)
		out = make([]map[string]any, 0, len(collected))
		for _, record := range collected {
			out = append(out, record.AsMap())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j read: %w", err)
	}
	return out, nil
}

// WriteRecords executes a write Cypher statement; used by the seed tool.
func (s *Store) WriteRecords(ctx context.Context, query string, params map[string]any) error {
	err := s.exec.Run(ctx, "neo4j.write", classify, func(ctx context.Context) error {
		session := s.driver.NewSession(ctx, neo.SessionConfig{
			AccessMode:   neo.AccessModeWrite,
			DatabaseName: s.database,
		})
		defer session.Close(ctx)

		_, err := session.ExecuteWrite(ctx, func(tx neo.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, query, params)
			if err != nil {
				return nil, err
			}
			return nil, result.Err()
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("neo4j write: %w", err)
	}
	return nil
}

// Ping verifies driver connectivity for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func classify(err error) resilience.Verdict {
	return resilience.Verdict{
		Retry:        neo.IsRetryable(err),
		CountsAsTrip: true,
	}
}
