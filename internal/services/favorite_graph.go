package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"
)

// FavoriteGraph keeps favorites as (:User)-[:FAVORITED]->(:Estate) edges in Neo4j.
type FavoriteGraph struct {
	driver neo4j.DriverWithContext
	logger *logrus.Logger
}

func NewFavoriteGraph(driver neo4j.DriverWithContext, logger *logrus.Logger) *FavoriteGraph {
	return &FavoriteGraph{
		driver: driver,
		logger: logger,
	}
}

// FavoriteEstateIDs returns the estates the user favorited, oldest first.
func (g *FavoriteGraph) FavoriteEstateIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {id: $userId})-[f:FAVORITED]->(e:Estate)
		RETURN e.id AS estate_id
		ORDER BY f.created_at`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userId": userID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}

	var values []interface{}
	for result.Next(ctx) {
		values = append(values, result.Record().Values[0])
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}

	return parseEstateIDs(values, g.logger), nil
}

// CountFavorites returns the number of favorite edges in the graph.
func (g *FavoriteGraph) CountFavorites(ctx context.Context) (int64, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `MATCH (:User)-[f:FAVORITED]->(:Estate) RETURN count(f) AS favorites`, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read favorite count: %w", err)
	}

	count, ok := record.Values[0].(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected favorite count %v", record.Values[0])
	}
	return count, nil
}

// AddFavorite records that the user favorited the estate. Repeated calls keep one edge.
func (g *FavoriteGraph) AddFavorite(ctx context.Context, userID, estateID uuid.UUID) error {
	query := `
		MERGE (u:User {id: $userId})
		MERGE (e:Estate {id: $estateId})
		MERGE (u)-[f:FAVORITED]->(e)
		ON CREATE SET f.created_at = $createdAt`

	return g.write(ctx, query, map[string]interface{}{
		"userId":    userID.String(),
		"estateId":  estateID.String(),
		"createdAt": time.Now().Unix(),
	})
}

func (g *FavoriteGraph) RemoveFavorite(ctx context.Context, userID, estateID uuid.UUID) error {
	query := `
		MATCH (:User {id: $userId})-[f:FAVORITED]->(:Estate {id: $estateId})
		DELETE f`

	return g.write(ctx, query, map[string]interface{}{
		"userId":   userID.String(),
		"estateId": estateID.String(),
	})
}

// RemoveEstate drops a deleted estate together with all its favorite edges.
func (g *FavoriteGraph) RemoveEstate(ctx context.Context, estateID uuid.UUID) error {
	query := `
		MATCH (e:Estate {id: $estateId})
		DETACH DELETE e`

	return g.write(ctx, query, map[string]interface{}{
		"estateId": estateID.String(),
	})
}

func (g *FavoriteGraph) write(ctx context.Context, query string, params map[string]interface{}) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to update favorites graph: %w", err)
	}
	return nil
}

// parseEstateIDs converts graph values to UUIDs, skipping anything malformed.
func parseEstateIDs(values []interface{}, logger *logrus.Logger) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			logger.WithField("value", v).Warn("Skipping non-string estate id in favorites graph")
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			logger.WithError(err).WithField("value", s).Warn("Skipping malformed estate id in favorites graph")
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
