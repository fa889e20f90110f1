/**
 * Qdrant vector store for backend outputs
 *
 * Stores one embedding per backend run over Qdrant's native gRPC API so
 * outputs can be compared semantically rather than byte-wise. Collection
 * is created on startup if missing: 1024 dimensions, cosine distance,
 * matching the voyage-3 embeddings.
 */

package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ocrlab/ocrbench/internal/logging"
)

const vectorDimensions = 1024

// VectorStore handles vector storage for output similarity
type VectorStore struct {
	points         qdrant.PointsClient
	collections    qdrant.CollectionsClient
	conn           *grpc.ClientConn
	collectionName string
	logger         *logging.Logger
}

// VectorPoint is one embedded backend output with its payload
type VectorPoint struct {
	ID       string
	Vector   []float32
	Metadata map[string]interface{}
}

// NewVectorStore connects to Qdrant and ensures the collection exists
func NewVectorStore(address, collectionName string) (*VectorStore, error) {
	if address == "" {
		return nil, fmt.Errorf("qdrant address is required")
	}
	if collectionName == "" {
		return nil, fmt.Errorf("collection name is required")
	}

	conn, err := grpc.Dial(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	vs := &VectorStore{
		points:         qdrant.NewPointsClient(conn),
		collections:    qdrant.NewCollectionsClient(conn),
		conn:           conn,
		collectionName: collectionName,
		logger:         logging.NewLogger("VectorStore"),
	}

	if err := vs.ensureCollection(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	return vs, nil
}

// ensureCollection creates the collection if it doesn't exist
func (vs *VectorStore) ensureCollection(ctx context.Context) error {
	listResp, err := vs.collections.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, col := range listResp.Collections {
		if col.Name == vs.collectionName {
			return nil
		}
	}

	_, err = vs.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: vs.collectionName,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     vectorDimensions,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	vs.logger.Info("Created Qdrant collection",
		"collection", vs.collectionName,
		"dimensions", vectorDimensions)

	return nil
}

// UpsertVector stores or updates one point
func (vs *VectorStore) UpsertVector(ctx context.Context, point *VectorPoint) error {
	if point == nil {
		return fmt.Errorf("point is required")
	}
	if len(point.Vector) != vectorDimensions {
		return fmt.Errorf("invalid vector dimensions: expected %d, got %d",
			vectorDimensions, len(point.Vector))
	}

	if point.ID == "" {
		point.ID = uuid.New().String()
	}

	payload := make(map[string]*qdrant.Value)
	for k, v := range point.Metadata {
		switch val := v.(type) {
		case string:
			payload[k] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: val}}
		case int:
			payload[k] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(val)}}
		case int64:
			payload[k] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: val}}
		case float64:
			payload[k] = &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: val}}
		case bool:
			payload[k] = &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: val}}
		default:
			payload[k] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: fmt.Sprintf("%v", val)}}
		}
	}

	_, err := vs.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: vs.collectionName,
		Points: []*qdrant.PointStruct{
			{
				Id: &qdrant.PointId{
					PointIdOptions: &qdrant.PointId_Uuid{Uuid: point.ID},
				},
				Vectors: &qdrant.Vectors{
					VectorsOptions: &qdrant.Vectors_Vector{
						Vector: &qdrant.Vector{Data: point.Vector},
					},
				},
				Payload: payload,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}

	vs.logger.Debug("Vector upserted",
		"collection", vs.collectionName,
		"id", point.ID)

	return nil
}

// Close releases the gRPC connection
func (vs *VectorStore) Close() error {
	return vs.conn.Close()
}
