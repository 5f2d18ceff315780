package vectorstore

import (
	"context"
	"fmt"
	"slices"

	"pdf-knowledge-assistant/internal/logger"
	"pdf-knowledge-assistant/utils"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// EnsureCollection creates the configured collection if it does not exist.
// Safe to call repeatedly. When the collection already exists, its vector
// size and distance metric are validated against the configuration and a
// mismatch fails fast instead of silently reusing an incompatible schema.
func (c *Client) EnsureCollection(ctx context.Context) error {
	names, err := c.api.ListCollections(ctx)
	if err != nil {
		return utils.UpstreamError("failed to list collections", err)
	}

	if slices.Contains(names, c.collection) {
		info, err := c.api.GetCollectionInfo(ctx, c.collection)
		if err != nil {
			return utils.UpstreamError(fmt.Sprintf("failed to inspect collection %q", c.collection), err)
		}
		size, distance := extractVectorDetails(info)
		if size != c.dimensions || distance != qdrant.Distance_Cosine.String() {
			return utils.ProcessingError(
				fmt.Sprintf("collection %q exists with size=%d distance=%s, expected size=%d distance=Cosine",
					c.collection, size, distance, c.dimensions), nil)
		}
		logger.Info("Collection already exists", "collection", c.collection)
		return nil
	}

	req := &qdrant.CreateCollection{
		CollectionName: c.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(c.dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	}
	if err := c.api.CreateCollection(ctx, req); err != nil {
		return utils.UpstreamError(fmt.Sprintf("failed to create collection %q", c.collection), err)
	}

	logger.Info("Created collection", "collection", c.collection, "dimensions", c.dimensions)
	return nil
}

// Upsert inserts one point. Each call carries a fresh identifier, so
// repeated upserts of identical content produce distinct records; the store
// never deduplicates. Wait=true blocks until the point is persisted.
func (c *Client) Upsert(ctx context.Context, p Point) error {
	wait := true
	req := &qdrant.UpsertPoints{
		CollectionName: c.collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(p.ID),
				Vectors: qdrant.NewVectors(p.Vector...),
				Payload: qdrant.NewValueMap(p.Payload),
			},
		},
		Wait: &wait,
	}

	if _, err := c.api.Upsert(ctx, req); err != nil {
		return utils.UpstreamError("upsert failed", err)
	}
	return nil
}

// Search returns up to topK points nearest to vector, descending by cosine
// similarity, with payloads and without raw vectors.
func (c *Client) Search(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	if len(vector) == 0 {
		return nil, utils.ValidationError("query vector cannot be empty")
	}
	if topK <= 0 {
		return nil, utils.ValidationError("topK must be greater than 0")
	}

	limit := uint64(topK)
	req := &qdrant.QueryPoints{
		CollectionName: c.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}

	resp, err := c.api.Query(ctx, req)
	if err != nil {
		return nil, utils.UpstreamError("search failed", err)
	}

	hits := make([]Hit, 0, len(resp))
	for _, r := range resp {
		hits = append(hits, Hit{
			ID:      pointIDString(r.Id),
			Score:   r.Score,
			Payload: convertPayload(r.Payload),
		})
	}
	return hits, nil
}

func pointIDString(id *qdrant.PointId) string {
	switch v := id.GetPointIdOptions().(type) {
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num)
	case *qdrant.PointId_Uuid:
		return v.Uuid
	default:
		return ""
	}
}

// convertPayload flattens Qdrant protobuf values into plain Go values so
// callers stay independent of the SDK types.
func convertPayload(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		switch kind := v.GetKind().(type) {
		case *qdrant.Value_StringValue:
			out[k] = kind.StringValue
		case *qdrant.Value_IntegerValue:
			out[k] = kind.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[k] = kind.DoubleValue
		case *qdrant.Value_BoolValue:
			out[k] = kind.BoolValue
		}
	}
	return out
}

// extractVectorDetails digs the vector size and distance metric out of the
// nested collection info, guarding against nil at every level.
func extractVectorDetails(info *qdrant.CollectionInfo) (int, string) {
	if info == nil ||
		info.Config == nil ||
		info.Config.Params == nil ||
		info.Config.Params.VectorsConfig == nil ||
		info.Config.Params.VectorsConfig.Config == nil {
		return 0, ""
	}
	if cfg, ok := info.Config.Params.VectorsConfig.Config.(*qdrant.VectorsConfig_Params); ok {
		return int(cfg.Params.Size), cfg.Params.Distance.String()
	}
	return 0, ""
}
