// Package semantic maintains a Qdrant index of node labels so that new
// records without a canonical_id can be matched against canonical names
// already seen. The index is strictly advisory: suggestions are reported,
// never written back into the graph automatically.
package semantic

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/WessleyAI/harness-engine/engine/schema"
)

// Embedder turns label text into vectors. pkg/ollama provides the
// production implementation.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Suggestion is one canonical-id candidate for an unlabelled node.
type Suggestion struct {
	NodeID      string  `json:"node_id"`
	CanonicalID string  `json:"canonical_id"`
	MatchLabel  string  `json:"match_label"`
	Score       float32 `json:"score"`
}

// LabelIndex owns all Qdrant operations for the label collection.
type LabelIndex struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	embedder    Embedder
}

// New connects a LabelIndex to Qdrant at the given gRPC address.
func New(addr, collection string, embedder Embedder) (*LabelIndex, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &LabelIndex{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
		embedder:    embedder,
	}, nil
}

// Close closes the underlying gRPC connection.
func (x *LabelIndex) Close() error {
	return x.conn.Close()
}

// EnsureCollection creates the collection if it doesn't exist.
func (x *LabelIndex) EnsureCollection(ctx context.Context, dims int) error {
	list, err := x.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == x.collection {
			return nil
		}
	}

	_, err = x.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: x.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: create collection %s: %w", x.collection, err)
	}
	return nil
}

// IndexNodes embeds and upserts the labels of all nodes that carry both
// a label and a canonical id. Point ids are derived from the canonical
// id, so re-indexing the same graph overwrites rather than duplicates.
func (x *LabelIndex) IndexNodes(ctx context.Context, nodes []*schema.Node) error {
	var labelled []*schema.Node
	for _, n := range nodes {
		if n.Label != "" && n.CanonicalID != "" {
			labelled = append(labelled, n)
		}
	}
	if len(labelled) == 0 {
		return nil
	}

	texts := make([]string, len(labelled))
	for i, n := range labelled {
		texts[i] = n.Label
	}
	embeddings, err := x.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("semantic: embed %d labels: %w", len(texts), err)
	}

	points := make([]*pb.PointStruct, len(labelled))
	for i, n := range labelled {
		pointID := uuid.NewSHA1(uuid.NameSpaceURL, []byte(n.CanonicalID)).String()
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: pointID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: embeddings[i]},
				},
			},
			Payload: map[string]*pb.Value{
				"canonical_id": {Kind: &pb.Value_StringValue{StringValue: n.CanonicalID}},
				"label":        {Kind: &pb.Value_StringValue{StringValue: n.Label}},
				"node_type":    {Kind: &pb.Value_StringValue{StringValue: string(n.Type)}},
			},
		}
	}

	wait := true
	_, err = x.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: x.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %d points: %w", len(points), err)
	}
	return nil
}

// SuggestCanonical finds the nearest canonical ids for every labelled
// node missing one. minScore filters weak matches.
func (x *LabelIndex) SuggestCanonical(ctx context.Context, nodes []*schema.Node, minScore float32) ([]Suggestion, error) {
	var out []Suggestion
	for _, n := range nodes {
		if n.Label == "" || n.CanonicalID != "" {
			continue
		}
		embeddings, err := x.embedder.Embed(ctx, []string{n.Label})
		if err != nil {
			return nil, fmt.Errorf("semantic: embed %q: %w", n.Label, err)
		}

		resp, err := x.points.Search(ctx, &pb.SearchPoints{
			CollectionName: x.collection,
			Vector:         embeddings[0],
			Limit:          1,
			WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
		})
		if err != nil {
			return nil, fmt.Errorf("semantic: search for %s: %w", n.ID, err)
		}

		for _, r := range resp.GetResult() {
			if r.GetScore() < minScore {
				continue
			}
			payload := r.GetPayload()
			out = append(out, Suggestion{
				NodeID:      n.ID,
				CanonicalID: payload["canonical_id"].GetStringValue(),
				MatchLabel:  payload["label"].GetStringValue(),
				Score:       r.GetScore(),
			})
		}
	}
	return out, nil
}
