package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"interview-gateway/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultSimilarLimit = 5

// QdrantQuestionIndex stores generated questions as vectors for similar-question lookup.
type QdrantQuestionIndex struct {
	client         *qdrant.Client
	collectionName string
}

func NewQdrantQuestionIndex(client *qdrant.Client, collectionName string) *QdrantQuestionIndex {
	return &QdrantQuestionIndex{
		client:         client,
		collectionName: collectionName,
	}
}

// InitCollection creates the collection on first start and a keyword index on role_title.
func (s *QdrantQuestionIndex) InitCollection(ctx context.Context, dim uint64) error {
	_, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err != nil {
		st, ok := status.FromError(err)
		if !ok || st.Code() != codes.NotFound {
			return err
		}
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     dim,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collectionName,
		FieldName:      "role_title",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		// Already exists on every start after the first.
		slog.Debug("could not create role_title index", "component", "qdrant", "error", err)
	}
	return nil
}

func (s *QdrantQuestionIndex) Save(ctx context.Context, q entity.Question, roleTitle string, vector []float32) error {
	payload := map[string]any{
		"question_id":   q.ID.String(),
		"question_text": q.Text,
		"question_type": string(q.Type),
		"difficulty":    string(q.Difficulty),
		"role_title":    roleTitle,
		"created_at":    time.Now().Unix(),
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDUUID(q.ID.String()),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(payload),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert question: %w", err)
	}
	return nil
}

func (s *QdrantQuestionIndex) Search(ctx context.Context, vector []float32, limit int) ([]entity.SimilarQuestion, error) {
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	res, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}

	out := make([]entity.SimilarQuestion, 0, len(res))
	for _, hit := range res {
		payload := hit.Payload
		id, _ := uuid.Parse(payload["question_id"].GetStringValue())
		out = append(out, entity.SimilarQuestion{
			QuestionID: id,
			Text:       payload["question_text"].GetStringValue(),
			RoleTitle:  payload["role_title"].GetStringValue(),
			Score:      hit.Score,
		})
	}
	return out, nil
}
