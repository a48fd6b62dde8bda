package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"github.com/google/uuid"
)

// Point is one stored vector with its payload.
type Point struct {
	Id      uuid.UUID
	Vector  []float32
	Payload map[string]any
}

// ScoredPoint is one similarity-search hit.
type ScoredPoint struct {
	Id    uuid.UUID
	Score float64
}

// Store is the subset of vector-index operations the dedup engine needs.
// Satisfied by the Qdrant client and by test fakes.
type Store interface {
	EnsureCollection(ctx context.Context, collection string, vectorDim int) error
	Upsert(ctx context.Context, collection string, points []Point) error
	Retrieve(ctx context.Context, collection string, id uuid.UUID) (*Point, error)
	Query(ctx context.Context, collection string, vector []float32, limit int, scoreThreshold float64) ([]ScoredPoint, error)
	Delete(ctx context.Context, collection string, ids []uuid.UUID) error
}

// QdrantStore talks to Qdrant's HTTP API.
type QdrantStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewQdrantStore(url string, apiKey string) *QdrantStore {
	return &QdrantStore{
		baseURL: strings.TrimRight(url, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// EnsureCollection creates the collection when it does not exist yet.
// Qdrant returns 409 for an existing collection; that is treated as success.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, vectorDim int) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     vectorDim,
			"distance": "Cosine",
		},
	}
	status, respBody, err := s.do(ctx, http.MethodPut, "/collections/"+collection, body)
	if err != nil {
		return err
	}
	if status == http.StatusOK || status == http.StatusConflict {
		return nil
	}
	return utils.NewRemoteApiError(status, respBody, "vector store create collection")
}

func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	reqPoints := make([]map[string]any, len(points))
	for i, p := range points {
		reqPoints[i] = map[string]any{
			"id":      p.Id.String(),
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}
	body := map[string]any{"points": reqPoints}
	status, respBody, err := s.do(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", body)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return utils.NewRemoteApiError(status, respBody, "vector store upsert")
	}
	return nil
}

// Retrieve fetches one stored point with its vector. A missing point is
// returned as (nil, nil) so callers can treat it as a cache miss.
func (s *QdrantStore) Retrieve(ctx context.Context, collection string, id uuid.UUID) (*Point, error) {
	body := map[string]any{
		"ids":          []string{id.String()},
		"with_vector":  true,
		"with_payload": true,
	}
	status, respBody, err := s.do(ctx, http.MethodPost, "/collections/"+collection+"/points", body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, utils.NewRemoteApiError(status, respBody, "vector store retrieve")
	}

	var envelope struct {
		Result []struct {
			Id      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode retrieve response: %w", err)
	}
	if len(envelope.Result) == 0 {
		return nil, nil
	}
	pointId, err := uuid.Parse(envelope.Result[0].Id)
	if err != nil {
		return nil, fmt.Errorf("vector store returned invalid point id %q", envelope.Result[0].Id)
	}
	return &Point{
		Id:      pointId,
		Vector:  envelope.Result[0].Vector,
		Payload: envelope.Result[0].Payload,
	}, nil
}

func (s *QdrantStore) Query(ctx context.Context, collection string, vector []float32, limit int, scoreThreshold float64) ([]ScoredPoint, error) {
	if limit <= 0 {
		limit = 10
	}
	body := map[string]any{
		"query":           vector,
		"limit":           limit,
		"score_threshold": scoreThreshold,
	}
	status, respBody, err := s.do(ctx, http.MethodPost, "/collections/"+collection+"/points/query", body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, utils.NewRemoteApiError(status, respBody, "vector store query")
	}

	var envelope struct {
		Result struct {
			Points []struct {
				Id    string  `json:"id"`
				Score float64 `json:"score"`
			} `json:"points"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}
	hits := make([]ScoredPoint, 0, len(envelope.Result.Points))
	for _, p := range envelope.Result.Points {
		pointId, err := uuid.Parse(p.Id)
		if err != nil {
			continue
		}
		hits = append(hits, ScoredPoint{Id: pointId, Score: p.Score})
	}
	return hits, nil
}

func (s *QdrantStore) Delete(ctx context.Context, collection string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	strIds := make([]string, len(ids))
	for i, id := range ids {
		strIds[i] = id.String()
	}
	body := map[string]any{"points": strIds}
	status, respBody, err := s.do(ctx, http.MethodPost, "/collections/"+collection+"/points/delete?wait=true", body)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return utils.NewRemoteApiError(status, respBody, "vector store delete")
	}
	return nil
}

func (s *QdrantStore) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("vector store request failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// CollectionName builds the per-tenant collection name.
func CollectionName(prefix, tenantId string) string {
	return prefix + "_" + tenantId
}
