package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// CollaboratorTimeout bounds every similarity / gst-check round trip.
const CollaboratorTimeout = 10 * time.Second

// SimilarityHTTPClient talks to the similarity-search service
// (field-recommend / address-recommend / gst-check endpoints).
type SimilarityHTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewSimilarityHTTPClient builds a client against SIMILARITY_SERVICE_URL,
// defaulting to the local instance (the service hosts the endpoints itself).
func NewSimilarityHTTPClient() *SimilarityHTTPClient {
	baseURL := strings.TrimSpace(os.Getenv("SIMILARITY_SERVICE_URL"))
	if baseURL == "" {
		port := strings.TrimSpace(os.Getenv("PORT"))
		if port == "" {
			port = "8080"
		}
		baseURL = "http://localhost:" + port
	}
	return &SimilarityHTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: CollaboratorTimeout},
	}
}

type fieldRecommendRequest struct {
	Name      string `json:"name"`
	TableName string `json:"table_name"`
}

type fieldRecommendResponse struct {
	InputName       string           `json:"input_name"`
	Table           string           `json:"table"`
	Recommendations []map[string]any `json:"recommendations"`
}

type addressRecommendRequest struct {
	Address string `json:"address"`
}

type addressRecommendResponse struct {
	InputAddress    string           `json:"input_address"`
	Recommendations []map[string]any `json:"recommendations"`
}

type gstCheckRequest struct {
	GstNo string `json:"gst_no"`
}

func (c *SimilarityHTTPClient) RecommendNames(ctx context.Context, table string, name string) ([]map[string]any, error) {
	var parsed fieldRecommendResponse
	err := c.postJSON(ctx, "/field-recommend", fieldRecommendRequest{Name: name, TableName: table}, &parsed)
	if err != nil {
		return nil, err
	}
	return parsed.Recommendations, nil
}

func (c *SimilarityHTTPClient) RecommendAddresses(ctx context.Context, address string) ([]map[string]any, error) {
	var parsed addressRecommendResponse
	err := c.postJSON(ctx, "/address-recommend", addressRecommendRequest{Address: address}, &parsed)
	if err != nil {
		return nil, err
	}
	return parsed.Recommendations, nil
}

func (c *SimilarityHTTPClient) CheckGst(ctx context.Context, gstNo string) (*GstCheckResponse, error) {
	var parsed GstCheckResponse
	err := c.postJSON(ctx, "/gst-check", gstCheckRequest{GstNo: gstNo}, &parsed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (c *SimilarityHTTPClient) postJSON(ctx context.Context, path string, payload any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("similarity service error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return json.Unmarshal(respBody, dest)
}
