//go:build staging

package staging

import (
	"encoding/json"
	"net/http"
	"testing"
)

type searchResponse struct {
	Items []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"items"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

func TestSearchItems(t *testing.T) {
	resp, body := makeRequest(t, "GET", "/api/v1/items?limit=5", nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var page searchResponse
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if page.Total == 0 {
		t.Error("Expected a populated catalog, got total 0")
	}
	if len(page.Items) > 5 {
		t.Errorf("Expected at most 5 items, got %d", len(page.Items))
	}
}

func TestListOutlets(t *testing.T) {
	resp, body := makeRequest(t, "GET", "/api/v1/outlets", nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var outlets struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(body, &outlets); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
}

func TestUnknownItemReturns404(t *testing.T) {
	resp, _ := makeRequest(t, "GET", "/api/v1/items/does-not-exist", nil)

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestMissingAPIKeyRejected(t *testing.T) {
	req, err := http.NewRequest("GET", stagingURL+"/api/v1/items", nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}
}
