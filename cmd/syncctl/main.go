package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// syncctl triggers catalog syncs and inspects sync history on a running
// instance over its HTTP API.
//
// Usage:
//
//	syncctl items      trigger a price-list sync
//	syncctl outlets    trigger an outlet sync
//	syncctl runs       list recent sync runs
//	syncctl bootstrap  run the ensure-data check (seeds an empty store)
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	baseURL := os.Getenv("API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	apiKey := os.Getenv("API_KEY")
	if apiKey == "" {
		log.Fatal("API_KEY must be set")
	}

	// Syncs download a spreadsheet and crawl the site, so the request can
	// run for minutes.
	client := &http.Client{Timeout: 10 * time.Minute}

	var method, path string
	switch os.Args[1] {
	case "items":
		method, path = http.MethodPost, "/api/v1/sync/items"
	case "outlets":
		method, path = http.MethodPost, "/api/v1/sync/outlets"
	case "runs":
		method, path = http.MethodGet, "/api/v1/sync/runs"
	case "bootstrap":
		// Any data endpoint runs the ensure-data check; a minimal search
		// is the cheapest way to trigger it.
		method, path = http.MethodGet, "/api/v1/items?limit=1"
	default:
		usage()
		os.Exit(2)
	}

	req, err := http.NewRequest(method, baseURL+path, nil)
	if err != nil {
		log.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Request failed with status %d: %s", resp.StatusCode, body)
	}

	// Re-indent the response for the terminal.
	var pretty any
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Println(string(body))
		return
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: syncctl <items|outlets|runs|bootstrap>")
}
