package main

import (
	_ "embed"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

//go:embed properties.json
var propertiesData []byte

//go:embed providers.json
var providersData []byte

type provider struct {
	ID         string   `json:"id"`
	Name       string   `json:"business_name"`
	Category   string   `json:"category"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	Country    string   `json:"country"`
	Rating     *float64 `json:"rating"`
	IsVerified bool     `json:"is_verified"`
	LogoURL    string   `json:"logo_url"`
}

type providerSearch struct {
	Category string `json:"p_category"`
	City     string `json:"p_city"`
	State    string `json:"p_state"`
	Country  string `json:"p_country"`
	Page     int    `json:"p_page"`
	PageSize int    `json:"p_page_size"`
}

func main() {
	var properties []map[string]any
	if err := json.Unmarshal(propertiesData, &properties); err != nil {
		log.Fatalf("[BaaS] invalid properties.json: %v", err)
	}
	var providers []provider
	if err := json.Unmarshal(providersData, &providers); err != nil {
		log.Fatalf("[BaaS] invalid providers.json: %v", err)
	}

	http.HandleFunc("GET /rest/v1/properties", func(w http.ResponseWriter, r *http.Request) {
		// Simulate network latency (50-200ms)
		time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)

		rows := properties
		if id, ok := strings.CutPrefix(r.URL.Query().Get("id"), "eq."); ok {
			rows = nil
			for _, p := range properties {
				if p["id"] == id {
					rows = append(rows, p)
				}
			}
		}
		if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit < len(rows) {
			rows = rows[:limit]
		}
		if rows == nil {
			rows = []map[string]any{}
		}

		writeJSON(w, rows)
		log.Printf("[BaaS] %s %s - %d rows", r.Method, r.URL.Path, len(rows))
	})

	http.HandleFunc("POST /rest/v1/rpc/search_service_providers", func(w http.ResponseWriter, r *http.Request) {
		var req providerSearch
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"message":"invalid body"}`, http.StatusBadRequest)
			return
		}

		var matched []provider
		for _, p := range providers {
			if strings.EqualFold(p.Category, req.Category) &&
				strings.EqualFold(p.State, req.State) &&
				(req.City == "" || strings.EqualFold(p.City, req.City)) {
				matched = append(matched, p)
			}
		}

		page, size := max(req.Page, 1), max(req.PageSize, 1)
		start := min((page-1)*size, len(matched))
		end := min(start+size, len(matched))
		items := matched[start:end]
		if items == nil {
			items = []provider{}
		}

		writeJSON(w, map[string]any{"items": items, "total": len(matched)})
		log.Printf("[BaaS] %s %s - %d/%d providers", r.Method, r.URL.Path, len(items), len(matched))
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "healthy"})
	})

	log.Println("Mock BaaS running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[BaaS] Write error: %v", err)
	}
}
