package vision

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"doorstep-clean/internal/models"
)

func TestAnalyzeParsesAssessment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/analyze" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"garmentType":"suit","fabric":"wool","stains":["wine"],"suggestedService":"Dry Clean Suit","confidence":0.92}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	got, err := client.Analyze(context.Background(), "aW1hZ2U=")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if got.GarmentType != "suit" || got.SuggestedService != "Dry Clean Suit" || got.Confidence != 0.92 {
		t.Errorf("assessment = %+v", got)
	}
}

func TestAnalyzeFailureMapsToAnalysisError(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"malformed body": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		},
		"empty classification": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"confidence":0.1}`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			client := NewClient(srv.URL, "test-key")
			if _, err := client.Analyze(context.Background(), "aW1hZ2U="); !errors.Is(err, models.ErrAnalysisFailed) {
				t.Errorf("err = %v; want ErrAnalysisFailed", err)
			}
		})
	}
}
