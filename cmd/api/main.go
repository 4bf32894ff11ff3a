package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/joho/godotenv"

	"call-insights-go/internal/dataset"
	"call-insights-go/internal/insight"
	"call-insights-go/internal/intent"
	"call-insights-go/internal/llm"
	"call-insights-go/internal/logger"
	"call-insights-go/internal/types"
)

type analyzeRequest struct {
	Transcript string              `json:"transcript"`
	Metadata   *types.CallMetadata `json:"metadata,omitempty"`
}

type analyzeResponse struct {
	types.AnalysisResult
	ExecutiveSummary string `json:"executive_summary,omitempty"`
}

type demoResponse struct {
	Calls       []analyzeResponse `json:"calls"`
	IntentTrend types.IntentTrend `json:"intent_trend"`
}

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "call-insights-go").Info("starting service")

	// Retry policy for the generative gateway lives here, not in the
	// pipeline: the core performs a single bounded call.
	llmClient := llm.NewFromEnv(llm.WithRetryPolicy(func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = 45 * time.Second
		return b
	}))
	generator := insight.New(llmClient)

	mux := http.NewServeMux()

	// health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		fmt.Fprint(w, "ok")
	})

	// analyze endpoint
	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "analyze")
		reqLog.Info("analyze request received")

		if r.Method != http.MethodPost {
			http.Error(w, "use POST", http.StatusMethodNotAllowed)
			return
		}

		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			reqLog.WithError(err).Warn("bad request body")
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if req.Transcript == "" {
			reqLog.Warn("missing transcript")
			http.Error(w, "missing transcript", http.StatusBadRequest)
			return
		}

		start := time.Now()
		result := generator.GenerateComprehensiveAnalysis(r.Context(), req.Transcript, req.Metadata)
		reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("analysis_id", result.AnalysisID).
			Info("analysis finished")

		resp := analyzeResponse{AnalysisResult: result}
		if result.Error == "" {
			resp.ExecutiveSummary = generator.GenerateExecutiveSummary(result)
		}

		w.Header().Set("Content-Type", "application/json")
		if result.Error != "" {
			w.WriteHeader(http.StatusBadGateway)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			reqLog.WithError(err).Error("failed to write response")
		}
	})

	// demo endpoint (analyze first N rows from the dataset workbook)
	mux.HandleFunc("/demo", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "demo")
		reqLog.Info("demo invoked")

		dataPath := envOr("DATASET_PATH", "sales_calls.xlsx")
		records, err := dataset.Load(dataPath)
		if err != nil {
			reqLog.WithError(err).Error("dataset load error")
			http.Error(w, "dataset load error", 500)
			return
		}
		limit := 5
		if t := r.URL.Query().Get("limit"); t != "" {
			fmt.Sscanf(t, "%d", &limit)
		}
		if len(records) < limit {
			limit = len(records)
		}

		var calls []analyzeResponse
		var intents []types.IntentResult
		for _, rec := range records[:limit] {
			recLog := reqLog.WithField("demo_call", rec.CallID)
			recLog.Info("analyzing demo call")
			result := generator.GenerateComprehensiveAnalysis(r.Context(), rec.Transcript, dataset.Metadata(rec))
			resp := analyzeResponse{AnalysisResult: result}
			if result.Error == "" {
				resp.ExecutiveSummary = generator.GenerateExecutiveSummary(result)
				intents = append(intents, types.IntentResult{
					PrimaryIntent: result.IntentClassification,
					Confidence:    result.IntentConfidence,
				})
			}
			calls = append(calls, resp)
		}
		out := demoResponse{Calls: calls, IntentTrend: intent.AnalyzeTrend(intents)}
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(out)
	})

	addr := fmt.Sprintf(":%s", envOr("PORT", "8080"))
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
