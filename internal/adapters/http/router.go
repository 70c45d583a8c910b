package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/fichepro/internal/core/domain"
	"github.com/kirillkom/fichepro/internal/core/ports"
	"github.com/kirillkom/fichepro/internal/core/usecase"
)

const maxUploadBytes = 32 << 20

type descriptionService interface {
	Generate(ctx context.Context, req usecase.GenerateRequest) (domain.GenerationResult, error)
}

type improvementService interface {
	Run(ctx context.Context, description string, product domain.ProductInfo, tone domain.ToneStyle) (domain.ImprovementResult, error)
}

type batchService interface {
	Process(ctx context.Context, products []domain.ProductInfo, tone domain.ToneStyle, opts domain.GenerationOptions) (usecase.BatchResult, error)
}

type batchFileParser interface {
	Parse(filename string, r io.Reader) ([]domain.ProductInfo, error)
}

type specsService interface {
	Extract(raw string) []domain.Spec
}

type seoGuideService interface {
	Guide(ctx context.Context, keywords string) (domain.SeoInsights, error)
}

type competitorService interface {
	Analyze(ctx context.Context, productName, category, searchQuery string) (domain.CompetitorInsights, error)
}

type toneService interface {
	Analyze(ctx context.Context, sampleText string) (domain.ToneProfile, error)
}

type structuredService interface {
	Generate(ctx context.Context, req usecase.StructuredRequest) (domain.StructuredDescription, error)
	Sections() []domain.Section
	Bundles() []domain.TemplateBundle
}

type metricsRecorder interface {
	RecordGeneration(service, model string, duration time.Duration, err error)
	RecordImprovement(service string, err error)
	RecordBatchItems(service string, succeeded, failed int)
	RecordSeoGuide(service string, err error)
	RecordRAGRequest(service, endpoint string)
}

type ingestService interface {
	Upload(ctx context.Context, clientID, filename, mimeType string, body io.Reader) (*domain.ClientDocument, error)
	UploadText(ctx context.Context, clientID, title, text string) (*domain.ClientDocument, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.ClientDocument, error)
	Delete(ctx context.Context, documentID string) error
}

// Deps carries everything the HTTP surface exposes.
type Deps struct {
	Generate    descriptionService
	Improve     improvementService
	Batch       batchService
	BatchFiles  batchFileParser
	Specs       specsService
	SeoGuide    seoGuideService
	Competitors competitorService
	ToneAnalyze toneService
	Structured  structuredService
	Ingest      ingestService
	Prompts     ports.PromptStore
	Tones       ports.ToneLibrary
	Providers   ports.ProviderRegistry

	ServiceName string
	Metrics     metricsRecorder

	RateLimitRPS   int
	RateLimitBurst int
	MaxInFlight    int
}

type Router struct {
	deps Deps
}

func NewRouter(deps Deps) *Router {
	return &Router{deps: deps}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", rt.health)

	mux.HandleFunc("/generate-product-description", rt.generateDescription)
	mux.HandleFunc("/generate-with-rag", rt.generateWithRAG)
	mux.HandleFunc("/batch-generate", rt.batchGenerate)
	mux.HandleFunc("/improve-description", rt.improveDescription)
	mux.HandleFunc("/extract-specs", rt.extractSpecs)
	mux.HandleFunc("/get-seo-guide", rt.getSeoGuide)
	mux.HandleFunc("/analyze-competitors", rt.analyzeCompetitors)
	mux.HandleFunc("/analyze-tone", rt.analyzeTone)

	mux.HandleFunc("/prompts", rt.listPrompts)
	mux.HandleFunc("/prompts/reset", rt.resetPrompts)
	mux.HandleFunc("/prompts/", rt.promptByID)

	mux.HandleFunc("/templates", rt.listTemplates)
	mux.HandleFunc("/templates/generate", rt.generateStructured)

	mux.HandleFunc("/upload-client-document", rt.uploadClientText)
	mux.HandleFunc("/upload-client-file", rt.uploadClientFile)
	mux.HandleFunc("/client-data/", rt.listClientDocuments)
	mux.HandleFunc("/client-document/", rt.deleteClientDocument)

	mux.HandleFunc("/tones", rt.listTones)
	mux.HandleFunc("/ai-providers", rt.listProviders)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.deps.MaxInFlight, 50*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.deps.RateLimitRPS, rt.deps.RateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// generateRequestBody flattens the generation options into the top
// level of the request document.
type generateRequestBody struct {
	Product            domain.ProductInfo         `json:"product_info"`
	Tone               domain.ToneStyle           `json:"tone_style"`
	CompetitorInsights *domain.CompetitorInsights `json:"competitor_insights,omitempty"`
	domain.GenerationOptions
}

type generateResponseBody struct {
	domain.GenerationResult
	Improvement *domain.ImprovementResult `json:"improvement,omitempty"`
}

func (rt *Router) generateDescription(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body generateRequestBody
	if !decodeJSON(w, r, &body) {
		return
	}
	rt.runGeneration(w, r, body)
}

func (rt *Router) generateWithRAG(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body generateRequestBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.ClientID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "client_id is required"})
		return
	}
	body.UseRAG = true
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordRAGRequest(rt.deps.ServiceName, "/generate-with-rag")
	}
	rt.runGeneration(w, r, body)
}

func (rt *Router) runGeneration(w http.ResponseWriter, r *http.Request, body generateRequestBody) {
	start := time.Now()
	result, err := rt.deps.Generate.Generate(r.Context(), usecase.GenerateRequest{
		Product:            body.Product,
		Tone:               body.Tone,
		Options:            body.GenerationOptions,
		CompetitorInsights: body.CompetitorInsights,
	})
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordGeneration(rt.deps.ServiceName, result.Provider.Model, time.Since(start), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	response := generateResponseBody{GenerationResult: result}
	if body.AutoImprove && rt.deps.Improve != nil {
		improvement, err := rt.deps.Improve.Run(r.Context(), result.ProductDescription, body.Product, body.Tone)
		if rt.deps.Metrics != nil {
			rt.deps.Metrics.RecordImprovement(rt.deps.ServiceName, err)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		response.Improvement = &improvement
	}
	writeJSON(w, http.StatusOK, response)
}

func (rt *Router) improveDescription(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Description string             `json:"description"`
		Product     domain.ProductInfo `json:"product_info"`
		Tone        domain.ToneStyle   `json:"tone_style"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := rt.deps.Improve.Run(r.Context(), body.Description, body.Product, body.Tone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) batchGenerate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form expected"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	products, err := rt.deps.BatchFiles.Parse(fileHeader.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}

	var tone domain.ToneStyle
	if raw := r.FormValue("tone_style"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &tone); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tone_style json"})
			return
		}
	}
	var opts domain.GenerationOptions
	if raw := r.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid options json"})
			return
		}
	}

	result, err := rt.deps.Batch.Process(r.Context(), products, tone, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordBatchItems(rt.deps.ServiceName, result.Succeeded, result.Failed)
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) extractSpecs(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		RawText string `json:"raw_text"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.RawText) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "raw_text is required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"specs": rt.deps.Specs.Extract(body.RawText),
	})
}

func (rt *Router) getSeoGuide(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Keywords string `json:"keywords"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	insights, err := rt.deps.SeoGuide.Guide(r.Context(), body.Keywords)
	if rt.deps.Metrics != nil {
		rt.deps.Metrics.RecordSeoGuide(rt.deps.ServiceName, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (rt *Router) analyzeCompetitors(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		ProductName string `json:"product_name"`
		Category    string `json:"product_category"`
		SearchQuery string `json:"search_query"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	insights, err := rt.deps.Competitors.Analyze(r.Context(), body.ProductName, body.Category, body.SearchQuery)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (rt *Router) analyzeTone(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	profile, err := rt.deps.ToneAnalyze.Analyze(r.Context(), body.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (rt *Router) listPrompts(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompts": rt.deps.Prompts.GetAll()})
}

func (rt *Router) promptByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/prompts/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prompt id is required"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		tpl, err := rt.deps.Prompts.Get(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tpl)
	case http.MethodPut:
		var body struct {
			Name string `json:"name"`
			Body string `json:"template"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if strings.TrimSpace(body.Body) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "template is required"})
			return
		}
		tpl, err := rt.deps.Prompts.Update(id, body.Name, body.Body)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tpl)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) resetPrompts(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	promptID := r.URL.Query().Get("prompt_id")
	if promptID == "" {
		var body struct {
			PromptID string `json:"prompt_id"`
		}
		// An empty body resets every prompt.
		_ = json.NewDecoder(r.Body).Decode(&body)
		promptID = body.PromptID
	}

	var err error
	if promptID == "" {
		err = rt.deps.Prompts.ResetAll()
	} else {
		err = rt.deps.Prompts.Reset(promptID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (rt *Router) listTemplates(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sections": rt.deps.Structured.Sections(),
		"bundles":  rt.deps.Structured.Bundles(),
	})
}

func (rt *Router) generateStructured(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Product    domain.ProductInfo `json:"product_info"`
		Tone       domain.ToneStyle   `json:"tone_style"`
		SectionIDs []string           `json:"section_ids"`
		TemplateID string             `json:"template_id"`
		domain.GenerationOptions
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := rt.deps.Structured.Generate(r.Context(), usecase.StructuredRequest{
		Product:    body.Product,
		Tone:       body.Tone,
		Options:    body.GenerationOptions,
		SectionIDs: body.SectionIDs,
		BundleID:   body.TemplateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) uploadClientText(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		ClientID string `json:"client_id"`
		Title    string `json:"title"`
		Text     string `json:"text"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	doc, err := rt.deps.Ingest.UploadText(r.Context(), body.ClientID, body.Title, body.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) uploadClientFile(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form expected"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.deps.Ingest.Upload(
		r.Context(),
		r.FormValue("client_id"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) listClientDocuments(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	clientID := strings.TrimPrefix(r.URL.Path, "/client-data/")
	if clientID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "client id is required"})
		return
	}

	docs, err := rt.deps.Ingest.ListByClient(r.Context(), clientID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) deleteClientDocument(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete) {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/client-document/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	if err := rt.deps.Ingest.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (rt *Router) listTones(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tones": rt.deps.Tones.All()})
}

func (rt *Router) listProviders(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": rt.deps.Providers.List()})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
