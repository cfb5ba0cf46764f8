package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/docsage-ai/docsage/internal/api"
	"github.com/docsage-ai/docsage/internal/extract"
	"github.com/docsage-ai/docsage/internal/fetch"
)

// DocumentFetcher downloads a source document by URL.
type DocumentFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Document, error)
}

// ContextBuilder assembles the bounded context window for a document and a
// set of questions.
type ContextBuilder interface {
	BuildContext(ctx context.Context, documentID, rawText string, questions []string) (string, error)
}

// AnswerGenerator produces one answer per question from an assembled context.
type AnswerGenerator interface {
	GenerateAnswers(ctx context.Context, contextText string, questions []string) ([]string, error)
}

// QueryRequest is the document question-answering request. Documents is the
// source URL of the document to answer against.
type QueryRequest struct {
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}

// QueryResponse carries one answer per question, in question order.
type QueryResponse struct {
	Answers []string `json:"answers"`
}

// QueryHandler serves POST /api/v1/query.
type QueryHandler struct {
	fetcher   DocumentFetcher
	retrieval ContextBuilder
	generator AnswerGenerator
}

func NewQueryHandler(fetcher DocumentFetcher, retrieval ContextBuilder, generator AnswerGenerator) *QueryHandler {
	return &QueryHandler{
		fetcher:   fetcher,
		retrieval: retrieval,
		generator: generator,
	}
}

// Query downloads the document, builds the retrieval context and generates
// answers for every question.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Documents) == "" {
		api.Error(w, http.StatusBadRequest, "documents is required")
		return
	}
	questions := make([]string, 0, len(req.Questions))
	for _, q := range req.Questions {
		if strings.TrimSpace(q) != "" {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		api.Error(w, http.StatusBadRequest, "at least one question is required")
		return
	}

	doc, err := h.fetcher.Fetch(r.Context(), req.Documents)
	if err != nil {
		log.Printf("query: document fetch failed: %v", err)
		api.Error(w, http.StatusBadGateway, "failed to fetch document")
		return
	}

	text, err := extract.Text(doc.Data)
	if err != nil {
		log.Printf("query: text extraction failed for %s: %v", doc.ID, err)
		api.Error(w, http.StatusUnprocessableEntity, "failed to extract document text")
		return
	}

	contextText, err := h.retrieval.BuildContext(r.Context(), doc.ID, text, questions)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	answers, err := h.generator.GenerateAnswers(r.Context(), contextText, questions)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, QueryResponse{Answers: answers})
}
