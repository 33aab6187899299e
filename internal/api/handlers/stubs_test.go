package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/adolfohrq/prdgen/internal/api/ctxkeys"
	"github.com/adolfohrq/prdgen/internal/domain/audit"
	"github.com/adolfohrq/prdgen/internal/domain/chat"
	"github.com/adolfohrq/prdgen/internal/domain/classifier"
	"github.com/adolfohrq/prdgen/internal/domain/generation"
	"github.com/adolfohrq/prdgen/internal/domain/settings"
	"github.com/adolfohrq/prdgen/internal/infra/llm"
)

// ===== request helpers =====

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(ctxkeys.WithValue(req.Context(), ctxkeys.UserID, userID))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v (body %s)", err, w.Body.String())
	}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (body %s)", err, w.Body.String())
	}
	return body["error"]
}

func testDocument() *generation.Document {
	return &generation.Document{Title: "TaskFox", Idea: "a to-do app for foxes"}
}

// ===== stubGenerator =====

type stubGenerator struct {
	err         error
	suggestion  *generation.ProjectSuggestion
	sectionText string
	batch       func(doc *generation.Document, keys []generation.SectionKey) generation.BatchResult
	competitors []generation.Competitor
	logo        *generation.Logo
	image       llm.Image
	lastFormat  generation.TechFormat
}

func (s *stubGenerator) SuggestProject(context.Context, string) (*generation.ProjectSuggestion, error) {
	return s.suggestion, s.err
}

func (s *stubGenerator) GenerateSection(context.Context, *generation.Document, generation.SectionKey) (string, error) {
	return s.sectionText, s.err
}

func (s *stubGenerator) GenerateSections(_ context.Context, doc *generation.Document, keys []generation.SectionKey) (generation.BatchResult, error) {
	if s.err != nil {
		return generation.BatchResult{}, s.err
	}
	return s.batch(doc, keys), nil
}

func (s *stubGenerator) GenerateCompetitors(context.Context, *generation.Document) ([]generation.Competitor, error) {
	return s.competitors, s.err
}

func (s *stubGenerator) GenerateUIPlan(context.Context, *generation.Document) ([]generation.Screen, error) {
	return nil, s.err
}

func (s *stubGenerator) GenerateDBSchema(context.Context, *generation.Document) ([]generation.Table, error) {
	return []generation.Table{}, s.err
}

func (s *stubGenerator) GenerateTechExport(_ context.Context, _ *generation.Document, format generation.TechFormat) (string, error) {
	s.lastFormat = format
	return s.sectionText, s.err
}

func (s *stubGenerator) GenerateLogo(context.Context, *generation.Document) (*generation.Logo, error) {
	return s.logo, s.err
}

func (s *stubGenerator) AnalyzeIdea(context.Context, string) (*generation.IdeaAnalysis, error) {
	return nil, s.err
}

func (s *stubGenerator) AnalyzeImage(_ context.Context, _ string, img llm.Image) (string, error) {
	s.image = img
	return s.sectionText, s.err
}

// ===== stubSettings =====

type stubSettings struct {
	view      settings.View
	err       error
	lastUser  string
	lastPatch generation.ConfigPatch
}

func (s *stubSettings) Get(_ context.Context, userID string) (settings.View, error) {
	s.lastUser = userID
	return s.view, s.err
}

func (s *stubSettings) Update(_ context.Context, userID string, partial generation.ConfigPatch) (settings.View, error) {
	s.lastUser, s.lastPatch = userID, partial
	return s.view, s.err
}

// ===== stubClassifier =====

type stubClassifier struct {
	id          string
	ok          bool
	err         error
	lastCatalog []classifier.AgentDescriptor
}

func (s *stubClassifier) Classify(_ context.Context, _ string, catalog []classifier.AgentDescriptor) (string, bool, error) {
	s.lastCatalog = catalog
	return s.id, s.ok, s.err
}

// ===== stubAudit =====

type stubAudit struct {
	events     []generation.Event
	stats      []audit.RecipeStats
	lastFilter audit.Filter
}

func (s *stubAudit) List(_ context.Context, f audit.Filter) ([]generation.Event, error) {
	s.lastFilter = f
	return s.events, nil
}

func (s *stubAudit) Stats(context.Context) ([]audit.RecipeStats, error) {
	return s.stats, nil
}

// ===== stubChat =====

type stubChat struct {
	conv      chat.Conversation
	err       error
	lastStart chat.StartInput
	lastSend  chat.SendInput
	lastDoc   *generation.Document
	refined   chat.RefineResult
}

func (s *stubChat) Start(in chat.StartInput) (chat.Conversation, error) {
	s.lastStart = in
	return s.conv, s.err
}

func (s *stubChat) Get(id string) (chat.Conversation, error) {
	if id != s.conv.ID {
		return chat.Conversation{}, chat.ErrConversationNotFound
	}
	return s.conv, s.err
}

func (s *stubChat) Delete(id string) error {
	if id != s.conv.ID {
		return chat.ErrConversationNotFound
	}
	return s.err
}

func (s *stubChat) Send(_ context.Context, _ string, in chat.SendInput) (chat.Reply, error) {
	s.lastSend = in
	if s.err != nil {
		return chat.Reply{}, s.err
	}
	return chat.Reply{
		Message:      chat.Message{ID: "m2", Role: llm.RoleModel, Text: "noted"},
		Conversation: s.conv,
	}, nil
}

func (s *stubChat) Refine(_ context.Context, _ string, doc *generation.Document) (chat.RefineResult, error) {
	s.lastDoc = doc
	return s.refined, s.err
}

// ===== stubProvider =====

type stubProvider struct {
	id  llm.ProviderID
	err error
}

func (s *stubProvider) ID() llm.ProviderID { return s.id }

func (s *stubProvider) GenerateText(context.Context, llm.TextRequest) (string, error) {
	return "", nil
}

func (s *stubProvider) GenerateStructured(context.Context, llm.StructuredRequest) (string, error) {
	return "", nil
}

func (s *stubProvider) Chat(context.Context, llm.ChatRequest) (string, error) { return "", nil }

func (s *stubProvider) HealthCheck(context.Context) error { return s.err }

type stubLister []llm.Provider

func (l stubLister) Providers() []llm.Provider { return l }
