// Package chat holds persona conversations about a PRD and turns them back into document changes.
//
// Each conversation cycles Idle -> AwaitingResponse -> Idle. A reply carrying the action
// marker flags the conversation; Refine then re-runs the persona's generation recipe with the
// transcript as context and applies the result to the conversation's document.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/adolfohrq/prdgen/internal/domain/generation"
	"github.com/adolfohrq/prdgen/internal/domain/sanitize"
	"github.com/adolfohrq/prdgen/internal/infra/llm"
	"github.com/adolfohrq/prdgen/pkg/uuid"
)

var (
	// ErrConversationBusy is returned when a message is sent while a reply is pending.
	ErrConversationBusy = errors.New("chat: conversation is awaiting a response")
	// ErrConversationNotFound is returned for unknown conversation ids.
	ErrConversationNotFound = errors.New("chat: conversation not found")
	// ErrUnknownPersona is returned when starting a conversation with an unknown persona.
	ErrUnknownPersona = errors.New("chat: unknown persona")
	// ErrEmptyMessage is returned for a message with neither text nor image.
	ErrEmptyMessage = errors.New("chat: message is empty")
	// ErrNothingToRefine is returned when refinement produced no usable result.
	ErrNothingToRefine = errors.New("chat: refinement produced no usable result")
)

// DefaultMaxHistory caps the messages sent to the provider on each turn.
const DefaultMaxHistory = 20

// Engine is the generation surface the chat orchestrator needs.
type Engine interface {
	Converse(ctx context.Context, req generation.ConverseRequest) (string, error)
	Refine(ctx context.Context, req generation.RefineRequest) (*generation.Refinement, error)
}

// Service stores conversations in memory and drives their turns.
type Service struct {
	engine     Engine
	maxHistory int
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.RWMutex
	threads map[string]*thread
}

// NewService creates a Service. maxHistory <= 0 selects DefaultMaxHistory.
func NewService(engine Engine, maxHistory int, logger *slog.Logger) *Service {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine:     engine,
		maxHistory: maxHistory,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		threads:    make(map[string]*thread),
	}
}

// StartInput opens a conversation.
type StartInput struct {
	Persona PersonaID
	// Section is the PRD section a product-manager conversation refines; empty selects the
	// persona default. Ignored by other personas.
	Section  generation.SectionKey
	Document *generation.Document
}

// Start opens a new idle conversation.
func (s *Service) Start(in StartInput) (Conversation, error) {
	persona, ok := LookupPersona(in.Persona)
	if !ok {
		return Conversation{}, fmt.Errorf("%w: %q", ErrUnknownPersona, in.Persona)
	}
	section := generation.SectionKey("")
	if persona.Target == generation.TargetSection {
		section = persona.DefaultSection
		if in.Section != "" {
			if !in.Section.Valid() {
				return Conversation{}, fmt.Errorf("%w: unknown section %q", generation.ErrInvalidInput, in.Section)
			}
			section = in.Section
		}
	}
	doc := &generation.Document{}
	if in.Document != nil {
		doc = in.Document.Clone()
	}

	t := &thread{
		id:        uuid.NewV7(),
		persona:   persona,
		section:   section,
		state:     StateIdle,
		document:  doc,
		createdAt: s.now(),
	}
	s.mu.Lock()
	s.threads[t.id] = t
	s.mu.Unlock()
	return t.view(), nil
}

// Get returns a snapshot of the conversation.
func (s *Service) Get(id string) (Conversation, error) {
	t, err := s.thread(id)
	if err != nil {
		return Conversation{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view(), nil
}

// Delete removes the conversation.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[id]; !ok {
		return ErrConversationNotFound
	}
	delete(s.threads, id)
	return nil
}

func (s *Service) thread(id string) (*thread, error) {
	s.mu.RLock()
	t, ok := s.threads[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrConversationNotFound
	}
	return t, nil
}

// SendInput is one user message.
type SendInput struct {
	Text  string
	Image *llm.Image
	// Document replaces the conversation's document context when set.
	Document *generation.Document
}

// Reply is the outcome of a turn.
type Reply struct {
	Message      Message      `json:"message"`
	Conversation Conversation `json:"conversation"`
}

// Send appends a user message, asks the model and appends its reply. It fails with
// ErrConversationBusy while a previous turn is still awaiting its response.
func (s *Service) Send(ctx context.Context, id string, in SendInput) (Reply, error) {
	if strings.TrimSpace(in.Text) == "" && in.Image.Empty() {
		return Reply{}, ErrEmptyMessage
	}
	t, err := s.thread(id)
	if err != nil {
		return Reply{}, err
	}

	req, err := s.beginTurn(t, in)
	if err != nil {
		return Reply{}, err
	}

	raw, callErr := s.engine.Converse(ctx, req)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateIdle
	if callErr != nil {
		return Reply{Conversation: t.view()}, callErr
	}
	action := ExtractAction(sanitize.StripThinking(raw))
	msg := Message{
		ID:        uuid.NewV7(),
		Role:      llm.RoleModel,
		Text:      action.Text,
		Timestamp: t.nextTimestamp(s.now()),
		Action:    action.Apply,
	}
	t.messages = append(t.messages, msg)
	if action.Apply {
		t.actionPending = true
	}
	return Reply{Message: msg, Conversation: t.view()}, nil
}

// beginTurn moves the conversation to AwaitingResponse and prepares the provider request.
func (s *Service) beginTurn(t *thread, in SendInput) (generation.ConverseRequest, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateIdle {
		return generation.ConverseRequest{}, ErrConversationBusy
	}
	if in.Document != nil {
		t.document = in.Document.Clone()
	}
	msg := Message{
		ID:        uuid.NewV7(),
		Role:      llm.RoleUser,
		Text:      strings.TrimSpace(in.Text),
		Timestamp: t.nextTimestamp(s.now()),
	}
	if !in.Image.Empty() {
		msg.ImageMIME, msg.Image = in.Image.MimeType, in.Image.Data
	}
	t.messages = append(t.messages, msg)
	t.state = StateAwaitingResponse

	return generation.ConverseRequest{
		Recipe:            "chat." + string(t.persona.ID),
		SystemInstruction: systemInstruction(t.persona, t.section, t.document),
		History:           t.window(s.maxHistory),
		Temperature:       t.persona.Temperature,
	}, nil
}

func systemInstruction(p Persona, section generation.SectionKey, doc *generation.Document) string {
	b := strings.Builder{}
	b.WriteString(p.Instruction)
	if section != "" {
		b.WriteString("\n\nThe conversation is about the \"")
		b.WriteString(section.Title())
		b.WriteString("\" section.")
	}
	b.WriteString("\n\n")
	b.WriteString(markerInstruction)
	if doc != nil {
		b.WriteString("\n\nCurrent document (JSON):\n")
		b.WriteString(doc.ContextJSON())
	}
	return b.String()
}

// RefineResult is a refinement plus the document it was applied to.
type RefineResult struct {
	Refinement *generation.Refinement `json:"refinement"`
	Document   *generation.Document   `json:"document"`
}

// Refine re-runs the persona's recipe with the transcript as context, applies the result to the
// conversation's document and clears the pending action. doc, when set, replaces the document
// first.
func (s *Service) Refine(ctx context.Context, id string, doc *generation.Document) (RefineResult, error) {
	t, err := s.thread(id)
	if err != nil {
		return RefineResult{}, err
	}

	t.mu.Lock()
	if t.state != StateIdle {
		t.mu.Unlock()
		return RefineResult{}, ErrConversationBusy
	}
	if doc != nil {
		t.document = doc.Clone()
	}
	req := generation.RefineRequest{
		Target:     t.persona.Target,
		Section:    t.section,
		Document:   t.document.Clone(),
		Transcript: t.transcript(),
	}
	t.state = StateAwaitingResponse
	t.mu.Unlock()

	ref, err := s.engine.Refine(ctx, req)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateIdle
	if err != nil {
		return RefineResult{}, err
	}
	if ref == nil || !t.document.Apply(ref) {
		s.logger.Warn("chat: refinement produced nothing to apply", "conversation", t.id, "persona", t.persona.ID)
		return RefineResult{}, ErrNothingToRefine
	}
	t.actionPending = false
	return RefineResult{Refinement: ref, Document: t.document.Clone()}, nil
}
