package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/curatehq/skillforge/core/prompt"
	"github.com/curatehq/skillforge/core/providers"
)

// ModelClient is the single external suspension point of the pipeline.
type ModelClient interface {
	Complete(ctx context.Context, req *providers.Request) (*providers.Response, error)
}

// Orchestrator runs synthesis operations. It is stateless per call: each
// invocation builds its own prompt, makes exactly one model call, and
// returns a complete replacement document. Concurrent calls are safe;
// serializing concurrent updates to the same document is the caller's
// responsibility.
type Orchestrator struct {
	builder   *prompt.Builder
	client    ModelClient
	model     string
	maxTokens int
	logger    *slog.Logger
}

// Config configures an Orchestrator.
type Config struct {
	Builder *prompt.Builder
	Client  ModelClient

	// Model passed through to the provider; empty uses the provider default.
	Model string

	// MaxOutputTokens for each model call; empty uses the provider default.
	MaxOutputTokens int

	// Logger is optional, uses slog.Default() if nil.
	Logger *slog.Logger
}

// New creates an orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Builder == nil {
		return nil, fmt.Errorf("orchestrator: prompt builder is required")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("orchestrator: model client is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Orchestrator{
		builder:   cfg.Builder,
		client:    cfg.Client,
		model:     cfg.Model,
		maxTokens: cfg.MaxOutputTokens,
		logger:    cfg.Logger,
	}, nil
}

// CreateRequest describes a creation operation.
type CreateRequest struct {
	Sources []Source
	Mode    CreationMode

	// Title and Scope are required in foundational mode and ignored in
	// generated mode.
	Title string
	Scope *ScopeDefinition

	LibraryID         string
	CustomerScoped    bool
	AdditionalContext string
}

// Create synthesizes a new skill document.
func (o *Orchestrator) Create(ctx context.Context, req CreateRequest) (*Result, error) {
	const op = "create"

	if len(req.Sources) == 0 {
		return nil, &PreconditionError{Op: op, Reason: "at least one source is required"}
	}
	if req.Mode == CreationFoundational {
		if strings.TrimSpace(req.Title) == "" {
			return nil, &PreconditionError{Op: op, Reason: "foundational mode requires a title"}
		}
		if req.Scope == nil {
			return nil, &PreconditionError{Op: op, Reason: "foundational mode requires a scope definition"}
		}
		if err := validateScope(*req.Scope); err != nil {
			return nil, &PreconditionError{Op: op, Reason: err.Error()}
		}
	}

	taskContext, err := req.Mode.compositionContext()
	if err != nil {
		return nil, &PreconditionError{Op: op, Reason: err.Error()}
	}

	citations := citationsForSources(req.Sources)
	vars := map[string]string{
		"sources": renderSources(req.Sources, numberingFor(citations), CreateSourceCeiling),
	}
	if req.Mode == CreationFoundational {
		vars["title"] = req.Title
		vars["scope"] = renderScope(*req.Scope)
	}

	payload, built, usage, err := o.invoke(ctx, op, taskContext, req.scoping(), vars)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(payload.Content) == "" {
		return nil, &GenerationOutputError{Op: op, Reason: "document content is empty"}
	}

	doc := SkillDocument{
		ID:        uuid.NewString(),
		Content:   payload.Content,
		Summary:   payload.Summary,
		Citations: citations,
	}

	switch req.Mode {
	case CreationFoundational:
		// Caller-supplied title and scope are immutable; the model's own
		// take on them is discarded.
		doc.Title = req.Title
		doc.Scope = *req.Scope
	default:
		if strings.TrimSpace(payload.Title) == "" {
			return nil, &GenerationOutputError{Op: op, Reason: "document title is empty"}
		}
		if payload.Scope == nil {
			return nil, &GenerationOutputError{Op: op, Reason: "scope definition is missing"}
		}
		scope := payload.Scope.toScope()
		if err := validateScope(scope); err != nil {
			return nil, &GenerationOutputError{Op: op, Reason: err.Error()}
		}
		doc.Title = payload.Title
		doc.Scope = scope
	}

	contradictions, err := convertContradictions(op, payload.Contradictions, citations)
	if err != nil {
		return nil, err
	}
	doc.Contradictions = contradictions

	o.logger.Info("skill document created",
		"mode", req.Mode.String(),
		"sources", len(req.Sources),
		"citations", len(doc.Citations),
		"tokens", usage.TotalTokens)

	return &Result{
		Document:      doc,
		Changes:       payload.Changes,
		CompositionID: built.CompositionID,
		Usage:         usage,
	}, nil
}

func (r CreateRequest) scoping() prompt.Scoping {
	return prompt.Scoping{
		LibraryID:         r.LibraryID,
		CustomerScoped:    r.CustomerScoped,
		AdditionalContext: r.AdditionalContext,
	}
}

// UpdateRequest describes an update operation over an existing document.
type UpdateRequest struct {
	Existing   SkillDocument
	NewSources []Source
	Mode       RefreshMode

	// AllSources is the complete incorporated source set, required in
	// regenerative mode because the model may restructure everything.
	AllSources []Source

	LibraryID         string
	CustomerScoped    bool
	AdditionalContext string
}

// Update revises an existing skill document.
func (o *Orchestrator) Update(ctx context.Context, req UpdateRequest) (*Result, error) {
	const op = "update"

	if err := verifyUniqueNumbers(req.Existing.Citations); err != nil {
		return nil, err
	}

	switch req.Mode {
	case RefreshAdditive:
		if len(req.NewSources) == 0 {
			return nil, &PreconditionError{Op: op, Reason: "additive mode requires new sources"}
		}
	case RefreshRegenerative:
		if len(req.AllSources) == 0 {
			return nil, &PreconditionError{Op: op, Reason: "regenerative mode requires the complete source set"}
		}
	}

	taskContext, err := req.Mode.compositionContext()
	if err != nil {
		return nil, &PreconditionError{Op: op, Reason: err.Error()}
	}

	var citations []Citation
	vars := map[string]string{
		"existing_title":   req.Existing.Title,
		"existing_content": truncate(req.Existing.Content, ExistingContentCeiling),
		"citations":        renderCitations(req.Existing.Citations),
	}

	switch req.Mode {
	case RefreshAdditive:
		citations = appendCitations(req.Existing.Citations, req.NewSources)
		vars["scope"] = renderScope(req.Existing.Scope)
		vars["new_sources"] = renderSources(req.NewSources, numberingFor(citations), CreateSourceCeiling)
	case RefreshRegenerative:
		citations = mergeCitations(req.Existing.Citations, req.AllSources)
		vars["sources"] = renderSources(req.AllSources, numberingFor(citations), CreateSourceCeiling)
	}

	payload, built, usage, err := o.invoke(ctx, op, taskContext, req.scoping(), vars)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(payload.Content) == "" {
		return nil, &GenerationOutputError{Op: op, Reason: "document content is empty"}
	}

	doc := SkillDocument{
		ID:        req.Existing.ID,
		Content:   payload.Content,
		Summary:   payload.Summary,
		Citations: citations,
	}

	switch req.Mode {
	case RefreshAdditive:
		// Title and scope are pinned in additive mode.
		doc.Title = req.Existing.Title
		doc.Scope = req.Existing.Scope
		if doc.Summary == "" {
			doc.Summary = req.Existing.Summary
		}
	case RefreshRegenerative:
		doc.Title = payload.Title
		if strings.TrimSpace(doc.Title) == "" {
			doc.Title = req.Existing.Title
		}
		if payload.Scope == nil {
			return nil, &GenerationOutputError{Op: op, Reason: "scope definition is missing"}
		}
		scope := payload.Scope.toScope()
		if err := validateScope(scope); err != nil {
			return nil, &GenerationOutputError{Op: op, Reason: err.Error()}
		}
		doc.Scope = scope
	}

	contradictions, err := convertContradictions(op, payload.Contradictions, citations)
	if err != nil {
		return nil, err
	}
	doc.Contradictions = contradictions

	if err := verifyPreserved(req.Existing.Citations, doc.Citations); err != nil {
		return nil, err
	}
	if err := verifyUniqueNumbers(doc.Citations); err != nil {
		return nil, err
	}

	o.logger.Info("skill document updated",
		"mode", req.Mode.String(),
		"new_sources", len(req.NewSources),
		"citations", len(doc.Citations),
		"tokens", usage.TotalTokens)

	return &Result{
		Document:      doc,
		Changes:       payload.Changes,
		CompositionID: built.CompositionID,
		Usage:         usage,
	}, nil
}

func (r UpdateRequest) scoping() prompt.Scoping {
	return prompt.Scoping{
		LibraryID:         r.LibraryID,
		CustomerScoped:    r.CustomerScoped,
		AdditionalContext: r.AdditionalContext,
	}
}

// ReformatRequest describes a reformat operation.
type ReformatRequest struct {
	Existing   SkillDocument
	AllSources []Source
	LibraryID  string
}

// Reformat restructures a document's formatting and organization without
// altering factual content. It is the only operation permitted to renumber
// citations, and when it does, it renumbers all of them by first-appearance
// order in the regenerated content.
func (o *Orchestrator) Reformat(ctx context.Context, req ReformatRequest) (*Result, error) {
	const op = "reformat"

	if strings.TrimSpace(req.Existing.Content) == "" {
		return nil, &PreconditionError{Op: op, Reason: "existing document has no content"}
	}
	// Duplicate numeric ids should be unreachable given the update
	// invariant, but prior state comes from the caller and is not trusted.
	if err := verifyUniqueNumbers(req.Existing.Citations); err != nil {
		return nil, err
	}

	vars := map[string]string{
		"existing_title":   req.Existing.Title,
		"existing_content": truncate(req.Existing.Content, ExistingContentCeiling),
		"citations":        renderCitations(req.Existing.Citations),
		"sources":          renderSources(req.AllSources, numberingFor(req.Existing.Citations), CreateSourceCeiling),
	}

	payload, built, usage, err := o.invoke(ctx, op, prompt.ContextReformat,
		prompt.Scoping{LibraryID: req.LibraryID}, vars)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(payload.Content) == "" {
		return nil, &GenerationOutputError{Op: op, Reason: "document content is empty"}
	}

	content, citations, err := renumberByAppearance(payload.Content, req.Existing.Citations)
	if err != nil {
		return nil, &GenerationOutputError{Op: op, Reason: "citation renumbering failed", Err: err}
	}

	doc := SkillDocument{
		ID:             req.Existing.ID,
		Title:          req.Existing.Title,
		Content:        content,
		Summary:        req.Existing.Summary,
		Scope:          req.Existing.Scope,
		Citations:      citations,
		Contradictions: req.Existing.Contradictions,
	}

	o.logger.Info("skill document reformatted",
		"citations", len(doc.Citations),
		"tokens", usage.TotalTokens)

	return &Result{
		Document:      doc,
		Changes:       payload.Changes,
		CompositionID: built.CompositionID,
		Usage:         usage,
	}, nil
}

// MatchRequest describes a match operation.
type MatchRequest struct {
	Source     Source
	Candidates []SkillCandidate
	LibraryID  string
}

// Match ranks candidate skills for a source and optionally recommends
// creating a new document instead.
func (o *Orchestrator) Match(ctx context.Context, req MatchRequest) (*MatchResult, error) {
	const op = "match"

	if strings.TrimSpace(req.Source.Content) == "" {
		return nil, &PreconditionError{Op: op, Reason: "source has no content"}
	}

	vars := map[string]string{
		"source":     renderUnnumberedSource(req.Source, CreateSourceCeiling),
		"candidates": renderCandidates(req.Candidates),
	}

	built, err := o.builder.Build(ctx, prompt.ContextMatch, prompt.Scoping{LibraryID: req.LibraryID})
	if err != nil {
		return nil, err
	}

	userMessage, err := prompt.FillTemplate(built.UserTemplate, vars)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := o.complete(ctx, built, userMessage)
	if err != nil {
		return nil, fmt.Errorf("%s: model call: %w", op, err)
	}

	payload, err := decodePayload[matchPayload](op, resp.Content)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]SkillCandidate, len(req.Candidates))
	for _, c := range req.Candidates {
		byID[c.ID] = c
	}

	matches := make([]Match, 0, len(payload.Matches))
	for i, m := range payload.Matches {
		candidate, known := byID[m.SkillID]
		if !known {
			return nil, &GenerationOutputError{
				Op:     op,
				Reason: fmt.Sprintf("matches[%d] references unknown skill %q", i, m.SkillID),
			}
		}
		if m.Score < 0 || m.Score > 1 {
			return nil, &GenerationOutputError{
				Op:     op,
				Reason: fmt.Sprintf("matches[%d] score %v outside [0,1]", i, m.Score),
			}
		}
		matches = append(matches, Match{
			SkillID:   m.SkillID,
			Title:     candidate.Title,
			Score:     m.Score,
			Rationale: m.Rationale,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	result := &MatchResult{
		Matches:       matches,
		CompositionID: built.CompositionID,
		Usage:         resp.Usage,
	}
	if payload.CreateNew != nil && payload.CreateNew.Recommended {
		result.CreateNew = true
		result.CreateNewRationale = payload.CreateNew.Rationale
		result.SuggestedTitle = payload.CreateNew.SuggestedTitle
	}

	o.logger.Info("source matched against candidates",
		"candidates", len(req.Candidates),
		"matches", len(result.Matches),
		"create_new", result.CreateNew,
		"tokens", resp.Usage.TotalTokens)

	return result, nil
}

// invoke runs the shared build-fill-call-decode sequence for the document
// producing operations.
func (o *Orchestrator) invoke(ctx context.Context, op, taskContext string, scoping prompt.Scoping, vars map[string]string) (*documentPayload, *prompt.BuiltPrompt, providers.Usage, error) {
	built, err := o.builder.Build(ctx, taskContext, scoping)
	if err != nil {
		return nil, nil, providers.Usage{}, err
	}

	userMessage, err := prompt.FillTemplate(built.UserTemplate, vars)
	if err != nil {
		return nil, nil, providers.Usage{}, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := o.complete(ctx, built, userMessage)
	if err != nil {
		return nil, nil, providers.Usage{}, fmt.Errorf("%s: model call: %w", op, err)
	}

	payload, err := decodePayload[documentPayload](op, resp.Content)
	if err != nil {
		return nil, nil, providers.Usage{}, err
	}
	return payload, built, resp.Usage, nil
}

func (o *Orchestrator) complete(ctx context.Context, built *prompt.BuiltPrompt, userMessage string) (*providers.Response, error) {
	return o.client.Complete(ctx, &providers.Request{
		Model:        o.model,
		MaxTokens:    o.maxTokens,
		SystemPrompt: built.SystemText,
		Messages: []providers.Message{
			{Role: providers.RoleUser, Content: userMessage},
		},
	})
}
