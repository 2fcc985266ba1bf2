package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curatehq/skillforge/core/prompt"
	"github.com/curatehq/skillforge/core/providers"
)

type fakeModel struct {
	requests  []*providers.Request
	responses []string
	err       error
}

func (f *fakeModel) Complete(_ context.Context, req *providers.Request) (*providers.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	content := f.responses[len(f.requests)-1]
	return &providers.Response{
		Content:    content,
		Model:      "fake",
		StopReason: providers.StopReasonEndTurn,
		Usage:      providers.Usage{InputTokens: 100, OutputTokens: 200, TotalTokens: 300},
	}, nil
}

func (f *fakeModel) userMessage(t *testing.T, i int) string {
	t.Helper()
	require.Greater(t, len(f.requests), i)
	require.Len(t, f.requests[i].Messages, 1)
	return f.requests[i].Messages[0].Content
}

type fixedLibraries struct{}

func (fixedLibraries) Resolve(context.Context, string) string {
	return "Test library guidance."
}

func newTestOrchestrator(t *testing.T, responses ...string) (*Orchestrator, *fakeModel) {
	t.Helper()

	fragments, compositions, err := prompt.DefaultRegistries()
	require.NoError(t, err)

	builder, err := prompt.NewBuilder(prompt.BuilderConfig{
		Fragments:    fragments,
		Compositions: compositions,
		Libraries:    fixedLibraries{},
		Logger:       slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	model := &fakeModel{responses: responses}
	orch, err := New(Config{
		Builder: builder,
		Client:  model,
		Logger:  slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return orch, model
}

func responseJSON(t *testing.T, fields map[string]any) string {
	t.Helper()
	encoded, err := json.Marshal(fields)
	require.NoError(t, err)
	return string(encoded)
}

func validScopeFields() map[string]any {
	return map[string]any{
		"covers":           "API key rotation for the billing service.",
		"future_additions": []string{"rotation automation"},
		"not_included":     []string{"OAuth token refresh"},
	}
}

func TestCreateRequiresSources(t *testing.T) {
	orch, model := newTestOrchestrator(t)

	_, err := orch.Create(context.Background(), CreateRequest{Mode: CreationGenerated})
	require.Error(t, err)

	var preErr *PreconditionError
	require.ErrorAs(t, err, &preErr)
	assert.Empty(t, model.requests, "no model call on a failed precondition")
}

func TestCreateFoundationalPreconditions(t *testing.T) {
	source := Source{ID: "src-a", Type: "ticket", Label: "A", Content: "content"}

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{
			name: "missing title",
			req: CreateRequest{
				Sources: []Source{source},
				Mode:    CreationFoundational,
				Scope:   &ScopeDefinition{Covers: "x"},
			},
		},
		{
			name: "missing scope",
			req: CreateRequest{
				Sources: []Source{source},
				Mode:    CreationFoundational,
				Title:   "Key Rotation",
			},
		},
		{
			name: "invalid scope",
			req: CreateRequest{
				Sources: []Source{source},
				Mode:    CreationFoundational,
				Title:   "Key Rotation",
				Scope:   &ScopeDefinition{Covers: "  "},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch, model := newTestOrchestrator(t)

			_, err := orch.Create(context.Background(), tt.req)
			require.Error(t, err)

			var preErr *PreconditionError
			require.ErrorAs(t, err, &preErr)
			assert.Empty(t, model.requests)
		})
	}
}

func TestCreateGenerated(t *testing.T) {
	orch, model := newTestOrchestrator(t, responseJSON(t, map[string]any{
		"title":            "Billing API Key Rotation",
		"content":          "Rotate the key monthly [1]. Staging differs [2].",
		"summary":          "How billing API keys rotate.",
		"scope_definition": validScopeFields(),
		"changes":          []string{"Initial synthesis from two sources"},
	}))

	result, err := orch.Create(context.Background(), CreateRequest{
		Sources: []Source{
			{ID: "src-a", Type: "ticket", Label: "Ticket 4411", Content: "Rotation broke prod."},
			{ID: "src-b", Type: "transcript", Label: "Support call", Content: "Staging uses a separate key."},
		},
		Mode:      CreationGenerated,
		LibraryID: "support",
	})
	require.NoError(t, err)

	doc := result.Document
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "Billing API Key Rotation", doc.Title)
	assert.NotEmpty(t, doc.Scope.Covers)

	require.Len(t, doc.Citations, 2)
	assert.Equal(t, Citation{NumericID: 1, SourceID: "src-a", Label: "Ticket 4411"}, doc.Citations[0])
	assert.Equal(t, Citation{NumericID: 2, SourceID: "src-b", Label: "Support call"}, doc.Citations[1])

	assert.Equal(t, prompt.ContextCreateGenerated, result.CompositionID)
	assert.Equal(t, 300, result.Usage.TotalTokens)
	assert.Equal(t, []string{"Initial synthesis from two sources"}, result.Changes)

	// Sources enter the user message under their assigned numbers, in order.
	msg := model.userMessage(t, 0)
	first := strings.Index(msg, "### Source [1]: Ticket 4411")
	second := strings.Index(msg, "### Source [2]: Support call")
	require.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
}

func TestCreateFoundationalPinsTitleAndScope(t *testing.T) {
	orch, _ := newTestOrchestrator(t, responseJSON(t, map[string]any{
		"title":   "Model Invented Title",
		"content": "In-scope material only [1].",
		"scope_definition": map[string]any{
			"covers": "whatever the model decided",
		},
	}))

	scope := ScopeDefinition{
		Covers:      "Billing key rotation only.",
		NotIncluded: []string{"OAuth"},
	}
	result, err := orch.Create(context.Background(), CreateRequest{
		Sources: []Source{{ID: "src-a", Type: "ticket", Label: "A", Content: "content"}},
		Mode:    CreationFoundational,
		Title:   "Key Rotation",
		Scope:   &scope,
	})
	require.NoError(t, err)

	// The caller's title and scope win regardless of what the model produced.
	assert.Equal(t, "Key Rotation", result.Document.Title)
	assert.Equal(t, scope, result.Document.Scope)
	assert.Equal(t, prompt.ContextCreateFoundational, result.CompositionID)
}

func TestCreateGeneratedRequiresScopeInOutput(t *testing.T) {
	orch, _ := newTestOrchestrator(t, responseJSON(t, map[string]any{
		"title":   "Key Rotation",
		"content": "Rotate [1].",
	}))

	_, err := orch.Create(context.Background(), CreateRequest{
		Sources: []Source{{ID: "src-a", Type: "ticket", Label: "A", Content: "content"}},
		Mode:    CreationGenerated,
	})
	require.Error(t, err)

	var genErr *GenerationOutputError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Reason, "scope")
}

func TestCreateTruncatesOversizedSources(t *testing.T) {
	orch, model := newTestOrchestrator(t, responseJSON(t, map[string]any{
		"title":            "Key Rotation",
		"content":          "Rotate [1].",
		"scope_definition": validScopeFields(),
	}))

	oversized := strings.Repeat("x", CreateSourceCeiling+1000)
	_, err := orch.Create(context.Background(), CreateRequest{
		Sources: []Source{{ID: "src-a", Type: "document", Label: "A", Content: oversized}},
		Mode:    CreationGenerated,
	})
	require.NoError(t, err)

	msg := model.userMessage(t, 0)
	assert.Contains(t, msg, strings.Repeat("x", CreateSourceCeiling)+TruncationMarker)
	assert.NotContains(t, msg, strings.Repeat("x", CreateSourceCeiling+1))
}

func TestCreateNonJSONResponse(t *testing.T) {
	orch, _ := newTestOrchestrator(t, "I am unable to produce a document.")

	_, err := orch.Create(context.Background(), CreateRequest{
		Sources: []Source{{ID: "src-a", Type: "ticket", Label: "A", Content: "content"}},
		Mode:    CreationGenerated,
	})
	require.Error(t, err)

	var genErr *GenerationOutputError
	require.ErrorAs(t, err, &genErr)
}

func existingDocument() SkillDocument {
	return SkillDocument{
		ID:      "skill-1",
		Title:   "Key Rotation",
		Content: "Rotate monthly [1]. Staging differs [2].",
		Summary: "Key rotation procedure.",
		Scope: ScopeDefinition{
			Covers:      "Billing key rotation.",
			NotIncluded: []string{"OAuth"},
		},
		Citations: []Citation{
			{NumericID: 1, SourceID: "src-a", Label: "Ticket 4411"},
			{NumericID: 2, SourceID: "src-b", Label: "Support call"},
		},
	}
}

func TestUpdateAdditive(t *testing.T) {
	orch, model := newTestOrchestrator(t, responseJSON(t, map[string]any{
		"title":   "Model Renamed It",
		"content": "Rotate monthly [1]. Staging differs [2]. New keys expire yearly [3].",
		"summary": "Expanded rotation procedure.",
		"changes": []string{"Added expiry policy from source [3]"},
	}))

	existing := existingDocument()
	result, err := orch.Update(context.Background(), UpdateRequest{
		Existing:   existing,
		NewSources: []Source{{ID: "src-c", Type: "document", Label: "Expiry policy", Content: "Keys expire yearly."}},
		Mode:       RefreshAdditive,
	})
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "skill-1", doc.ID)
	// Additive mode pins title and scope.
	assert.Equal(t, existing.Title, doc.Title)
	assert.Equal(t, existing.Scope, doc.Scope)

	// The new source continues numbering above the prior maximum.
	require.Len(t, doc.Citations, 3)
	assert.Equal(t, existing.Citations[0], doc.Citations[0])
	assert.Equal(t, existing.Citations[1], doc.Citations[1])
	assert.Equal(t, Citation{NumericID: 3, SourceID: "src-c", Label: "Expiry policy"}, doc.Citations[2])

	assert.Equal(t, prompt.ContextUpdateAdditive, result.CompositionID)

	msg := model.userMessage(t, 0)
	assert.Contains(t, msg, "### Source [3]: Expiry policy")
	assert.Contains(t, msg, "[1] Ticket 4411")
}

func TestUpdateAdditiveRequiresNewSources(t *testing.T) {
	orch, model := newTestOrchestrator(t)

	_, err := orch.Update(context.Background(), UpdateRequest{
		Existing: existingDocument(),
		Mode:     RefreshAdditive,
	})
	require.Error(t, err)

	var preErr *PreconditionError
	require.ErrorAs(t, err, &preErr)
	assert.Empty(t, model.requests)
}

func TestUpdateRegenerative(t *testing.T) {
	orch, _ := newTestOrchestrator(t, responseJSON(t, map[string]any{
		"title":            "Billing Credential Rotation",
		"content":          "Rotate monthly [1]. Expiry is yearly [3].",
		"summary":          "Regenerated procedure.",
		"scope_definition": validScopeFields(),
	}))

	existing := existingDocument()
	// src-b is dropped from the complete set; src-c is new.
	result, err := orch.Update(context.Background(), UpdateRequest{
		Existing: existing,
		Mode:     RefreshRegenerative,
		AllSources: []Source{
			{ID: "src-a", Type: "ticket", Label: "Ticket 4411", Content: "Rotation broke prod."},
			{ID: "src-c", Type: "document", Label: "Expiry policy", Content: "Keys expire yearly."},
		},
	})
	require.NoError(t, err)

	doc := result.Document
	// Regenerative mode may retitle and evolve the scope.
	assert.Equal(t, "Billing Credential Rotation", doc.Title)
	assert.Equal(t, "API key rotation for the billing service.", doc.Scope.Covers)

	// The surviving source keeps its number; the new one numbers past the
	// prior maximum even though 2 is now free.
	require.Len(t, doc.Citations, 2)
	assert.Equal(t, Citation{NumericID: 1, SourceID: "src-a", Label: "Ticket 4411"}, doc.Citations[0])
	assert.Equal(t, Citation{NumericID: 3, SourceID: "src-c", Label: "Expiry policy"}, doc.Citations[1])
}

func TestUpdateRegenerativeRequiresAllSources(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	_, err := orch.Update(context.Background(), UpdateRequest{
		Existing: existingDocument(),
		Mode:     RefreshRegenerative,
	})
	var preErr *PreconditionError
	require.ErrorAs(t, err, &preErr)
}

func TestUpdateRejectsCorruptPriorCitations(t *testing.T) {
	orch, model := newTestOrchestrator(t)

	existing := existingDocument()
	existing.Citations[1].NumericID = 1

	_, err := orch.Update(context.Background(), UpdateRequest{
		Existing:   existing,
		NewSources: []Source{{ID: "src-c", Type: "ticket", Label: "C", Content: "c"}},
		Mode:       RefreshAdditive,
	})
	require.Error(t, err)

	var violation *CitationInvariantViolation
	require.ErrorAs(t, err, &violation)
	assert.Empty(t, model.requests)
}

func TestReformatRenumbersByAppearance(t *testing.T) {
	orch, _ := newTestOrchestrator(t, responseJSON(t, map[string]any{
		"content": "Staging differs [2]. Rotate monthly [1].",
		"changes": []string{"Moved staging note first"},
	}))

	existing := existingDocument()
	result, err := orch.Reformat(context.Background(), ReformatRequest{
		Existing: existing,
		AllSources: []Source{
			{ID: "src-a", Type: "ticket", Label: "Ticket 4411", Content: "a"},
			{ID: "src-b", Type: "transcript", Label: "Support call", Content: "b"},
		},
	})
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "Staging differs [1]. Rotate monthly [2].", doc.Content)
	require.Len(t, doc.Citations, 2)
	assert.Equal(t, Citation{NumericID: 1, SourceID: "src-b", Label: "Support call"}, doc.Citations[0])
	assert.Equal(t, Citation{NumericID: 2, SourceID: "src-a", Label: "Ticket 4411"}, doc.Citations[1])

	// Everything except content and citation numbering is carried over.
	assert.Equal(t, existing.Title, doc.Title)
	assert.Equal(t, existing.Summary, doc.Summary)
	assert.Equal(t, existing.Scope, doc.Scope)
	assert.Equal(t, prompt.ContextReformat, result.CompositionID)
}

func TestReformatRejectsUnknownMarker(t *testing.T) {
	orch, _ := newTestOrchestrator(t, responseJSON(t, map[string]any{
		"content": "Invented claim [9].",
	}))

	_, err := orch.Reformat(context.Background(), ReformatRequest{
		Existing: existingDocument(),
	})
	require.Error(t, err)

	var genErr *GenerationOutputError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, errors.Unwrap(genErr).Error(), "[9]")
}

func TestReformatRequiresContent(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	_, err := orch.Reformat(context.Background(), ReformatRequest{
		Existing: SkillDocument{ID: "skill-1"},
	})
	var preErr *PreconditionError
	require.ErrorAs(t, err, &preErr)
}

func matchCandidates() []SkillCandidate {
	return []SkillCandidate{
		{ID: "skill-1", Title: "Key Rotation", Summary: "Rotating billing keys.", Covers: "billing keys"},
		{ID: "skill-2", Title: "Incident Response", Summary: "Handling pages.", Covers: "incidents"},
	}
}

func TestMatchRanksByScore(t *testing.T) {
	orch, _ := newTestOrchestrator(t, responseJSON(t, map[string]any{
		"matches": []map[string]any{
			{"skill_id": "skill-2", "score": 0.3, "rationale": "Tangential."},
			{"skill_id": "skill-1", "score": 0.9, "rationale": "Squarely in scope."},
		},
	}))

	result, err := orch.Match(context.Background(), MatchRequest{
		Source:     Source{ID: "src-x", Type: "ticket", Label: "X", Content: "Key rotation failed again."},
		Candidates: matchCandidates(),
	})
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, "skill-1", result.Matches[0].SkillID)
	assert.Equal(t, "Key Rotation", result.Matches[0].Title)
	assert.Equal(t, 0.9, result.Matches[0].Score)
	assert.Equal(t, "skill-2", result.Matches[1].SkillID)
	assert.False(t, result.CreateNew)
}

func TestMatchCreateNewRecommendation(t *testing.T) {
	orch, _ := newTestOrchestrator(t, responseJSON(t, map[string]any{
		"matches": []map[string]any{},
		"create_new": map[string]any{
			"recommended":     true,
			"rationale":       "No candidate covers backup retention.",
			"suggested_title": "Backup Retention Policy",
		},
	}))

	result, err := orch.Match(context.Background(), MatchRequest{
		Source:     Source{ID: "src-x", Type: "document", Label: "X", Content: "Backups are kept 90 days."},
		Candidates: matchCandidates(),
	})
	require.NoError(t, err)

	assert.Empty(t, result.Matches)
	assert.True(t, result.CreateNew)
	assert.Equal(t, "Backup Retention Policy", result.SuggestedTitle)
}

func TestMatchRejectsUnknownSkill(t *testing.T) {
	orch, _ := newTestOrchestrator(t, responseJSON(t, map[string]any{
		"matches": []map[string]any{
			{"skill_id": "skill-99", "score": 0.5, "rationale": "?"},
		},
	}))

	_, err := orch.Match(context.Background(), MatchRequest{
		Source:     Source{ID: "src-x", Type: "ticket", Label: "X", Content: "content"},
		Candidates: matchCandidates(),
	})
	require.Error(t, err)

	var genErr *GenerationOutputError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Reason, "skill-99")
}

func TestMatchRejectsOutOfRangeScore(t *testing.T) {
	orch, _ := newTestOrchestrator(t, responseJSON(t, map[string]any{
		"matches": []map[string]any{
			{"skill_id": "skill-1", "score": 1.4, "rationale": "Too eager."},
		},
	}))

	_, err := orch.Match(context.Background(), MatchRequest{
		Source:     Source{ID: "src-x", Type: "ticket", Label: "X", Content: "content"},
		Candidates: matchCandidates(),
	})
	require.Error(t, err)

	var genErr *GenerationOutputError
	require.ErrorAs(t, err, &genErr)
}

func TestMatchRequiresSourceContent(t *testing.T) {
	orch, model := newTestOrchestrator(t)

	_, err := orch.Match(context.Background(), MatchRequest{
		Source: Source{ID: "src-x", Type: "ticket", Label: "X"},
	})
	var preErr *PreconditionError
	require.ErrorAs(t, err, &preErr)
	assert.Empty(t, model.requests)
}

func TestModelErrorPropagates(t *testing.T) {
	orch, model := newTestOrchestrator(t)
	model.err = errors.New("rate limited")

	_, err := orch.Create(context.Background(), CreateRequest{
		Sources: []Source{{ID: "src-a", Type: "ticket", Label: "A", Content: "content"}},
		Mode:    CreationGenerated,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
