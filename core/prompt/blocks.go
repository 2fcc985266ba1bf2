package prompt

// Production fragment and composition tables. These are plain data handed to
// explicit registry constructors at process start; nothing reads them
// ambiently, so tests can substitute fixture tables.

// Task context keys recognized by the synthesis pipeline.
const (
	ContextCreateGenerated    = "skill.create.generated"
	ContextCreateFoundational = "skill.create.foundational"
	ContextUpdateRegenerative = "skill.update.regenerative"
	ContextUpdateAdditive     = "skill.update.additive"
	ContextMatch              = "skill.match"
	ContextReformat           = "skill.reformat"
)

const curatorRoleBlock = `You are a knowledge curator for a team knowledge base. You synthesize durable, reusable "skill" documents from raw source material: support tickets, chat threads, call transcripts, and reference documents.

A skill document captures how something actually works or how a task is actually done, written so a teammate can act on it without reading the underlying sources. Prefer concrete facts over summaries of conversations. Never invent facts that are not supported by a source.`

const writingStyleBlock = `Write in clear, direct prose. Use Markdown headings to organize content. Keep sections short and scannable. Use the imperative mood for procedures ("Rotate the API key", not "The API key should be rotated"). Do not editorialize about the quality of the sources and do not refer to the sources as "tickets" or "transcripts" in the document body.`

const citationNumberingBlock = `Every factual claim in the document must cite the source it came from using an inline numeric marker like [1] or [2]. The sources in your input are already numbered; always cite a source by the exact number it is given in the input. Never renumber sources, never invent a number that does not appear in the input, and never emit a citation list of your own: citation records are maintained outside the model.`

const citationPreserveBlock = `This document already exists and its citation numbers are referenced externally. Existing citation markers in the document keep their numbers exactly as they are. New sources in your input carry pre-assigned numbers; use those numbers verbatim when citing new material.`

const scopeGeneratedBlock = `Derive a scope definition for the document with three parts:
- "covers": one or two sentences stating what subject matter this document covers.
- "future_additions": short phrases for related material that would belong here if sources for it arrive later.
- "not_included": short phrases for adjacent subject matter that deliberately belongs in a different document.

The scope must describe the document you actually produced, not the sources you were given.`

const scopeFoundationalBlock = `A fixed scope definition is supplied in your input. Extract and synthesize only material that falls inside "covers". Material matching "not_included" must be left out even if it is prominent in the sources. Do not modify, restate, or extend the scope definition itself; it is owned by the caller.`

const contradictionsBlock = `When two sources disagree on a fact, do not pick a winner silently. Record the disagreement in the "contradictions" array: the type of conflict, a one-sentence description, both sides with a short verbatim excerpt each, a severity of "low", "medium", or "high", and a recommendation for the human reviewer. Then write the document using the better-supported side, citing it normally.`

const changesReportBlock = `Report what you changed in the "changes" array: one short past-tense entry per meaningful change ("Added OAuth scope table from source [4]", "Rewrote rate-limit section for clarity"). A reviewer uses this list to audit the revision, so list every content-bearing change and nothing cosmetic.`

const additiveRefreshBlock = `You are appending to an existing document, not rewriting it. The existing title and scope are pinned. Reproduce the existing content verbatim, then integrate the new material by appending to existing sections or adding new sections at the end. Do not restructure, reword, or delete anything that is already there.`

const regenerativeRefreshBlock = `You are reprocessing the complete source set for this document. You may restructure sections, rewrite prose, and change the title if the full source set warrants it. The scope definition may evolve to match the regenerated content.`

const reformatRulesBlock = `Restructure the document's formatting and organization only. You may reorder sections, merge or split them, and normalize headings and lists. You must not add, remove, or alter any factual content, and every citation marker present in the input content must appear in your output. Keep the existing citation numbers in your output; renumbering is handled outside the model.`

const matchRankingBlock = `Judge how well the source fits each candidate skill document by comparing the source's subject matter to each candidate's title, summary, and scope. Score each candidate from 0.0 (unrelated) to 1.0 (squarely in scope) with a one-sentence rationale. If no candidate scores above 0.5, recommend creating a new document and say what its subject would be. Rank on subject-matter fit only, not on document quality.`

const structuredOutputBlock = `Respond with exactly one JSON object matching the expected output schema. Do not wrap it in prose. A Markdown code fence around the object is tolerated but not required. All strings must be valid JSON strings with newlines escaped.`

// DefaultFragments returns the production fragment table.
func DefaultFragments() []Fragment {
	return []Fragment{
		{ID: "role.curator", Name: "Role", Tier: TierCore, Content: curatorRoleBlock},
		{ID: "style.writing", Name: "Writing Style", Tier: TierOpen, Content: writingStyleBlock},
		{ID: "citations.numbering", Name: "Citations", Tier: TierCore, Content: citationNumberingBlock},
		{ID: "citations.preserve", Name: "Existing Citations", Tier: TierCore, Content: citationPreserveBlock},
		{ID: "scope.generated", Name: "Scope Definition", Tier: TierGuarded, Content: scopeGeneratedBlock},
		{ID: "scope.foundational", Name: "Fixed Scope", Tier: TierCore, Content: scopeFoundationalBlock},
		{ID: "contradictions.surface", Name: "Contradictions", Tier: TierGuarded, Content: contradictionsBlock},
		{ID: "changes.report", Name: "Change Report", Tier: TierGuarded, Content: changesReportBlock},
		{ID: "refresh.additive", Name: "Append-Only Update", Tier: TierCore, Content: additiveRefreshBlock},
		{ID: "refresh.regenerative", Name: "Full Reprocess", Tier: TierCore, Content: regenerativeRefreshBlock},
		{ID: "reformat.rules", Name: "Reformatting Rules", Tier: TierCore, Content: reformatRulesBlock},
		{ID: "match.ranking", Name: "Match Ranking", Tier: TierCore, Content: matchRankingBlock},
		{ID: "output.json", Name: "Output Discipline", Tier: TierCore, Content: structuredOutputBlock},
	}
}

const documentSchemaHint = `{
  "title": "string",
  "content": "string, full Markdown document with inline [n] citation markers",
  "summary": "string, two or three sentences",
  "scope_definition": {
    "covers": "string",
    "future_additions": ["string"],
    "not_included": ["string"]
  },
  "contradictions": [
    {
      "type": "string",
      "description": "string",
      "sides": [
        {"source_number": 1, "excerpt": "string"},
        {"source_number": 2, "excerpt": "string"}
      ],
      "severity": "low | medium | high",
      "recommendation": "string"
    }
  ],
  "changes": ["string"]
}`

const matchSchemaHint = `{
  "matches": [
    {"skill_id": "string, id of a candidate from the input", "score": 0.0, "rationale": "string"}
  ],
  "create_new": {
    "recommended": false,
    "rationale": "string",
    "suggested_title": "string"
  }
}`

const createGeneratedTemplate = `Synthesize a new skill document from the following sources.

{{sources}}`

const createFoundationalTemplate = `Create a skill document titled "{{title}}" by extracting only material inside the fixed scope below.

## Fixed Scope

{{scope}}

## Sources

{{sources}}`

const updateRegenerativeTemplate = `Regenerate the skill document "{{existing_title}}" from its complete source set.

## Current Content

{{existing_content}}

## Existing Citations

{{citations}}

## Complete Source Set

{{sources}}`

const updateAdditiveTemplate = `Append new material to the skill document "{{existing_title}}". The title and the scope below are pinned.

## Pinned Scope

{{scope}}

## Current Content

{{existing_content}}

## Existing Citations

{{citations}}

## New Sources

{{new_sources}}`

const matchTemplate = `Match the following source against the candidate skill documents.

## Source

{{source}}

## Candidate Skills

{{candidates}}`

const reformatTemplate = `Reformat the skill document "{{existing_title}}". Improve structure and organization without changing factual content.

## Current Content

{{existing_content}}

## Existing Citations

{{citations}}

## Incorporated Sources

{{sources}}`

// DefaultCompositions returns the production composition table.
func DefaultCompositions() []Composition {
	return []Composition{
		{
			Context: ContextCreateGenerated,
			FragmentIDs: []string{
				"role.curator", "style.writing", "citations.numbering",
				"scope.generated", "contradictions.surface", "changes.report",
				"output.json",
			},
			OutputFormat: OutputStructured,
			SchemaHint:   documentSchemaHint,
			UserTemplate: createGeneratedTemplate,
		},
		{
			Context: ContextCreateFoundational,
			FragmentIDs: []string{
				"role.curator", "style.writing", "citations.numbering",
				"scope.foundational", "contradictions.surface", "changes.report",
				"output.json",
			},
			OutputFormat: OutputStructured,
			SchemaHint:   documentSchemaHint,
			UserTemplate: createFoundationalTemplate,
		},
		{
			Context: ContextUpdateRegenerative,
			FragmentIDs: []string{
				"role.curator", "style.writing", "citations.numbering",
				"citations.preserve", "refresh.regenerative", "scope.generated",
				"contradictions.surface", "changes.report", "output.json",
			},
			OutputFormat: OutputStructured,
			SchemaHint:   documentSchemaHint,
			UserTemplate: updateRegenerativeTemplate,
		},
		{
			Context: ContextUpdateAdditive,
			FragmentIDs: []string{
				"role.curator", "style.writing", "citations.numbering",
				"citations.preserve", "refresh.additive", "changes.report",
				"output.json",
			},
			OutputFormat: OutputStructured,
			SchemaHint:   documentSchemaHint,
			UserTemplate: updateAdditiveTemplate,
		},
		{
			Context:      ContextMatch,
			FragmentIDs:  []string{"role.curator", "match.ranking", "output.json"},
			OutputFormat: OutputStructured,
			SchemaHint:   matchSchemaHint,
			UserTemplate: matchTemplate,
		},
		{
			Context: ContextReformat,
			FragmentIDs: []string{
				"role.curator", "style.writing", "citations.preserve",
				"reformat.rules", "changes.report", "output.json",
			},
			OutputFormat: OutputStructured,
			SchemaHint:   documentSchemaHint,
			UserTemplate: reformatTemplate,
		},
	}
}

// DefaultRegistries constructs the production registries. The tables above
// are validated here, so a defect in them fails at startup.
func DefaultRegistries() (*FragmentRegistry, *CompositionRegistry, error) {
	fragments, err := NewFragmentRegistry(DefaultFragments())
	if err != nil {
		return nil, nil, err
	}
	compositions, err := NewCompositionRegistry(DefaultCompositions())
	if err != nil {
		return nil, nil, err
	}
	return fragments, compositions, nil
}
