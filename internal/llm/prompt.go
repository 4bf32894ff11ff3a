package llm

import (
	"encoding/json"
	"fmt"

	"call-insights-go/internal/types"
)

// BuildAnalysisPrompt builds the single analysis prompt sent to the
// generative gateway. The schema enumerates every qualitative field the
// pipeline merges; anything the model cannot ground in the transcript must
// stay empty rather than invented.
func BuildAnalysisPrompt(transcript string, metadata *types.CallMetadata) string {
	metaJSON := []byte("{}")
	if metadata != nil {
		metaJSON, _ = json.MarshalIndent(metadata, "", "  ")
	}

	prompt := `You are an expert sales call analysis engine.

Analyze the sales call transcript below and produce qualitative deal
intelligence strictly following the JSON schema. Your answers MUST be
grounded in the transcript and the call metadata - NO outside knowledge,
NO hallucinated numbers. If information is missing, leave fields empty
instead of inventing details.

----------------------------------------------------------------------
SCHEMA (STRICT - RETURN ONLY JSON)
{
  "deal_score_rationale": "",
  "objections": [],
  "talk_ratio_commentary": "",
  "sentiment_notes": "",
  "key_topics": [],
  "decision_makers": [],
  "budget": "",
  "timeline": "",
  "competitors": [],
  "next_best_actions": [
    {"action": "", "due_date": "", "owner": ""}
  ]
}
----------------------------------------------------------------------

GUIDELINES:
1. next_best_actions must be ranked by priority, most important first.
2. DO NOT include commentary outside the JSON.
3. DO NOT wrap the JSON in backticks.

----------------------------------------------------------------------
CALL METADATA:
%s

TRANSCRIPT:
%s

----------------------------------------------------------------------
Return ONLY valid JSON that exactly matches the schema.
`

	return fmt.Sprintf(prompt, string(metaJSON), transcript)
}
