package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type stubModels struct {
	resp     *genai.GenerateContentResponse
	err      error
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (s *stubModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.contents = contents
	s.config = config
	return s.resp, s.err
}

func candidate(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: "model", Parts: parts},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func TestGemini_Chat(t *testing.T) {
	tests := []struct {
		name          string
		resp          *genai.GenerateContentResponse
		err           error
		wantMalformed bool
		wantText      string
		wantCalls     []core.ToolCall
	}{
		{
			name:     "text answer",
			resp:     candidate(genai.NewPartFromText("Titanic uses "), genai.NewPartFromText("accuracy.")),
			wantText: "Titanic uses accuracy.",
		},
		{
			name: "function call without id",
			resp: candidate(genai.NewPartFromFunctionCall("analyze_tech_stack", map[string]any{"competition_id": "titanic"})),
			wantCalls: []core.ToolCall{{
				ID:       "local_0",
				Type:     "function",
				Function: core.FunctionCall{Name: "analyze_tech_stack", Arguments: `{"competition_id":"titanic"}`},
			}},
		},
		{
			name:          "empty candidate list",
			resp:          &genai.GenerateContentResponse{},
			wantMalformed: true,
		},
		{
			name:          "nil response",
			wantMalformed: true,
		},
		{
			name: "candidate without content",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				FinishReason: genai.FinishReasonSafety,
			}}},
			wantMalformed: true,
		},
		{
			name: "transport error",
			err:  errors.New("dial tcp: connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubModels{resp: tt.resp, err: tt.err}
			g := &Gemini{models: stub, model: "gemini-2.5-flash"}

			msg, err := g.Chat(context.Background(), []core.Message{{Role: core.RoleUser, Content: "hi"}}, nil)
			if tt.wantMalformed {
				assert.ErrorIs(t, err, core.ErrMalformedResponse)
				return
			}
			if tt.err != nil {
				require.Error(t, err)
				assert.NotErrorIs(t, err, core.ErrMalformedResponse)
				assert.Contains(t, err.Error(), "connection refused")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, core.RoleAssistant, msg.Role)
			assert.Equal(t, tt.wantText, msg.Content)
			assert.Equal(t, tt.wantCalls, msg.ToolCalls)
		})
	}
}

func TestGemini_ConvHistory(t *testing.T) {
	stub := &stubModels{resp: candidate(genai.NewPartFromText("ok"))}
	g := &Gemini{models: stub, model: "gemini-2.5-flash"}

	history := []core.Message{
		{Role: core.RoleSystem, Content: "you are helpful"},
		{Role: core.RoleUser, Content: "compare two competitions"},
		{Role: core.RoleAssistant, ToolCalls: []core.ToolCall{
			{ID: "local_0", Function: core.FunctionCall{Name: "analyze_tech_stack", Arguments: `{"competition_id":"a"}`}},
			{ID: "fc-7", Function: core.FunctionCall{Name: "analyze_tech_stack", Arguments: `{"competition_id":"b"}`}},
		}},
		{Role: core.RoleTool, Name: "analyze_tech_stack", ToolCallID: "local_0", Content: "A"},
		{Role: core.RoleTool, Name: "analyze_tech_stack", ToolCallID: "fc-7", Content: "B"},
	}
	_, err := g.Chat(context.Background(), history, []core.ToolDeclaration{searchDecl})
	require.NoError(t, err)

	require.NotNil(t, stub.config.SystemInstruction)
	assert.Equal(t, "you are helpful", stub.config.SystemInstruction.Parts[0].Text)

	require.Len(t, stub.contents, 3)
	assert.Equal(t, "user", stub.contents[0].Role)
	assert.Equal(t, "model", stub.contents[1].Role)
	require.Len(t, stub.contents[1].Parts, 2)
	assert.Empty(t, stub.contents[1].Parts[0].FunctionCall.ID)
	assert.Equal(t, "fc-7", stub.contents[1].Parts[1].FunctionCall.ID)
	assert.Equal(t, map[string]any{"competition_id": "b"}, stub.contents[1].Parts[1].FunctionCall.Args)

	results := stub.contents[2]
	assert.Equal(t, "user", results.Role)
	require.Len(t, results.Parts, 2)
	assert.Equal(t, "analyze_tech_stack", results.Parts[0].FunctionResponse.Name)
	assert.Equal(t, map[string]any{"result": "A"}, results.Parts[0].FunctionResponse.Response)
	assert.Equal(t, "fc-7", results.Parts[1].FunctionResponse.ID)

	require.Len(t, stub.config.Tools, 1)
	decl := stub.config.Tools[0].FunctionDeclarations[0]
	assert.Equal(t, "find_similar_competitions", decl.Name)
	assert.Equal(t, genai.TypeObject, decl.Parameters.Type)
	assert.Equal(t, genai.TypeString, decl.Parameters.Properties["query"].Type)
	assert.Equal(t, []string{"query"}, decl.Parameters.Required)
}

func TestGeminiConvSchema_Nullable(t *testing.T) {
	gs := geminiConvSchema(&jsonschema.Schema{Types: []string{"null", "integer"}})
	assert.Equal(t, genai.TypeInteger, gs.Type)
	require.NotNil(t, gs.Nullable)
	assert.True(t, *gs.Nullable)

	assert.Nil(t, geminiConvSchema(nil))
}
