// File path: internal/api/ai_handler.go
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/nicodishanthj/inkspace/internal/generate"
	"github.com/nicodishanthj/inkspace/internal/llm"
	"github.com/nicodishanthj/inkspace/internal/llm/providers"
)

// complete builds the prompt for a kind and runs it through the configured
// provider. On failure it returns the HTTP status the error maps to.
func (s *Server) complete(ctx context.Context, kind generate.Kind, params generate.Params) (string, int, error) {
	prompt, err := generate.BuildPrompt(kind, params)
	if err != nil {
		return "", http.StatusBadRequest, err
	}
	opts := generate.OptionsFor(kind)
	text, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Prompt:          prompt,
		Temperature:     opts.Temperature,
		MaxOutputTokens: opts.MaxOutputTokens,
	})
	if err != nil {
		return "", providers.StatusFor(err), err
	}
	return text, http.StatusOK, nil
}

type generateRequest struct {
	Kind string `json:"kind"`
	generate.Params
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	kind, err := generate.ParseKind(req.Kind)
	if err != nil {
		if errors.Is(err, generate.ErrUnknownKind) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	result, status, err := s.complete(r.Context(), kind, req.Params)
	if err != nil {
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"kind": string(kind), "result": result})
}
