package server

import (
	"mom-assistant/internal/assistant"
	"mom-assistant/internal/recipe"
)

type generateRequest struct {
	EnglishText string  `json:"englishText"`
	MomInput    *string `json:"momInput,omitempty"`
}

func (r generateRequest) momInput() string {
	if r.MomInput == nil {
		return ""
	}
	return *r.MomInput
}

// generateResponse keeps reply and replyParts as explicit nulls when no reply
// was drafted so clients can tell "not asked" from "empty".
type generateResponse struct {
	MandarinTranslation string                  `json:"mandarinTranslation"`
	Reply               *string                 `json:"reply"`
	ReplyParts          *assistant.ReplyOutcome `json:"replyParts"`
	ReplyError          string                  `json:"replyError,omitempty"`
}

func newGenerateResponse(res assistant.Result) generateResponse {
	out := generateResponse{MandarinTranslation: res.MandarinTranslation}
	if res.Reply != nil {
		raw := res.RawReply
		out.Reply = &raw
		out.ReplyParts = res.Reply
	}
	if res.ReplyErr != nil {
		out.ReplyError = "Failed to generate a reply."
	}
	return out
}

type recipeRequest struct {
	Topic string `json:"topic"`
}

type recipeResponse struct {
	Recipe recipe.Recipe `json:"recipe"`
}
