package query

import (
	"errors"
	"fmt"

	"github.com/Veraticus/tally/internal/llm"
)

// ErrEmptyQuestion is returned when the question is blank.
var ErrEmptyQuestion = errors.New("question cannot be empty")

// UserMessage converts a query failure into a display string. It returns ""
// for nil.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrEmptyQuestion) {
		return "Please enter a question."
	}

	switch llm.KindOf(err) {
	case llm.KindTimeout:
		return "The AI service did not answer in time. Please try again."
	case llm.KindCanceled:
		return "The question was canceled."
	case llm.KindAuth:
		return "The API key is invalid. Check llm.api_key in your configuration."
	case llm.KindPermission:
		return "Access to the AI service was denied. Check the API key's permissions."
	case llm.KindNotFound:
		return "The AI service endpoint was not found. Check llm.model and llm.base_url."
	case llm.KindRateLimited:
		return "Too many requests. Please wait a moment and try again."
	case llm.KindServer:
		return "The AI service had a server error. Please try again later."
	case llm.KindHTTPUnknown:
		var llmErr *llm.Error
		if errors.As(err, &llmErr) {
			return fmt.Sprintf("The AI service returned an error (status %d).", llmErr.StatusCode)
		}
		return "The AI service returned an error."
	case llm.KindContentFiltered:
		return "The answer was blocked by the AI service's safety filter."
	case llm.KindTruncated:
		return "The answer was too long and got cut off. Try a simpler question."
	case llm.KindParse:
		return "The AI service's response could not be read."
	case llm.KindNetwork:
		return "Could not reach the AI service. Check your network connection."
	default:
		return fmt.Sprintf("The question could not be answered: %v", err)
	}
}
