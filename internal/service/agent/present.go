package agent

import "github.com/sandevgo/kagglebot/internal/core"

const (
	FallbackParse          = "No valid response found."
	FallbackIterationLimit = "I could not reach a final answer within the allowed number of steps. Try narrowing the question."
	FallbackBackend        = "The reasoning service is unavailable right now. Please try again."
	FallbackCanceled       = "The query was canceled before an answer was ready."
)

// Present renders a loop result for the user.
func Present(res core.Result) string {
	switch res.Kind() {
	case "":
		return res.Text
	case core.KindResponseParse:
		return FallbackParse
	case core.KindIterationLimit:
		return FallbackIterationLimit
	case core.KindBackend:
		return FallbackBackend
	case core.KindCanceled:
		return FallbackCanceled
	default:
		return res.Observation()
	}
}
