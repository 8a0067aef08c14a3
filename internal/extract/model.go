package extract

import "context"

// TextModel completes a prompt over page text
type TextModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// VisionModel completes a prompt over one image
type VisionModel interface {
	CompleteImage(ctx context.Context, system string, image []byte, contentType, user string) (string, error)
}

// Outcome tags what came back from a model call
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeMalformed   Outcome = "malformed"
	OutcomeUnreachable Outcome = "unreachable"
	// OutcomeSkipped means the call was never made, e.g. unsupported image type
	OutcomeSkipped Outcome = "skipped"
)

// Result is a model call's tagged outcome with any deals it parsed
type Result struct {
	Outcome Outcome
	Deals   []rawDeal
	Err     error
}

// complete reports whether every parsed deal has dish, price and day
func (r Result) complete() bool {
	if r.Outcome != OutcomeOK || len(r.Deals) == 0 {
		return false
	}
	for _, d := range r.Deals {
		if !d.complete() {
			return false
		}
	}
	return true
}

// usable reports whether the result should replace an earlier one
func (r Result) usable() bool {
	return r.Outcome == OutcomeOK || r.Outcome == OutcomeMalformed
}
