package pipeline

import (
	"errors"

	"bookfoundry/internal/api"
	"bookfoundry/internal/estimate"
	"bookfoundry/internal/model"
)

// Plan describes a render that has not been submitted (dry-run).
type Plan struct {
	Request  model.RenderRequest
	Estimate estimate.Plan
	// Problems lists validation failures that would stop submission.
	Problems []error
}

// Ready reports whether the request would pass client-side validation.
func (p Plan) Ready() bool {
	return len(p.Problems) == 0
}

// PlanRender validates req and estimates its narration time without
// contacting the service.
func PlanRender(req model.RenderRequest) Plan {
	p := Plan{Request: req, Estimate: estimate.Request(req)}
	if err := api.ValidateRenderRequest(req); err != nil {
		var ve *api.ValidationError
		if errors.As(err, &ve) {
			p.Problems = ve.Problems
		} else {
			p.Problems = []error{err}
		}
	}
	return p
}
