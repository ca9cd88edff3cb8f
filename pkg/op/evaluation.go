package op

import (
	"encoding/json"
	"net/http"

	httphelper "github.com/auric-id/auric/pkg/http"
	"github.com/auric-id/auric/pkg/oidc"
)

func evaluationHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		EvaluateAccess(w, r, o)
	}
}

// EvaluateAccess answers AuthZEN access evaluation requests against
// the configured evaluator. Without an evaluator every request is
// denied.
func EvaluateAccess(w http.ResponseWriter, r *http.Request, p *Provider) {
	ctx, span := tracer.Start(r.Context(), "EvaluateAccess")
	r = r.WithContext(ctx)
	defer span.End()

	evalReq := new(oidc.EvaluationRequest)
	if err := json.NewDecoder(r.Body).Decode(evalReq); err != nil {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("cannot parse request body").WithParent(err), p.Logger())
		return
	}
	if evalReq.Subject.Type == "" || evalReq.Subject.ID == "" {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("subject type and id required"), p.Logger())
		return
	}
	if evalReq.Action.Name == "" {
		RequestError(w, r, oidc.ErrInvalidRequest().WithDescription("action name required"), p.Logger())
		return
	}
	evaluator := p.Evaluator()
	if evaluator == nil {
		httphelper.MarshalJSON(w, &oidc.EvaluationResponse{Decision: false})
		return
	}
	resp, err := evaluator.Evaluate(ctx, evalReq)
	if err != nil {
		RequestError(w, r, oidc.DefaultToServerError(err, "evaluation failed"), p.Logger())
		return
	}
	httphelper.MarshalJSON(w, resp)
}
