package handler

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/fakhrymubarak/weather-snapshots/internal/config"
	"github.com/google/uuid"
)

// LambdaFunc is the API Gateway proxy handler signature.
type LambdaFunc func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// HTTPAdapter serves a Lambda handler over net/http so both handlers can run
// locally. The route must declare a {city} wildcard; when it is empty the
// path parameter is left out, as API Gateway does.
func HTTPAdapter(fn LambdaFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := events.APIGatewayProxyRequest{
			Resource:   r.Pattern,
			Path:       r.URL.Path,
			HTTPMethod: r.Method,
			RequestContext: events.APIGatewayProxyRequestContext{
				RequestID:  uuid.NewString(),
				HTTPMethod: r.Method,
				Path:       r.URL.Path,
			},
		}
		if city := r.PathValue("city"); city != "" {
			req.PathParameters = map[string]string{"city": city}
		}

		resp, err := fn(r.Context(), req)
		if err != nil {
			config.GetLogger().Errorw("Handler returned error", "error", err, "request_id", req.RequestContext.RequestID)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"internal server error"}`))
			return
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.Header().Set("X-Request-Id", req.RequestContext.RequestID)
		w.WriteHeader(resp.StatusCode)
		if _, err := w.Write([]byte(resp.Body)); err != nil {
			config.GetLogger().Errorw("could not write response", "error", err)
		}
	}
}
