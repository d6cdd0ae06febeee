package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"procedure-backend/internal/bootstrap"
	"procedure-backend/internal/shared/config"
	"procedure-backend/internal/shared/server/respond"
	"procedure-backend/internal/shared/telemetry"
)

// procedureAPI builds the router on the first invocation and keeps it for as
// long as the execution environment stays warm.
type procedureAPI struct {
	once    sync.Once
	app     *bootstrap.App
	adapter *ginadapter.GinLambdaV2
	err     error
}

func (p *procedureAPI) start() {
	began := time.Now()
	app, err := bootstrap.Build(config.Load())
	if err != nil {
		p.err = err
		telemetry.Error("lambda.bootstrap.failed", map[string]any{"error": err.Error()})
		return
	}
	p.app = app
	p.adapter = ginadapter.NewV2(app.Router)
	telemetry.Info("lambda.bootstrap.ready", map[string]any{
		"duration_ms":   float64(time.Since(began).Microseconds()) / 1000.0,
		"storage":       app.Store.Provider(),
		"postgres":      app.DB != nil,
		"minimum_score": app.MinScore,
		"checks":        len(app.Checks),
	})
}

func (p *procedureAPI) handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	p.once.Do(p.start)
	if p.err != nil {
		telemetry.Warn("lambda.request.unavailable", map[string]any{
			"request_id": req.RequestContext.RequestID,
			"route":      req.RouteKey,
		})
		return unavailable(req.RequestContext.RequestID), nil
	}
	return p.adapter.ProxyWithContext(ctx, req)
}

func (p *procedureAPI) stop() {
	if p.app != nil && p.app.DB != nil {
		_ = p.app.DB.Close()
	}
	telemetry.Info("lambda.shutdown", nil)
}

// unavailable answers with the same error envelope the router uses.
func unavailable(requestID string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.ErrorResponse{Error: respond.ErrorBody{
		Code:    "bootstrap_failed",
		Message: "procedure service is not available",
	}})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json",
			"X-Request-Id": requestID,
		},
	}
}

func main() {
	api := &procedureAPI{}
	lambda.StartWithOptions(api.handle, lambda.WithEnableSIGTERM(api.stop))
}
