package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/fakhrymubarak/weather-snapshots/internal/config"
	"github.com/fakhrymubarak/weather-snapshots/internal/model"
	"github.com/fakhrymubarak/weather-snapshots/internal/service"
	"github.com/go-playground/validator/v10"
)

const (
	MsgCityRequired = "City parameter is required."
	MsgNoHistory    = "No historical data found for this city."
)

// ErrCityRequired is returned when the city path parameter is absent or empty.
var ErrCityRequired = errors.New(MsgCityRequired)

// statusCoder is implemented by errors that carry an upstream HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

type WeatherHandler struct {
	WeatherService service.WeatherServiceInterface
	validate       *validator.Validate
}

func NewWeatherHandler(svc service.WeatherServiceInterface) *WeatherHandler {
	return &WeatherHandler{
		WeatherService: svc,
		validate:       validator.New(),
	}
}

func (h *WeatherHandler) parseCityRequest(req events.APIGatewayProxyRequest) (model.CityRequest, error) {
	cityReq := model.NewCityRequest(req.PathParameters)
	v := h.validate
	if v == nil {
		v = validator.New()
	}
	if err := v.Struct(cityReq); err != nil {
		return cityReq, ErrCityRequired
	}
	return cityReq, nil
}

func (h *WeatherHandler) jsonResponse(statusCode int, data model.Response) events.APIGatewayProxyResponse {
	body, err := json.Marshal(data)
	if err != nil {
		config.GetLogger().Errorw("could not encode json", "error", err)
		statusCode = http.StatusInternalServerError
		body = []byte(`{"error":"could not encode response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func (h *WeatherHandler) errorResponse(statusCode int, msg string) events.APIGatewayProxyResponse {
	return h.jsonResponse(statusCode, model.ErrorResponse(msg))
}

func requestID(ctx context.Context, req events.APIGatewayProxyRequest) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return lc.AwsRequestID
	}
	return req.RequestContext.RequestID
}

// HandleFetchWeather fetches the current weather for the city and stores it
// as a new snapshot.
func (h *WeatherHandler) HandleFetchWeather(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	cityReq, err := h.parseCityRequest(req)
	if err != nil {
		return h.errorResponse(http.StatusBadRequest, err.Error()), nil
	}

	snapshot, err := h.WeatherService.IngestSnapshot(ctx, cityReq.City)
	if err != nil {
		status := http.StatusInternalServerError
		var sc statusCoder
		if errors.As(err, &sc) {
			status = sc.HTTPStatus()
		}
		config.GetLogger().Errorw("Failed to ingest weather snapshot",
			"city", cityReq.City, "status", status, "error", err, "request_id", requestID(ctx, req))
		return h.errorResponse(status, err.Error()), nil
	}

	return h.jsonResponse(http.StatusOK, model.DataResponse(snapshot)), nil
}

// HandleHistoricalData returns every stored snapshot for the city.
func (h *WeatherHandler) HandleHistoricalData(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	cityReq, err := h.parseCityRequest(req)
	if err != nil {
		return h.errorResponse(http.StatusBadRequest, err.Error()), nil
	}

	snapshots, err := h.WeatherService.GetHistory(ctx, cityReq.City)
	if errors.Is(err, service.ErrNoHistory) {
		config.GetLogger().Infow("No historical data", "city", cityReq.City, "request_id", requestID(ctx, req))
		return h.errorResponse(http.StatusNotFound, MsgNoHistory), nil
	}
	if err != nil {
		config.GetLogger().Errorw("Failed to load historical data",
			"city", cityReq.City, "error", err, "request_id", requestID(ctx, req))
		return h.errorResponse(http.StatusInternalServerError, err.Error()), nil
	}

	return h.jsonResponse(http.StatusOK, model.DataResponse(snapshots)), nil
}
