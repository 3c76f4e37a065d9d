// Command historical-data is the Lambda that returns every stored snapshot
// for the city in the request path.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/fakhrymubarak/weather-snapshots/internal/config"
	"github.com/fakhrymubarak/weather-snapshots/internal/handler"
	"github.com/fakhrymubarak/weather-snapshots/internal/service"
	"github.com/fakhrymubarak/weather-snapshots/internal/storage"
)

func main() {
	store, err := storage.Default(context.Background())
	if err != nil {
		config.GetLogger().Fatalw("Could not create snapshot store", "error", err)
	}
	h := handler.NewWeatherHandler(service.NewWeatherService(store))
	lambda.Start(h.HandleHistoricalData)
}
