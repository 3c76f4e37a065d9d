package model

// CityRequest is the validated form of the inbound path parameters.
type CityRequest struct {
	City string `json:"city" validate:"required"`
}

// NewCityRequest picks the city out of API Gateway path parameters. A nil map
// yields an empty request, which fails validation.
func NewCityRequest(pathParameters map[string]string) CityRequest {
	return CityRequest{City: pathParameters["city"]}
}
