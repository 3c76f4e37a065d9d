package model

// OpenWeatherMapError is the body OpenWeatherMap sends with non-2xx answers,
// e.g. {"cod": "404", "message": "city not found"}. Cod is a string on some
// endpoints and a number on others.
type OpenWeatherMapError struct {
	Cod     interface{} `json:"cod"`
	Message string      `json:"message"`
}
