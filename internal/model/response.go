package model

// Response is the JSON envelope every handler answers with. Exactly one of
// Data or Error is set.
type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *string     `json:"error,omitempty"`
}

func DataResponse(data interface{}) Response {
	return Response{Data: data}
}

func ErrorResponse(msg string) Response {
	return Response{Error: &msg}
}
