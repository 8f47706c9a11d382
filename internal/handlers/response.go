// Package handlers exposes the contact store as a JSON HTTP API.
package handlers

// Response is the standard API envelope: {success, data|error}.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func okData(data any) Response {
	return Response{Success: true, Data: data}
}

func okList(data any, count int) Response {
	return Response{Success: true, Data: data, Count: &count}
}

func okMessage(message string) Response {
	return Response{Success: true, Message: message}
}

func fail(message string) Response {
	return Response{Success: false, Error: message}
}
