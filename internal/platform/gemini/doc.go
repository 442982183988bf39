// Package gemini provides a generation.Backend that uses Google's Gemini API
// through the google.golang.org/genai client library.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the diary generation core to Google's external Gemini AI service
// without exposing the details of the external service to the rest of the
// application.
//
// The backend is built once at startup. When no API key is configured it is
// still returned, but reports itself unavailable so the registry can explain
// why the provider cannot be used. Responses are reduced to plain text: the
// text parts of the first candidate are concatenated and an enclosing
// markdown code fence is removed.
package gemini
