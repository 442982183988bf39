// Package diary implements the diary generation use case: it validates a
// writer's note, renders the prompt for the requested style and mood,
// dispatches it to a generation backend and returns the resulting Entry.
//
// Validation failures are reported as *domain.ValidationError and never reach
// a backend. Generation failures keep their generation.Kind so the delivery
// layer can map them to a response.
package diary
