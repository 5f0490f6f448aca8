// internal/games/spectrum/routes.go

package spectrum

import "github.com/gorilla/mux"

func RegisterRoutes(router *mux.Router, handler *Handler) {
	g := router.PathPrefix("/games/spectrum").Subrouter()
	g.HandleFunc("/questions", handler.Questions).Methods("GET")
	g.HandleFunc("/voice-notes/{noteId}/audio", handler.DownloadVoiceNote).Methods("GET")
	g.HandleFunc("/voice-notes/{noteId}/listened", handler.MarkListened).Methods("POST")
	g.HandleFunc("/voice-notes/{noteId}/transcribe", handler.RetryTranscription).Methods("POST")
	g.HandleFunc("/{sessionId}", handler.State).Methods("GET")
	g.HandleFunc("/{sessionId}/results", handler.Results).Methods("GET")
	g.HandleFunc("/{sessionId}/quit", handler.Quit).Methods("POST")
	g.HandleFunc("/{sessionId}/voice-notes", handler.UploadVoiceNote).Methods("POST")
	g.HandleFunc("/{sessionId}/voice-notes", handler.ListVoiceNotes).Methods("GET")
}
