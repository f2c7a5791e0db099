package handler

import (
	"anonchat/backend/internal/config"
	"anonchat/backend/internal/matchmaker"
	"anonchat/backend/internal/session"
	"anonchat/backend/internal/storage"
)

// Handler містить залежності HTTP-шару.
type Handler struct {
	Matchmaker *matchmaker.Service
	Storage    storage.Storage
	Sessions   session.Sessions
	Cfg        *config.Config
}

func NewHandler(m *matchmaker.Service, s storage.Storage, sessions session.Sessions, cfg *config.Config) *Handler {
	return &Handler{
		Matchmaker: m,
		Storage:    s,
		Sessions:   sessions,
		Cfg:        cfg,
	}
}

func sessionFor(chatID, pseudonym string) session.ChatSession {
	return session.ChatSession{ChatID: chatID, Pseudonym: pseudonym}
}
