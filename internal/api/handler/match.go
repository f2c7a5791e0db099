package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"anonchat/backend/internal/matchmaker"
)

// FindPartner triggers the pairing algorithm for the caller.
// POST /api/find-partner
func (h *Handler) FindPartner(c *gin.Context) {
	userID := c.GetString(userIDKey)

	res, err := h.Matchmaker.RequestPartner(c.Request.Context(), userID)
	if err != nil {
		log.Printf("ERROR: find-partner failed for user %s: %v", userID, err)
		// Rolled-back pairings are retryable; don't leak store internals.
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "Could not complete the search. Please retry."})
		return
	}

	switch res.State {
	case matchmaker.StateMatched:
		c.JSON(http.StatusOK, gin.H{"status": "matched", "chat_id": res.ChatID, "pseudonym": res.Pseudonym})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "waiting"})
	}
}

// PollMatch lets a waiting client discover a match assigned by another
// caller's FindPartner.
// GET /api/poll-match
func (h *Handler) PollMatch(c *gin.Context) {
	userID := c.GetString(userIDKey)

	res, err := h.Matchmaker.PollMatch(c.Request.Context(), userID)
	if err != nil {
		log.Printf("ERROR: poll-match failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Could not check for a match. Please retry."})
		return
	}

	switch res.State {
	case matchmaker.StateMatched:
		c.JSON(http.StatusOK, gin.H{"status": "matched", "chat_id": res.ChatID})
	case matchmaker.StateWaiting:
		c.JSON(http.StatusOK, gin.H{"status": "waiting"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "idle"})
	}
}

// CancelSearch removes the caller from the pending queue.
// POST /api/cancel-search
func (h *Handler) CancelSearch(c *gin.Context) {
	userID := c.GetString(userIDKey)

	if err := h.Matchmaker.CancelSearch(c.Request.Context(), userID); err != nil {
		log.Printf("ERROR: cancel-search failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Could not cancel the search. Please retry."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
