package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"anonchat/backend/internal/config"
	"anonchat/backend/internal/storage"
)

type postMessageRequest struct {
	ChatID string `json:"chat_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

// parseChatID validates that raw is a well-formed chat identifier.
func parseChatID(raw string) (string, bool) {
	if _, err := uuid.Parse(raw); err != nil {
		return "", false
	}
	return raw, true
}

// denyChatAccess rejects the request and clears any stale session chat
// association so a failed probe can't keep pointing at someone else's chat.
func (h *Handler) denyChatAccess(c *gin.Context, userID string) {
	if err := h.Sessions.Clear(c.Request.Context(), userID); err != nil {
		log.Printf("WARNING: failed to clear session for user %s: %v", userID, err)
	}
	c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "Access denied to this chat."})
}

// GetChat is the chat shell: it verifies membership, (re)establishes the
// session association, and hands the client what it needs to start polling.
// GET /api/chat/:chat_id
func (h *Handler) GetChat(c *gin.Context) {
	userID := c.GetString(userIDKey)

	chatID, ok := parseChatID(c.Param("chat_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid chat ID format"})
		return
	}

	participant, err := h.Storage.GetParticipant(userID, chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Database error. Please try again later."})
		return
	}
	if participant == nil {
		h.denyChatAccess(c, userID)
		return
	}

	if err := h.Sessions.Set(c.Request.Context(), userID, sessionFor(participant.ChatID, participant.Pseudonym)); err != nil {
		log.Printf("WARNING: failed to record session for user %s: %v", userID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":                "success",
		"chat_id":               chatID,
		"pseudonym":             participant.Pseudonym,
		"poll_interval_seconds": config.PollIntervalSeconds,
	})
}

// GetMessages returns all messages after the client's cursor. The chat must
// both match the caller's session and pass the access gate.
// GET /api/messages?chat_id=&after_id=
func (h *Handler) GetMessages(c *gin.Context) {
	userID := c.GetString(userIDKey)

	chatID, ok := parseChatID(c.Query("chat_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid or missing chat_id"})
		return
	}

	if !h.sessionMatches(c, userID, chatID) {
		return
	}

	participant, err := h.Storage.GetParticipant(userID, chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Database error. Please try again later."})
		return
	}
	if participant == nil {
		h.denyChatAccess(c, userID)
		return
	}

	var afterID uint
	if raw := c.Query("after_id"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
			afterID = uint(v)
		}
	}

	messages, err := h.Storage.ListMessagesSince(chatID, afterID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to retrieve messages."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "messages": messages})
}

// PostMessage appends one message to the caller's current chat.
// POST /api/messages
func (h *Handler) PostMessage(c *gin.Context) {
	userID := c.GetString(userIDKey)

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Missing chat_id or text"})
		return
	}

	chatID, ok := parseChatID(req.ChatID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid chat ID format"})
		return
	}
	if len(req.Text) > config.MaxMessageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Message is too long"})
		return
	}

	if !h.sessionMatches(c, userID, chatID) {
		return
	}

	participant, err := h.Storage.GetParticipant(userID, chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Database error. Please try again later."})
		return
	}
	if participant == nil {
		h.denyChatAccess(c, userID)
		return
	}

	msg, err := h.Storage.AppendMessage(chatID, participant.ID, req.Text)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Message cannot be empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to send message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "id": msg.ID})
}

// LeaveChat clears the caller's current chat association. The chat and its
// history stay untouched; the archive can still reach them.
// POST /api/leave-chat
func (h *Handler) LeaveChat(c *gin.Context) {
	userID := c.GetString(userIDKey)
	if err := h.Sessions.Clear(c.Request.Context(), userID); err != nil {
		log.Printf("ERROR: failed to clear session for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to leave the chat. Please retry."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// ListConversations returns the caller's past chats, newest first.
// GET /api/conversations
func (h *Handler) ListConversations(c *gin.Context) {
	userID := c.GetString(userIDKey)

	chats, err := h.Storage.ListChatsForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to retrieve conversations."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "conversations": chats})
}

// GetConversation returns the full transcript of one past chat. Membership is
// still required, but the chat doesn't have to be the session's current one
// and viewing it doesn't make it current.
// GET /api/conversations/:chat_id
func (h *Handler) GetConversation(c *gin.Context) {
	userID := c.GetString(userIDKey)

	chatID, ok := parseChatID(c.Param("chat_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid chat ID format"})
		return
	}

	participant, err := h.Storage.GetParticipant(userID, chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Database error. Please try again later."})
		return
	}
	if participant == nil {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "You are not authorized to view this chat."})
		return
	}

	messages, err := h.Storage.ListMessagesSince(chatID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to retrieve messages."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"chat_id":   chatID,
		"pseudonym": participant.Pseudonym,
		"messages":  messages,
	})
}

// sessionMatches enforces the session/request chat-id agreement. A mismatch is
// treated as a security violation, not a soft error.
func (h *Handler) sessionMatches(c *gin.Context, userID, chatID string) bool {
	sess, err := h.Sessions.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Session error. Please try again later."})
		return false
	}
	if sess == nil || sess.ChatID != chatID {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "Chat ID mismatch or not set in session."})
		return false
	}
	return true
}
