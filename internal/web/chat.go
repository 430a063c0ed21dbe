package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bimmerbailey/surprise/internal/llm"
	"github.com/bimmerbailey/surprise/internal/session"
)

const chatSystemPrompt = "You are a friendly, concise assistant in a playground web app."

// chatMessages prefixes the session history and the new user turn with the
// system prompt.
func chatMessages(sess *session.Session, text string) []llm.Message {
	history := sess.History.Messages()
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: chatSystemPrompt})
	msgs = append(msgs, history...)
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: text})
}

func (s *Server) chatData(sess *session.Session) gin.H {
	return gin.H{"History": sess.History.Messages()}
}

func (s *Server) handleChatPage(c *gin.Context) {
	s.render(c, http.StatusOK, "chat.html", "Chat", s.chatData(currentSession(c)))
}

// handleChat sends one user turn. History only grows when the provider
// answers, so a failed turn can be retried as is.
func (s *Server) handleChat(c *gin.Context) {
	sess := currentSession(c)
	text := strings.TrimSpace(c.PostForm("message"))

	fail := func(code int, msg string) {
		data := s.chatData(sess)
		data["Error"] = msg
		data["Draft"] = text
		s.render(c, code, "chat.html", "Chat", data)
	}

	if text == "" {
		s.metrics.recordGeneration("chat", "invalid")
		fail(http.StatusUnprocessableEntity, "Please enter a message.")
		return
	}
	if s.provider == nil {
		s.metrics.recordGeneration("chat", "unconfigured")
		fail(http.StatusOK, disabledMessage)
		return
	}

	sess.Lock()
	defer sess.Unlock()

	resp, err := s.provider.Chat(c.Request.Context(), chatMessages(sess, text), s.chatOptions())
	if err != nil {
		s.logger.Warn("chat failed", "error", err)
		s.metrics.recordGeneration("chat", "failure")
		fail(http.StatusOK, errorMessage(err))
		return
	}

	sess.History.Append(llm.RoleUser, text)
	sess.History.Append(llm.RoleAssistant, strings.TrimSpace(resp.Content))
	s.metrics.recordGeneration("chat", "success")
	s.render(c, http.StatusOK, "chat.html", "Chat", s.chatData(sess))
}

func (s *Server) handleChatReset(c *gin.Context) {
	currentSession(c).ResetChat()
	c.Redirect(http.StatusSeeOther, "/chat")
}

// handleChatStream answers one user turn as server-sent events: a "token"
// event per chunk, then "done" or "error".
func (s *Server) handleChatStream(c *gin.Context) {
	sess := currentSession(c)
	text := strings.TrimSpace(c.PostForm("message"))
	if text == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Please enter a message."})
		return
	}
	if s.provider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": disabledMessage, "hint": providerHint(s.cfg)})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	events, err := s.provider.ChatStream(c.Request.Context(), chatMessages(sess, text), s.chatOptions())
	if err != nil {
		s.metrics.recordGeneration("chat", "failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": errorMessage(err)})
		return
	}

	var reply strings.Builder
	done := false
	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			c.SSEvent("error", errorMessage(llm.ErrInvalidResponse))
			return false
		}
		if ev.Error != nil {
			c.SSEvent("error", errorMessage(ev.Error))
			return false
		}
		if ev.Content != "" {
			reply.WriteString(ev.Content)
			c.SSEvent("token", ev.Content)
		}
		if ev.Done {
			done = true
			c.SSEvent("done", "")
			return false
		}
		return true
	})
	// Let the producer finish if the client left mid-stream.
	go func() {
		for range events {
		}
	}()

	// Anything short of a Done event, including a client that went away,
	// leaves the history untouched.
	if !done {
		s.metrics.recordGeneration("chat", "failure")
		return
	}
	sess.History.Append(llm.RoleUser, text)
	sess.History.Append(llm.RoleAssistant, strings.TrimSpace(reply.String()))
	s.metrics.recordGeneration("chat", "success")
}
