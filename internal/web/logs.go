package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bimmerbailey/surprise/internal/logtail"
	"github.com/bimmerbailey/surprise/internal/prompt"
)

// logLines reads the ?n= bound, falling back to the configured bound.
func (s *Server) logLines(c *gin.Context) int {
	if n, err := strconv.Atoi(c.Query("n")); err == nil && n > 0 {
		return n
	}
	if s.cfg.Logs.MaxLines > 0 {
		return s.cfg.Logs.MaxLines
	}
	return logtail.DefaultMaxLines
}

// logsData reads the configured log file. Only the configured path is
// served; the page never opens a path taken from the request.
func (s *Server) logsData(c *gin.Context) gin.H {
	n := s.logLines(c)
	data := gin.H{"Path": s.cfg.Logs.Path, "Lines": n}
	if s.cfg.Logs.Path == "" {
		data["Error"] = "No log file configured. Set logs.path in ~/.surprise.yaml."
		return data
	}
	data["Content"] = logtail.Read(s.cfg.Logs.Path, n)
	return data
}

func (s *Server) handleLogs(c *gin.Context) {
	s.render(c, http.StatusOK, "logs.html", "Logs", s.logsData(c))
}

// handleLogsSummarize redacts the tail and asks for a summary.
func (s *Server) handleLogsSummarize(c *gin.Context) {
	data := s.logsData(c)
	content, _ := data["Content"].(string)
	if content == "" || logtail.Unreadable(content) {
		if data["Error"] == nil {
			data["Error"] = "Nothing to summarize."
		}
		s.render(c, http.StatusOK, "logs.html", "Logs", data)
		return
	}

	redacted, count := s.redactor.RedactAndCount(content)
	g := s.generate(c, "logs", prompt.VariantSummary, promptForm{Detail: redacted})
	data["Summary"] = g.Output
	data["Redacted"] = count
	if g.Error != "" {
		data["Error"] = g.Error
	}
	s.render(c, g.Status, "logs.html", "Logs", data)
}
