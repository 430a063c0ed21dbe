package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bimmerbailey/surprise/internal/prompt"
)

const disabledMessage = "Text generation is disabled until a provider is configured."

// promptForm is the shared form for every prompt page.
type promptForm struct {
	Kind    string `form:"kind"`
	Subject string `form:"subject"`
	Detail  string `form:"detail"`
	Year    string `form:"year"`
	Tone    string `form:"tone"`
}

func (f promptForm) request() (prompt.Request, error) {
	r := prompt.Request{
		Subject: strings.TrimSpace(f.Subject),
		Detail:  strings.TrimSpace(f.Detail),
		Tone:    strings.TrimSpace(f.Tone),
	}
	if y := strings.TrimSpace(f.Year); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return r, errors.New("year must be a whole number")
		}
		r.Year = year
	}
	return r, nil
}

// generation is the outcome of one prompt round trip.
type generation struct {
	Output string
	Error  string
	Status int
}

// generate validates the request, then asks the provider. Validation runs
// before anything else so an empty form never reaches the network.
func (s *Server) generate(c *gin.Context, page string, v prompt.Variant, f promptForm) generation {
	r, err := f.request()
	if err == nil {
		err = prompt.Validate(v, r)
	}
	if err != nil {
		s.metrics.recordGeneration(page, "invalid")
		return generation{Error: validationMessage(err), Status: http.StatusUnprocessableEntity}
	}

	if s.provider == nil {
		s.metrics.recordGeneration(page, "unconfigured")
		return generation{Error: disabledMessage, Status: http.StatusOK}
	}

	resp, err := s.provider.Chat(c.Request.Context(), prompt.Messages(v, r), s.chatOptions())
	if err != nil {
		s.logger.Warn("generation failed", "page", page, "variant", v, "error", err)
		s.metrics.recordGeneration(page, "failure")
		return generation{Error: errorMessage(err), Status: http.StatusOK}
	}

	s.metrics.recordGeneration(page, "success")
	return generation{Output: strings.TrimSpace(resp.Content), Status: http.StatusOK}
}

// validationMessage strips the package prefix from a validation error.
func validationMessage(err error) string {
	msg := err.Error()
	i := strings.LastIndex(msg, ": ")
	if i < 0 || !errors.Is(err, prompt.ErrMissingField) {
		return msg
	}
	field := msg[i+2:]
	if strings.Contains(field, " must ") {
		return strings.ToUpper(field[:1]) + field[1:] + "."
	}
	return "Please fill in the " + field + "."
}

func (s *Server) handleIndex(c *gin.Context) {
	s.render(c, http.StatusOK, "index.html", "Surprise playground", nil)
}

func (s *Server) handlePressReleaseForm(c *gin.Context) {
	s.render(c, http.StatusOK, "press_release.html", "Press release", gin.H{"Form": promptForm{}})
}

func (s *Server) handlePressRelease(c *gin.Context) {
	var f promptForm
	_ = c.ShouldBind(&f)

	g := s.generate(c, "press_release", prompt.VariantPressRelease, f)
	s.render(c, g.Status, "press_release.html", "Press release", gin.H{
		"Form":   f,
		"Output": g.Output,
		"Error":  g.Error,
	})
}

func (s *Server) handleActionPlanForm(c *gin.Context) {
	s.render(c, http.StatusOK, "action_plan.html", "Action plan", gin.H{"Form": promptForm{}})
}

func (s *Server) handleActionPlan(c *gin.Context) {
	var f promptForm
	_ = c.ShouldBind(&f)

	g := s.generate(c, "action_plan", prompt.VariantActionPlan, f)
	s.render(c, g.Status, "action_plan.html", "Action plan", gin.H{
		"Form":   f,
		"Output": g.Output,
		"Error":  g.Error,
	})
}

var playgroundKinds = []prompt.Variant{prompt.VariantJoke, prompt.VariantHaiku, prompt.VariantSummary}

func (s *Server) playgroundData(c *gin.Context, f promptForm) gin.H {
	if f.Kind == "" {
		f.Kind = string(prompt.VariantJoke)
	}
	return gin.H{
		"Form":  f,
		"Kinds": playgroundKinds,
		"Jokes": currentSession(c).Jokes.All(),
	}
}

func (s *Server) handlePlaygroundForm(c *gin.Context) {
	s.render(c, http.StatusOK, "playground.html", "Playground", s.playgroundData(c, promptForm{}))
}

func (s *Server) handlePlayground(c *gin.Context) {
	var f promptForm
	_ = c.ShouldBind(&f)

	v, err := prompt.ParseVariant(f.Kind)
	if err != nil || (v != prompt.VariantJoke && v != prompt.VariantHaiku && v != prompt.VariantSummary) {
		data := s.playgroundData(c, f)
		data["Error"] = "Pick a joke, haiku or summary."
		s.render(c, http.StatusUnprocessableEntity, "playground.html", "Playground", data)
		return
	}

	var g generation
	if v == prompt.VariantJoke {
		g = s.tellJoke(c, f)
	} else {
		g = s.generate(c, "playground", v, f)
	}

	data := s.playgroundData(c, f)
	data["Output"] = g.Output
	data["Error"] = g.Error
	s.render(c, g.Status, "playground.html", "Playground", data)
}

// tellJoke runs the dedupe loop against the session's joke history.
func (s *Server) tellJoke(c *gin.Context, f promptForm) generation {
	topic := strings.TrimSpace(f.Subject)
	if err := prompt.Validate(prompt.VariantJoke, prompt.Request{Subject: topic}); err != nil {
		s.metrics.recordGeneration("playground", "invalid")
		return generation{Error: validationMessage(err), Status: http.StatusUnprocessableEntity}
	}
	if s.jokes == nil {
		s.metrics.recordGeneration("playground", "unconfigured")
		return generation{Error: disabledMessage, Status: http.StatusOK}
	}

	joke, err := s.jokes.Generate(c.Request.Context(), topic, currentSession(c).Jokes)
	if err != nil {
		s.logger.Warn("joke generation failed", "error", err)
		s.metrics.recordGeneration("playground", "failure")
		return generation{Error: errorMessage(err), Status: http.StatusOK}
	}
	s.metrics.recordGeneration("playground", "success")

	out := joke.Text
	if joke.Repeat {
		out += "\n\n(Ran out of fresh material, that one may sound familiar.)"
	}
	return generation{Output: out, Status: http.StatusOK}
}

func (s *Server) handlePlaygroundReset(c *gin.Context) {
	currentSession(c).ResetJokes()
	c.Redirect(http.StatusSeeOther, "/playground")
}

// apiGenerateRequest is the JSON body for POST /api/v1/generate.
type apiGenerateRequest struct {
	Variant string `json:"variant" binding:"required"`
	Subject string `json:"subject"`
	Detail  string `json:"detail"`
	Year    int    `json:"year"`
	Tone    string `json:"tone"`
}

func (s *Server) handleAPIGenerate(c *gin.Context) {
	var req apiGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	v, err := prompt.ParseVariant(req.Variant)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r := prompt.Request{Subject: req.Subject, Detail: req.Detail, Year: req.Year, Tone: req.Tone}
	if err := prompt.Validate(v, r); err != nil {
		s.metrics.recordGeneration("api", "invalid")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validationMessage(err)})
		return
	}

	text := prompt.Build(v, r)
	if s.provider == nil {
		s.metrics.recordGeneration("api", "unconfigured")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":  disabledMessage,
			"hint":   providerHint(s.cfg),
			"prompt": text,
		})
		return
	}

	resp, err := s.provider.Chat(c.Request.Context(), prompt.Messages(v, r), s.chatOptions())
	if err != nil {
		s.metrics.recordGeneration("api", "failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": errorMessage(err), "prompt": text})
		return
	}

	s.metrics.recordGeneration("api", "success")
	c.JSON(http.StatusOK, gin.H{
		"variant": v,
		"prompt":  text,
		"text":    strings.TrimSpace(resp.Content),
		"model":   resp.Model,
	})
}
