package web

import (
	"encoding/base64"
	"html/template"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

const imageDisabledMessage = "Image generation is disabled until a Gemini API key is configured."

var imageSizes = []string{"1024x1024", "1792x1024", "1024x1792"}

func (s *Server) imageData(promptText, size string) gin.H {
	if size == "" {
		size = imageSizes[0]
	}
	return gin.H{
		"Prompt":        promptText,
		"Size":          size,
		"Sizes":         imageSizes,
		"ImagesEnabled": s.images != nil,
	}
}

func (s *Server) handleImageForm(c *gin.Context) {
	s.render(c, http.StatusOK, "image.html", "Image", s.imageData("", ""))
}

func (s *Server) handleImage(c *gin.Context) {
	promptText := strings.TrimSpace(c.PostForm("prompt"))
	size := c.PostForm("size")
	if !slices.Contains(imageSizes, size) {
		size = imageSizes[0]
	}
	data := s.imageData(promptText, size)

	if promptText == "" {
		s.metrics.recordGeneration("image", "invalid")
		data["Error"] = "Please describe the image."
		s.render(c, http.StatusUnprocessableEntity, "image.html", "Image", data)
		return
	}
	if s.images == nil {
		s.metrics.recordGeneration("image", "unconfigured")
		data["Error"] = imageDisabledMessage
		s.render(c, http.StatusOK, "image.html", "Image", data)
		return
	}

	img, err := s.images.GenerateImage(c.Request.Context(), promptText, size)
	if err != nil {
		s.logger.Warn("image generation failed", "error", err)
		s.metrics.recordGeneration("image", "failure")
		data["Error"] = errorMessage(err)
		s.render(c, http.StatusOK, "image.html", "Image", data)
		return
	}

	s.metrics.recordGeneration("image", "success")
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	data["Image"] = template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data))
	s.render(c, http.StatusOK, "image.html", "Image", data)
}
