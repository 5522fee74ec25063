package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/resume"
)

// ThemeHandler 暴露内置的主题预设。
type ThemeHandler struct{}

func NewThemeHandler() *ThemeHandler {
	return &ThemeHandler{}
}

type themeListItem struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
}

// GET /v1/themes
func (h *ThemeHandler) ListThemes(c *gin.Context) {
	presets := resume.Presets()
	items := make([]themeListItem, 0, len(presets))
	for _, t := range presets {
		items = append(items, themeListItem{
			ID:             t.ID,
			Name:           t.Name,
			PrimaryColor:   t.PrimaryColor,
			SecondaryColor: t.SecondaryColor,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "default": resume.DefaultThemeID})
}

// GET /v1/themes/:id
func (h *ThemeHandler) GetTheme(c *gin.Context) {
	t, ok := resume.Preset(c.Param("id"))
	if !ok {
		NotFound(c, "theme not found")
		return
	}
	c.JSON(http.StatusOK, t)
}
