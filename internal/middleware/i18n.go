package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get language from header
		lang := c.GetHeader("Accept-Language")

		// Parse language preference
		if lang != "" {
			// Handle cases like "fr-FR,fr;q=0.9,en;q=0.8"
			langs := strings.Split(lang, ",")
			if len(langs) > 0 {
				firstLang := strings.TrimSpace(strings.Split(langs[0], ";")[0])
				switch firstLang {
				case "fr", "fr-FR", "fr-BE", "fr-CA", "fr_FR":
					lang = "fr"
				case "en", "en-US", "en-GB":
					lang = "en"
				default:
					lang = "en"
				}
			}
		} else {
			lang = "en"
		}

		c.Set("lang", lang)
		c.Next()
	}
}
