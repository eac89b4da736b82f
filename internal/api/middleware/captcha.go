package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/captcha"
)

// ContextKeyHumanVerified marks a request whose captcha token checked out.
const ContextKeyHumanVerified = "humanVerified"

// CaptchaMiddleware marks requests carrying a valid Turnstile token so the
// soft rate limit does not apply to them. The token is optional here; routes
// that must have one use RequireCaptcha.
func CaptchaMiddleware(verifier captcha.IVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Captcha-Token")
		if token != "" {
			if ok, err := verifier.Verify(c.Request.Context(), token, c.ClientIP()); err == nil && ok {
				c.Set(ContextKeyHumanVerified, true)
			}
		}
		c.Next()
	}
}

// RequireCaptcha rejects requests without a valid Turnstile token. Applied to
// registration so scripted signups need to clear the challenge.
func RequireCaptcha(verifier captcha.IVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(ContextKeyHumanVerified) {
			c.Next()
			return
		}
		token := c.GetHeader("X-Captcha-Token")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Captcha token required"})
			return
		}
		ok, err := verifier.Verify(c.Request.Context(), token, c.ClientIP())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Captcha verification unavailable"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Captcha verification failed"})
			return
		}
		c.Set(ContextKeyHumanVerified, true)
		c.Next()
	}
}
