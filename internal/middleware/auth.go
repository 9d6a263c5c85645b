package middleware

import (
	"net/http"

	"coolpress/internal/db"
	"coolpress/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "cool_user"

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get("user_id") == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoadUser retrieves the CoolUser behind the session and sets it on the context.
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")

		if userID != nil {
			var cu models.CoolUser
			result := db.DB.Preload("User").Where("user_id = ?", userID).First(&cu)
			if result.Error == nil {
				c.Set(CheckUserKey, &cu)
			}
		}
		c.Next()
	}
}
