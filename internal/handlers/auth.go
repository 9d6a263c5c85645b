package handlers

import (
	"net/http"
	"strings"

	"coolpress/internal/db"
	"coolpress/internal/models"
	"coolpress/internal/services"
	"coolpress/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	mailService    *services.MailService
	captchaService *services.CaptchaService
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		mailService:    services.NewMailService(),
		captchaService: services.NewCaptchaService(),
	}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	question, answer := h.captchaService.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set("captcha_answer", answer)
	session.Save()
	Render(c, http.StatusOK, "auth/register.html", gin.H{"Captcha": question})
}

func (h *AuthHandler) registerError(c *gin.Context, code int, message string) {
	question, answer := h.captchaService.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set("captcha_answer", answer)
	session.Save()
	Render(c, code, "auth/register.html", gin.H{"Error": message, "Captcha": question})
}

func (h *AuthHandler) Register(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	captchaInput := c.PostForm("captcha")

	session := sessions.Default(c)
	expectedAnswer, ok := session.Get("captcha_answer").(int)
	if !ok || utils.StringToInt(captchaInput) != expectedAnswer {
		h.registerError(c, http.StatusBadRequest, "Captcha answer is wrong")
		return
	}
	session.Delete("captcha_answer")
	session.Save()

	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" {
		h.registerError(c, http.StatusBadRequest, "Invalid email address")
		return
	}
	username := parts[0]

	if len(password) < 6 {
		h.registerError(c, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	cu, err := h.createCoolUser(username, email, password)
	if err != nil {
		h.registerError(c, http.StatusConflict, "Username already registered")
		return
	}

	h.mailService.SendWelcomeEmail(email, username)

	session.Set("user_id", cu.UserID)
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

// createCoolUser creates the account pair atomically: a failed CoolUser
// insert rolls the User back instead of leaving an orphan that blocks the
// username on retry.
func (h *AuthHandler) createCoolUser(username, email, password string) (*models.CoolUser, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var cu models.CoolUser
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			Username: username,
			Email:    email,
			Password: hash,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		cu = models.CoolUser{UserID: user.ID, User: user}
		services.GetEnrichmentService().EnrichUser(&cu)
		return tx.Create(&cu).Error
	})
	if err != nil {
		return nil, err
	}
	return &cu, nil
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Wrong email or password"})
		return
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Wrong email or password"})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}
