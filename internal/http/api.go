package http

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"powerbill/internal/service"
	"powerbill/internal/session"
)

const userIDKey = "userID"

// Options carries the HTTP-surface knobs from configuration.
type Options struct {
	// AllowedOrigin is the single origin allowed to make credentialed
	// cross-origin requests. Empty disables CORS headers entirely.
	AllowedOrigin string
	CookieName    string
	SecureCookie  bool
	// WebDir points at the static client shell. Empty disables it.
	WebDir string
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	dashboard service.DashboardService
	sessions  *session.Store
	logger    *logrus.Logger
	opts      Options
}

func NewHandler(users service.UserService, dashboard service.DashboardService, sessions *session.Store, logger *logrus.Logger, opts Options) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = "powerbill_session"
	}
	return &Handler{
		users:     users,
		dashboard: dashboard,
		sessions:  sessions,
		logger:    logger,
		opts:      opts,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "Method not allowed."})
	})

	router.Use(corsMiddleware(h.opts.AllowedOrigin))

	api := router.Group("/api")
	{
		api.POST("/signup", h.signUp)
		api.POST("/signin", h.signIn)
		api.POST("/logout", h.logOut)
		api.GET("/dashboard", h.requireSession, h.getDashboard)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}

	if h.opts.WebDir != "" {
		router.StaticFile("/", filepath.Join(h.opts.WebDir, "index.html"))
		router.StaticFile("/script.js", filepath.Join(h.opts.WebDir, "script.js"))
		router.StaticFile("/styles.css", filepath.Join(h.opts.WebDir, "styles.css"))
	}
}

// corsMiddleware permits credentialed requests from exactly one origin and
// answers preflights with an empty 204.
func corsMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		if origin := c.GetHeader("Origin"); allowedOrigin != "" && origin == allowedOrigin {
			header.Set("Access-Control-Allow-Origin", allowedOrigin)
			header.Set("Access-Control-Allow-Credentials", "true")
		}
		header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type")
		header.Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requireSession gates protected reads behind a valid session cookie.
// A missing, unknown, or expired token all look the same to the caller.
func (h *Handler) requireSession(c *gin.Context) {
	token, err := c.Cookie(h.opts.CookieName)
	if err != nil || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized. Please log in."})
		return
	}
	userID, ok := h.sessions.Get(token)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized. Please log in."})
		return
	}
	c.Set(userIDKey, userID)
	c.Next()
}

type signUpRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Phone          string `json:"phone"`
	ConsumerID     string `json:"consumerId"`
	MeterNumber    string `json:"meterNumber"`
	SupplyType     string `json:"supplyType"`
	SanctionedLoad string `json:"sanctionedLoad"`
}

func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide all required fields."})
		return
	}

	_, err := h.users.SignUp(c.Request.Context(), service.SignUpInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Phone:          req.Phone,
		ConsumerID:     req.ConsumerID,
		MeterNumber:    req.MeterNumber,
		SupplyType:     req.SupplyType,
		SanctionedLoad: req.SanctionedLoad,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully."})
	case errors.Is(err, service.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide all required fields."})
	case errors.Is(err, service.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid email format."})
	case errors.Is(err, service.ErrDuplicateUser):
		c.JSON(http.StatusConflict, gin.H{"message": "Email or Consumer ID already registered."})
	default:
		h.logger.WithError(err).Error("signup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration."})
	}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide email and password."})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password."})
			return
		}
		h.logger.WithError(err).Error("signin failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during login."})
		return
	}

	// rotate the token at every successful login so a pre-set session id
	// never survives authentication
	if old, err := c.Cookie(h.opts.CookieName); err == nil && old != "" {
		h.sessions.Destroy(old)
	}
	token := h.sessions.Create(user.ID)
	h.setSessionCookie(c, token, 0)

	c.JSON(http.StatusOK, gin.H{"message": "Login successful."})
}

func (h *Handler) logOut(c *gin.Context) {
	if token, err := c.Cookie(h.opts.CookieName); err == nil && token != "" {
		h.sessions.Destroy(token)
	}
	// idempotent: clearing an absent session is fine
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful."})
}

func (h *Handler) getDashboard(c *gin.Context) {
	userID := c.GetInt64(userIDKey)

	view, err := h.dashboard.Dashboard(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found for this session."})
			return
		}
		h.logger.WithError(err).WithField("user_id", userID).Error("dashboard failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error fetching dashboard data."})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, value, maxAge, "/", "", h.opts.SecureCookie, true)
}
