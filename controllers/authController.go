package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ChurchPortal/guards"
	"github.com/ChurchPortal/middlewares"
	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	verifierCookie    = "oauth_verifier"
	verifierCookieAge = 600
)

// AuthController fronts the session provider built in main.
type AuthController struct {
	Provider *services.SessionProvider
}

func NewAuthController(provider *services.SessionProvider) *AuthController {
	return &AuthController{Provider: provider}
}

func (a *AuthController) LoginWithEmail(c *gin.Context) {
	var form models.EmailLogin
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required", "details": err.Error()})
		return
	}

	result, err := a.Provider.LoginWithEmail(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (a *AuthController) LoginWithPhone(c *gin.Context) {
	var form models.PhoneLogin
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number and password are required", "details": err.Error()})
		return
	}

	result, err := a.Provider.LoginWithPhone(c.Request.Context(), form.Phone, form.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (a *AuthController) SignUpWithEmail(c *gin.Context) {
	var form models.EmailSignup
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sign up details", "details": err.Error()})
		return
	}

	result, err := a.Provider.SignUpWithEmail(c.Request.Context(), form)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (a *AuthController) SignUpWithPhone(c *gin.Context) {
	var form models.PhoneSignup
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sign up details", "details": err.Error()})
		return
	}

	result, err := a.Provider.SignUpWithPhone(c.Request.Context(), form)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// SignInWithGoogle sends the browser to the hosted backend's consent page and
// keeps the PKCE verifier in a short-lived cookie for the callback.
func (a *AuthController) SignInWithGoogle(c *gin.Context) {
	redirectTo := c.DefaultQuery("redirectTo", a.Provider.CallbackURL())

	start, err := a.Provider.SignInWithGoogle(redirectTo)
	if err != nil {
		redirectToApp(c, loginErrorRoute(err))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(verifierCookie, start.Verifier, verifierCookieAge, "/auth", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusFound, start.URL)
}

// OAuthCallback finishes Google sign-in and hands the session to the app's
// callback route, or sends the browser to the login error page.
func (a *AuthController) OAuthCallback(c *gin.Context) {
	verifier, _ := c.Cookie(verifierCookie)
	c.SetCookie(verifierCookie, "", -1, "/auth", "", c.Request.TLS != nil, true)

	if c.Query("error") != "" {
		zap.S().Warnf("google sign-in refused: %s", c.Query("error_description"))
		redirectToApp(c, guards.LoginErrorPath+"?error="+services.KindOAuthFailed)
		return
	}

	result, err := a.Provider.CompleteOAuth(c.Request.Context(), c.Query("code"), verifier)
	if err != nil {
		redirectToApp(c, loginErrorRoute(err))
		return
	}

	params := url.Values{}
	params.Set("access_token", result.Session.AccessToken)
	params.Set("refresh_token", result.Session.RefreshToken)
	params.Set("expires_in", strconv.Itoa(result.Session.ExpiresIn))
	params.Set("next", result.Redirect)
	redirectToApp(c, "/auth/callback?"+params.Encode())
}

func (a *AuthController) Logout(c *gin.Context) {
	userID := ""
	if claims := currentClaims(c); claims != nil {
		userID = claims.UserID
	}

	if err := a.Provider.Logout(c.Request.Context(), c.GetString(middlewares.AccessTokenKey), userID); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed out", "redirect": guards.HomePath})
}

// GetCurrentUser answers for any signed-in caller, approved or not, so the
// pending page can show who is waiting.
func (a *AuthController) GetCurrentUser(c *gin.Context) {
	state := middlewares.StateOf(c)
	if state == guards.Loading {
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Profile is still loading", "state": state.String()})
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found", "redirect": guards.LoginPath})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "state": state.String(), "redirect": guards.LandingPath(state)})
}

// RefreshProfile re-reads the caller's row so admin changes apply without
// signing in again.
func (a *AuthController) RefreshProfile(c *gin.Context) {
	snapshot := a.Provider.Snapshot(c.Request.Context(), currentClaims(c))

	switch {
	case snapshot.State == guards.Loading:
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Profile is still loading", "state": snapshot.State.String()})
	case snapshot.User == nil:
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found", "redirect": guards.LoginPath})
	default:
		c.JSON(http.StatusOK, gin.H{"user": snapshot.User, "state": snapshot.State.String(), "redirect": guards.LandingPath(snapshot.State)})
	}
}

// WatchApproval streams the caller's approval status as server-sent events
// until they are approved, removed, or disconnect.
func (a *AuthController) WatchApproval(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	if state := middlewares.StateOf(c); state == guards.ApprovedMember || state == guards.ApprovedAdmin {
		user, _ := currentUser(c)
		c.SSEvent("approved", gin.H{"user": user, "redirect": guards.LandingPath(state)})
		c.Writer.Flush()
		return
	}

	updates, err := a.Provider.Watcher().Watch(c.Request.Context(), claims.UserID)
	if err != nil {
		c.SSEvent("error", gin.H{"error": err.Error()})
		c.Writer.Flush()
		return
	}

	c.SSEvent("pending", gin.H{"redirect": guards.PendingApprovalPath})
	c.Writer.Flush()

	for status := range updates {
		switch {
		case status.Removed:
			c.SSEvent("removed", gin.H{"redirect": guards.LoginPath})
		case status.Approved:
			state := guards.StateFor(status.User, false, a.Provider.AdminEmail())
			c.SSEvent("approved", gin.H{"user": status.User, "redirect": guards.LandingPath(state)})
		default:
			c.SSEvent("pending", gin.H{"redirect": guards.PendingApprovalPath})
		}
		c.Writer.Flush()
	}
}

func respondAuthError(c *gin.Context, err error) {
	var authErr *services.AuthError
	if !errors.As(err, &authErr) {
		authErr = &services.AuthError{Kind: services.KindSessionError, Err: err}
	}

	zap.S().Warnf("auth request failed: %v", authErr)

	status := http.StatusUnauthorized
	switch authErr.Kind {
	case services.KindOAuthFailed:
		status = http.StatusBadRequest
	case services.KindSessionError:
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{"error": authErr.Kind, "redirect": authErr.RedirectPath()})
}

func loginErrorRoute(err error) string {
	var authErr *services.AuthError
	if errors.As(err, &authErr) {
		return authErr.RedirectPath()
	}
	return guards.LoginErrorPath + "?error=" + services.KindSessionError
}

// redirectToApp sends the browser to a route of the hash-routed front end.
func redirectToApp(c *gin.Context, route string) {
	c.Redirect(http.StatusFound, "/#"+route)
}
