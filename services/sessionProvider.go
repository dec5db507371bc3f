package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ChurchPortal/guards"
	"github.com/ChurchPortal/initializers"
	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/utils"
	"github.com/doug-martin/goqu/v9"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ProfileFetchTimeout bounds how long a login or a guarded request waits for
// the users row before falling back.
const ProfileFetchTimeout = 2 * time.Second

const (
	KindSessionError   = "session_error"
	KindNoSession      = "no_session"
	KindCallbackFailed = "callback_failed"
	KindOAuthFailed    = "oauth_failed"
	KindLoginFailed    = "login_failed"
)

var ErrUserNotFound = errors.New("user profile not found")

// AuthError carries the error kind shown on the login error page.
type AuthError struct {
	Kind string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func (e *AuthError) RedirectPath() string {
	return guards.LoginErrorPath + "?error=" + e.Kind
}

type ProviderConfig struct {
	JWTSecret  string
	AdminEmail string
	SiteURL    string
}

type AccessClaims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Snapshot is the provider's view of one caller at one moment.
type Snapshot struct {
	State  guards.AccessState
	User   *models.User
	Claims *AccessClaims
}

type LoginResult struct {
	Session  *models.Session `json:"session"`
	User     *models.User    `json:"user"`
	Redirect string          `json:"redirect"`
}

type OAuthStart struct {
	URL      string
	Verifier string
}

// SessionProvider is the single owner of "who is signed in" for the process.
// main builds it, calls Init, and Closes it on shutdown.
type SessionProvider struct {
	auth       AuthClient
	jwtSecret  []byte
	adminEmail string
	siteURL    string
	watcher    *ApprovalWatcher
	email      *EmailService
	push       *PushNotificationService
}

func NewSessionProvider(auth AuthClient, cfg ProviderConfig, email *EmailService, push *PushNotificationService) *SessionProvider {
	p := &SessionProvider{
		auth:       auth,
		jwtSecret:  []byte(cfg.JWTSecret),
		adminEmail: cfg.AdminEmail,
		siteURL:    strings.TrimRight(cfg.SiteURL, "/"),
		email:      email,
		push:       push,
	}
	p.watcher = NewApprovalWatcher(p.RefreshUserProfile, DefaultApprovalBackoff)
	return p
}

func (p *SessionProvider) Init(ctx context.Context) error {
	if err := p.auth.Health(ctx); err != nil {
		return fmt.Errorf("hosted auth is unreachable: %w", err)
	}
	zap.S().Info("session provider initialized")
	return nil
}

// Close stops every approval watcher still running.
func (p *SessionProvider) Close() {
	p.watcher.StopAll()
}

func (p *SessionProvider) AdminEmail() string {
	return p.adminEmail
}

// CallbackURL is where the hosted backend sends the browser after Google
// sign-in when the caller names no other target.
func (p *SessionProvider) CallbackURL() string {
	return p.siteURL + "/auth/callback"
}

func (p *SessionProvider) Watcher() *ApprovalWatcher {
	return p.watcher
}

func (p *SessionProvider) LoginWithEmail(ctx context.Context, email, password string) (*LoginResult, error) {
	return p.login(ctx, Credentials{Email: email, Password: password})
}

func (p *SessionProvider) LoginWithPhone(ctx context.Context, phone, password string) (*LoginResult, error) {
	return p.login(ctx, Credentials{Phone: phone, Password: password})
}

func (p *SessionProvider) SignUpWithEmail(ctx context.Context, form models.EmailSignup) (*LoginResult, error) {
	return p.signUp(ctx, Credentials{Email: form.Email, Password: form.Password}, form.Name, form.UserTimezone)
}

func (p *SessionProvider) SignUpWithPhone(ctx context.Context, form models.PhoneSignup) (*LoginResult, error) {
	return p.signUp(ctx, Credentials{Phone: form.Phone, Password: form.Password}, form.Name, form.UserTimezone)
}

// SignInWithGoogle starts the hosted backend's OAuth flow. The caller keeps
// the verifier until the callback arrives.
func (p *SessionProvider) SignInWithGoogle(redirectTo string) (*OAuthStart, error) {
	if !p.allowedRedirect(redirectTo) {
		return nil, &AuthError{Kind: KindOAuthFailed, Err: fmt.Errorf("redirect %q is outside %q", redirectTo, p.siteURL)}
	}

	verifier := oauth2.GenerateVerifier()
	return &OAuthStart{
		URL:      p.auth.AuthorizeURL("google", redirectTo, oauth2.S256ChallengeFromVerifier(verifier)),
		Verifier: verifier,
	}, nil
}

// allowedRedirect accepts a path on this site, or an absolute URL whose scheme
// and host are exactly SITE_URL's. With no SITE_URL only paths are accepted.
func (p *SessionProvider) allowedRedirect(target string) bool {
	if target == "" {
		return true
	}
	if strings.ContainsAny(target, "\\\r\n") {
		return false
	}

	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if u.Scheme == "" && u.Host == "" {
		return strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//")
	}

	site, err := url.Parse(p.siteURL)
	if p.siteURL == "" || err != nil || site.Host == "" {
		return false
	}
	return strings.EqualFold(u.Scheme, site.Scheme) && strings.EqualFold(u.Host, site.Host) && u.User == nil
}

func (p *SessionProvider) CompleteOAuth(ctx context.Context, authCode, verifier string) (*LoginResult, error) {
	if authCode == "" || verifier == "" {
		return nil, &AuthError{Kind: KindNoSession}
	}

	session, err := p.auth.ExchangeCode(ctx, authCode, verifier)
	if err != nil {
		return nil, &AuthError{Kind: KindCallbackFailed, Err: err}
	}

	user, err := p.ensureProfile(ctx, session)
	if err != nil {
		return nil, &AuthError{Kind: KindSessionError, Err: err}
	}

	return &LoginResult{
		Session:  session,
		User:     user,
		Redirect: guards.LandingPath(p.stateOf(user, session.Email)),
	}, nil
}

// Logout ends the hosted session and tears down anything running on the
// user's behalf, even when the hosted call fails.
func (p *SessionProvider) Logout(ctx context.Context, accessToken, userID string) error {
	p.watcher.Stop(userID)

	if err := p.auth.SignOut(ctx, accessToken); err != nil {
		return &AuthError{Kind: KindSessionError, Err: err}
	}
	return nil
}

// RefreshUserProfile re-reads the caller's users row so approval and role
// changes made by an admin show up without signing in again.
func (p *SessionProvider) RefreshUserProfile(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	found, err := initializers.DB.From("users").
		Where(goqu.C("id").Eq(userID)).
		ScanStructContext(ctx, &user)
	if err != nil {
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (p *SessionProvider) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, &AuthError{Kind: KindSessionError, Err: err}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return nil, &AuthError{Kind: KindSessionError, Err: errors.New("token has no valid expiry")}
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, &AuthError{Kind: KindNoSession, Err: errors.New("token has no subject")}
	}
	email, _ := claims["email"].(string)
	exp, _ := claims["exp"].(float64)

	return &AccessClaims{UserID: sub, Email: email, ExpiresAt: time.Unix(int64(exp), 0)}, nil
}

// Snapshot resolves the access state for verified claims. A profile that does
// not arrive within ProfileFetchTimeout leaves the caller in Loading.
func (p *SessionProvider) Snapshot(ctx context.Context, claims *AccessClaims) Snapshot {
	if claims == nil {
		return Snapshot{State: guards.Anonymous}
	}

	user, err := utils.FirstOf(ctx, ProfileFetchTimeout, (*models.User)(nil), func(ctx context.Context) (*models.User, error) {
		return p.RefreshUserProfile(ctx, claims.UserID)
	})
	switch {
	case errors.Is(err, ErrUserNotFound):
		return Snapshot{State: guards.Anonymous, Claims: claims}
	case err != nil:
		if !errors.Is(err, utils.ErrTimedOut) {
			zap.S().Errorf("failed to resolve session for %s: %v", claims.UserID, err)
		}
		return Snapshot{State: guards.Loading, Claims: claims}
	}

	return Snapshot{State: p.stateOf(user, claims.Email), User: user, Claims: claims}
}

func (p *SessionProvider) stateOf(user *models.User, authenticatedEmail string) guards.AccessState {
	state := guards.StateFor(user, false, p.adminEmail)
	if state == guards.ApprovedAdmin && authenticatedEmail != "" && !guards.IsAdminEmail(authenticatedEmail, p.adminEmail) {
		return guards.ApprovedMember
	}
	return state
}

func (p *SessionProvider) login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	session, err := p.auth.SignInWithPassword(ctx, creds)
	if err != nil {
		return nil, &AuthError{Kind: KindLoginFailed, Err: err}
	}

	result := &LoginResult{Session: session, Redirect: guards.DefaultLandingPath}

	user, err := utils.FirstOf(ctx, ProfileFetchTimeout, (*models.User)(nil), func(ctx context.Context) (*models.User, error) {
		return p.ensureProfile(ctx, session)
	})
	switch {
	case err == nil:
		result.User = user
		result.Redirect = guards.LandingPath(p.stateOf(user, session.Email))
	case errors.Is(err, utils.ErrTimedOut):
		zap.S().Warnf("profile for %s not ready after %s, using default landing page", session.UserID, ProfileFetchTimeout)
	default:
		zap.S().Errorf("failed to load profile for %s after login: %v", session.UserID, err)
	}

	return result, nil
}

func (p *SessionProvider) signUp(ctx context.Context, creds Credentials, name, timezone string) (*LoginResult, error) {
	session, err := p.auth.SignUp(ctx, creds, map[string]any{"name": name})
	if err != nil {
		return nil, &AuthError{Kind: KindLoginFailed, Err: err}
	}

	user := newPendingUser(session.UserID, creds.Email, creds.Phone, name, timezone)
	if err := p.insertProfile(ctx, user); err != nil {
		return nil, err
	}

	return &LoginResult{Session: session, User: &user, Redirect: guards.PendingApprovalPath}, nil
}

// ensureProfile returns the users row for a hosted session, creating a pending
// member row the first time an OAuth or dashboard-created account signs in.
func (p *SessionProvider) ensureProfile(ctx context.Context, session *models.Session) (*models.User, error) {
	user, err := p.RefreshUserProfile(ctx, session.UserID)
	if !errors.Is(err, ErrUserNotFound) {
		return user, err
	}

	name := session.Email
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}
	if name == "" {
		name = session.Phone
	}

	created := newPendingUser(session.UserID, session.Email, session.Phone, name, "")
	if err := p.insertProfile(ctx, created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (p *SessionProvider) insertProfile(ctx context.Context, user models.User) error {
	insert := initializers.DB.Insert("users").Rows(user).Executor()
	if _, err := insert.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to create user profile: %w", err)
	}

	zap.S().Infof("created pending profile for %s", user.ID)
	go p.notifyNewMember(user)
	return nil
}

func (p *SessionProvider) notifyNewMember(user models.User) {
	if err := p.email.SendNewMemberNotice(p.adminEmail, user); err != nil {
		zap.S().Warnf("new member email for %s not sent: %v", user.ID, err)
	}

	payload := NotificationPayload{
		Title: "New member awaiting approval",
		Body:  fmt.Sprintf("%s signed up and is waiting for approval.", user.Name),
		Data:  map[string]string{"type": "PENDING_APPROVAL", "userId": user.ID},
	}
	if err := p.push.NotifyAdmins(payload); err != nil {
		zap.S().Warnf("new member push for %s not sent: %v", user.ID, err)
	}
}

// Sign-up never grants access by itself; approval is an admin action.
func newPendingUser(id, email, phone, name, timezone string) models.User {
	user := models.User{
		ID:          id,
		Email:       email,
		Name:        name,
		Is_Approved: false,
		Role:        models.RoleMember,
	}
	if phone != "" {
		user.Phone = &phone
	}
	if timezone != "" {
		user.User_Timezone = &timezone
	}
	return user
}
