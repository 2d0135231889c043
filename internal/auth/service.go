package auth

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const minPasswordLen = 8

type Service struct {
	repo   *FileRepo
	logger zerolog.Logger

	secret     []byte
	cookieName string
	sessionTTL time.Duration
}

func NewService(repo *FileRepo, secret []byte, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		logger:     logger,
		secret:     secret,
		cookieName: "taskden_session",
		sessionTTL: 7 * 24 * time.Hour,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return ErrInvalidEmail
	}
	if strings.ToLower(addr.Address) != email {
		return ErrInvalidEmail
	}
	return nil
}

// SignUp registers a new account and opens a session for it.
func (s *Service) SignUp(email, password string, now time.Time) (User, string, time.Time, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return User{}, "", time.Time{}, err
	}
	if len(password) < minPasswordLen {
		return User{}, "", time.Time{}, ErrWeakPassword
	}

	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return User{}, "", time.Time{}, err
	}

	u := User{
		ID:           "user_" + uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if err := s.repo.CreateUser(u); err != nil {
		return User{}, "", time.Time{}, err
	}

	token, exp, err := s.openSession(u, now)
	if err != nil {
		return User{}, "", time.Time{}, err
	}
	s.logger.Info().Str("user", u.ID).Msg("user signed up")
	return u, token, exp, nil
}

// SignIn verifies credentials and opens a session.
func (s *Service) SignIn(email, password string, now time.Time) (User, string, time.Time, error) {
	email = normalizeEmail(email)
	u, ok := s.repo.UserByEmail(email)
	if !ok {
		// burn comparable time so absent accounts are not distinguishable
		_, _ = argon2id.ComparePasswordAndHash(password, "$argon2id$v=19$m=65536,t=1,p=2$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
		return User{}, "", time.Time{}, ErrInvalidCredentials
	}
	match, err := argon2id.ComparePasswordAndHash(password, u.PasswordHash)
	if err != nil || !match {
		return User{}, "", time.Time{}, ErrInvalidCredentials
	}

	token, exp, err := s.openSession(u, now)
	if err != nil {
		return User{}, "", time.Time{}, err
	}
	return u, token, exp, nil
}

// SignOut deletes the session named by the token. Unknown or already
// expired tokens are fine; sign-out is idempotent.
func (s *Service) SignOut(token string, now time.Time) error {
	sess, ok := s.lookupSession(token, now)
	if !ok {
		return nil
	}
	return s.repo.DeleteSession(sess.ID)
}

func (s *Service) openSession(u User, now time.Time) (string, time.Time, error) {
	sess := Session{
		ID:        "sess_" + uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.repo.PutSession(sess); err != nil {
		return "", time.Time{}, err
	}
	_ = s.repo.PruneSessions(now)

	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		ID:        sess.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		Issuer:    "taskden",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, sess.ExpiresAt, nil
}

func (s *Service) lookupSession(token string, now time.Time) (Session, bool) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Session{}, false
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return Session{}, false
	}
	sess, ok := s.repo.GetSession(claims.ID)
	if !ok || sess.UserID != claims.Subject || now.After(sess.ExpiresAt) {
		return Session{}, false
	}
	return sess, true
}

// Authenticate resolves the request's bearer token or session cookie.
func (s *Service) Authenticate(r *http.Request, now time.Time) (User, Session, bool) {
	token := bearerToken(r)
	if token == "" {
		if c, err := r.Cookie(s.cookieName); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		return User{}, Session{}, false
	}
	sess, ok := s.lookupSession(token, now)
	if !ok {
		return User{}, Session{}, false
	}
	u, ok := s.repo.UserByID(sess.UserID)
	if !ok {
		return User{}, Session{}, false
	}
	return u, sess, true
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAPI guards JSON endpoints; unauthenticated requests get a 401
// body instead of a redirect.
func (s *Service) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, sess, ok := s.Authenticate(r, time.Now())
		if !ok {
			writeErr(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		ctx := withUserContext(r.Context(), u)
		ctx = withSessionContext(ctx, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) SetSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Service) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
