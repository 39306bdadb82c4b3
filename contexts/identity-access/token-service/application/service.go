package application

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"keystone/contexts/identity-access/token-service/domain/entities"
	domainerrors "keystone/contexts/identity-access/token-service/domain/errors"

	"github.com/golang-jwt/jwt/v5"
)

// devSecret keeps local development working without configuration.
// Never rely on it outside development.
const devSecret = "oursecret"

// maxBodyPeek bounds how much of a JSON body Resolve will buffer while
// looking for a fallback token field.
const maxBodyPeek = 1 << 20

// Service signs and verifies stateless bearer tokens. It keeps no state
// beyond its configuration and is safe for concurrent use.
type Service struct {
	Secret string
	TTL    time.Duration
	Logger *slog.Logger
}

type claims struct {
	UserID   string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (s Service) signingKey() []byte {
	if env := os.Getenv("JWT_SECRET"); env != "" {
		return []byte(env)
	}
	if s.Secret != "" {
		return []byte(s.Secret)
	}
	return []byte(devSecret)
}

// Issue signs a token carrying the subject's id and safe-to-expose fields.
func (s Service) Issue(subject entities.Subject) (string, error) {
	now := time.Now().UTC()
	c := claims{
		UserID:   subject.UserID,
		Username: subject.Username,
		Email:    subject.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject.UserID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.TTL != 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(s.TTL))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.signingKey())
}

// Verify checks signature and expiry, and rejects payloads without an id.
func (s Service) Verify(token string) (entities.Subject, error) {
	if strings.TrimSpace(token) == "" {
		return entities.Subject{}, domainerrors.ErrMissingCredential
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.signingKey(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return entities.Subject{}, domainerrors.ErrInvalidCredential
	}
	if c.UserID == "" {
		return entities.Subject{}, domainerrors.ErrInvalidCredential
	}
	return entities.Subject{
		UserID:   c.UserID,
		Username: c.Username,
		Email:    c.Email,
	}, nil
}

// Resolve locates and verifies the request credential. Lookup order is the
// Authorization header, then a `token` query parameter, then a `token` field
// in a form or JSON body. The token field is stripped from the query and
// body so it is never echoed downstream. When no credential is present the
// anonymous subject is returned unless required is true.
func (s Service) Resolve(r *http.Request, required bool) (entities.Subject, error) {
	token, err := s.extract(r, required)
	if err != nil {
		return entities.Subject{}, err
	}
	if token == "" {
		if required {
			return entities.Subject{}, domainerrors.ErrMissingCredential
		}
		return entities.Subject{}, nil
	}

	subject, err := s.Verify(token)
	if err != nil {
		ResolveLogger(s.Logger).Debug("credential rejected",
			"event", "token_verify_failed",
			"module", "identity-access/token-service",
			"layer", "application",
			"error", err.Error(),
		)
		if !required {
			return entities.Subject{}, nil
		}
		return entities.Subject{}, err
	}
	return subject, nil
}

func (s Service) extract(r *http.Request, required bool) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1], nil
		}
		if required {
			return "", domainerrors.ErrMalformedAuthHeader
		}
		return "", nil
	}

	if query := r.URL.Query(); query.Get("token") != "" {
		token := query.Get("token")
		query.Del("token")
		r.URL.RawQuery = query.Encode()
		return token, nil
	}

	return tokenFromBody(r), nil
}

// tokenFromBody supports the legacy `token` body field for form and JSON
// payloads. The field is removed and the body replaced so handlers see the
// request without the credential.
func tokenFromBody(r *http.Request) string {
	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return ""
		}
		token := r.PostForm.Get("token")
		r.PostForm.Del("token")
		r.Form.Del("token")
		return token

	case strings.HasPrefix(contentType, "application/json"):
		if r.Body == nil {
			return ""
		}
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyPeek))
		if err != nil {
			return ""
		}
		var body map[string]json.RawMessage
		if err := json.Unmarshal(raw, &body); err != nil {
			r.Body = io.NopCloser(bytes.NewReader(raw))
			return ""
		}
		var token string
		if rawToken, ok := body["token"]; ok {
			_ = json.Unmarshal(rawToken, &token)
			delete(body, "token")
			if rewritten, err := json.Marshal(body); err == nil {
				raw = rewritten
			}
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))
		r.ContentLength = int64(len(raw))
		return token
	}
	return ""
}
