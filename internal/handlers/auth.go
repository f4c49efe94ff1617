package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/thehopecrystal/verify-properties/internal/identity"
	"github.com/thehopecrystal/verify-properties/internal/models"
)

type Tokens struct {
	Key []byte
	TTL time.Duration
}

// Issue signs a token that names the session; the session itself stays in
// storage so logging out revokes the token. The token expires with the
// session when the session has an expiry.
func (t *Tokens) Issue(session identity.Session) (string, error) {
	now := time.Now()
	expiresAt := now.Add(t.TTL)
	if !session.ExpiresAt.IsZero() {
		expiresAt = session.ExpiresAt
	}

	claims := &models.CustomClaims{
		UserId: session.Account.Id,
		Type:   session.Account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.Id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.Key)
}

func (t *Tokens) Parse(tokenStr string) (*models.CustomClaims, error) {
	claims := &models.CustomClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf(`unexpected signing method %v`, tk.Header[`alg`])
		}
		return t.Key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == `` {
		return nil, errors.New(`invalid token`)
	}

	return claims, nil
}

type RegisterInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func RegisterHandler(ids *identity.Store, tokens *Tokens) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if err := decodeBody(w, r, &input); err != nil {
			writeBodyError(w, err)
			return
		}

		session, err := ids.Register(r.Context(), input.FullName, input.Email, input.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		respondWithToken(w, tokens, session)
	})
}

func LoginHandler(ids *identity.Store, tokens *Tokens) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if err := decodeBody(w, r, &input); err != nil {
			writeBodyError(w, err)
			return
		}

		session, err := ids.Login(r.Context(), input.Email, input.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		respondWithToken(w, tokens, session)
	})
}

func respondWithToken(w http.ResponseWriter, tokens *Tokens, session identity.Session) {
	tokenStr, err := tokens.Issue(session)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthorizationToken{Token: tokenStr, Account: session.Account})
}

func LogoutHandler(ids *identity.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids.Logout(r.Context(), SessionIdFromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
}

func SessionHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFromContext(r.Context())
		if actor == nil {
			http.Error(w, `User unauthorized`, http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, actor)
	})
}

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	defer r.Body.Close()

	return json.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
