package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"livehub/domain"
	"livehub/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	identity domain.Identity
	err      error
}

func (s stubDirectory) Authenticate(_ context.Context, _ string) (domain.Identity, error) {
	if s.err != nil {
		return domain.Identity{}, s.err
	}
	return s.identity, nil
}

func TestRequireIdentity_Missing_Token(t *testing.T) {
	req := require.New(t)
	handler := RequireIdentity(stubDirectory{}, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	})

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest(http.MethodPost, "/api/streams", nil))

	req.Equal(http.StatusUnauthorized, recorder.Code)
}

func TestRequireIdentity_Invalid_Token(t *testing.T) {
	req := require.New(t)
	handler := RequireIdentity(stubDirectory{err: errors.ErrUnauthenticated}, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a rejected token")
	})

	request := httptest.NewRequest(http.MethodPost, "/api/streams", nil)
	request.Header.Set("Authorization", "Bearer bogus")
	recorder := httptest.NewRecorder()
	handler(recorder, request)

	req.Equal(http.StatusUnauthorized, recorder.Code)
}

func TestRequireIdentity_Valid_Token_Reaches_Handler(t *testing.T) {
	req := require.New(t)
	caller := domain.Identity{UserID: uuid.NewString(), Username: "alice"}

	var seen domain.Identity
	handler := RequireIdentity(stubDirectory{identity: caller}, func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		req.True(ok)
		seen = identity
		w.WriteHeader(http.StatusNoContent)
	})

	request := httptest.NewRequest(http.MethodPost, "/api/streams", nil)
	request.Header.Set("Authorization", "Bearer some-valid-token")
	recorder := httptest.NewRecorder()
	handler(recorder, request)

	req.Equal(http.StatusNoContent, recorder.Code)
	req.Equal(caller, seen)
}

func TestTokenFromRequest_Query_Fallback(t *testing.T) {
	req := require.New(t)

	withHeader := httptest.NewRequest(http.MethodGet, "/ws/live/c1", nil)
	withHeader.Header.Set("Authorization", "Bearer header-token")
	req.Equal("header-token", TokenFromRequest(withHeader))

	withQuery := httptest.NewRequest(http.MethodGet, "/ws/live/c1?token=query-token", nil)
	req.Equal("query-token", TokenFromRequest(withQuery))

	bare := httptest.NewRequest(http.MethodGet, "/ws/live/c1", nil)
	req.Empty(TokenFromRequest(bare))
}
