package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapping(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("user: %w", ErrNotFound):      http.StatusNotFound,
		fmt.Errorf("login: %w", ErrValidation):   http.StatusBadRequest,
		ErrForbidden:                             http.StatusForbidden,
		ErrUnauthorized:                          http.StatusUnauthorized,
		ErrUnavailable:                           http.StatusServiceUnavailable,
		fmt.Errorf("points: %w", ErrCorruptData): http.StatusConflict,
		errors.New("boom"):                       http.StatusInternalServerError,
	}
	for err, status := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, err)
		assert.Equal(t, status, rr.Code, err.Error())
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

		var problem ProblemDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
		assert.Equal(t, status, problem.Status)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var target struct {
		Email string `json:"email"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c","role":"admin"}`))
	assert.Error(t, DecodeJSON(req, &target))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c"}`))
	require.NoError(t, DecodeJSON(req, &target))
	assert.Equal(t, "a@b.c", target.Email)
}
