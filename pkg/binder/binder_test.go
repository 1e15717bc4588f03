package binder_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/guardkit/pkg/binder"
)

type verifyRequest struct {
	Code       string `json:"code"`
	BackupCode string `json:"backup_code"`
}

func newJSONRequest(body, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/2fa/verify", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func TestJSON(t *testing.T) {
	t.Parallel()

	bind := binder.JSON()

	t.Run("decodes known fields", func(t *testing.T) {
		t.Parallel()
		var v verifyRequest
		err := bind(newJSONRequest(`{"code":"123456"}`, "application/json; charset=utf-8"), &v)
		require.NoError(t, err)
		assert.Equal(t, "123456", v.Code)
		assert.Empty(t, v.BackupCode)
	})

	t.Run("strips control characters", func(t *testing.T) {
		t.Parallel()
		var v verifyRequest
		err := bind(newJSONRequest(`{"backup_code":"ab\u0000cd"}`, "application/json"), &v)
		require.NoError(t, err)
		assert.Equal(t, "abcd", v.BackupCode)
	})

	tests := []struct {
		name        string
		body        string
		contentType string
		wantErr     error
	}{
		{"unknown field", `{"code":"1","extra":true}`, "application/json", binder.ErrFailedToParseJSON},
		{"trailing data", `{"code":"1"}{"code":"2"}`, "application/json", binder.ErrFailedToParseJSON},
		{"malformed", `{"code":`, "application/json", binder.ErrFailedToParseJSON},
		{"wrong media type", `code=1`, "application/x-www-form-urlencoded", binder.ErrUnsupportedMediaType},
		{"missing content type with body", `{"code":"1"}`, "", binder.ErrMissingContentType},
		{"empty body", ``, "application/json", binder.ErrFailedToParseJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var v verifyRequest
			err := bind(newJSONRequest(tt.body, tt.contentType), &v)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("no body is not applicable", func(t *testing.T) {
		t.Parallel()
		var v verifyRequest
		req := httptest.NewRequest(http.MethodPost, "/2fa/setup", nil)
		require.ErrorIs(t, bind(req, &v), binder.ErrBinderNotApplicable)
	})

	t.Run("oversized body", func(t *testing.T) {
		t.Parallel()
		var v verifyRequest
		body := `{"code":"` + strings.Repeat("1", binder.DefaultMaxJSONSize) + `"}`
		require.ErrorIs(t, bind(newJSONRequest(body, "application/json"), &v), binder.ErrFailedToParseJSON)
	})
}

func TestQuery(t *testing.T) {
	t.Parallel()

	type listRequest struct {
		Label    string `query:"label"`
		Limit    int    `query:"limit"`
		Verbose  bool   `query:"verbose"`
		Internal string `query:"-"`
	}

	bind := binder.Query()

	t.Run("binds tagged fields", func(t *testing.T) {
		t.Parallel()
		var v listRequest
		req := httptest.NewRequest(http.MethodGet, "/?label=work&limit=5&verbose=true&Internal=x", nil)
		require.NoError(t, bind(req, &v))
		assert.Equal(t, listRequest{Label: "work", Limit: 5, Verbose: true}, v)
	})

	t.Run("invalid integer", func(t *testing.T) {
		t.Parallel()
		var v listRequest
		req := httptest.NewRequest(http.MethodGet, "/?limit=many", nil)
		require.ErrorIs(t, bind(req, &v), binder.ErrFailedToParseQuery)
	})

	t.Run("empty query is not applicable", func(t *testing.T) {
		t.Parallel()
		var v listRequest
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.ErrorIs(t, bind(req, &v), binder.ErrBinderNotApplicable)
	})
}
