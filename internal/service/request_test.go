package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/studytracker/internal/auth"
	"github.com/mmynk/studytracker/internal/storage"
)

func TestOptionalID(t *testing.T) {
	tests := []struct {
		input string
		want  *int64
	}{
		{`7`, ptr(int64(7))},
		{`"12"`, ptr(int64(12))},
		{`" 3 "`, ptr(int64(3))},
		{`null`, nil},
		{`""`, nil},
		{`"abc"`, nil},
		{`0`, nil},
		{`-4`, nil},
		{`2.5`, nil},
		{`true`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var body struct {
				Ref optionalID `json:"ref"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"ref":`+tt.input+`}`), &body))
			assert.Equal(t, tt.want, body.Ref.Value)
		})
	}
}

func TestOptionalNumber(t *testing.T) {
	var body struct {
		Age optionalNumber `json:"age"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"age":"42"}`), &body))
	assert.Equal(t, ptr(int64(42)), body.Age.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"age":null}`), &body))
	assert.Nil(t, body.Age.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"age":""}`), &body))
	assert.Nil(t, body.Age.Value)

	for _, bad := range []string{`"forty"`, `4.5`, `[1]`} {
		err := json.Unmarshal([]byte(`{"age":`+bad+`}`), &body)
		var typeErr *json.UnmarshalTypeError
		assert.True(t, errors.As(err, &typeErr), "input %s", bad)
	}
}

func TestLooseBool(t *testing.T) {
	tests := []struct {
		input string
		set   bool
		value bool
		err   bool
	}{
		{input: `true`, set: true, value: true},
		{input: `false`, set: true},
		{input: `1`, set: true, value: true},
		{input: `0`, set: true},
		{input: `"true"`, set: true, value: true},
		{input: `"0"`, set: true},
		{input: `null`},
		{input: `"maybe"`, err: true},
		{input: `{}`, err: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var body struct {
				Flag looseBool `json:"flag"`
			}
			err := json.Unmarshal([]byte(`{"flag":`+tt.input+`}`), &body)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.set, body.Flag.Set)
			assert.Equal(t, tt.value, body.Flag.Value)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type target struct {
		Name string    `json:"name"`
		Flag looseBool `json:"flag"`
	}

	t.Run("empty body is a no-op", func(t *testing.T) {
		var dst target
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("  "))
		assert.NoError(t, decodeJSON(r, &dst))
	})

	t.Run("type errors name the field", func(t *testing.T) {
		var dst target
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"flag":"maybe"}`))
		err := decodeJSON(r, &dst)

		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, http.StatusBadRequest, svcErr.Status)
		assert.Equal(t, "type", svcErr.Details["flag"])
	})

	t.Run("malformed JSON", func(t *testing.T) {
		var dst target
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		err := decodeJSON(r, &dst)

		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "Invalid JSON in request body.", svcErr.Message)
	})

	t.Run("oversized body", func(t *testing.T) {
		var dst target
		big := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		err := decodeJSON(r, &dst)

		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, http.StatusRequestEntityTooLarge, svcErr.Status)
	})
}

func TestValidateStruct(t *testing.T) {
	req := sessionRequest{SessionDate: "2025-02-30"}
	err := validateStruct(&req)

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, map[string]string{"session_date": "date"}, svcErr.Details)

	req.SessionDate = "2024-02-29"
	assert.NoError(t, validateStruct(&req))
}

func TestPathID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "15", want: 15},
		{raw: "0", wantErr: true},
		{raw: "-1", wantErr: true},
		{raw: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.raw)
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r = r.WithContext(contextWithRoute(r, rctx))

			got, err := pathID(r, "id")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"not found", fmt.Errorf("lookup: %w", storage.ErrNotFound), http.StatusNotFound, "Resource not found."},
		{"last admin", storage.ErrLastAdmin, http.StatusForbidden, "Cannot change the role of the only admin to 'user'."},
		{"invalid reference", storage.ErrInvalidReference, http.StatusBadRequest, "Referenced record does not exist."},
		{"username taken", auth.ErrUsernameTaken, http.StatusConflict, "Username already exists."},
		{"not approved", auth.ErrNotApproved, http.StatusForbidden, "Account not approved. Please contact an administrator."},
		{"custom message keeps status", withMessage(storage.ErrConflict, "A session already exists for this date."), http.StatusConflict, "A session already exists for this date."},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "Internal server error."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body struct {
				Error   string            `json:"error"`
				Details map[string]string `json:"details"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantError, body.Error)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, "disk on fire", body.Details["detail"])
			} else {
				assert.Empty(t, body.Details)
			}
		})
	}
}
