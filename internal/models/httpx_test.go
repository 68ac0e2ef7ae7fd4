package models

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/apperr"
)

func TestWriteNoContent(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	WriteNoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	// a 204 response must have an empty body
	assert.Zero(t, w.Body.Len())
}

func TestWriteErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "validation error",
			err:        apperr.Validation("a tour must have a price"),
			wantStatus: http.StatusBadRequest,
			wantDetail: "a tour must have a price",
		},
		{
			name:       "taxonomy error",
			err:        apperr.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantDetail: apperr.ErrForbidden.Error(),
		},
		{
			name:       "internal error stays generic",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantDetail: apperr.ErrDownstream.Error(),
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			WriteErr(w, tc.err)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

			var p Problem
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
			assert.Equal(t, tc.wantStatus, p.Status)
			assert.Equal(t, tc.wantDetail, p.Detail)
		})
	}
}
