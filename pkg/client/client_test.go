package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tableflip.dev/pricematrix/pkg/errors"
	"tableflip.dev/pricematrix/pkg/matrix"
	"tableflip.dev/pricematrix/pkg/tier"
)

func TestLoadMatrix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/pricing", r.URL.Path)
		_, _ = io.WriteString(w, `{"basic":{"lite":5,"standard":10,"unlimited":15}}`)
	}))
	defer srv.Close()

	m, err := New(srv.URL+"/", nil).LoadMatrix(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10.0, m["basic"][tier.Standard].Float())
}

func TestSaveMatrixPostsCommittedValues(t *testing.T) {
	var got map[string]map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/save-pricing", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"basic":{"lite":5,"standard":10,"unlimited":15}}`)
	}))
	defer srv.Close()

	in := matrix.New("basic")
	in["basic"][tier.Lite] = matrix.Draft("5")
	out, err := New(srv.URL, srv.Client()).SaveMatrix(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 5.0, got["basic"]["lite"], "drafts must be sent as numbers")
	assert.Equal(t, 15.0, out["basic"][tier.Unlimited].Float())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   apperrors.ErrorType
	}{
		{"structured validation", http.StatusUnprocessableEntity, `{"error":"bad","type":"validation"}`, apperrors.TypeValidation},
		{"structured unknown type", http.StatusInternalServerError, `{"error":"Unknown Error"}`, apperrors.TypeInternal},
		{"bare 404", http.StatusNotFound, ``, apperrors.TypeNotFound},
		{"bare 400", http.StatusBadRequest, `oops`, apperrors.TypeParse},
		{"bare 422", http.StatusUnprocessableEntity, ``, apperrors.TypeValidation},
		{"bare 502", http.StatusBadGateway, `<html>`, apperrors.TypeIO},
		{"bare 418", http.StatusTeapot, ``, apperrors.TypeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL, nil).LoadMatrix(context.Background())
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tc.want), "expected %s, got %v", tc.want, err)

			var structured *apperrors.Error
			require.True(t, errors.As(err, &structured))
			assert.Equal(t, tc.status, structured.Context["status"])
		})
	}
}

func TestMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"basic":{"gold":1}}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).LoadMatrix(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.TypeParse), "got %v", err)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).LoadMatrix(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.TypeIO), "got %v", err)
}

func TestContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := New(srv.URL, nil).LoadMatrix(ctx)
	assert.True(t, apperrors.Is(err, apperrors.TypeIO), "got %v", err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
