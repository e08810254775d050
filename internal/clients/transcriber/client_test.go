package transcriber

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"voice-bridge/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribe_Success(t *testing.T) {
	var got transcribeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"transcript":"hello world","keywords":["hello","world"],"webhook_sent":true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/transcribe", observability.NewNopLogger())
	result, err := client.Transcribe(context.Background(), "recordings/CA1_stereo.wav")
	require.NoError(t, err)

	assert.Equal(t, "recordings/CA1_stereo.wav", got.Filepath)
	assert.Equal(t, "hello world", result.Transcript)
	assert.Equal(t, []string{"hello", "world"}, result.Keywords)
}

func TestTranscribe_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"error":"File not found"}`, errMsg: "File not found"},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`, errMsg: "boom"},
		{name: "unsuccessful", status: http.StatusOK, body: `{"success":false}`, errMsg: "service reported failure"},
		{name: "not json", status: http.StatusBadGateway, body: `<html>`, errMsg: "invalid response body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, observability.NewNopLogger())
			_, err := client.Transcribe(context.Background(), "x.wav")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTranscriptionFailed))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestTranscribe_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url, observability.NewNopLogger())
	_, err := client.Transcribe(context.Background(), "x.wav")
	assert.True(t, errors.Is(err, ErrTranscriptionFailed))
}
