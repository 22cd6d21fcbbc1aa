package wondercraft

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casecraft/casecraft_server/config"
	"github.com/casecraft/casecraft_server/internal/provider"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.WondercraftConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
	})
}

func TestClient_CreatePodcast(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/podcast", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"job_id":"job-123"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	jobID, err := client.CreatePodcast(context.Background(), "the prompt", []string{"voice-a", "voice-b"})
	require.NoError(t, err)
	assert.Equal(t, "job-123", jobID)
	assert.Equal(t, "the prompt", captured["prompt"])
	assert.Equal(t, []interface{}{"voice-a", "voice-b"}, captured["voice_ids"])
}

func TestClient_CreatePodcast_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.CreatePodcast(context.Background(), "p", nil)
	require.Error(t, err)

	providerErr, ok := provider.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, providerErr.StatusCode)
	assert.Equal(t, "Rate limit exceeded. Too many concurrent jobs (max 5). Please try again later.",
		providerErr.Message)
}

func TestClient_CreatePodcast_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "duplicate voice ids",
			body: `{"detail":[{"type":"value_error","msg":"voice_ids must be unique"}]}`,
			want: "Voice IDs must be unique. Please check your voice configuration.",
		},
		{
			name: "invalid voice ids",
			body: `{"detail":[{"type":"value_error","msg":"invalid voice_ids supplied"}]}`,
			want: "Invalid voice IDs or music IDs provided.",
		},
		{
			name: "music spec",
			body: `{"detail":[{"type":"value_error","msg":"music_spec is malformed"}]}`,
			want: "Music configuration error. Please try again without music settings.",
		},
		{
			name: "plain message",
			body: `{"detail":[{"type":"value_error","msg":"prompt too long"}]}`,
			want: "prompt too long",
		},
		{
			name: "unparseable body",
			body: `not json`,
			want: "Validation Error: not json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			_, err := client.CreatePodcast(context.Background(), "p", nil)
			require.Error(t, err)

			providerErr, ok := provider.AsError(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusUnprocessableEntity, providerErr.StatusCode)
			assert.Equal(t, tt.want, providerErr.Message)
		})
	}
}

func TestClient_CreatePodcast_BadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"missing prompt"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.CreatePodcast(context.Background(), "", nil)
	require.Error(t, err)

	providerErr, ok := provider.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, providerErr.StatusCode)
	assert.Contains(t, providerErr.Message, "Bad request")
}

func TestClient_CheckStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/podcast/job-123", r.URL.Path)
		w.Write([]byte(`{"finished":true,"error":false,"url":"https://cdn.example.com/p.mp3","script":"Jimmy: hi"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	job, err := client.CheckStatus(context.Background(), "job-123")
	require.NoError(t, err)
	assert.True(t, job.Finished)
	assert.False(t, job.Error)
	assert.Equal(t, "https://cdn.example.com/p.mp3", job.URL)
	assert.Equal(t, "Jimmy: hi", job.Script)
}

func TestClient_CheckStatus_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.CheckStatus(context.Background(), "job-123")
	assert.ErrorIs(t, err, provider.ErrNotReady)
}

func TestClient_FetchAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mp4")
		w.Write([]byte("audio-bytes"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	data, mime, err := client.FetchAudio(context.Background(), server.URL+"/p.mp3")
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-bytes"), data)
	assert.Equal(t, "audio/mp4", mime)
}

func TestClient_FetchAudio_DefaultMime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 不带 Content-Type，客户端应退回 audio/mpeg
		w.Header()["Content-Type"] = nil
		w.Write([]byte("audio-bytes"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, mime, err := client.FetchAudio(context.Background(), server.URL+"/p.mp3")
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", mime)
}

func TestClient_FetchAudio_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, _, err := client.FetchAudio(context.Background(), server.URL+"/p.mp3")
	assert.EqualError(t, err, "audio fetch returned empty body")
}
