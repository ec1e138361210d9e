package aiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	appErr "github.com/maya-ai/engine/pkg/errors"
	"github.com/maya-ai/engine/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

func TestGenerateInteriorSendsBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"image_url":"/images/bedroom.png"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryTokenSource("secret"), logger.L())
	url, err := c.GenerateInterior(context.Background(), InteriorRequest{Room: "Bedroom 1", Color: "#fff", Style: "modern"})
	require.NoError(t, err)
	assert.Equal(t, "/images/bedroom.png", url)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestUnauthorizedClearsTokenAndRunsStrategy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := NewMemoryTokenSource("expired")
	calls := 0
	c := New(srv.URL, tokens, logger.L(), WithOnUnauthorized(func() { calls++ }))

	_, err := c.GenerateInterior(context.Background(), InteriorRequest{Room: "Kitchen"})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))
	assert.Empty(t, tokens.Token(), "401 must clear the stored credential")
	assert.Equal(t, 1, calls)

	// a second rejection of the same (now cleared) credential does not
	// re-invoke the strategy
	_, err = c.GenerateExterior(context.Background(), ExteriorRequest{FacadeStyle: "modern"})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	// a fresh credential re-arms the strategy
	tokens.Set("renewed")
	_, err = c.GenerateInterior(context.Background(), InteriorRequest{Room: "Kitchen"})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestUpstreamErrorIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	tokens := NewMemoryTokenSource("valid")
	c := New(srv.URL, tokens, logger.L())

	_, err := c.GenerateExterior(context.Background(), ExteriorRequest{FacadeStyle: "modern"})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeUpstream))
	assert.Equal(t, "valid", tokens.Token(), "non-auth failures keep the credential")
}

func TestChatUploadsMultipartImage(t *testing.T) {
	var gotField string
	var gotMessage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotMessage = r.FormValue("message")
		if _, hdr, err := r.FormFile("input_image"); err == nil {
			gotField = hdr.Filename
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reply":"looks great","image_url":""}`))
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryTokenSource("tok"), logger.L())
	reply, err := c.Chat(context.Background(), ChatRequest{
		Message:       "restyle this room",
		Image:         []byte{0x89, 0x50, 0x4e, 0x47},
		ImageFilename: "room.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "looks great", reply.Reply)
	assert.Equal(t, "restyle this room", gotMessage)
	assert.Equal(t, "room.png", gotField)
}
