package payreturn

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pawtopia/pkg/logging"
)

func TestSignal_FirstFireWins(t *testing.T) {
	t.Parallel()

	s := NewSignal()
	assert.Empty(t, s.Reference())
	assert.True(t, s.Fire("REF1"))
	assert.False(t, s.Fire("REF2"))

	select {
	case <-s.Done():
	default:
		t.Fatal("signal not closed")
	}
	assert.Equal(t, "REF1", s.Reference())
}

func TestListener_ReturnFiresArmedSignal(t *testing.T) {
	t.Parallel()

	l := New("127.0.0.1:0", logging.NewWithWriter(io.Discard, "error"))
	srv := httptest.NewServer(l.Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL + ReturnPath + "?ref=early")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	sig := l.Arm()
	res, err = http.Get(srv.URL + ReturnPath + "?ref=ABC")
	require.NoError(t, err)
	res.Body.Close()

	select {
	case <-sig.Done():
		assert.Equal(t, "ABC", sig.Reference())
	case <-time.After(time.Second):
		t.Fatal("return did not fire the signal")
	}

	res, err = http.Get(srv.URL + "/health/live")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestListener_StartAndShutdown(t *testing.T) {
	t.Parallel()

	l := New("127.0.0.1:0", logging.NewWithWriter(io.Discard, "error"))
	require.NoError(t, l.Start())
	assert.Contains(t, l.ReturnURL(), "127.0.0.1:")
	assert.NotContains(t, l.ReturnURL(), ":0/")

	sig := l.Arm()
	res, err := http.Get(l.ReturnURL())
	require.NoError(t, err)
	res.Body.Close()
	<-sig.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, l.Shutdown(ctx))
}
