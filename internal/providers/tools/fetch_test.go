package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/kagglebot/pkg/retry"
)

func fastFetch() *Fetch {
	return NewFetchWithTimeout(time.Second, &retry.Config{
		MaxRetries:    2,
		BackoffFactor: 1,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
	})
}

func TestFetch_Text(t *testing.T) {
	tests := []struct {
		name         string
		handler      http.HandlerFunc
		wantCalls    int32
		wantErr      bool
		wantBlocked  bool
		wantErrMsg   string
		wantContains []string
		wantMissing  []string
	}{
		{
			name: "html is cleaned",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.UserAgent(), "Mozilla")
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				fmt.Fprint(w, `<html><head><style>body{color:red}</style><script>var secret = 1;</script></head>
<body><nav>Home | Login</nav><h1>Titanic</h1><p>Predict   survival</p><footer>Terms</footer></body></html>`)
			},
			wantCalls:    1,
			wantContains: []string{"Titanic", "Predict", "survival"},
			wantMissing:  []string{"secret", "color:red", "Login", "Terms"},
		},
		{
			name: "json passes through",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"message": "Hello JSON"}`)
			},
			wantCalls:    1,
			wantContains: []string{`{"message": "Hello JSON"}`},
		},
		{
			name: "404 is not retried",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantCalls:  1,
			wantErr:    true,
			wantErrMsg: "HTTP 404",
		},
		{
			name: "403 is blocked",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			wantCalls:   1,
			wantErr:     true,
			wantBlocked: true,
			wantErrMsg:  "HTTP 403",
		},
		{
			name: "429 is blocked",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantCalls:   1,
			wantErr:     true,
			wantBlocked: true,
		},
		{
			name: "500 is retried",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantCalls:  3,
			wantErr:    true,
			wantErrMsg: "HTTP 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				tt.handler(w, r)
			}))
			defer srv.Close()

			text, err := fastFetch().Text(context.Background(), srv.URL)
			assert.Equal(t, tt.wantCalls, calls.Load())
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantBlocked, Blocked(err))
				if tt.wantErrMsg != "" {
					assert.ErrorContains(t, err, tt.wantErrMsg)
				}
				return
			}
			require.NoError(t, err)
			for _, s := range tt.wantContains {
				assert.Contains(t, text, s)
			}
			for _, s := range tt.wantMissing {
				assert.NotContains(t, text, s)
			}
		})
	}
}

func TestFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := fastFetch().Text(context.Background(), addr)
	require.Error(t, err)
	assert.True(t, Blocked(err))
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	f := NewFetchWithTimeout(20*time.Millisecond, &retry.Config{MaxRetries: 0, BackoffFactor: 1})
	_, err := f.Text(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, Blocked(err))
}

func TestFetch_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, strings.Repeat("a", maxResponseSize+100))
	}))
	defer srv.Close()

	text, err := fastFetch().Text(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, text, maxResponseSize)
}
