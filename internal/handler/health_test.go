package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

type fakeBroker struct{ closed bool }

func (b fakeBroker) IsClosed() bool { return b.closed }

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name     string
		dbErr    error
		brokerUp bool
		wantCode int
		wantBody string
	}{
		{
			name:     "all collaborators up",
			brokerUp: true,
			wantCode: http.StatusOK,
			wantBody: `{"status":"ok","db":"up","broker":"up","redis":"disabled"}`,
		},
		{
			name:     "database down",
			dbErr:    errors.New("connection refused"),
			brokerUp: true,
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"status":"degraded","db":"down","broker":"up","redis":"disabled"}`,
		},
		{
			name:     "broker connection lost",
			brokerUp: false,
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"status":"degraded","db":"up","broker":"down","redis":"disabled"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h := &Health{DB: fakePinger{err: tt.dbErr}, Broker: fakeBroker{closed: !tt.brokerUp}}
			require.NoError(t, h.Check(c))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
