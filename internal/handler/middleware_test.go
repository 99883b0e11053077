package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		status    int
		delay     time.Duration
		wantLevel string
	}{
		{name: "slow success", status: http.StatusOK, delay: 60 * time.Millisecond, wantLevel: "info"},
		{name: "client error", status: http.StatusNotFound, wantLevel: "warn"},
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			router := gin.New()
			router.Use(RequestLogger(zerolog.New(&buf)))
			router.GET("/slow", func(c *gin.Context) {
				time.Sleep(tt.delay)
				c.String(tt.status, "done")
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
			require.Equal(t, tt.status, w.Code)

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "GET", entry["method"])
			assert.Equal(t, "/slow", entry["path"])
			assert.EqualValues(t, tt.status, entry["status"])

			duration, ok := entry["duration_ms"].(float64)
			require.True(t, ok, "duration_ms missing: %v", entry)
			assert.GreaterOrEqual(t, duration, float64(tt.delay/time.Millisecond))
			if tt.delay > 0 {
				assert.Positive(t, duration)
			}
		})
	}
}
