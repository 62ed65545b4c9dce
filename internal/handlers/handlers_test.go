package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/librescript/backend/internal/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	log := zap.New(core)

	cases := []struct {
		err    error
		status int
		body   string
	}{
		{apperr.Missing("Post with ID 3 not found."), http.StatusNotFound, `{"error":"Post with ID 3 not found."}`},
		{apperr.Forbid("nope"), http.StatusForbidden, `{"error":"nope"}`},
		{apperr.DuplicateOf("dup"), http.StatusBadRequest, `{"error":"dup"}`},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondError(c, log, tc.err)
		assert.Equal(t, tc.status, w.Code)
		assert.JSONEq(t, tc.body, w.Body.String())
	}
	assert.Equal(t, 1, logs.Len())
}

func TestPathID(t *testing.T) {
	for raw, want := range map[string]bool{"7": true, "0": false, "-1": false, "x": false, "": false} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}

		_, ok := pathID(c, "id")
		assert.Equal(t, want, ok, raw)
		if !want {
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
	}
}
