package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLogger(t *testing.T) {
	e := echo.New()
	newContext := func() echo.Context {
		return e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	}

	fallback := zap.NewExample()
	scoped := zap.NewExample().With(zap.String("request_id", "abc"))

	c := newContext()
	assert.Same(t, fallback, Logger(c, fallback))

	c.Set(ContextKeyLogger, scoped)
	assert.Same(t, scoped, Logger(c, fallback))

	c = newContext()
	c.Set(ContextKeyLogger, "not-a-logger")
	assert.NotNil(t, Logger(c, nil))
}
