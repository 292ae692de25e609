package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leg struct {
	ID   string  `json:"match_id" validate:"required"`
	Odds float64 `json:"odds" validate:"gte=1"`
}

type slipRequest struct {
	Pool  string `param:"pool" validate:"required,oneof=single kombi live"`
	Legs  []leg  `json:"legs" validate:"required,min=2,dive"`
	Limit int    `query:"limit" default:"100" validate:"lte=500"`
}

func bind(t *testing.T, body string) (*slipRequest, interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/slips/kombi", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("pool")
	c.SetParamValues("kombi")
	r := &slipRequest{}
	return r, ReadAndValidateRequest(c, r)
}

func TestReadAndValidateRequest(t *testing.T) {
	r, verr := bind(t, `{"legs":[{"match_id":"a","odds":1.5},{"match_id":"b","odds":2}]}`)
	require.Nil(t, verr)
	assert.Equal(t, "kombi", r.Pool)
	assert.Equal(t, 100, r.Limit)

	_, verr = bind(t, `{"legs":[{"match_id":"a","odds":1.5}]}`)
	errs, ok := verr.([]ValidationError)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_MIN", errs[0].Code)
	assert.Equal(t, "legs", errs[0].Field)
	assert.Equal(t, "legs must contain at least 2 items", errs[0].Message)

	_, verr = bind(t, `{"legs":[{"odds":1.5},{"match_id":"b","odds":0.5}]}`)
	errs = verr.([]ValidationError)
	require.Len(t, errs, 2)
	assert.Equal(t, "legs[0].match_id", errs[0].Field)
	assert.Equal(t, "ERR_GTE", errs[1].Code)

	_, verr = bind(t, `{"legs":`)
	errs = verr.([]ValidationError)
	require.Len(t, errs, 1)
	assert.Equal(t, CodeInvalidJSON, errs[0].Code)
}
