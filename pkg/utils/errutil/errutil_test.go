package errutil_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/dermarisk/pkg/utils/errutil"
)

func TestHandle(t *testing.T) {
	gt.Value(t, errutil.Handle(context.Background(), nil, "noop")).Nil()

	err := goerr.New("boom", goerr.V("id", "x"))
	gt.Value(t, errutil.Handle(context.Background(), err, "failed")).Equal(err)
}

func TestHandleHTTP(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"client error", http.StatusBadRequest},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			errutil.HandleHTTP(context.Background(), rec, goerr.New("bad request body"), tt.status)

			gt.Value(t, rec.Code).Equal(tt.status)
			gt.Value(t, rec.Header().Get("Content-Type")).Equal("application/json")

			var body errutil.ErrorResponse
			gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
			gt.String(t, body.Detail).Contains("bad request body")
		})
	}
}
