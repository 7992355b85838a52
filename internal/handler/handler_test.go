package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/waygalih/suratdesa/internal/review"
)

func TestWriteReviewErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{review.ErrRecordNotFound, http.StatusNotFound, review.ErrRecordNotFound.Error()},
		{review.ErrNotPending, http.StatusConflict, review.ErrNotPending.Error()},
		{review.ErrNoRejectDialog, http.StatusConflict, review.ErrNoRejectDialog.Error()},
		{review.ErrReasonRequired, http.StatusUnprocessableEntity, review.MsgReasonRequired},
		{fmt.Errorf("%w: %w", review.ErrPersistFailed, errors.New("denied")), http.StatusBadGateway,
			review.MsgPersistFailed},
		{errors.New("other"), http.StatusInternalServerError, "other"},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		writeReviewError(rec, c.err)
		assert.Equal(t, c.code, rec.Code, c.err.Error())
		assert.Contains(t, rec.Body.String(), c.msg)
	}
}

func TestPersistFailureSendsUserMessageOnly(t *testing.T) {
	rec := httptest.NewRecorder()
	writeReviewError(rec, fmt.Errorf("%w: %w", review.ErrPersistFailed, errors.New("permission denied")))

	var body map[string]string
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, review.MsgPersistFailed, body["error"])
}

func TestDecodeAndValidate(t *testing.T) {
	var req registerRequest

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	assert.False(t, decodeAndValidate(rec, r, &req))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"x","password":"123","name":"A"}`))
	assert.False(t, decodeAndValidate(rec, r, &req))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "email harus email")
	assert.Contains(t, rec.Body.String(), "password minimal 6 karakter")

	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.id","password":"123456","name":"A"}`))
	assert.True(t, decodeAndValidate(rec, r, &req))
}
