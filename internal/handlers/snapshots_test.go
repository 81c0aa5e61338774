package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"worktrack-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	err      error
	username string
	update   models.WorkerRecord
	calls    int
}

func (f *fakeSubmitter) Submit(ctx context.Context, username string, update models.WorkerRecord) error {
	f.calls++
	f.username = username
	f.update = update
	return f.err
}

type fakeLister struct {
	records models.RecordMap
	err     error
}

func (f *fakeLister) AllRecords(ctx context.Context) (models.RecordMap, error) {
	return f.records, f.err
}

func int64Ptr(v int64) *int64 { return &v }

func TestSaveWorkingTimeSuccess(t *testing.T) {
	submitter := &fakeSubmitter{}

	rec := postJSON(t, SaveWorkingTime(submitter), SaveWorkingTimeRequest{
		Username:    "Alice",
		WorkingTime: int64Ptr(45),
		Location:    &models.Location{Latitude: 10, Longitude: 20},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Working time and location saved successfully", decodeMessage(t, rec))

	require.Equal(t, 1, submitter.calls)
	assert.Equal(t, "alice", submitter.username)
	require.NotNil(t, submitter.update.WorkingTime)
	assert.Equal(t, int64(45), *submitter.update.WorkingTime)
	require.NotNil(t, submitter.update.Location)
}

func TestSaveWorkingTimePartialFieldsPassThrough(t *testing.T) {
	submitter := &fakeSubmitter{}

	// Location-only update: workingTime stays nil end to end so the store
	// can preserve the previous value
	rec := postJSON(t, SaveWorkingTime(submitter), SaveWorkingTimeRequest{
		Username: "alice",
		Location: &models.Location{Latitude: 1, Longitude: 2},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, submitter.update.WorkingTime)
	require.NotNil(t, submitter.update.Location)
}

func TestSaveWorkingTimeRequiresUsername(t *testing.T) {
	submitter := &fakeSubmitter{}

	rec := postJSON(t, SaveWorkingTime(submitter), SaveWorkingTimeRequest{
		WorkingTime: int64Ptr(45),
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, submitter.calls)
}

func TestSaveWorkingTimeMalformedBody(t *testing.T) {
	submitter := &fakeSubmitter{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	SaveWorkingTime(submitter)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, submitter.calls)
}

func TestSaveWorkingTimeStorageError(t *testing.T) {
	submitter := &fakeSubmitter{err: fmt.Errorf("db unavailable")}

	rec := postJSON(t, SaveWorkingTime(submitter), SaveWorkingTimeRequest{
		Username:    "alice",
		WorkingTime: int64Ptr(45),
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeMessage(t, rec))
}

func TestGetWorkersReturnsFullMapping(t *testing.T) {
	lister := &fakeLister{records: models.RecordMap{
		"alice": {WorkingTime: int64Ptr(45), Location: &models.Location{Latitude: 10, Longitude: 20}},
		"bob":   {},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/workers", nil)
	rec := httptest.NewRecorder()
	GetWorkers(lister)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.RecordMap
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)
	require.NotNil(t, got["alice"].WorkingTime)
	assert.Equal(t, int64(45), *got["alice"].WorkingTime)
	assert.Nil(t, got["bob"].WorkingTime)
}

func TestGetWorkersStorageError(t *testing.T) {
	lister := &fakeLister{err: fmt.Errorf("db unavailable")}

	req := httptest.NewRequest(http.MethodGet, "/api/workers", nil)
	rec := httptest.NewRecorder()
	GetWorkers(lister)(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
