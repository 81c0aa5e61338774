package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestMergePreservesAbsentFields(t *testing.T) {
	base := WorkerRecord{
		WorkingTime: int64Ptr(120),
		Location:    &Location{Latitude: 10, Longitude: 20},
	}

	merged := base.Merge(WorkerRecord{WorkingTime: int64Ptr(45)})
	require.NotNil(t, merged.WorkingTime)
	assert.Equal(t, int64(45), *merged.WorkingTime)
	require.NotNil(t, merged.Location)
	assert.Equal(t, Location{Latitude: 10, Longitude: 20}, *merged.Location)

	merged = base.Merge(WorkerRecord{Location: &Location{Latitude: 1, Longitude: 2}})
	require.NotNil(t, merged.WorkingTime)
	assert.Equal(t, int64(120), *merged.WorkingTime)
	assert.Equal(t, Location{Latitude: 1, Longitude: 2}, *merged.Location)
}

func TestMergeOrderIndependentForDisjointFields(t *testing.T) {
	timeOnly := WorkerRecord{WorkingTime: int64Ptr(120)}
	locOnly := WorkerRecord{Location: &Location{Latitude: 10, Longitude: 20}}

	var empty WorkerRecord
	ab := empty.Merge(timeOnly).Merge(locOnly)
	ba := empty.Merge(locOnly).Merge(timeOnly)

	assert.Equal(t, ab, ba)
	require.NotNil(t, ab.WorkingTime)
	assert.Equal(t, int64(120), *ab.WorkingTime)
	require.NotNil(t, ab.Location)
}

func TestMergeEmptyUpdateIsIdentity(t *testing.T) {
	base := WorkerRecord{
		WorkingTime: int64Ptr(7),
		Location:    &Location{Latitude: 1, Longitude: 2},
	}
	assert.Equal(t, base, base.Merge(WorkerRecord{}))
}

func TestRecordWireFormat(t *testing.T) {
	record := WorkerRecord{
		WorkingTime: int64Ptr(45),
		Location:    &Location{Latitude: 10, Longitude: 20},
	}

	payload, err := json.Marshal(RecordMap{"alice": record})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"alice": {"workingTime": 45, "location": {"latitude": 10, "longitude": 20}}}`,
		string(payload))

	// Null fields are explicit on the wire, matching the mobile clients
	payload, err = json.Marshal(WorkerRecord{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"workingTime": null, "location": null}`, string(payload))
}
