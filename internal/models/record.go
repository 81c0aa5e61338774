package models

// Location is a single GPS sample reported by a worker's device.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WorkerRecord is the latest known working time and location for one worker.
// Either field may be nil: workingTime is nil while a session is in progress,
// location is nil when the worker has never reported a position.
//
// The same shape doubles as a partial update: a nil field in an update means
// "leave the stored value alone", a non-nil field overwrites it.
type WorkerRecord struct {
	WorkingTime *int64    `json:"workingTime"`
	Location    *Location `json:"location"`
}

// RecordMap is the full username -> record mapping. This is the exact payload
// pushed to observers on every update and sent once on connect.
type RecordMap map[string]WorkerRecord

// Merge applies a partial update field by field. Nil fields in the update
// preserve the receiver's values. This is the contract the Postgres upsert
// implements with COALESCE; fakes in tests share it through this method.
func (r WorkerRecord) Merge(update WorkerRecord) WorkerRecord {
	if update.WorkingTime != nil {
		r.WorkingTime = update.WorkingTime
	}
	if update.Location != nil {
		r.Location = update.Location
	}
	return r
}
