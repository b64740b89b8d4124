package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"auravindex/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAuditor struct {
	entries []Entry
	err     error
}

func (r *recordingAuditor) Record(_ context.Context, e Entry) error {
	r.entries = append(r.entries, e)
	return r.err
}

func TestLogAuditor_Record(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.INFO, Format: logger.JSON, Output: &buf})

	err := NewLogAuditor(log).Record(context.Background(), Entry{
		RequesterID: "member-7",
		Action:      ActionCompleteBooking,
		ObjectID:    "6530f1a2b4c5d6e7f8a9b0c1",
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["msg"])
	assert.Equal(t, "member-7", line["requester_id"])
	assert.Equal(t, ActionCompleteBooking, line["action"])
	assert.Equal(t, "6530f1a2b4c5d6e7f8a9b0c1", line["object_id"])
}

func TestTee_RecordsEverywhereAndReturnsFirstError(t *testing.T) {
	failing := &recordingAuditor{err: errors.New("disk full")}
	ok := &recordingAuditor{}

	err := Tee{failing, ok}.Record(context.Background(), Entry{RequesterID: "u", Action: ActionRenewBooking, ObjectID: "b1"})
	assert.EqualError(t, err, "disk full")
	require.Len(t, ok.entries, 1)
	require.Len(t, failing.entries, 1)
	assert.False(t, ok.entries[0].RecordedAt.IsZero())
	assert.Equal(t, failing.entries[0].RecordedAt, ok.entries[0].RecordedAt)
}

func TestStamp_KeepsExplicitTime(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, at, stamp(Entry{RecordedAt: at}).RecordedAt)
}
