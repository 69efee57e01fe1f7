package imaging

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const objectCreatedPut = "ObjectCreated:Put"

// Event is an S3 event notification as delivered by bucket notifications
// or published by the image library on upload.
type Event struct {
	Records []EventRecord `json:"Records"`
}

// EventRecord is a single notification record.
type EventRecord struct {
	EventSource string    `json:"eventSource"`
	EventName   string    `json:"eventName"`
	EventTime   time.Time `json:"eventTime"`
	S3          S3Entity  `json:"s3"`
}

type S3Entity struct {
	Bucket S3Bucket `json:"bucket"`
	Object S3Object `json:"object"`
}

type S3Bucket struct {
	Name string `json:"name"`
}

type S3Object struct {
	Key  string `json:"key"`
	Size int64  `json:"size,omitempty"`
}

// ParseEvent decodes an S3 notification body.
func ParseEvent(body []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	if len(evt.Records) == 0 {
		return nil, fmt.Errorf("invalid event: no records")
	}
	return &evt, nil
}

// NewObjectCreatedEvent builds the notification S3 would emit for a put.
// The key is URL-encoded the same way S3 encodes it.
func NewObjectCreatedEvent(bucket, key string, size int64) Event {
	return Event{Records: []EventRecord{{
		EventSource: "aws:s3",
		EventName:   objectCreatedPut,
		EventTime:   time.Now().UTC(),
		S3: S3Entity{
			Bucket: S3Bucket{Name: bucket},
			Object: S3Object{Key: encodeKey(key), Size: size},
		},
	}}}
}

// IsObjectCreated reports whether the record announces a new object.
func (r EventRecord) IsObjectCreated() bool {
	return r.EventName == "" || strings.Contains(r.EventName, "ObjectCreated")
}

// Key returns the decoded object key.
func (r EventRecord) Key() (string, error) {
	key, err := url.QueryUnescape(r.S3.Object.Key)
	if err != nil {
		return "", fmt.Errorf("invalid object key %q: %w", r.S3.Object.Key, err)
	}
	return key, nil
}

func encodeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.QueryEscape(p)
	}
	return strings.Join(parts, "/")
}
