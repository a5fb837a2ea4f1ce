package signal

import (
	"encoding/json"
	"strconv"
)

// FlexibleInt64 can unmarshal both string and int64 JSON values.
type FlexibleInt64 int64

func (f *FlexibleInt64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*f = FlexibleInt64(i)
		return nil
	}

	var i int64
	if err := json.Unmarshal(data, &i); err != nil {
		return err
	}
	*f = FlexibleInt64(i)
	return nil
}

func (f FlexibleInt64) Int64() int64 {
	return int64(f)
}

// SendMessageRequest is the POST /v2/send payload.
type SendMessageRequest struct {
	Message           string   `json:"message"`
	Number            string   `json:"number"`
	Recipients        []string `json:"recipients"`
	Base64Attachments []string `json:"base64_attachments,omitempty"`
}

type SendResponse struct {
	Timestamp FlexibleInt64 `json:"timestamp"`
}

type SendMessageResponse struct {
	Timestamp int64  `json:"timestamp"`
	MessageID string `json:"messageId"`
}

type AboutResponse struct {
	Versions []string `json:"versions"`
	Build    int      `json:"build"`
	Mode     string   `json:"mode"`
	Version  string   `json:"version"`
}

// SignalMessage is a received message, normalized from the REST envelope.
type SignalMessage struct {
	Timestamp   int64
	Sender      string
	MessageID   string
	Message     string
	Attachments []MessageAttachment
}

// MessageAttachment describes a received attachment after it has been
// saved to the attachments directory.
type MessageAttachment struct {
	ID          string
	ContentType string
	Filename    string
	Size        int64
	StoredPath  string
}

// REST envelope types for GET /v1/receive.
type RestMessage struct {
	Envelope struct {
		Source       string           `json:"source"`
		SourceNumber string           `json:"sourceNumber"`
		SourceName   string           `json:"sourceName"`
		Timestamp    int64            `json:"timestamp"`
		DataMessage  *RestDataMessage `json:"dataMessage,omitempty"`
	} `json:"envelope"`
	Account string `json:"account"`
}

type RestDataMessage struct {
	Timestamp   int64                   `json:"timestamp"`
	Message     string                  `json:"message"`
	Attachments []RestMessageAttachment `json:"attachments"`
}

type RestMessageAttachment struct {
	ContentType string `json:"contentType"`
	Filename    string `json:"filename"`
	ID          string `json:"id"`
	Size        int64  `json:"size"`
}
