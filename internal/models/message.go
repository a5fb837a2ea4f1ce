package models

// Attachment is the shape-independent view of a message attachment. A
// message may carry attachments in the form they were received or in the
// form they are about to be sent; both expose the same content digest,
// which is the only attachment field that identifies the message.
type Attachment interface {
	ContentDigest() string
}

// InboundAttachment is an attachment as delivered by the transport: the
// file has been stored locally and carries presentation metadata.
type InboundAttachment struct {
	Digest      string `json:"digest"`
	ContentType string `json:"contentType"`
	StoredPath  string `json:"storedPath"`
	Size        int64  `json:"size"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	VoiceNote   bool   `json:"voiceNote,omitempty"`
}

func (a InboundAttachment) ContentDigest() string { return a.Digest }

// OutboundAttachment is an attachment prepared for transmission.
type OutboundAttachment struct {
	Digest      string `json:"digest"`
	ContentType string `json:"contentType"`
	Filename    string `json:"filename"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	VoiceNote   bool   `json:"voiceNote,omitempty"`
}

func (a OutboundAttachment) ContentDigest() string { return a.Digest }

// SdMessage is the canonical outbound message representation.
type SdMessage struct {
	Sender           string       `json:"sender"`
	Recipient        string       `json:"recipient"`
	Body             string       `json:"body"`
	Attachments      []Attachment `json:"attachments,omitempty"`
	ExpiresInSeconds int          `json:"expiresInSeconds,omitempty"`
}
