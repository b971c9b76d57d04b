// Package validator classifies inbound message events and enforces payload
// policy before anything touches storage.
package validator

import (
	"encoding/base64"
	"fmt"
	"strings"

	"vergissmeinnicht/internal/common"
	"vergissmeinnicht/internal/dbmysql"
)

// Event is the inbound wire shape, one JSON object per message. All
// encrypted fields are opaque to the server.
type Event struct {
	EncryptedMessage      string `json:"encrypted_message,omitempty"`
	Media                 string `json:"media,omitempty"` // data URI, base64 payload
	MediaType             string `json:"media_type,omitempty"`
	Price                 int64  `json:"price,omitempty"`
	EncryptedKeyRecipient string `json:"encrypted_key_recipient,omitempty"`
	EncryptedKeySender    string `json:"encrypted_key_sender,omitempty"`
	IV                    string `json:"iv,omitempty"`
}

// Result is a classified and validated event, ready for the send pipeline.
type Result struct {
	Category   dbmysql.Category
	MediaBytes []byte // decoded attachment, nil for text
	MediaMIME  common.MediaMIME
	Price      int64 // paid media only
}

type Validator struct {
	maxMediaBytes int64
}

func New(maxMediaBytes int64) *Validator {
	return &Validator{maxMediaBytes: maxMediaBytes}
}

// Classify maps an event to its category and validates the payload.
// Presence of encrypted text is judged on the trimmed value, but the stored
// ciphertext stays byte-identical to what was submitted. A negative price on
// paid media is rejected, not coerced to zero.
func (v *Validator) Classify(ev *Event) (*Result, error) {
	hasText := strings.TrimSpace(ev.EncryptedMessage) != ""
	hasMedia := ev.Media != ""

	if !hasText && !hasMedia {
		return nil, common.ErrEmptyMessage
	}

	if !hasMedia {
		return &Result{Category: dbmysql.CategoryText}, nil
	}

	mime, blob, err := decodeDataURI(ev.Media)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBadMedia, err)
	}
	if !mime.IsAllowed() {
		return nil, fmt.Errorf("%w: mime type %q not allowed", common.ErrBadMedia, mime)
	}
	if int64(len(blob)) > v.maxMediaBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds cap", common.ErrBadMedia, len(blob))
	}

	res := &Result{
		Category:   dbmysql.CategoryMedia,
		MediaBytes: blob,
		MediaMIME:  mime,
	}

	if ev.MediaType == "gif" {
		if ev.Price < 0 {
			return nil, fmt.Errorf("%w: negative price", common.ErrBadMedia)
		}
		res.Category = dbmysql.CategoryPaidMedia
		res.Price = ev.Price
	}

	return res, nil
}

// decodeDataURI splits "data:<mime>;base64,<payload>" and decodes the payload.
func decodeDataURI(uri string) (common.MediaMIME, []byte, error) {
	format, payload, ok := strings.Cut(uri, ";base64,")
	if !ok {
		return "", nil, fmt.Errorf("not a base64 data URI")
	}
	if !strings.HasPrefix(format, "data:") {
		return "", nil, fmt.Errorf("missing data: scheme")
	}
	mime := common.NormalizeMIME(strings.TrimPrefix(format, "data:"))

	blob, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("base64 decode: %v", err)
	}
	return mime, blob, nil
}
