package result

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/AndreyAkinshin/iograder/pkg/iograder"
)

// Encoding selects how a record is serialized into the output value.
type Encoding string

const (
	EncodingBase64 Encoding = "base64"
	EncodingJSON   Encoding = "json"
)

// ParseEncoding converts a string to an Encoding.
func ParseEncoding(s string) (Encoding, bool) {
	switch Encoding(s) {
	case EncodingBase64, EncodingJSON:
		return Encoding(s), true
	}
	return "", false
}

// Marshal returns the JSON text of res.
func Marshal(res iograder.Result) ([]byte, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return data, nil
}

// Encode serializes res for the output channel.
func Encode(res iograder.Result, enc Encoding) (string, error) {
	data, err := Marshal(res)
	if err != nil {
		return "", err
	}
	switch enc {
	case EncodingJSON:
		return string(data), nil
	case EncodingBase64, "":
		return base64.StdEncoding.EncodeToString(data), nil
	default:
		return "", fmt.Errorf("unknown encoding %q", enc)
	}
}
