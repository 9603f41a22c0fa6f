package value

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/oxhq/xpathcore/internal/xdm"
)

// HexBinaryValue is xs:hexBinary: a sequence of octets whose lexical form
// is hex-encoded. Equality is octet equality, independent of the lexical
// form's letter case.
type HexBinaryValue struct {
	octets []byte
}

func NewHexBinary(octets []byte) HexBinaryValue {
	return HexBinaryValue{octets: append([]byte(nil), octets...)}
}

// ParseHexBinary decodes an xs:hexBinary lexical form.
func ParseHexBinary(lexical string) (HexBinaryValue, error) {
	b, err := hex.DecodeString(strings.TrimSpace(lexical))
	if err != nil {
		return HexBinaryValue{}, fmt.Errorf("value.ParseHexBinary: %w", err)
	}
	return HexBinaryValue{octets: b}, nil
}

func (v HexBinaryValue) Type() xdm.Type { return xdm.TypeHexBinary }
func (v HexBinaryValue) StringValue() string {
	return strings.ToUpper(hex.EncodeToString(v.octets))
}
func (v HexBinaryValue) Octets() []byte { return v.octets }
func (v HexBinaryValue) Equal(other HexBinaryValue) bool {
	return bytes.Equal(v.octets, other.octets)
}

// Base64BinaryValue is xs:base64Binary.
type Base64BinaryValue struct {
	octets []byte
}

func NewBase64Binary(octets []byte) Base64BinaryValue {
	return Base64BinaryValue{octets: append([]byte(nil), octets...)}
}

// ParseBase64Binary decodes an xs:base64Binary lexical form.
func ParseBase64Binary(lexical string) (Base64BinaryValue, error) {
	// The lexical space permits embedded whitespace; strip it before decoding.
	var b strings.Builder
	for _, r := range lexical {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			b.WriteRune(r)
		}
	}
	octets, err := base64.StdEncoding.DecodeString(b.String())
	if err != nil {
		return Base64BinaryValue{}, fmt.Errorf("value.ParseBase64Binary: %w", err)
	}
	return Base64BinaryValue{octets: octets}, nil
}

func (v Base64BinaryValue) Type() xdm.Type { return xdm.TypeBase64Binary }
func (v Base64BinaryValue) StringValue() string {
	return base64.StdEncoding.EncodeToString(v.octets)
}
func (v Base64BinaryValue) Octets() []byte { return v.octets }
func (v Base64BinaryValue) Equal(other Base64BinaryValue) bool {
	return bytes.Equal(v.octets, other.octets)
}

// AnyURIValue is xs:anyURI. This package does not validate the lexical form
// against RFC 3986; callers that need strict validation should use it
// before constructing one.
type AnyURIValue struct {
	uri string
}

func NewAnyURI(uri string) AnyURIValue { return AnyURIValue{uri: uri} }

func (v AnyURIValue) Type() xdm.Type      { return xdm.TypeAnyURI }
func (v AnyURIValue) StringValue() string { return v.uri }
