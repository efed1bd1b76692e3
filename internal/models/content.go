package models

import (
	"encoding/base64"
	"strings"
)

// PartKind discriminates the Part union.
type PartKind string

const (
	PartText    PartKind = "text"
	PartFileRef PartKind = "file_ref"
	PartInline  PartKind = "inline"
)

// Part is one element of a generation request: a text prompt, a file hosted
// by the provider (referenced by URI), or an inline payload.
type Part struct {
	Kind     PartKind
	Text     string
	URI      string
	Name     string
	MIMEType string
	Data     []byte
	Filename string
}

func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

// FileRefPart references a file previously uploaded to the provider. name is
// the provider resource name used to delete the upload afterwards.
func FileRefPart(uri, mimeType, name string) Part {
	return Part{Kind: PartFileRef, URI: uri, MIMEType: mimeType, Name: name}
}

func InlinePart(data []byte, mimeType, filename string) Part {
	return Part{Kind: PartInline, Data: data, MIMEType: mimeType, Filename: filename}
}

// Base64 returns the inline payload encoded for JSON wire formats.
func (p Part) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// DataURL renders the inline payload as an RFC 2397 data URL.
func (p Part) DataURL() string {
	return "data:" + p.MIMEType + ";base64," + p.Base64()
}

// MediaType is the mime type without parameters, lower-cased.
func (p Part) MediaType() string {
	mt := p.MIMEType
	if idx := strings.Index(mt, ";"); idx >= 0 {
		mt = mt[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

func (p Part) IsImage() bool { return strings.HasPrefix(p.MediaType(), "image/") }

func (p Part) IsAudio() bool { return strings.HasPrefix(p.MediaType(), "audio/") }
