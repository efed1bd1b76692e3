package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInlinePartEncoding(t *testing.T) {
	part := InlinePart([]byte("hi"), "text/plain; charset=utf-8", "note.txt")

	require.Equal(t, PartInline, part.Kind)
	require.Equal(t, "aGk=", part.Base64())
	require.Equal(t, "data:text/plain; charset=utf-8;base64,aGk=", part.DataURL())
	require.Equal(t, "text/plain", part.MediaType())
	require.False(t, part.IsImage())
}

func TestPartMediaClassification(t *testing.T) {
	require.True(t, InlinePart(nil, "IMAGE/PNG", "a.png").IsImage())
	require.True(t, FileRefPart("https://files/x", "audio/mpeg", "files/x").IsAudio())
	require.False(t, TextPart("hello").IsAudio())
}
