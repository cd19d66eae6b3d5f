package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_SignupLink(t *testing.T) {
	r := NewRenderer("https://example.com/signup?ref=qr", 0)

	link, err := r.SignupLink("3xYz9")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/signup?invite=3xYz9&ref=qr", link)
}

func TestRenderer_RenderPNG(t *testing.T) {
	r := NewRenderer("https://example.com/signup", 0)

	data, err := r.RenderPNG("3xYz9")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())
}
