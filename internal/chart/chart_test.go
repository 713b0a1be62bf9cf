package chart

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"testing"

	"expense_tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarRenderer_Empty(t *testing.T) {
	out, err := NewBarRenderer().Render(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestBarRenderer_ProducesPNG(t *testing.T) {
	cases := map[string][]models.CategoryTotal{
		"two categories": {{Category: "business", AmountCents: 2000}, {Category: "personal", AmountCents: 1500}},
		"single bar":     {{Category: "personal", AmountCents: 999}},
		"all zero":       {{Category: "personal", AmountCents: 0}},
	}
	for name, totals := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := NewBarRenderer().Render(totals)
			require.NoError(t, err)

			raw, err := base64.StdEncoding.DecodeString(out)
			require.NoError(t, err)
			img, err := png.Decode(bytes.NewReader(raw))
			require.NoError(t, err)
			assert.Equal(t, 640, img.Bounds().Dx())
			assert.Equal(t, 400, img.Bounds().Dy())
		})
	}
}
