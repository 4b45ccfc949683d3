package render

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creator-funnel/internal/pageid"
)

func TestPageAppliesDefaults(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Page(&buf, "minimal", Data{PageID: "1821-minimal-1"}))

	html := buf.String()
	assert.Contains(t, html, "<title>Creator - Clubzila Creator</title>")
	assert.Contains(t, html, "Welcome to my creator page!")
	assert.Contains(t, html, "2000 Tsh")
	assert.Contains(t, html, "Minimal Creator")
	assert.Contains(t, html, `"1821-minimal-1"`)
}

func TestPageNameFallsBackToCreatorID(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Page(&buf, "betting", Data{CreatorID: "1821", Price: decimal.NewFromInt(500), Currency: "TZS"}))

	html := buf.String()
	assert.Contains(t, html, "<h1>1821</h1>")
	assert.Contains(t, html, "500 TZS")
	assert.Contains(t, html, "Football Betting")
}

func TestPageEscapesMarkup(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Page(&buf, "minimal", Data{
		CreatorName: "<script>alert(1)</script>",
		PageID:      "x</script><script>alert(2)",
	}))

	html := buf.String()
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.NotContains(t, html, "</script><script>alert(2)")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestPageUnknownTemplate(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	err = r.Page(&bytes.Buffer{}, "gallery", Data{})
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestTemplatesCoverKnownIDs(t *testing.T) {
	list := Templates()
	require.Len(t, list, 7)
	for _, info := range list {
		assert.True(t, pageid.Known(info.ID), info.ID)
		assert.NotEmpty(t, info.Name)
	}
}
