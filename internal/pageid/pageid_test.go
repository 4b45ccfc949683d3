package pageid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleReference(t *testing.T) {
	ref, err := Parse("1821-minimal-1700000000000", TemplateMinimal)
	require.NoError(t, err)

	assert.Equal(t, int64(1821), ref.CreatorRef)
	assert.Nil(t, ref.AccountRef)
	assert.Equal(t, "1700000000000", ref.Stamp)
}

func TestParseDualReference(t *testing.T) {
	ref, err := Parse("107-1821-modern-1700000000000", TemplateModern)
	require.NoError(t, err)

	require.NotNil(t, ref.AccountRef)
	assert.Equal(t, int64(107), *ref.AccountRef)
	assert.Equal(t, int64(1821), ref.CreatorRef)
}

func TestParseDefaultsToMinimal(t *testing.T) {
	ref, err := Parse("1821-minimal-x", "")
	require.NoError(t, err)

	assert.Equal(t, TemplateMinimal, ref.Template)
	assert.Equal(t, int64(1821), ref.CreatorRef)
}

func TestParseOtherSingleReferenceTemplates(t *testing.T) {
	for _, tpl := range []string{TemplateVideoFeed, TemplateJose, TemplateBusinessServices, TemplateBetting, TemplateBusinessServicesPro} {
		ref, err := Parse("42-"+tpl+"-1700000000000", tpl)
		require.NoError(t, err, tpl)
		assert.Equal(t, int64(42), ref.CreatorRef, tpl)
	}
}

func TestParseInvalidCreatorRef(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"non-numeric": "abc-minimal-1700000000000",
		"float":       "18.5-minimal-1",
	}
	for name, id := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(id, TemplateMinimal)
			assert.ErrorIs(t, err, ErrInvalidCreatorRef)
		})
	}
}

func TestParseModernInvalidRefs(t *testing.T) {
	_, err := Parse("abc-1821-modern-1", TemplateModern)
	assert.ErrorIs(t, err, ErrInvalidAccountRef)

	_, err = Parse("107-abc-modern-1", TemplateModern)
	assert.ErrorIs(t, err, ErrInvalidCreatorRef)

	_, err = Parse("107", TemplateModern)
	assert.ErrorIs(t, err, ErrInvalidCreatorRef)
}

func TestParseUnknownTemplate(t *testing.T) {
	_, err := Parse("1821-creative-1", "creative")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestNewRoundTrip(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	ref, err := New(1821, nil, TemplateMinimal, now)
	require.NoError(t, err)
	assert.Equal(t, "1821-minimal-1700000000000", ref.String())

	account := int64(107)
	ref, err = New(1821, &account, TemplateModern, now)
	require.NoError(t, err)
	assert.Equal(t, "107-1821-modern-1700000000000", ref.String())

	parsed, err := Parse(ref.String(), TemplateModern)
	require.NoError(t, err)
	assert.Equal(t, ref, parsed)
}

func TestNewModernRequiresAccount(t *testing.T) {
	_, err := New(1821, nil, TemplateModern, time.Now())
	assert.ErrorIs(t, err, ErrInvalidAccountRef)
}

func TestNewDropsAccountForSingleReference(t *testing.T) {
	account := int64(107)
	ref, err := New(1821, &account, TemplateBetting, time.UnixMilli(1))
	require.NoError(t, err)

	assert.Nil(t, ref.AccountRef)
	assert.Equal(t, "1821-betting-1", ref.String())
}

func TestRequiresAccountResolution(t *testing.T) {
	assert.True(t, RequiresAccountResolution(""))
	assert.True(t, RequiresAccountResolution(TemplateMinimal))
	assert.True(t, RequiresAccountResolution(TemplateJose))
	assert.False(t, RequiresAccountResolution(TemplateModern))
}
