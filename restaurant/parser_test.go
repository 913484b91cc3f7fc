package restaurant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse(t *testing.T) {
	p := NewParser()

	t.Run("splits trailing city", func(t *testing.T) {
		c, err := p.Parse("Vitrina Tel Aviv")
		require.NoError(t, err)
		assert.Equal(t, "Vitrina", c.Name)
		require.NotNil(t, c.City)
		assert.Equal(t, "Tel Aviv", *c.City)
		assert.Nil(t, c.SocialLink)
	})

	t.Run("prefers the longest city", func(t *testing.T) {
		c, err := p.Parse("Port Said Tel Aviv-Yafo")
		require.NoError(t, err)
		assert.Equal(t, "Port Said", c.Name)
		assert.Equal(t, "Tel Aviv-Yafo", *c.City)
	})

	t.Run("city match is case insensitive", func(t *testing.T) {
		c, err := p.Parse("  Abu Hassan, jaffa ")
		require.NoError(t, err)
		assert.Equal(t, "Abu Hassan", c.Name)
		assert.Equal(t, "Jaffa", *c.City)
	})

	t.Run("social link becomes name", func(t *testing.T) {
		c, err := p.Parse("https://instagram.com/vitrina_tlv")
		require.NoError(t, err)
		assert.Equal(t, "Vitrina TLV", c.Name)
		require.NotNil(t, c.SocialLink)
		assert.Equal(t, "https://instagram.com/vitrina_tlv", *c.SocialLink)
	})

	t.Run("plain name is kept", func(t *testing.T) {
		c, err := p.Parse("Tel Aviv")
		require.NoError(t, err)
		assert.Equal(t, "Tel Aviv", c.Name)
		assert.Nil(t, c.City)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := p.Parse("")
		assert.ErrorIs(t, err, ErrInputRequired)
	})

	t.Run("rejects short input", func(t *testing.T) {
		_, err := p.Parse("a")
		assert.ErrorIs(t, err, ErrInputTooShort)

		_, err = p.Parse("   b  ")
		assert.ErrorIs(t, err, ErrInputTooShort)
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		_, err := p.Parse("ש")
		assert.ErrorIs(t, err, ErrInputTooShort)

		c, err := p.Parse("שף")
		require.NoError(t, err)
		assert.Equal(t, "שף", c.Name)
	})
}

func TestDetectSocialLink(t *testing.T) {
	tests := []struct {
		input    string
		platform string
		handle   string
		ok       bool
	}{
		{"https://www.instagram.com/vitrina_tlv/?hl=en", "instagram", "vitrina_tlv", true},
		{"tiktok.com/@night.kitchen", "tiktok", "night.kitchen", true},
		{"see facebook.com/onza.jaffa please", "facebook", "onza.jaffa", true},
		{"https://example.com/vitrina", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			link, ok := DetectSocialLink(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.platform, link.Platform)
			assert.Equal(t, tt.handle, link.Handle)
		})
	}
}

func TestNameFromHandle(t *testing.T) {
	assert.Equal(t, "Vitrina TLV", NameFromHandle("vitrina_tlv"))
	assert.Equal(t, "Night Kitchen", NameFromHandle("night.kitchen"))
	assert.Equal(t, "Cafe 12", NameFromHandle("cafe_12"))
}

func TestInput_Build(t *testing.T) {
	visited := true
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	in := Input{Name: "API Test Restaurant", City: StringPtr("Test City"), IsVisited: &visited}

	r := in.Build("abc", now)

	assert.Equal(t, "abc", r.ID)
	assert.Equal(t, "API Test Restaurant", r.Name)
	assert.Equal(t, "Test City", *r.City)
	assert.Nil(t, r.Cuisine)
	assert.True(t, r.IsVisited)
	assert.Equal(t, now, r.CreatedAt)
	assert.Equal(t, now, r.UpdatedAt)
}
