package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDOrSlug(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantID   int32
		wantSlug string
	}{
		{name: "numeric is an id", in: "42", wantID: 42},
		{name: "dashed slug", in: "mister-nes", wantSlug: "mister-nes"},
		{name: "alphanumeric slug", in: "atari2600", wantSlug: "atari2600"},
		{name: "negative parses as id", in: "-1", wantID: -1},
		{name: "empty is a slug", in: "", wantSlug: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := IDOrSlug(tt.in)
			id, ok := v.AsID()
			if tt.wantID != 0 {
				assert.True(t, ok)
				assert.Equal(t, tt.wantID, id)
				return
			}
			slug, ok := v.AsSlug()
			assert.True(t, ok)
			assert.Equal(t, tt.wantSlug, slug)
			assert.Equal(t, tt.in, v.String())
		})
	}
}

func TestPageNormalize(t *testing.T) {
	p := Page{Page: -3, Limit: 0}.Normalize()
	assert.Equal(t, int64(0), p.Page)
	assert.Equal(t, int64(DefaultPageLimit), p.Limit)

	p = Page{Page: 2, Limit: 10}.Normalize()
	assert.Equal(t, int64(2), p.Page)
	assert.Equal(t, int64(10), p.Limit)
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, int64(60), Page{Page: 3, Limit: 20}.Offset())
	assert.Equal(t, int64(0), Page{Page: 0, Limit: 50}.Offset())
}
