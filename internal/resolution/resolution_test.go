package resolution

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalog_Invariants(t *testing.T) {
	buckets := Catalog()
	require.Len(t, buckets, 4)

	for _, b := range buckets {
		require.NotEmpty(t, b.Variants, b.Name)
		require.LessOrEqual(t, len(b.Variants), 2, b.Name)
		for _, r := range b.Variants {
			require.True(t, r.Valid(), b.Name)
		}
		if len(b.Variants) == 2 {
			l, p := b.Variants[0], b.Variants[1]
			require.Greater(t, l.Width, l.Height, b.Name)
			require.Less(t, p.Width, p.Height, b.Name)
			require.Equal(t, l.Width, p.Height, b.Name)
		}
	}
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	buckets := Catalog()
	buckets[0].Variants[0].Width = 1
	require.Equal(t, 1024, Catalog()[0].Variants[0].Width)
}

func TestBest(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want Resolution
	}{
		{"exact landscape", 1216, 832, Resolution{1216, 832}},
		{"3:2 landscape", 1200, 800, Resolution{1216, 832}},
		{"square", 500, 500, Resolution{1024, 1024}},
		{"wide", 1920, 1080, Resolution{1344, 768}},
		{"tall", 1080, 1920, Resolution{768, 1344}},
		{"4:3", 1600, 1200, Resolution{1152, 896}},
		{"3:4", 900, 1200, Resolution{896, 1152}},
		{"exact portrait", 832, 1216, Resolution{832, 1216}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Best(tt.w, tt.h)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBest_InvalidDimension(t *testing.T) {
	for _, dims := range [][2]int{{0, 10}, {10, 0}, {-1, 5}, {5, -1}} {
		_, err := Best(dims[0], dims[1])
		require.ErrorIs(t, err, ErrInvalidDimension)
	}
}

func TestBest_Deterministic(t *testing.T) {
	for w := 1; w < 3000; w += 97 {
		for h := 1; h < 3000; h += 89 {
			a, err := Best(w, h)
			require.NoError(t, err)
			b, _ := Best(w, h)
			require.Equal(t, a, b)
		}
	}
}

func TestForOrientation(t *testing.T) {
	require.Equal(t, Resolution{1024, 1024}, ForOrientation(10, 10))
	require.Equal(t, Resolution{1216, 832}, ForOrientation(20, 10))
	require.Equal(t, Resolution{832, 1216}, ForOrientation(10, 20))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		auto    bool
		wantErr bool
	}{
		{in: "AUTO", want: "AUTO", auto: true},
		{in: " auto ", want: "AUTO", auto: true},
		{in: "1024x768", want: "1024x768"},
		{in: "640X480", want: "640x480"},
		{in: "0x100", wantErr: true},
		{in: "100x-5", wantErr: true},
		{in: "100", wantErr: true},
		{in: "axb", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrInvalidDimension))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
			require.Equal(t, tt.auto, got.IsAuto())
			require.False(t, got.IsZero())
		})
	}
}

func TestTarget_Resolve(t *testing.T) {
	got, err := Auto.Resolve(1200, 800)
	require.NoError(t, err)
	require.Equal(t, Resolution{1216, 832}, got)

	fixed := Fixed(Resolution{300, 200})
	got, err = fixed.Resolve(5, 5000)
	require.NoError(t, err)
	require.Equal(t, Resolution{300, 200}, got)

	var zero Target
	require.True(t, zero.IsZero())
	require.Equal(t, "", zero.String())
	_, err = zero.Resolve(10, 10)
	require.ErrorIs(t, err, ErrInvalidDimension)
}
