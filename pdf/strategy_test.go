package pdf

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf_compressor/internal/testpdf"
)

func loadFixture(t *testing.T, pages ...testpdf.Page) *Document {
	t.Helper()
	doc, err := Load(testpdf.Build(pages...))
	require.NoError(t, err)
	t.Cleanup(func() { doc.Close() })
	return doc
}

func TestSelectStrategy(t *testing.T) {
	withImages := loadFixture(t, testpdf.Page{Width: 300, Height: 200, Images: []testpdf.Image{testpdf.JPEGImage(40, 30)}})
	textOnly := loadFixture(t, testpdf.Page{Width: 300, Height: 200})

	s, err := SelectStrategy(withImages, TierExtreme)
	require.NoError(t, err)
	assert.Equal(t, BranchOptimizer, s.Branch)
	assert.Equal(t, PresetScreen, s.Preset)

	s, err = SelectStrategy(textOnly, TierExtreme)
	require.NoError(t, err)
	assert.Equal(t, BranchOptimizer, s.Branch)
	assert.Equal(t, PresetScreen, s.Preset)

	s, err = SelectStrategy(withImages, TierLess)
	require.NoError(t, err)
	assert.Equal(t, BranchTransform, s.Branch)
	assert.Empty(t, s.Preset)
	assert.Equal(t, ImageSettings{Quality: 85, ResizeRatio: 1.0}, s.Settings)

	s, err = SelectStrategy(textOnly, TierLess)
	require.NoError(t, err)
	assert.Equal(t, BranchOptimizer, s.Branch)
	assert.Equal(t, PresetPrinter, s.Preset)

	_, err = SelectStrategy(withImages, Tier("medium"))
	assert.True(t, errors.Is(err, ErrInvalidTier))
}

func TestOutputName(t *testing.T) {
	now := time.Unix(1700000000, 0)
	assert.Equal(t, "compressed_less_1700000000.pdf", OutputName("less", now))
	assert.Equal(t, "compressed_extreme_1700000000.pdf", OutputName("extreme", now))

	// Same tier in the same second collides
	assert.Equal(t, OutputName("less", now), OutputName("less", now.Add(500*time.Millisecond)))

	assert.True(t, IsOutputName(OutputName("extreme", now)))
	assert.False(t, IsOutputName("compressed_less_1700000000.pdf.exe"))
	assert.False(t, IsOutputName("../compressed_less_1.pdf"))
	assert.False(t, IsOutputName("compressed_medium_1.pdf"))
}
