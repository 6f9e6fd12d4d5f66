package pdf

import (
	"fmt"
	"strings"
)

// Tier is the requested compression aggressiveness
type Tier string

const (
	TierLess    Tier = "less"
	TierExtreme Tier = "extreme"
)

// Tiers lists the accepted tiers in display order
var Tiers = []Tier{TierLess, TierExtreme}

// ParseTier validates a tier name. Names match exactly: no case folding and
// no trimming.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(s); t {
	case TierLess, TierExtreme:
		return t, nil
	default:
		return "", invalidTierError(fmt.Sprintf("unknown tier %q, expected one of %s", s, tierList()))
	}
}

func (t Tier) String() string {
	return string(t)
}

func tierList() string {
	names := make([]string, len(Tiers))
	for i, t := range Tiers {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// ImageSettings control how the transform re-encodes images
type ImageSettings struct {
	Quality     int
	ResizeRatio float64
}

// SettingsFor maps a compression type to its image settings. Only "less" is
// special; every other value gets the aggressive settings.
func SettingsFor(compressionType string) ImageSettings {
	if compressionType == string(TierLess) {
		return ImageSettings{Quality: LessQuality, ResizeRatio: LessResizeRatio}
	}
	return ImageSettings{Quality: ExtremeQuality, ResizeRatio: ExtremeResizeRatio}
}

// ScaledSize returns the image size after applying the resize ratio.
// Sizes are truncated and never drop below one pixel.
func (s ImageSettings) ScaledSize(width, height int) (int, int) {
	if s.ResizeRatio >= 1.0 {
		return width, height
	}
	w := int(float64(width) * s.ResizeRatio)
	h := int(float64(height) * s.ResizeRatio)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
