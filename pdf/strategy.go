package pdf

import "fmt"

// Branch is the compression path chosen for a request
type Branch string

const (
	BranchOptimizer Branch = "optimizer"
	BranchTransform Branch = "transform"
)

// Preset names an external optimizer quality profile
type Preset string

const (
	PresetScreen   Preset = "screen"
	PresetEbook    Preset = "ebook"
	PresetPrinter  Preset = "printer"
	PresetPrepress Preset = "prepress"
)

// Strategy is the outcome of strategy selection. Preset is set for the
// optimizer branch, Settings for the transform branch.
type Strategy struct {
	Tier     Tier          `json:"tier"`
	Branch   Branch        `json:"branch"`
	Preset   Preset        `json:"preset,omitempty"`
	Settings ImageSettings `json:"settings"`
}

// SelectStrategy picks the compression path for a tier:
//
//	extreme                   -> optimizer, preset screen
//	less, document has images -> image recompression transform
//	less, no images           -> optimizer, preset printer
func SelectStrategy(doc *Document, tier Tier) (Strategy, error) {
	switch tier {
	case TierExtreme:
		return Strategy{Tier: tier, Branch: BranchOptimizer, Preset: PresetScreen}, nil
	case TierLess:
		if doc != nil && doc.HasImages() {
			return Strategy{Tier: tier, Branch: BranchTransform, Settings: SettingsFor(string(tier))}, nil
		}
		return Strategy{Tier: tier, Branch: BranchOptimizer, Preset: PresetPrinter}, nil
	}
	return Strategy{}, invalidTierError(fmt.Sprintf("unknown tier %q, expected one of %s", string(tier), tierList()))
}
