package pdf

import (
	"fmt"
	"regexp"
	"time"
)

// outputNamePattern matches names produced by OutputName for known tiers
var outputNamePattern = regexp.MustCompile(`^compressed_(less|extreme)_\d+\.pdf$`)

// OutputName returns the file name for a compressed result:
// compressed_<tier>_<unix seconds>.pdf. Two requests with the same tier in
// the same second get the same name.
func OutputName(tier string, now time.Time) string {
	return fmt.Sprintf("compressed_%s_%d.pdf", tier, now.Unix())
}

// IsOutputName reports whether name looks like a produced output file
func IsOutputName(name string) bool {
	return outputNamePattern.MatchString(name)
}
