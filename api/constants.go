package api

import "time"

const (
	// DefaultOutputRetention is how long a compressed file stays downloadable
	DefaultOutputRetention = 10 * time.Minute

	// DefaultFilePermissions for temp directory creation
	DefaultFilePermissions = 0755

	// MaxErrorMessageLength truncates error messages returned to clients
	MaxErrorMessageLength = 200

	// inputFileName is the name of the stored upload inside a job directory
	inputFileName = "input.pdf"
)
