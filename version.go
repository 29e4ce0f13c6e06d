package aiproxy

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version is the current SDK version.
//
// This version follows semantic versioning (https://semver.org/).
// The version is incremented according to the following rules:
//   - MAJOR: Breaking changes to the public API
//   - MINOR: New features, backwards compatible
//   - PATCH: Bug fixes, backwards compatible
const Version = "0.2.0"

// APIVersion is the gateway API version this SDK was built for.
//
// Use [Client.Health] to check the actual gateway version at runtime.
const APIVersion = "1.4.0"

// APIVersionRange is the semver constraint of gateway versions this SDK
// supports.
const APIVersionRange = ">=1.4.0, <2.0.0"

// CompatibilityStatus is the outcome of a version compatibility check.
type CompatibilityStatus int

const (
	// Unknown means the gateway version could not be parsed.
	Unknown CompatibilityStatus = iota

	// Compatible means the gateway version is within [APIVersionRange].
	Compatible

	// Incompatible means the gateway version is outside [APIVersionRange].
	Incompatible
)

func (s CompatibilityStatus) String() string {
	switch s {
	case Compatible:
		return "compatible"
	case Incompatible:
		return "incompatible"
	default:
		return "unknown"
	}
}

// CompatibilityResult describes how a gateway version relates to this SDK.
type CompatibilityResult struct {
	Status           CompatibilityStatus
	ServerVersion    string
	SDKVersion       string
	TargetAPIVersion string
	SupportedRange   string
	Message          string
}

// IsCompatible returns true if Status is [Compatible].
func (r CompatibilityResult) IsCompatible() bool {
	return r.Status == Compatible
}

// CheckCompatibility checks serverVersion against [APIVersionRange].
//
//	health, _ := client.Health(ctx)
//	result := aiproxy.CheckCompatibility(health.Version)
//	if !result.IsCompatible() {
//	    log.Println(result.Message)
//	}
func CheckCompatibility(serverVersion string) CompatibilityResult {
	result := CompatibilityResult{
		Status:           Unknown,
		ServerVersion:    serverVersion,
		SDKVersion:       Version,
		TargetAPIVersion: APIVersion,
		SupportedRange:   APIVersionRange,
	}

	v, err := semver.NewVersion(serverVersion)
	if err != nil {
		result.Message = fmt.Sprintf("cannot parse gateway version %q: %v", serverVersion, err)
		return result
	}

	constraint, err := semver.NewConstraint(APIVersionRange)
	if err != nil {
		result.Message = fmt.Sprintf("invalid supported range %q: %v", APIVersionRange, err)
		return result
	}

	if constraint.Check(v) {
		result.Status = Compatible
		result.Message = fmt.Sprintf("gateway version %s is compatible with SDK %s", serverVersion, Version)
	} else {
		result.Status = Incompatible
		result.Message = fmt.Sprintf("gateway version %s is not compatible with SDK %s (supported: %s)",
			serverVersion, Version, APIVersionRange)
	}
	return result
}

// IsCompatible reports whether serverVersion is within [APIVersionRange].
func IsCompatible(serverVersion string) bool {
	return CheckCompatibility(serverVersion).IsCompatible()
}

// MustBeCompatible panics unless serverVersion is within [APIVersionRange].
func MustBeCompatible(serverVersion string) {
	if result := CheckCompatibility(serverVersion); !result.IsCompatible() {
		panic("aiproxy: " + result.Message)
	}
}
