package augment

import (
	"regexp"
	"sync"
)

// DefaultNamespace prefixes every marker comment, e.g. "// glslcheck no-three".
const DefaultNamespace = "glslcheck"

// LegacyNamespace is the parcel-validator-glsl marker prefix. Shaders that
// carry it keep their per-file choices under DefaultNamespace.
const LegacyNamespace = "parcel-validator-glsl"

var markerCache sync.Map // string -> *regexp.Regexp

// HasMarker reports whether text contains the full-line comment
// "// <namespace> <name>". Surrounding horizontal whitespace is tolerated.
func HasMarker(text, namespace, name string) bool {
	return markerPattern(namespace, name).MatchString(text)
}

// OptIn reports whether the integration is forced on for this text.
func OptIn(text, namespace, integration string) bool {
	return hasAnyMarker(text, namespace, integration)
}

// OptOut reports whether the integration is forced off for this text.
func OptOut(text, namespace, integration string) bool {
	return hasAnyMarker(text, namespace, "no-"+integration)
}

// hasAnyMarker also honours LegacyNamespace when namespace is the default one.
func hasAnyMarker(text, namespace, name string) bool {
	if HasMarker(text, namespace, name) {
		return true
	}
	return namespace == DefaultNamespace && HasMarker(text, LegacyNamespace, name)
}

// Applies decides whether an integration is inserted: markers beat the global flag.
func Applies(text, namespace, integration string, enabled bool) bool {
	if OptIn(text, namespace, integration) {
		return true
	}
	return enabled && !OptOut(text, namespace, integration)
}

func markerPattern(namespace, name string) *regexp.Regexp {
	key := namespace + "\x00" + name
	if re, ok := markerCache.Load(key); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?m)^[ \t]*// ` + regexp.QuoteMeta(namespace) + ` ` + regexp.QuoteMeta(name) + `[ \t]*\r?$`)
	actual, _ := markerCache.LoadOrStore(key, re)
	return actual.(*regexp.Regexp)
}
