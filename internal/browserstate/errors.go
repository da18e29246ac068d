package browserstate

import "strings"

// restrictedPrefixes are URL schemes/prefixes the bridge must refuse to
// send into, before any content-script message is attempted.
var restrictedPrefixes = []string{
	"chrome://", "chrome-extension://", "edge://", "devtools://",
	"about:", "view-source:",
}

// restrictedHosts are extension-store pages, matched by substring since
// they appear under both http/https and store-specific schemes.
var restrictedHosts = []string{
	"chrome.google.com/webstore",
	"chromewebstore.google.com",
	"microsoftedge.microsoft.com/addons",
	"addons.mozilla.org",
}

// isRestrictedURL implements the spec's restricted-URL check (§4.5).
func isRestrictedURL(url string) bool {
	lower := strings.ToLower(url)
	for _, prefix := range restrictedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	for _, host := range restrictedHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

// browserErrorCodes are network/cert error codes that indicate the tab
// itself is showing a browser error page rather than real content.
var browserErrorCodes = []string{
	"err_cert", "err_ssl", "err_connection", "err_name_",
}

// classifyBrowserErrorPage reports the matched ERR_* code if msg
// indicates the tab is on a browser error page, adapted from the
// teacher's classifyProviderError string-matching technique
// (internal/agent/failover.go) applied to this domain's error
// vocabulary instead of LLM-provider errors.
func classifyBrowserErrorPage(msg string) (code string, matched bool) {
	lower := strings.ToLower(msg)
	for _, needle := range browserErrorCodes {
		if strings.Contains(lower, needle) {
			return extractErrCode(lower, needle), true
		}
	}
	return "", false
}

// extractErrCode pulls the ERR_XXX token containing needle out of msg
// for inclusion in the error payload.
func extractErrCode(msg, needle string) string {
	start := strings.Index(msg, needle)
	if start < 0 {
		return needle
	}
	end := start
	for end < len(msg) {
		c := msg[end]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			end++
			continue
		}
		break
	}
	return strings.ToUpper(msg[start:end])
}

func isNoReceiverError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "could not establish connection") ||
		strings.Contains(lower, "receiving end does not exist")
}
