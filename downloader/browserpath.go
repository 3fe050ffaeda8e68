package downloader

import "github.com/go-rod/rod/lib/launcher"

// ResolveChromePath returns the explicit path when set, otherwise an
// installed Chrome or Chromium found on the system. An empty result leaves
// the lookup to chromedp.
func ResolveChromePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if path, ok := launcher.LookPath(); ok {
		return path
	}
	return ""
}
