// Copyright (c) 2026 Identra. All rights reserved.

// Package device renders raw User-Agent strings into short, human-readable
// summaries for audit views.
package device

import (
	"fmt"

	"github.com/mssola/useragent"
)

// Summarize turns a raw User-Agent header into a label like
// "Chrome 126.0 on Linux x86_64" or "Safari 17.1 on iPhone (Mobile)".
//
// Unknown or empty agents are reported as "Unknown device".
func Summarize(rawUserAgent string) string {
	if rawUserAgent == "" {
		return "Unknown device"
	}

	agent := useragent.New(rawUserAgent)

	name, version := agent.Browser()
	if name == "" {
		if agent.Bot() {
			return "Bot"
		}
		return "Unknown device"
	}

	platform := agent.OS()
	if platform == "" {
		platform = agent.Platform()
	}

	summary := name
	if version != "" {
		summary = fmt.Sprintf("%s %s", name, version)
	}
	if platform != "" {
		summary = fmt.Sprintf("%s on %s", summary, platform)
	}
	if agent.Mobile() {
		summary += " (Mobile)"
	}

	return summary
}
