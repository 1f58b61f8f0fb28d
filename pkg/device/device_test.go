// Copyright (c) 2026 Identra. All rights reserved.

package device_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anhtran-dev/identra/pkg/device"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		contains  string
	}{
		{
			"desktop_chrome",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
			"Chrome",
		},
		{
			"empty_agent",
			"",
			"Unknown device",
		},
		{
			"unrecognized_agent",
			"curl/8.5.0",
			"Unknown device",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, device.Summarize(tt.userAgent), tt.contains)
		})
	}
}
