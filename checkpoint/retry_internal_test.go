// SPDX-License-Identifier: MIT

package checkpoint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyNormalize(t *testing.T) {
	cases := map[string]struct {
		in, want RetryPolicy
	}{
		"zero":            {RetryPolicy{}, DefaultRetry},
		"attempts only":   {RetryPolicy{Attempts: 9}, RetryPolicy{Attempts: 9, InitialDelay: 50 * time.Millisecond, MaxDelay: 2 * time.Second}},
		"initial only":    {RetryPolicy{InitialDelay: 10 * time.Millisecond}, RetryPolicy{Attempts: 4, InitialDelay: 10 * time.Millisecond, MaxDelay: 2 * time.Second}},
		"initial above":   {RetryPolicy{InitialDelay: 5 * time.Second}, RetryPolicy{Attempts: 4, InitialDelay: 5 * time.Second, MaxDelay: 5 * time.Second}},
		"max below start": {RetryPolicy{InitialDelay: time.Second, MaxDelay: time.Millisecond}, RetryPolicy{Attempts: 4, InitialDelay: time.Second, MaxDelay: time.Second}},
		"explicit":        {RetryPolicy{Attempts: 2, InitialDelay: time.Millisecond, MaxDelay: 3 * time.Millisecond}, RetryPolicy{Attempts: 2, InitialDelay: time.Millisecond, MaxDelay: 3 * time.Millisecond}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.normalize())
		})
	}
}
