// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"log/slog"

	"github.com/gogpu/hitbox"
	"github.com/gogpu/hitbox/internal/gpu"
)

// SetLogger sets the logger for the editor core and the GPU renderers.
// Passing nil disables logging in both.
func SetLogger(l *slog.Logger) {
	hitbox.SetLogger(l)
	gpu.SetLogger(l)
}
