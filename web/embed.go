package web

import "embed"

// Templates holds the layouts, partials and pages rendered by internal/view.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds the stylesheet and other public assets served under /static/.
//
//go:embed static/**/*
var Static embed.FS
