package web

import "embed"

// StaticFS embeds the browser page and its assets.
//
//go:embed static/*
var StaticFS embed.FS
