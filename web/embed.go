package web

import "embed"

// Static embeds static assets served at the site root.
//
//go:embed static/*
var Static embed.FS
