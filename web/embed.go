// ABOUTME: Embedded filesystem for board templates and static assets.
// ABOUTME: Exports ContentFS so the server never depends on runtime filesystem paths.
package web

import "embed"

//go:embed templates/* static/*
var ContentFS embed.FS
