// Package seeds embeds reference data loaded by `truefundctl migrate seed`.
package seeds

import "embed"

//go:embed *.sql
var FS embed.FS
