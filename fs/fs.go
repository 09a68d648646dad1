package appfs

import "embed"

// FS holds the files shipped inside the binary: SQL migrations, email and view templates, seed data.
// Templates are listed by glob so the `_base` layouts are embedded too.
//go:embed migrations/*.sql
//go:embed templates/email/*
//go:embed templates/views/*.gohtml templates/views/*/*.gohtml
//go:embed zones_kr.csv
var FS embed.FS
