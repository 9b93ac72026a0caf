// Package testutil provides shared test helpers for setting up notes
// directories and loggers.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/starford/dossier/internal/storage"
)

// Fixture notes keyed by path relative to the notes root.
var Fixture = map[string]string{
	"red-team/penetration-testing-methodology.md": `---
title: Penetration Testing Methodology
date: 2024-05-01
category: Red Team
tags: [pentest, recon, methodology]
---
# Scope

Agree on rules of engagement before any pentest.

## Recon

Enumerate hosts with nmap -sV.

![topology](./img/topology.png)
`,
	"red-team/recon-with-nmap.md": `---
title: Recon with Nmap
date: 2024-04-20
tags: [recon, nmap]
---
# Scanning

Service detection and safe scripts.
`,
	"blue-team/siem-alert-triage.md": `---
title: SIEM Alert Triage
date: 2024-03-15
tags: [siem, splunk]
---
# Triage

Correlate events in Splunk before escalating to incident response.
Some testing of detections happens weekly.
`,
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestNotes creates a temporary notes root holding files and returns its
// path with a storage.FS over it.
func TestNotes(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	for p, body := range files {
		if err := store.Write(p, []byte(body)); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return dir, store
}
