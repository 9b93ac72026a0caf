package notes

import (
	"fmt"
	"log/slog"

	"github.com/starford/dossier/internal/storage"
)

// exampleNotes is written into an empty notes root on first run.
var exampleNotes = map[string]string{
	"getting-started.md": `---
title: Getting Started
category: General
tags: [meta]
---

# Getting Started

Notes live as Markdown files under the notes directory. Subdirectories become
categories unless a note sets its own ` + "`category`" + ` in frontmatter.

## Frontmatter

Supported fields are title, author, date, category and tags.
`,
	"red-team/penetration-testing-methodology.md": `---
title: Penetration Testing Methodology
category: Red Team
tags: [pentest, recon, methodology]
---

# Penetration Testing Methodology

A repeatable penetration testing workflow: reconnaissance, enumeration,
exploitation, privilege escalation and reporting.

## Reconnaissance

Start with passive OSINT, then active scanning with nmap.

` + "```bash\n# service detection\nnmap -sV -sC 10.10.10.5\n```" + `

## Reporting

Every finding gets a severity, evidence and a remediation.
`,
	"blue-team/siem-alert-triage.md": `---
title: SIEM Alert Triage
category: Blue Team
tags: [siem, forensics, incident-response]
---

# SIEM Alert Triage

How to triage SIEM alerts with Splunk and correlate them with endpoint
forensics artefacts.

## Correlation

Pivot from the alert to process trees and network connections.
`,
}

// Bootstrap seeds example notes into store when it holds no Markdown files.
// Existing files are never overwritten, so running it twice is harmless.
func Bootstrap(store storage.Provider, logger *slog.Logger) (int, error) {
	existing, err := store.List("")
	if err != nil {
		return 0, fmt.Errorf("notes: bootstrap: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	written := 0
	for path, body := range exampleNotes {
		ok, err := store.WriteIfAbsent(path, []byte(body))
		if err != nil {
			return written, fmt.Errorf("notes: bootstrap %s: %w", path, err)
		}
		if ok {
			written++
			logger.Info("notes: seeded example", slog.String("path", path))
		}
	}
	return written, nil
}
