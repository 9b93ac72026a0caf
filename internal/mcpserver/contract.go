package mcpserver

// NoteFormatURI identifies the note format resource.
const NoteFormatURI = "dossier://note-format"

// NoteFormat describes how notes under the notes root are written and how
// each field is derived when it is missing.
const NoteFormat = `# Dossier Note Format

Notes are Markdown files (.md or .markdown) below the notes root. Hidden
files and directories are ignored.

## Frontmatter

` + "```" + `markdown
---
title: Penetration Testing Methodology   # optional, defaults to the file name
date: 2024-05-01                          # optional, defaults to file mtime
category: Red Team                        # optional, defaults to top folder
author: someone                           # optional
tags: [pentest, recon]                    # optional, must be a list
---
` + "```" + `

YAML (` + "`---`" + `), TOML (` + "`+++`" + `) and JSON (` + "`;;;`" + `) frontmatter are accepted.
A file whose frontmatter does not parse is skipped.

## Derived fields

- **slug**: the relative path without extension, each segment lower-cased
  and hyphenated (` + "`Red Team/Recon Notes.md`" + ` becomes ` + "`red-team/recon-notes`" + `).
- **category**: frontmatter, else the humanized top folder, else
  ` + "`Uncategorized`" + `.
- **table of contents**: built from ATX headings outside fenced code.
- **read time**: words / 200, rounded up, at least one minute.

## Images

Relative image references are served from
` + "`/images/notes/<slug>/<file name>`" + `. Only the file name is kept, so two
images with the same name in different folders of one note collide.
Absolute URLs are left untouched.
`
