package mcpserver

// NoteFormatContract describes the annotation conventions that LLM
// consumers should follow when creating or updating notes.
const NoteFormatContract = `# Munin Note Format Contract

Every note stored in Munin is plain text with lightweight inline
annotations. There is no frontmatter; everything is extracted from the
body.

## Layout

- Daily notes live at ` + "`daily/YYYY-MM-DD.md`" + ` (one per day).
- The single long-term note lives at ` + "`long-term.md`" + ` and cannot be
  deleted.
- Any other ` + "`.md`" + ` path is a topic note whose name (filename stem) is
  the title other notes link to.

## Annotations

` + "```" + `markdown
Met @Jane Doe and @Bob at the office.

Discussed #sales and the [[Project Alpha]] rollout.

- [ ] send the revised quote by Friday
- [ ] !!! fix the gateway outage

Follow up with Jane by 2026-09-04.
` + "```" + `

1. **People** are written ` + "`@First Last`" + ` or ` + "`@First`" + `, capitalized.
   The same person mentioned twice in a note is counted once per note.
2. **Tags** are written ` + "`#tag`" + ` (letters, digits, hyphen, underscore)
   and are stored lowercase.
3. **Links** are written ` + "`[[Title]]`" + ` and resolve to a note whose name
   matches the title (case-insensitive). Links to notes that do not
   exist yet are allowed and show up as virtual graph nodes.
4. **Action items** are unchecked checkboxes ` + "`- [ ] text`" + `. A trailing
   ` + "`by <date>`" + ` clause sets the due date; ` + "`!!!`" + ` or the word
   "urgent" marks the item high priority.
5. **Dates** in ISO form (2026-08-28) are recognized anywhere in the
   body; relative words like "tomorrow" or "next week" are captured as
   written but not resolved to calendar dates.

## Rules

1. File paths end with ` + "`.md`" + ` and use forward slashes.
2. Encoding is UTF-8 with a trailing newline.
3. File and directory names use Latin characters; body content may use
   any language.
4. Attachments are uploaded via the HTTP API and referenced as
   ` + "`![name](/attachments/name)`" + ` on a line of their own.

## Example

` + "```" + `markdown
Had a call with @Jane Doe from Acme Corp about #sales.

She wants the [[Pricing Proposal]] updated before the next meeting.

- [ ] send updated pricing by Friday
- [ ] follow up with Jane next week
` + "```" + `
`
