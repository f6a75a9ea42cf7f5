package mcpserver

// NoteSchema describes the JSON shape of a note for LLM consumers.
const NoteSchema = `# NoteKeep Note Schema

Every note is a JSON object with this shape:

` + "```" + `json
{
  "id": 1737378000123,
  "title": "Weekly standup",
  "content": "Body text of the note.",
  "tags": ["meeting-notes", "project-x"],
  "pinned": false,
  "attachments": [
    {
      "name": "diagram.png",
      "type": "image/png",
      "data": "data:image/png;base64,iVBORw0..."
    }
  ],
  "createdAt": "2025-01-20T12:00:00Z"
}
` + "```" + `

## Rules

1. **id** is a millisecond Unix timestamp assigned at creation. It never changes,
   and it is strictly increasing across notes.
2. **title** defaults to "Untitled Note" when left blank.
3. **tags** come from comma-separated input: each entry is trimmed, empty entries
   are dropped. Tags are matched by substring in search.
4. **pinned** notes always sort before unpinned ones; within each group notes are
   newest first.
5. **attachments** carry their full content inline as a base64 data URI.
6. A note with no title, no content, and no attachments cannot be created.
7. Deleting a note is permanent and must be confirmed explicitly.
`
