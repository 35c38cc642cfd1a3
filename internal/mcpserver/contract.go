package mcpserver

// StorageFormatContract describes how the task list is persisted, so that
// tools inspecting the store directly read and write compatible snapshots.
const StorageFormatContract = `# Tickoff Storage Format

The whole list lives under one key, ` + "`tasks`" + `, as a JSON array in display order.

## Entry

` + "```" + `json
[
  {"text": "buy milk", "class": "task"},
  {"text": "call mom", "class": "task done"}
]
` + "```" + `

## Rules

1. **Order is position.** Index 0 is the top of the list. There are no ids.
2. **` + "`class`" + ` is a token list.** ` + "`task`" + ` for open items; a ` + "`done`" + ` token marks completion.
3. **` + "`text`" + ` is markup-escaped.** ` + "`&`" + `, ` + "`<`" + `, ` + "`>`" + ` and the no-break space are
   written as ` + "`&amp;`" + `, ` + "`&lt;`" + `, ` + "`&gt;`" + ` and ` + "`&nbsp;`" + `. Tools take and return plain text.
4. **Every change rewrites the whole array.** An absent key or ` + "`null`" + ` is an empty list.

## Indices

All tools address tasks by their current 0-based position. Positions shift after
` + "`delete_task`" + `, ` + "`move_task`" + ` and ` + "`reorder_task`" + `; call ` + "`list_tasks`" + ` again before acting on an index.
`
