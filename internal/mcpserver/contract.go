package mcpserver

// RequestFormatContract documents the package description JSON that the
// generate_flashcards tool accepts. Served as an MCP resource so clients
// can fetch it before building requests.
const RequestFormatContract = `# Deckforge package description format

A package description is a JSON object with one model and one or more
decks sharing that model:

` + "```json" + `
{
  "model": {
    "name": "Basic Model",
    "fields": ["Front", "Back"],
    "templates": [
      {
        "name": "Card 1",
        "qfmt": "{{Front}}",
        "afmt": "{{FrontSide}}<hr id='answer'>{{Back}}"
      }
    ],
    "css": ".card { font-family: arial; font-size: 20px; }"
  },
  "decks": [
    {
      "name": "Geography Deck",
      "description": "A deck for learning world geography",
      "notes": [
        {
          "fields": ["What is the capital of France?", "Paris"],
          "tags": ["geography", "europe"]
        }
      ]
    }
  ],
  "media_files": ["map.png"]
}
` + "```" + `

Rules:

- ` + "`model.fields`" + ` is an ordered list of field names. Note field
  values bind to it purely by position.
- Template formats use Anki placeholder syntax: ` + "`{{FieldName}}`" + `,
  and ` + "`{{FrontSide}}`" + ` in answer formats. Unknown placeholders are
  left literal.
- ` + "`notes[].guid`" + ` is optional; when omitted a stable identifier is
  derived from the field values, so rebuilding identical content dedupes
  on import.
- ` + "`media_files`" + ` names files previously uploaded via the API;
  they are bundled into the package.
`
