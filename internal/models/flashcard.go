// Package models defines the domain types for Deckforge.
package models

// CardTemplate defines how a note renders into one card: a question format
// and an answer format using Anki's {{FieldName}} placeholder syntax. The
// answer format may additionally reference {{FrontSide}}, the rendered
// question side. Formats are copied into the package verbatim; unresolved
// placeholders are left literal.
type CardTemplate struct {
	Name string `json:"name"`
	Qfmt string `json:"qfmt"`
	Afmt string `json:"afmt"`
}

// Model is a flashcard type definition: ordered field names, card
// templates, and optional package-wide CSS. Field order defines the
// positional mapping to note field values.
type Model struct {
	Name      string         `json:"name"`
	Fields    []string       `json:"fields"`
	Templates []CardTemplate `json:"templates"`
	CSS       string         `json:"css,omitempty"`
}

// Note is one piece of content bound to a model. Field values map to the
// model's fields purely by position. GUID, when empty, is synthesized from
// the field values so identical content dedupes on re-import.
type Note struct {
	Fields []string `json:"fields"`
	Tags   []string `json:"tags,omitempty"`
	GUID   string   `json:"guid,omitempty"`
}

// Deck is a named, ordered collection of notes. Note order defines import
// order within the deck.
type Deck struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Notes       []Note `json:"notes"`
}

// Package is one build request: a single model shared by one or more
// decks, plus optional names of previously uploaded media files to bundle.
// It exists only for the duration of one build call.
type Package struct {
	Model      Model    `json:"model"`
	Decks      []Deck   `json:"decks"`
	MediaFiles []string `json:"media_files,omitempty"`
}
