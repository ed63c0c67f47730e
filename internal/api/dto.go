package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/askeladd/deckforge/internal/models"
)

// CardTemplateDTO is one card template in a generate request.
type CardTemplateDTO struct {
	Name string `json:"name"`
	Qfmt string `json:"qfmt"`
	Afmt string `json:"afmt"`
}

// Validate checks the template shape. Placeholder contents are not
// inspected; the builder copies formats verbatim.
func (t CardTemplateDTO) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required),
		validation.Field(&t.Qfmt, validation.Required),
		validation.Field(&t.Afmt, validation.Required),
	)
}

// ModelDTO is the flashcard type definition in a generate request.
type ModelDTO struct {
	Name      string            `json:"name"`
	Fields    []string          `json:"fields"`
	Templates []CardTemplateDTO `json:"templates"`
	CSS       string            `json:"css,omitempty"`
}

// Validate checks the model shape.
func (m ModelDTO) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.Fields, validation.Required),
		validation.Field(&m.Templates, validation.Required),
	)
}

// NoteDTO is one note in a generate request. Field values bind to the
// model's fields by position; a count mismatch is tolerated, not rejected.
type NoteDTO struct {
	Fields []string `json:"fields"`
	Tags   []string `json:"tags,omitempty"`
	GUID   string   `json:"guid,omitempty"`
}

// Validate checks the note shape.
func (n NoteDTO) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Fields, validation.NotNil),
	)
}

// DeckDTO is one deck in a generate request.
type DeckDTO struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Notes       []NoteDTO `json:"notes"`
}

// Validate checks the deck shape.
func (d DeckDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.Notes, validation.NotNil),
	)
}

// GeneratePackageRequest is the body of POST /generate_flashcards/.
type GeneratePackageRequest struct {
	Model      ModelDTO  `json:"model"`
	Decks      []DeckDTO `json:"decks"`
	MediaFiles []string  `json:"media_files,omitempty"`
}

// Validate checks the request shape: one model, one or more decks.
func (r GeneratePackageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Model),
		validation.Field(&r.Decks, validation.Required),
	)
}

// ToPackage converts the validated request into the domain model.
func (r GeneratePackageRequest) ToPackage() models.Package {
	decks := make([]models.Deck, len(r.Decks))
	for i, d := range r.Decks {
		notes := make([]models.Note, len(d.Notes))
		for j, n := range d.Notes {
			notes[j] = models.Note{Fields: n.Fields, Tags: n.Tags, GUID: n.GUID}
		}
		decks[i] = models.Deck{Name: d.Name, Description: d.Description, Notes: notes}
	}
	templates := make([]models.CardTemplate, len(r.Model.Templates))
	for i, t := range r.Model.Templates {
		templates[i] = models.CardTemplate{Name: t.Name, Qfmt: t.Qfmt, Afmt: t.Afmt}
	}
	return models.Package{
		Model: models.Model{
			Name:      r.Model.Name,
			Fields:    r.Model.Fields,
			Templates: templates,
			CSS:       r.Model.CSS,
		},
		Decks:      decks,
		MediaFiles: r.MediaFiles,
	}
}

// GenerateResponse is returned after a successful build.
type GenerateResponse struct {
	Message     string `json:"message"`
	DownloadURL string `json:"download_url"`
}

// MediaUploadResponse is returned after a successful media upload.
type MediaUploadResponse struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}
