package quranapi

// VersesResponse is the body of GET /verses/by_chapter/{n}.
type VersesResponse struct {
	Verses     []Verse    `json:"verses"`
	Pagination Pagination `json:"pagination"`
}

// Pagination describes the page returned by the API.
type Pagination struct {
	PerPage      int  `json:"per_page"`
	CurrentPage  int  `json:"current_page"`
	NextPage     *int `json:"next_page"`
	TotalPages   int  `json:"total_pages"`
	TotalRecords int  `json:"total_records"`
}

// Verse is the raw verse shape requested with words, translations and audio.
type Verse struct {
	ID           int           `json:"id"`
	VerseNumber  int           `json:"verse_number"`
	VerseKey     string        `json:"verse_key"`
	TextUthmani  string        `json:"text_uthmani"`
	Words        []Word        `json:"words"`
	Translations []Translation `json:"translations"`
	Audio        *Audio        `json:"audio"`
}

// Word is a single word of a verse.
type Word struct {
	Position        int              `json:"position"`
	CharTypeName    string           `json:"char_type_name"`
	Transliteration *Transliteration `json:"transliteration"`
}

// Transliteration of a word; Text is null for end-of-ayah markers.
type Transliteration struct {
	Text         *string `json:"text"`
	LanguageName string  `json:"language_name"`
}

// Translation of a verse. Text may contain footnote markup.
type Translation struct {
	ID         int    `json:"id"`
	ResourceID int    `json:"resource_id"`
	Text       string `json:"text"`
}

// Audio is the recitation file of a verse, URL is usually relative.
type Audio struct {
	URL string `json:"url"`
}
