package models

// Genre describes a movie genre.
type Genre struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

// Director describes a movie director.
type Director struct {
	Name  string `json:"Name"`
	Bio   string `json:"Bio"`
	Birth string `json:"Birth,omitempty"`
	Death string `json:"Death,omitempty"`
}

// Movie is read-only reference data served by the API.
type Movie struct {
	ID          string   `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Title       string   `json:"Title" gorm:"index;not null" validate:"required"`
	Description string   `json:"Description" gorm:"type:text;not null" validate:"required"`
	Genre       Genre    `json:"Genre" gorm:"embedded;embeddedPrefix:genre_"`
	Director    Director `json:"Director" gorm:"embedded;embeddedPrefix:director_"`
	Actors      []string `json:"Actors" gorm:"serializer:json"`
	ImagePath   string   `json:"ImagePath,omitempty"`
	Featured    bool     `json:"Featured"`
}
