package models

import "time"

// Movie is a globally owned content record. List entries reference it by id;
// the row itself is shared across all lists that point at it.
type Movie struct {
	ID          uint64     `gorm:"primaryKey" json:"id"`
	IMDBID      string     `gorm:"index" json:"imdb_id,omitempty"`
	Title       string     `gorm:"not null" json:"title"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Runtime     int        `json:"runtime,omitempty"` // minutes
	PosterURL   string     `json:"poster_url,omitempty"`
	Quality     string     `json:"quality,omitempty"`
	Overview    string     `json:"overview,omitempty"`

	// Collection membership. A collection is a named grouping of movies, not
	// an independent storable entity; expanding one resolves to these rows.
	CollectionID   *uint64 `gorm:"index" json:"collection_id,omitempty"`
	CollectionName string  `json:"collection_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Series is a globally owned TV series record
type Series struct {
	ID         uint64     `gorm:"primaryKey" json:"id"`
	IMDBID     string     `gorm:"index" json:"imdb_id,omitempty"`
	Title      string     `gorm:"not null" json:"title"`
	FirstAired *time.Time `json:"first_aired,omitempty"`
	PosterURL  string     `json:"poster_url,omitempty"`
	Overview   string     `json:"overview,omitempty"`
	Status     string     `json:"status,omitempty"` // continuing, ended

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Episode belongs to a Series
type Episode struct {
	ID            uint64     `gorm:"primaryKey" json:"id"`
	SeriesID      uint64     `gorm:"not null;index" json:"series_id"`
	SeasonNumber  int        `gorm:"not null" json:"season_number"`
	EpisodeNumber int        `gorm:"not null" json:"episode_number"`
	Title         string     `json:"title,omitempty"`
	AirDate       *time.Time `json:"air_date,omitempty"`
	Runtime       int        `json:"runtime,omitempty"`
	Overview      string     `json:"overview,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TitleRecord is an id+title projection used by search
type TitleRecord struct {
	ID    uint64
	Title string
}
