package model

import "time"

// Genre is a movie category such as Drama or Action.  Genre names are
// unique.  Movies reference genres through the movie_genres join table.
type Genre struct {
	ID   uint64 // genres.id
	Name string // genres.name
}

// Actor is a performer that can be attached to any number of movies via
// the movie_actors join table.
type Actor struct {
	ID        uint64 // actors.id
	FirstName string // actors.first_name
	LastName  string // actors.last_name
}

// Movie represents an entry in the screening catalog.  A movie carries a
// duration in minutes and optional poster image stored on disk; GenreIDs
// and ActorIDs are populated from the join tables when the repository
// loads a movie with its relations.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – movie title.
//  Description – free-form description.
//  DurationMin – running time in minutes.
//  ImagePath   – path of the uploaded poster relative to the media root
//                (nil when no image has been uploaded).
//  GenreIDs    – IDs of attached genres.
//  ActorIDs    – IDs of attached actors.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Movie struct {
	ID          uint64    // movies.id
	Title       string    // movies.title
	Description string    // movies.description
	DurationMin uint32    // movies.duration_min
	ImagePath   *string   // movies.image_path (nullable)
	GenreIDs    []uint64  // from movie_genres
	ActorIDs    []uint64  // from movie_actors
	CreatedAt   time.Time // movies.created_at
	UpdatedAt   time.Time // movies.updated_at
}
