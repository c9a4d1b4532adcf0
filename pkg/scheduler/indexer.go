package scheduler

// indexer gives a unique SAT variable to each (film, day) combination and vice versa
type indexer interface {
	// Returns the variable stating that film is projected on day
	Index(film, day uint64) uint64
	// Returns the film and day of a variable
	Attributes(index uint64) (film uint64, day uint64)
	// Returns how many (film, day) variables exist
	Variables() uint64
}

func newIndexer(films, days uint64) indexer {
	return &indexerImplementation{
		films: films,
		days:  days,
	}
}

type indexerImplementation struct {
	films uint64
	days  uint64
}

func (indexer *indexerImplementation) Index(film, day uint64) uint64 {
	return day + indexer.days*film + 1
}

func (indexer *indexerImplementation) Attributes(index uint64) (film, day uint64) {
	index = index - 1
	day = index % indexer.days
	index = index / indexer.days

	film = index % indexer.films

	return film, day
}

func (indexer *indexerImplementation) Variables() uint64 {
	return indexer.films * indexer.days
}
