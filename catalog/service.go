package catalog

import (
	"errors"

	"github.com/meeplehaven/boardshelf/model"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an entry does not exist or is not owned by
// the caller. Edit, Delete and Get are always scoped to the owning account.
var ErrNotFound = errors.New("catalog: entry not found")

// Fields holds the mutable fields of a catalog entry.
type Fields struct {
	Name       string
	ImgURL     string
	Year       int
	Level      int
	MinPlayers int
	MaxPlayers int
	PlayTime   string
	Rating     int
}

// Service is CRUD over boardgame entries scoped to an owning account.
type Service struct {
	db *gorm.DB
}

// New creates a catalog Service.
func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListOwn returns all entries owned by ownerID, best-rated first. Ties keep
// insertion order (id ascending).
func (s *Service) ListOwn(ownerID int64) ([]model.Boardgame, error) {
	var games []model.Boardgame
	err := s.db.Where("owner_id = ?", ownerID).
		Order("rating DESC, id ASC").
		Find(&games).Error
	return games, err
}

// ListFor returns ownerID's catalog for another viewer, same ordering as
// ListOwn. Friendship visibility is the calling route's responsibility.
func (s *Service) ListFor(ownerID int64) ([]model.Boardgame, error) {
	return s.ListOwn(ownerID)
}

// Get returns a single entry owned by ownerID.
func (s *Service) Get(ownerID, entryID int64) (*model.Boardgame, error) {
	var game model.Boardgame
	err := s.db.Where("id = ? AND owner_id = ?", entryID, ownerID).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// Add inserts a new entry owned by ownerID.
func (s *Service) Add(ownerID int64, f Fields) (*model.Boardgame, error) {
	game := &model.Boardgame{
		OwnerID:    ownerID,
		Name:       f.Name,
		ImgURL:     f.ImgURL,
		Year:       f.Year,
		Level:      f.Level,
		MinPlayers: f.MinPlayers,
		MaxPlayers: f.MaxPlayers,
		PlayTime:   f.PlayTime,
		Rating:     f.Rating,
	}
	if err := s.db.Create(game).Error; err != nil {
		return nil, err
	}
	return game, nil
}

// Edit overwrites every mutable field of an entry owned by ownerID.
// Full replace, not a partial patch: zero values are written too.
func (s *Service) Edit(ownerID, entryID int64, f Fields) error {
	var game model.Boardgame
	err := s.db.Where("id = ? AND owner_id = ?", entryID, ownerID).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	game.Name = f.Name
	game.ImgURL = f.ImgURL
	game.Year = f.Year
	game.Level = f.Level
	game.MinPlayers = f.MinPlayers
	game.MaxPlayers = f.MaxPlayers
	game.PlayTime = f.PlayTime
	game.Rating = f.Rating
	return s.db.Save(&game).Error
}

// Delete removes an entry owned by ownerID. No soft-delete.
func (s *Service) Delete(ownerID, entryID int64) error {
	res := s.db.Where("id = ? AND owner_id = ?", entryID, ownerID).
		Delete(&model.Boardgame{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
