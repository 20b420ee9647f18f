package social

import (
	"errors"

	"github.com/meeplehaven/boardshelf/model"
	"gorm.io/gorm"
)

var (
	// ErrUnknownEmail is returned when the target email matches no account.
	ErrUnknownEmail = errors.New("social: unknown email")
	// ErrSelfFriend is returned when an account befriends itself.
	ErrSelfFriend = errors.New("social: cannot friend yourself")
	// ErrAlreadyRequested is returned when an edge between the pair exists.
	ErrAlreadyRequested = errors.New("social: friendship already exists or is pending")
	// ErrNotFound is returned when the expected edge is absent.
	ErrNotFound = errors.New("social: friendship not found")
)

// Service manages the friendship edges between accounts.
//
// A pending request from A to B is stored as a single waiting edge from B's
// perspective (UserID=B, FriendID=A), so B's inbox is just B's outgoing
// waiting edges. Accepting flips that edge to accepted and inserts the
// reciprocal edge; declining deletes it; removing an established friendship
// deletes both directions.
type Service struct {
	db *gorm.DB
}

// New creates a social Service.
func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Request records a friend request from requesterID to the account owning
// targetEmail and returns the target account.
func (s *Service) Request(requesterID int64, targetEmail string) (*model.Account, error) {
	var target model.Account
	err := s.db.Where("email = ?", targetEmail).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownEmail
	}
	if err != nil {
		return nil, err
	}
	if target.ID == requesterID {
		return nil, ErrSelfFriend
	}

	// Any existing edge between the pair blocks a new request: an outgoing
	// edge from the requester (accepted friendship, or an inbound request
	// waiting on the requester), or the inverted edge a previous identical
	// request already created. Keeps at most one edge per ordered pair.
	var count int64
	err = s.db.Model(&model.Friendship{}).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			requesterID, target.ID, target.ID, requesterID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyRequested
	}

	// Stored from the recipient's perspective.
	edge := &model.Friendship{
		UserID:   target.ID,
		FriendID: requesterID,
		Status:   model.FriendshipWaiting,
	}
	if err := s.db.Create(edge).Error; err != nil {
		return nil, err
	}
	return &target, nil
}

// Accept turns the waiting edge (accepterID → requesterID) into an accepted
// friendship. Both writes happen in one transaction; a half-accepted
// friendship would be one-directional.
func (s *Service) Accept(accepterID, requesterID int64) error {
	var edge model.Friendship
	err := s.db.
		Where("user_id = ? AND friend_id = ? AND status = ?",
			accepterID, requesterID, model.FriendshipWaiting).
		First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		edge.Status = model.FriendshipAccepted
		if err := tx.Save(&edge).Error; err != nil {
			return err
		}
		return tx.Create(&model.Friendship{
			UserID:   requesterID,
			FriendID: accepterID,
			Status:   model.FriendshipAccepted,
		}).Error
	})
}

// Decline deletes the waiting edge (accepterID → requesterID). Only one
// direction exists for a pending request, so this is a single-row delete.
func (s *Service) Decline(accepterID, requesterID int64) error {
	res := s.db.
		Where("user_id = ? AND friend_id = ? AND status = ?",
			accepterID, requesterID, model.FriendshipWaiting).
		Delete(&model.Friendship{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove dissolves an established friendship by deleting both directed
// edges in one transaction. If either edge is missing nothing is deleted.
func (s *Service) Remove(userID, otherID int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.Friendship{}).
			Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
				userID, otherID, otherID, userID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count < 2 {
			return ErrNotFound
		}
		return tx.
			Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
				userID, otherID, otherID, userID).
			Delete(&model.Friendship{}).Error
	})
}

// ListAccepted returns the accounts userID has an accepted edge to.
func (s *Service) ListAccepted(userID int64) ([]model.Account, error) {
	return s.listByStatus(userID, model.FriendshipAccepted)
}

// ListPending returns the accounts whose requests are waiting on userID.
func (s *Service) ListPending(userID int64) ([]model.Account, error) {
	return s.listByStatus(userID, model.FriendshipWaiting)
}

func (s *Service) listByStatus(userID int64, status int) ([]model.Account, error) {
	var accounts []model.Account
	err := s.db.Model(&model.Account{}).
		Joins("JOIN friendships ON friendships.friend_id = accounts.id").
		Where("friendships.user_id = ? AND friendships.status = ?", userID, status).
		Order("friendships.id ASC").
		Find(&accounts).Error
	return accounts, err
}

// IsAccepted reports whether viewerID has an accepted edge to ownerID.
func (s *Service) IsAccepted(viewerID, ownerID int64) (bool, error) {
	var count int64
	err := s.db.Model(&model.Friendship{}).
		Where("user_id = ? AND friend_id = ? AND status = ?",
			viewerID, ownerID, model.FriendshipAccepted).
		Count(&count).Error
	return count > 0, err
}
