package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/repositories"
	"github.com/Dosada05/club-billing/storage"
)

type PlayerService interface {
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	GetPlayerByID(ctx context.Context, clubID, id int) (*models.Player, error)
	ListPlayers(ctx context.Context, filter repositories.ListPlayersFilter) ([]models.Player, error)
	UpdatePlayer(ctx context.Context, clubID, id int, input UpdatePlayerInput) (*models.Player, error)
	UploadPlayerPhoto(ctx context.Context, clubID, playerID int, file io.Reader, contentType string) (*models.Player, error)
}

type CreatePlayerInput struct {
	ClubID   int
	FullName string
	Phone    *string
	Tier     string
}

type UpdatePlayerInput struct {
	FullName string
	Phone    *string
	Tier     string
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
}

func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		uploader:   uploader,
	}
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.FullName)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}
	phone, err := normalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}
	tier, err := models.ParseSkillTier(input.Tier)
	if err != nil {
		return nil, ErrInvalidSkillTier
	}

	player := &models.Player{
		ClubID:   input.ClubID,
		FullName: name,
		Phone:    phone,
		Tier:     tier,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerPhoneConflict) {
			return nil, ErrPlayerPhoneConflict
		}
		return nil, mapStoreError(err, "failed to create player")
	}
	return player, nil
}

func (s *playerService) GetPlayerByID(ctx context.Context, clubID, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, clubID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, mapStoreError(err, fmt.Sprintf("failed to get player %d", id))
	}
	s.populatePhotoURL(player)
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context, filter repositories.ListPlayersFilter) ([]models.Player, error) {
	players, err := s.playerRepo.List(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err, "failed to list players")
	}
	for i := range players {
		s.populatePhotoURL(&players[i])
	}
	return players, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, clubID, id int, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.GetPlayerByID(ctx, clubID, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.FullName)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}
	phone, err := normalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}
	tier, err := models.ParseSkillTier(input.Tier)
	if err != nil {
		return nil, ErrInvalidSkillTier
	}

	player.FullName = name
	player.Phone = phone
	player.Tier = tier

	if err := s.playerRepo.Update(ctx, player); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerNotFound):
			return nil, ErrPlayerNotFound
		case errors.Is(err, repositories.ErrPlayerPhoneConflict):
			return nil, ErrPlayerPhoneConflict
		default:
			return nil, mapStoreError(err, fmt.Sprintf("failed to update player %d", id))
		}
	}
	return player, nil
}

func (s *playerService) UploadPlayerPhoto(ctx context.Context, clubID, playerID int, file io.Reader, contentType string) (*models.Player, error) {
	if s.uploader == nil {
		return nil, ErrStorageNotConfigured
	}
	player, err := s.GetPlayerByID(ctx, clubID, playerID)
	if err != nil {
		return nil, err
	}

	ext, err := storage.ExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	key := fmt.Sprintf("players/%d/photo%s", playerID, ext)

	if player.PhotoKey != nil && *player.PhotoKey != key {
		// Старый файл под другим расширением больше не нужен.
		_ = s.uploader.Delete(ctx, *player.PhotoKey)
	}

	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload player photo: %w", err)
	}
	// Супер-роль читает с clubID == 0, пишем всегда в клуб игрока.
	if err := s.playerRepo.UpdatePhotoKey(ctx, player.ClubID, playerID, &key); err != nil {
		return nil, mapStoreError(err, "failed to persist player photo key")
	}

	player.PhotoKey = &key
	s.populatePhotoURL(player)
	return player, nil
}

func (s *playerService) populatePhotoURL(player *models.Player) {
	if player == nil || s.uploader == nil {
		return
	}
	if player.PhotoKey != nil && *player.PhotoKey != "" {
		if url := s.uploader.GetPublicURL(*player.PhotoKey); url != "" {
			player.PhotoURL = &url
		}
	}
}
