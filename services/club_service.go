package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/repositories"
	"github.com/Dosada05/club-billing/storage"
)

// ClubService — тонкая обёртка над внешним справочником клубов: чтение
// и загрузка логотипа. Создание клубов остаётся за админ-панелью.
type ClubService interface {
	GetClubByID(ctx context.Context, id int) (*models.Club, error)
	ListClubs(ctx context.Context) ([]models.Club, error)
	UploadClubLogo(ctx context.Context, clubID int, file io.Reader, contentType string) (*models.Club, error)
}

type clubService struct {
	clubRepo repositories.ClubRepository
	uploader storage.FileUploader
}

func NewClubService(clubRepo repositories.ClubRepository, uploader storage.FileUploader) ClubService {
	return &clubService{clubRepo: clubRepo, uploader: uploader}
}

func (s *clubService) GetClubByID(ctx context.Context, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, mapStoreError(err, fmt.Sprintf("failed to get club %d", id))
	}
	s.populateLogoURL(club)
	return club, nil
}

func (s *clubService) ListClubs(ctx context.Context) ([]models.Club, error) {
	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return nil, mapStoreError(err, "failed to list clubs")
	}
	for i := range clubs {
		s.populateLogoURL(&clubs[i])
	}
	return clubs, nil
}

func (s *clubService) UploadClubLogo(ctx context.Context, clubID int, file io.Reader, contentType string) (*models.Club, error) {
	if s.uploader == nil {
		return nil, ErrStorageNotConfigured
	}
	club, err := s.GetClubByID(ctx, clubID)
	if err != nil {
		return nil, err
	}

	ext, err := storage.ExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	key := fmt.Sprintf("clubs/%d/logo%s", clubID, ext)

	if club.LogoKey != nil && *club.LogoKey != key {
		_ = s.uploader.Delete(ctx, *club.LogoKey)
	}
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload club logo: %w", err)
	}
	if err := s.clubRepo.UpdateLogoKey(ctx, clubID, &key); err != nil {
		return nil, mapStoreError(err, "failed to persist club logo key")
	}

	club.LogoKey = &key
	s.populateLogoURL(club)
	return club, nil
}

func (s *clubService) populateLogoURL(club *models.Club) {
	if club == nil || s.uploader == nil {
		return
	}
	if club.LogoKey != nil && *club.LogoKey != "" {
		if url := s.uploader.GetPublicURL(*club.LogoKey); url != "" {
			club.LogoURL = &url
		}
	}
}
