package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/club-billing/models"
	"github.com/lib/pq"
)

var (
	ErrServiceNotFound     = errors.New("service not found")
	ErrServiceNameConflict = errors.New("service name conflict for this club")
	ErrServiceInvalidClub  = errors.New("invalid club reference")
)

type ListServicesFilter struct {
	ClubID int
	Status *models.ServiceStatus
}

type ServiceRepository interface {
	Create(ctx context.Context, service *models.Service) error
	GetByID(ctx context.Context, clubID, id int) (*models.Service, error)
	List(ctx context.Context, filter ListServicesFilter) ([]models.Service, error)
	Update(ctx context.Context, service *models.Service) error
}

type postgresServiceRepository struct {
	db *sql.DB
}

func NewPostgresServiceRepository(db *sql.DB) ServiceRepository {
	return &postgresServiceRepository{db: db}
}

func (r *postgresServiceRepository) Create(ctx context.Context, s *models.Service) error {
	query := `
		INSERT INTO services (club_id, name, unit_price, unit_label, status, time_based)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		s.ClubID, s.Name, s.UnitPrice, s.UnitLabel, s.Status, s.TimeBased,
	).Scan(&s.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "services_club_id_name_key" {
					return ErrServiceNameConflict
				}
			case "23503":
				return ErrServiceInvalidClub
			}
		}
		return wrapStoreError(err)
	}
	return nil
}

func (r *postgresServiceRepository) GetByID(ctx context.Context, clubID, id int) (*models.Service, error) {
	query := `
		SELECT id, club_id, name, unit_price, unit_label, status, time_based
		FROM services
		WHERE id = $1 AND ($2 = 0 OR club_id = $2)`

	s := &models.Service{}
	err := r.db.QueryRowContext(ctx, query, id, clubID).Scan(
		&s.ID, &s.ClubID, &s.Name, &s.UnitPrice, &s.UnitLabel, &s.Status, &s.TimeBased,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, wrapStoreError(err)
	}
	return s, nil
}

func (r *postgresServiceRepository) List(ctx context.Context, filter ListServicesFilter) ([]models.Service, error) {
	query := `
		SELECT id, club_id, name, unit_price, unit_label, status, time_based
		FROM services
		WHERE ($1 = 0 OR club_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY name ASC`

	var status *string
	if filter.Status != nil {
		st := string(*filter.Status)
		status = &st
	}

	rows, err := r.db.QueryContext(ctx, query, filter.ClubID, status)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	defer rows.Close()

	services := make([]models.Service, 0)
	for rows.Next() {
		var s models.Service
		if scanErr := rows.Scan(
			&s.ID, &s.ClubID, &s.Name, &s.UnitPrice, &s.UnitLabel, &s.Status, &s.TimeBased,
		); scanErr != nil {
			return nil, scanErr
		}
		services = append(services, s)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapStoreError(err)
	}
	return services, nil
}

func (r *postgresServiceRepository) Update(ctx context.Context, s *models.Service) error {
	query := `
		UPDATE services
		SET name = $1, unit_price = $2, unit_label = $3, status = $4, time_based = $5
		WHERE id = $6 AND club_id = $7`

	result, err := r.db.ExecContext(ctx, query,
		s.Name, s.UnitPrice, s.UnitLabel, s.Status, s.TimeBased, s.ID, s.ClubID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "services_club_id_name_key" {
				return ErrServiceNameConflict
			}
		}
		return wrapStoreError(err)
	}
	return checkAffectedRows(result, ErrServiceNotFound)
}
