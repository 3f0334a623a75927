package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/config"
	"github.com/repairhub/repairhub-api/models"
	"github.com/repairhub/repairhub-api/repositories"
)

// ApplyInput is an application to work as a repairman.
// UserID is required when an admin applies on a customer's behalf and ignored otherwise.
type ApplyInput struct {
	UserID            *uuid.UUID
	Areas             *string
	ServiceDeviceID   *uuid.UUID
	YearsOfExperience *int
	Description       *string
}

// RepairmanFormPage is one page of the application queue
type RepairmanFormPage struct {
	Items []models.RepairmanForm `json:"items"`
	Total int64                  `json:"total"`
}

// RepairmanFormService runs the repairman application flow: a customer applies once and an
// admin accepts or rejects. Acceptance promotes the applicant to the repairman role.
type RepairmanFormService struct {
	tx            repositories.TxManager
	forms         *repositories.RepairmanFormRepository
	users         *repositories.UserRepository
	catalog       *repositories.CatalogRepository
	notifications *NotificationService
}

func NewRepairmanFormService(db *gorm.DB, notifications *NotificationService) *RepairmanFormService {
	return &RepairmanFormService{
		tx:            repositories.NewTxManager(db),
		forms:         repositories.NewRepairmanFormRepository(db),
		users:         repositories.NewUserRepository(db),
		catalog:       repositories.NewCatalogRepository(db),
		notifications: notifications,
	}
}

// Apply files a Pending application. A user who already applied gets ErrConflict.
func (s *RepairmanFormService) Apply(ctx context.Context, actor Actor, input ApplyInput) (*models.RepairmanForm, error) {
	if err := Authorize(OpApplyRepairman, actor); err != nil {
		return nil, err
	}
	if input.YearsOfExperience != nil && *input.YearsOfExperience < 0 {
		return nil, validationError("years_of_experience must not be negative")
	}

	applicantID := actor.UserID
	if actor.Role == models.RoleAdmin {
		if input.UserID == nil || *input.UserID == uuid.Nil {
			return nil, validationError("user_id is required when an admin files an application")
		}
		if err := checkRole(ctx, s.users, *input.UserID, models.RoleCustomer); err != nil {
			return nil, err
		}
		applicantID = *input.UserID
	}

	if input.ServiceDeviceID != nil {
		exists, err := s.catalog.ServiceDevices.Exists(ctx, *input.ServiceDeviceID)
		if err != nil {
			return nil, NewStorageError("load service device", err)
		}
		if !exists {
			return nil, validationError("service device %s does not exist", *input.ServiceDeviceID)
		}
	}

	form := &models.RepairmanForm{
		UserID: applicantID,
		Status: models.RepairmanFormPending,
		Areas:  input.Areas,
		Detail: &models.RepairmanFormDetail{
			ServiceDeviceID:   input.ServiceDeviceID,
			YearsOfExperience: input.YearsOfExperience,
			Description:       input.Description,
		},
	}

	err := s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		forms := s.forms.WithTx(tx)
		applied, err := forms.ExistsForUser(ctx, applicantID)
		if err != nil {
			return NewStorageError("check existing application", err)
		}
		if applied {
			return conflictError("user %s has already applied", applicantID)
		}
		if err := forms.CreateWithDetail(ctx, form); err != nil {
			return NewStorageError("create repairman form", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	config.Logger().Info("repairman application filed",
		zap.String("form_id", form.ID.String()),
		zap.String("user_id", applicantID.String()),
	)
	return form, nil
}

// Decide accepts or rejects a Pending application and tells the applicant. Accepting makes
// the applicant a repairman. The status change, the promotion and the Register notification
// commit together.
func (s *RepairmanFormService) Decide(ctx context.Context, actor Actor, id uuid.UUID, status models.RepairmanFormStatus) (*models.RepairmanForm, error) {
	if err := Authorize(OpReviewRepairmanForm, actor); err != nil {
		return nil, err
	}
	if !status.Decided() {
		return nil, validationError("status must be %s or %s", models.RepairmanFormAccepted, models.RepairmanFormRejected)
	}

	var form *models.RepairmanForm
	err := s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		form, err = s.forms.WithTx(tx).FindByID(ctx, id)
		if err != nil {
			return lookupError("repairman form", id, err)
		}
		if form.Status.Decided() {
			return conflictError("repairman form is already %s", strings.ToLower(string(form.Status)))
		}

		form.Status = status
		if err := s.forms.WithTx(tx).Update(ctx, form); err != nil {
			return NewStorageError("update repairman form", err)
		}

		title := "Repairman application rejected"
		text := "Your application to work as a repairman was not accepted."
		if status == models.RepairmanFormAccepted {
			if err := s.promote(ctx, tx, form.UserID); err != nil {
				return err
			}
			title = "Repairman application accepted"
			text = "Your application was accepted. You can now take repair orders."
		}

		if s.notifications == nil {
			return nil
		}
		_, err = s.notifications.DispatchTx(ctx, tx, DispatchInput{
			Type:         models.NotificationTypeRegister,
			Title:        title,
			Description:  &text,
			RecipientIDs: []uuid.UUID{form.UserID},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	config.Logger().Info("repairman application decided",
		zap.String("form_id", form.ID.String()),
		zap.String("status", string(form.Status)),
		zap.String("actor_id", actor.UserID.String()),
	)
	return form, nil
}

// promote gives the applicant the repairman role
func (s *RepairmanFormService) promote(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	users := s.users.WithTx(tx)
	user, err := users.FindByID(ctx, userID)
	if repositories.IsNotFound(err) {
		return validationError("applicant %s no longer exists", userID)
	}
	if err != nil {
		return NewStorageError("load applicant", err)
	}

	user.Role = models.RoleRepairman
	if err := users.Update(ctx, user); err != nil {
		return NewStorageError("promote applicant", err)
	}
	return nil
}

// List returns a page of the application queue (admins)
func (s *RepairmanFormService) List(ctx context.Context, actor Actor, filter repositories.RepairmanFormFilter) (*RepairmanFormPage, error) {
	if err := Authorize(OpReviewRepairmanForm, actor); err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, validationError("unknown repairman form status %q", *filter.Status)
	}

	forms, total, err := s.forms.FindPage(ctx, filter)
	if err != nil {
		return nil, NewStorageError("list repairman forms", err)
	}
	if forms == nil {
		forms = []models.RepairmanForm{}
	}
	return &RepairmanFormPage{Items: forms, Total: total}, nil
}

// Get returns one application with its detail and applicant (admins)
func (s *RepairmanFormService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.RepairmanForm, error) {
	if err := Authorize(OpReviewRepairmanForm, actor); err != nil {
		return nil, err
	}

	form, err := s.forms.FindDetail(ctx, id)
	if err != nil {
		return nil, lookupError("repairman form", id, err)
	}
	return form, nil
}
