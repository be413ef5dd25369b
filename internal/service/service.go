// Package service holds the business layer: authentication, record
// management, stats aggregation and exports.
package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dadosgov/cnpq-api/internal/models"
	appErrors "github.com/dadosgov/cnpq-api/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkInput runs struct validation and converts failures into a 400.
func checkInput(input interface{}) error {
	if err := validate.Struct(input); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return nil
}

// notFoundAs maps sql.ErrNoRows onto the domain not-found error, leaving
// everything else untouched.
func notFoundAs(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, message)
	}
	return err
}

// auditor is embedded by the record services to share best-effort trail
// writes.
type auditor struct {
	audits AuditStore
	logger *zap.Logger
}

func (a auditor) record(ctx context.Context, principal *models.Principal, action models.AuditAction, resource string, id int64, ip string) {
	if a.audits == nil {
		return
	}
	username := ""
	if principal != nil {
		username = principal.Username
	}
	resourceID := strconv.FormatInt(id, 10)
	entry := &models.AuditLog{
		Username:   username,
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		IPAddress:  ip,
	}
	if err := a.audits.Create(ctx, entry); err != nil && a.logger != nil {
		a.logger.Warn("audit write failed",
			zap.String("action", string(action)),
			zap.String("resource", resource),
			zap.Error(err))
	}
}
