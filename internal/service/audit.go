package service

import (
	"go.uber.org/zap"
)

// AuditService writes an audit trail of provider-facing actions to the log.
// Nothing is persisted locally; the provider owns the payout records.
type AuditService struct {
	logger *zap.Logger
}

func NewAuditService(logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{logger: logger.Named("audit")}
}

// Write records a single audit entry. actor is the caller's session id when known.
func (s *AuditService) Write(action, entityType, entityID, actor string, fields ...zap.Field) {
	s.logger.Info(action, append([]zap.Field{
		zap.String("entity_type", entityType),
		zap.String("entity_id", entityID),
		zap.String("actor", textParam(actor)),
	}, fields...)...)
}

func textParam(v string) string {
	if v == "" {
		return "anonymous"
	}
	return v
}
