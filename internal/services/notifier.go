package services

import (
	"context"

	"go.uber.org/zap"
)

// Notifier receives report lifecycle events. The default implementation only
// logs; an email or websocket fanout can be plugged in without touching the
// orchestrator.
type Notifier interface {
	ReportReady(ctx context.Context, userID, ideaName, reportID string)
	ReportFailed(ctx context.Context, userID, ideaName, reason string)
}

type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notifier")}
}

func (n *LogNotifier) ReportReady(_ context.Context, userID, ideaName, reportID string) {
	n.logger.Info("report ready",
		zap.String("user_id", userID),
		zap.String("idea_name", ideaName),
		zap.String("report_id", reportID))
}

func (n *LogNotifier) ReportFailed(_ context.Context, userID, ideaName, reason string) {
	n.logger.Warn("report failed",
		zap.String("user_id", userID),
		zap.String("idea_name", ideaName),
		zap.String("reason", reason))
}
