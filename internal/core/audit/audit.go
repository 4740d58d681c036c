// Package audit defines the recording side of the change-history
// trail. The storage implementation lives in the infrastructure layer.
package audit

import (
	"context"

	"framasa/internal/core/id"
)

// Action classifies an audited operation.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionMovement Action = "movement"
	ActionPayment  Action = "payment"
	ActionVoid     Action = "void"
	ActionConvert  Action = "convert"
)

// Logger appends entries to the audit trail. Implementations must be
// safe for concurrent use.
type Logger interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
}
