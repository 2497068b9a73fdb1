// Package audit provides event handlers that record an audit trail of
// hierarchy changes. The module subscribes to domain events so the
// hierarchy services never need to know about audit logging.
package audit

import (
	"context"

	"orgmanagement_backend/internal/events"
	"orgmanagement_backend/platform/logger"
)

// Module records hierarchy domain events. It is not HTTP-facing.
type Module struct {
	log *logger.Logger
}

// New creates the audit module.
func New(log *logger.Logger) *Module {
	return &Module{log: log}
}

// RegisterHandlers subscribes the audit trail to every hierarchy event.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.OrganizationCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.OrganizationCreated)
		if !ok {
			return nil
		}
		m.log.Info("audit: organization created", "organization_id", e.OrganizationID, "name", e.Name)
		return nil
	}))

	bus.Subscribe(events.OrganizationDeleted{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.OrganizationDeleted)
		if !ok {
			return nil
		}
		m.log.Info("audit: organization deleted", "organization_id", e.OrganizationID)
		return nil
	}))

	bus.Subscribe(events.DepartmentDeleted{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.DepartmentDeleted)
		if !ok {
			return nil
		}
		m.log.Info("audit: department deleted", "organization_id", e.OrganizationID, "department_id", e.DepartmentID)
		return nil
	}))

	bus.Subscribe(events.MemberAssigned{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.MemberAssigned)
		if !ok {
			return nil
		}
		m.log.Info("audit: member assigned",
			"organization_id", e.OrganizationID,
			"host_kind", e.HostKind,
			"host_id", e.HostID,
			"member_kind", e.MemberKind,
			"member_id", e.MemberID,
		)
		return nil
	}))

	bus.Subscribe(events.MemberRemoved{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.MemberRemoved)
		if !ok {
			return nil
		}
		m.log.Info("audit: member removed",
			"organization_id", e.OrganizationID,
			"host_kind", e.HostKind,
			"host_id", e.HostID,
			"member_kind", e.MemberKind,
			"member_id", e.MemberID,
		)
		return nil
	}))
}
