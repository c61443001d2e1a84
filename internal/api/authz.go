package api

import (
	"github.com/taskflow/taskflow-core/internal/api/metrics"
	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// meteredAuthorizer counts denials by action and reason on top of the wrapped
// permission engine. Decisions are unchanged.
type meteredAuthorizer struct {
	inner ports.Authorizer
}

func NewMeteredAuthorizer(inner ports.Authorizer) ports.Authorizer {
	return &meteredAuthorizer{inner: inner}
}

func (a *meteredAuthorizer) Authorize(session *domain.Session, action domain.Action, resource *ports.Resource) ports.Decision {
	d := a.inner.Authorize(session, action, resource)
	if !d.Allowed {
		metrics.AuthzDenialsTotal.WithLabelValues(string(action), string(d.Reason)).Inc()
	}
	return d
}
