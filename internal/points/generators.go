package points

import (
	"fmt"

	"github.com/donaldgifford/fleetgen/internal/config"
	"github.com/donaldgifford/fleetgen/internal/emit"
	"github.com/donaldgifford/fleetgen/internal/pyexpr"
)

func workers(m *config.Model) (pyexpr.Expr, error) {
	out := make(pyexpr.List, 0, len(m.Fleet.Workers))
	for i := range m.Fleet.Workers {
		out = append(out, emit.Worker(&m.Fleet.Workers[i]))
	}

	return out, nil
}

func builders(m *config.Model) (pyexpr.Expr, error) {
	declared := make(map[string]bool, len(m.Fleet.Workers))
	for i := range m.Fleet.Workers {
		declared[m.Fleet.Workers[i].Name] = true
	}

	out := make(pyexpr.List, 0, len(m.Fleet.Builders))
	for i := range m.Fleet.Builders {
		b := &m.Fleet.Builders[i]
		for _, w := range b.WorkerNames {
			if !declared[w] {
				return nil, fmt.Errorf("builder %q: worker %q is not declared", b.Name, w)
			}
		}

		out = append(out, emit.Builder(b))
	}

	return out, nil
}

func forceScheduler(m *config.Model) (pyexpr.Expr, error) {
	for i := range m.Fleet.Builders {
		if m.Fleet.Builders[i].Name == config.ForceSchedulerBuilder {
			return emit.ForceScheduler(), nil
		}
	}

	return nil, fmt.Errorf("builder %q is not declared", config.ForceSchedulerBuilder)
}

func webhookTriggers(m *config.Model) (pyexpr.Expr, error) {
	out := make(pyexpr.List, 0, len(m.Fleet.WebhookTriggers))
	for i := range m.Fleet.WebhookTriggers {
		out = append(out, emit.WebhookTrigger(&m.Fleet.WebhookTriggers[i]))
	}

	return out, nil
}

func statusPushes(m *config.Model) (pyexpr.Expr, error) {
	return pushes(emit.StatusPush, m.Fleet.StatusPushes)
}

func commentPushes(m *config.Model) (pyexpr.Expr, error) {
	return pushes(emit.CommentPush, m.Fleet.CommentPushes)
}

func pushes(kind emit.PushKind, in []config.Push) (pyexpr.Expr, error) {
	out := make(pyexpr.List, 0, len(in))
	for i := range in {
		e, err := emit.Push(kind, &in[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, nil
}

func changeHookDialect(m *config.Model) (pyexpr.Expr, error) {
	return emit.ChangeHookDialect(&m.Fleet.ChangeHook), nil
}

func hostname(m *config.Model) (pyexpr.Expr, error) {
	return pyexpr.Str(m.Fleet.Hostname), nil
}

func adminPort(m *config.Model) (pyexpr.Expr, error) {
	if m.Environment.AdminPort == 0 {
		return nil, fmt.Errorf("admin port is not set")
	}

	return pyexpr.Int(m.Environment.AdminPort), nil
}

func commsPort(m *config.Model) (pyexpr.Expr, error) {
	if m.Environment.CommsPort == 0 {
		return nil, fmt.Errorf("comms port is not set")
	}

	return pyexpr.Int(m.Environment.CommsPort), nil
}
