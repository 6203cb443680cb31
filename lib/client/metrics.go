package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ValentinKolb/credis/lib/store"
	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/redis/go-redis/v9"
)

// commandMetrics holds the metric handles of one command name
type commandMetrics struct {
	calls    *metrics.Counter
	errors   *metrics.Counter
	duration *metrics.Histogram
}

// commandHook is a redis.Hook that records per role command metrics and
// logs failing commands. It is attached to every connection by the topology.
//
// A connection closed under a running command (Close racing an operation)
// is reported as InitError, like an operation started after Close.
type commandHook struct {
	role  store.Role
	set   *metrics.Set
	cache *xsync.MapOf[string, *commandMetrics]
	dials *metrics.Counter
}

func newCommandHook(role store.Role, set *metrics.Set) *commandHook {
	return &commandHook{
		role:  role,
		set:   set,
		cache: xsync.NewMapOf[string, *commandMetrics](),
		dials: set.GetOrCreateCounter(fmt.Sprintf(`credis_dials_total{role=%q}`, role)),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see redis.Hook)
// --------------------------------------------------------------------------

func (h *commandHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		h.dials.Inc()
		conn, err := next(ctx, network, addr)
		if err != nil {
			log.Debugf("dial %s (%s) failed: %v", addr, h.role, err)
		}
		return conn, err
	}
}

func (h *commandHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := closedAsInit(next(ctx, cmd))
		if err != nil {
			cmd.SetErr(err)
		}
		h.observe(cmd, start, err)
		return err
	}
}

func (h *commandHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := closedAsInit(next(ctx, cmds))
		for _, cmd := range cmds {
			if cmdErr := closedAsInit(cmd.Err()); cmdErr != nil {
				cmd.SetErr(cmdErr)
			}
			h.observe(cmd, start, cmd.Err())
		}
		return err
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (h *commandHook) observe(cmd redis.Cmder, start time.Time, err error) {
	m := h.metricsFor(cmd.Name())
	m.calls.Inc()
	m.duration.UpdateDuration(start)
	if err != nil && err != redis.Nil {
		m.errors.Inc()
		log.Debugf("%s command %q failed: %v", h.role, cmd.Name(), err)
	}
}

// closedAsInit maps the error of a closed go-redis client to InitError
func closedAsInit(err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return store.WrapError(store.RetCInit, err, "connection closed during operation")
	}
	return err
}

func (h *commandHook) metricsFor(name string) *commandMetrics {
	m, _ := h.cache.LoadOrCompute(name, func() *commandMetrics {
		labels := fmt.Sprintf(`{role=%q,cmd=%q}`, h.role, name)
		return &commandMetrics{
			calls:    h.set.GetOrCreateCounter("credis_commands_total" + labels),
			errors:   h.set.GetOrCreateCounter("credis_command_errors_total" + labels),
			duration: h.set.GetOrCreateHistogram("credis_command_duration_seconds" + labels),
		}
	})
	return m
}
