package api

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"canteen-system/internal/app/bootstrap"
	"canteen-system/internal/common/httpx"
	"canteen-system/internal/common/logger"
	"canteen-system/internal/handler"
	"canteen-system/internal/session"
)

// Run serves the HTTP API over one live session until ctx is done.
func Run(ctx context.Context, rt *bootstrap.Runtime, port int, lg *logger.Logger) error {
	sess := session.New(rt.Repo, rt.Bus, lg.Named("session"), rt.Config.Notify.PollInterval)
	sess.Refresh(ctx)

	h := handler.New(sess, lg.Named("http"))
	srv := httpx.New(":"+strconv.Itoa(port), h.Routes(), lg)
	srv.RegisterOnShutdown(h.CloseStreams)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sess.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })
	return g.Wait()
}
