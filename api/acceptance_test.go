package api

import (
	"testing"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"

	"github.com/fulldump/percoladb/cluster"
	"github.com/fulldump/percoladb/service"
)

func TestAcceptance(t *testing.T) {

	biff.Alternative("Setup", func(a *biff.A) {

		c := cluster.NewCluster(&cluster.Config{
			Dir: t.TempDir(),
		})

		biff.AssertNil(c.Load())
		biff.AssertEqual(c.GetStatus(), cluster.StatusOperating)

		s := service.NewService(c)

		b := Build(s, "test")
		b.WithInterceptors(
			InterceptorUnavailable(c),
			RecoverFromPanic,
			PrettyErrorInterceptor,
		)

		api := apitest.NewWithHandler(b)

		service.Acceptance(a, func(method, path string) *apitest.Request {
			return api.Request(method, path)
		})

	})
}
