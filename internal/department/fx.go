package department

import (
	"github.com/smallbiznis/teamgate/internal/department/repository"
	"github.com/smallbiznis/teamgate/internal/department/service"
	"go.uber.org/fx"
)

var Module = fx.Module("department.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
