package user

import (
	"github.com/smallbiznis/teamgate/internal/user/repository"
	"github.com/smallbiznis/teamgate/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
