package token

import (
	"github.com/smallbiznis/teamgate/internal/token/repository"
	"github.com/smallbiznis/teamgate/internal/token/service"
	"go.uber.org/fx"
)

var Module = fx.Module("token.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
