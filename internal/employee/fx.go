package employee

import (
	"github.com/smallbiznis/teamgate/internal/employee/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("employee.repository",
	fx.Provide(repository.New),
)
