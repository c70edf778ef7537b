package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamgate/internal/config"
	"github.com/smallbiznis/teamgate/internal/migration"
	"github.com/smallbiznis/teamgate/internal/observability"
	"github.com/smallbiznis/teamgate/internal/seed"
	"github.com/smallbiznis/teamgate/internal/server"
	"github.com/smallbiznis/teamgate/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		seed.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
