package routes

import (
	"sportsledger/config"
	"sportsledger/controllers/branch"
	"sportsledger/controllers/callback/sportsbook/saba"
	"sportsledger/controllers/callback/sportsbook/sbo"
	"sportsledger/controllers/report"
	"sportsledger/controllers/user"
	"sportsledger/metrics"
	"sportsledger/middlewares"
	"sportsledger/providers"
	"sportsledger/services"
	"sportsledger/store"

	"github.com/gofiber/fiber/v2"
)

// Deps is everything the HTTP surface is built from.
type Deps struct {
	Config    *config.Config
	Players   *store.PlayerStore
	Saba      *services.Ledger
	Sbo       *services.Ledger
	Report    *services.Report
	Launchers *providers.Registry
}

func Setup(app *fiber.App, d Deps) {
	app.Use(middlewares.RequestID())
	app.Use(metrics.Middleware())

	app.Get("/metrics", metrics.Handler())
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	userHandler := user.NewHandler(d.Players, d.Launchers)
	userroutes := app.Group("/user", middlewares.BranchAuth(d.Players))
	userroutes.Post("/register", userHandler.Register)
	userroutes.Post("/games/start", userHandler.StartGame)

	branchroutes := app.Group("/branch", middlewares.MasterAuth(d.Config.Master))
	branchroutes.Post("/register", branch.NewHandler(d.Players).Register)

	reportroutes := app.Group("/report", middlewares.BranchAuth(d.Players))
	reportroutes.Post("/outstanding", report.NewHandler(d.Report).Outstanding)

	//sbo
	sboHandler := sbo.NewHandler(d.Sbo)
	sboroutes := app.Group("/seamless/sportsbook/sbo", middlewares.SboAuth(d.Config.Sbo))
	sboroutes.Post("/GetBalance", sboHandler.GetBalance)
	sboroutes.Post("/GetBetStatus", sboHandler.GetBetStatus)
	sboroutes.Post("/Deduct", sboHandler.Deduct)
	sboroutes.Post("/Settle", sboHandler.Settle)
	sboroutes.Post("/Cancel", sboHandler.Cancel)
	sboroutes.Post("/Rollback", sboHandler.Rollback)
	sboroutes.Post("/Bonus", sboHandler.Bonus)

	//saba
	sabaHandler := saba.NewHandler(d.Saba)
	sabaroutes := app.Group("/seamless/sportsbook/saba")
	sabaroutes.Post("/getbalance", sabaHandler.GetBalance)
	sabaroutes.Post("/placebet", sabaHandler.PlaceBet)
	sabaroutes.Post("/placebetparlay", sabaHandler.PlaceBetParlay)
	sabaroutes.Post("/confirmbet", sabaHandler.ConfirmBet)
	sabaroutes.Post("/confirmbetparlay", sabaHandler.ConfirmBetParlay)
	sabaroutes.Post("/cancelbet", sabaHandler.CancelBet)
	sabaroutes.Post("/settle", sabaHandler.Settle)
	sabaroutes.Post("/resettle", sabaHandler.Resettle)
	sabaroutes.Post("/unsettle", sabaHandler.Unsettle)
	sabaroutes.Post("/adjustbalance", sabaHandler.AdjustBalance)
}
