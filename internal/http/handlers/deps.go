package handlers

import (
	"odyssee/internal/config"
	"odyssee/internal/repos"
	"odyssee/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	SiteHandler   *SiteHandler
	ClientHandler *ClientHandler
	OrderHandler  *OrderHandler
	StockHandler  *StockHandler
	MarketHandler *MarketHandler
	TPEHandler    *TPEHandler
	AdminHandler  *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	clientRepo := repos.NewClientRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	stockRepo := repos.NewStockRepo(db)
	marketRepo := repos.NewMarketRepo(db)
	saleRepo := repos.NewSaleRepo(db)

	orderSvc := services.NewOrderService(orderRepo, clientRepo)
	stockSvc := services.NewStockService(stockRepo)
	saleSvc := services.NewSaleService(saleRepo, stockRepo, marketRepo)
	statsSvc := services.NewStatsService(saleRepo, marketRepo)
	birthdaySvc := services.NewBirthdayService(clientRepo)

	return &Deps{
		SiteHandler:   &SiteHandler{},
		ClientHandler: &ClientHandler{Clients: clientRepo, Orders: orderRepo},
		OrderHandler:  &OrderHandler{Orders: orderSvc, Repo: orderRepo, Clients: clientRepo},
		StockHandler:  &StockHandler{Repo: stockRepo, Stock: stockSvc},
		MarketHandler: &MarketHandler{Markets: marketRepo, Stats: statsSvc},
		TPEHandler:    &TPEHandler{Markets: marketRepo, Stock: stockRepo, Sales: saleRepo, Sale: saleSvc},
		AdminHandler:  &AdminHandler{Orders: orderRepo, Clients: clientRepo, Markets: marketRepo, Birthdays: birthdaySvc},
	}
}
