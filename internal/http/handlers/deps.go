package handlers

import (
	"warehousebot/internal/chat"
	"warehousebot/internal/config"
	"warehousebot/internal/media"
	"warehousebot/internal/repos"
	"warehousebot/internal/services"
	"warehousebot/internal/state"

	"github.com/jmoiron/sqlx"
)

// Deps holds the services and handlers of one running server.
type Deps struct {
	DB        *sqlx.DB
	Media     *media.Store
	Catalog   *services.CatalogService
	Items     *services.ItemService
	Inventory *services.InventoryService
	Auth      *services.AuthService
	Engine    *chat.Engine

	API    *APIHandler
	Chat   *ChatHandler
	Report *ReportHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, states state.Store) (*Deps, error) {
	store, err := media.NewStore(cfg.MediaDir)
	if err != nil {
		return nil, err
	}
	clock := services.Clock{Loc: cfg.Location()}
	codes := services.Codes{Attempts: cfg.CodeAttempts}

	catalogSvc := services.NewCatalogService(
		repos.NewCategoryRepo(db), repos.NewSubcategoryRepo(db),
		repos.NewBrandRepo(db), repos.NewMeasureTypeRepo(db), store)
	catalogSvc.Clock, catalogSvc.Codes = clock, codes

	itemSvc := services.NewItemService(repos.NewItemRepo(db), repos.NewImageRepo(db), catalogSvc, store)
	itemSvc.Clock, itemSvc.Codes = clock, codes

	invSvc := services.NewInventoryService(repos.NewInventoryRepo(db))

	authSvc, err := services.NewAuthService(repos.NewActorRepo(db), cfg.BotPassword)
	if err != nil {
		return nil, err
	}
	authSvc.Clock = clock

	engine := chat.NewEngine(states, authSvc, catalogSvc, itemSvc, invSvc)

	return &Deps{
		DB:        db,
		Media:     store,
		Catalog:   catalogSvc,
		Items:     itemSvc,
		Inventory: invSvc,
		Auth:      authSvc,
		Engine:    engine,
		API:       &APIHandler{Items: itemSvc, Catalog: catalogSvc, Inventory: invSvc},
		Chat:      &ChatHandler{Engine: engine, Token: cfg.ChatToken},
		Report:    &ReportHandler{Inventory: invSvc},
	}, nil
}
