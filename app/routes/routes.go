package routes

import (
	"net/http"

	"todo-list-api/app/controllers"
	"todo-list-api/app/middleware"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

// CollectionPath is the prefix of every to-do list route.
const CollectionPath = "/to-do-list"

// RegisterRoutes sets up all routes for the application.
func RegisterRoutes(router *mux.Router, itemController *controllers.ItemController) {
	for _, path := range []string{CollectionPath + "/", CollectionPath} {
		router.HandleFunc(path, itemController.ListItems).Methods(http.MethodGet)
		router.HandleFunc(path, itemController.CreateItem).Methods(http.MethodPost)
	}
	router.HandleFunc(CollectionPath+"/{id:[0-9]+}", itemController.GetItem).Methods(http.MethodGet)
	router.HandleFunc(CollectionPath+"/{id:[0-9]+}", itemController.UpdateItem).Methods(http.MethodPut)
	router.HandleFunc(CollectionPath+"/{id:[0-9]+}", itemController.DeleteItem).Methods(http.MethodDelete)
}

// NewRouter builds the router with routes and middleware in place.
func NewRouter(itemController *controllers.ItemController, logger *log.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestID, middleware.AccessLog(logger), middleware.Recover(logger))
	RegisterRoutes(router, itemController)
	return router
}
