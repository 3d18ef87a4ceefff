package contracts

import "github.com/julienschmidt/httprouter"

// Handler is what a feature package exposes to the application shell. The
// shell mounts any number of them on one router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
